// internal/requestinfo/middleware.go
//
// HTTP middleware that attaches *Info to each request.
//
/*
Context
--------
Enrich runs after chi's RealIP, so r.RemoteAddr already carries the
client address when the service sits behind a proxy.  For every request
it parses the User-Agent and Accept-Language headers, looks the address
up in the optional GeoLite2 database, and stores the result under an
unexported context key.
*/
package requestinfo

import (
	"context"
	"net"
	"net/http"
	"time"
)

// Enrich wraps next, attaches *Info, and forwards.
func Enrich(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := &Info{
			UA:        parseUA(r.UserAgent(), r.Header.Get("Accept-Language")),
			Geo:       lookupGeo(clientIP(r)),
			Timestamp: time.Now().UTC(),
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientIP reads the host part of r.RemoteAddr.
func clientIP(r *http.Request) net.IP {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return net.ParseIP(host)
	}
	return net.ParseIP(r.RemoteAddr)
}
