//
//  internal/requestinfo/requestinfo.go
//
//  Per-request visitor metadata (user-agent fingerprint, client IP,
//  optional geolocation, and timestamp).  The sign-up handlers log it next
//  to each submission so operators can tell browsers, bots, and regions
//  apart.  These structs are inert and safe to log.
//
//  Dependencies
//  • github.com/avct/uasurfer          (UA parsing)
//  • github.com/oschwald/geoip2-golang (MaxMind lookup, optional)
//

package requestinfo

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"
)

//
//  -----------------------------
//  Struct definitions
//  -----------------------------
//

// UA holds the parsed user-agent properties.
type UA struct {
	Browser     string // "Chrome", "Firefox", "Safari", etc.
	Version     string // "124.0.6367"
	OS          string // "macOS", "Windows", "Android", "iOS", etc.
	OSVersion   string // "14.5", "11", "10"
	Device      string // "Desktop", "Phone", "Tablet", ...
	IsBot       bool
	PrimaryLang string // First tag from Accept-Language ("en", "es", ...)
}

// Geo holds IP-based hints.  Fields stay empty without a database match.
type Geo struct {
	IP         net.IP
	CountryISO string
	City       string
}

// Info is stored in the request context by Enrich.
type Info struct {
	UA        UA
	Geo       Geo
	Timestamp time.Time
}

// Fields flattens info into zap key/value pairs.
func (i *Info) Fields() []any {
	if i == nil {
		return nil
	}
	return []any{
		"ip", i.Geo.IP.String(),
		"country", i.Geo.CountryISO,
		"browser", i.UA.Browser,
		"device", i.UA.Device,
		"bot", i.UA.IsBot,
	}
}

//
//  -----------------------------
//  Package-level state
//  -----------------------------
//

// geoReader is the MaxMind handle.  Reads are concurrency-safe.
var geoReader atomic.Pointer[geoip2.Reader]

// InitGeo opens a GeoLite2-City database.  An empty path leaves
// geolocation disabled.
func InitGeo(dbPath string) error {
	if dbPath == "" {
		return nil
	}
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open GeoLite2 db %s: %w", dbPath, err)
	}
	if old := geoReader.Swap(r); old != nil {
		old.Close()
	}
	zap.S().Infow("geoip database loaded", "file", dbPath)
	return nil
}

// CloseGeo releases the database opened by InitGeo.
func CloseGeo() {
	if r := geoReader.Swap(nil); r != nil {
		r.Close()
	}
}

//
//  -----------------------------
//  Public helper: FromContext
//  -----------------------------
//

type ctxKey struct{}

// FromContext returns the pointer stored by Enrich, or nil.
func FromContext(ctx context.Context) *Info {
	v, _ := ctx.Value(ctxKey{}).(*Info)
	return v
}

//
//  -----------------------------
//  Internal helpers
//  -----------------------------
//

// parseUA converts a raw header into our UA struct using uasurfer.
func parseUA(uaHeader, acceptLang string) UA {
	u := uasurfer.Parse(uaHeader)

	osName := strings.TrimPrefix(u.OS.Name.String(), "OS")
	if osName == "MacOSX" {
		osName = "macOS"
	}

	return UA{
		Browser:     strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		Version:     trimVersion(u.Browser.Version),
		OS:          osName,
		OSVersion:   trimVersion(u.OS.Version),
		Device:      deviceTypeToString(u.DeviceType),
		IsBot:       u.IsBot(),
		PrimaryLang: primaryLang(acceptLang),
	}
}

// trimVersion renders major.minor.patch without trailing zero parts.
func trimVersion(v uasurfer.Version) string {
	major, minor, patch := int(v.Major), int(v.Minor), int(v.Patch)
	switch {
	case patch != 0:
		return strconv.Itoa(major) + "." + strconv.Itoa(minor) + "." + strconv.Itoa(patch)
	case minor != 0:
		return strconv.Itoa(major) + "." + strconv.Itoa(minor)
	case major != 0:
		return strconv.Itoa(major)
	}
	return ""
}

func deviceTypeToString(dt uasurfer.DeviceType) string {
	switch dt {
	case uasurfer.DeviceComputer:
		return "Desktop"
	case uasurfer.DevicePhone:
		return "Phone"
	case uasurfer.DeviceTablet:
		return "Tablet"
	case uasurfer.DeviceConsole:
		return "Console"
	case uasurfer.DeviceWearable:
		return "Wearable"
	case uasurfer.DeviceTV:
		return "TV"
	default:
		return "Unknown"
	}
}

// primaryLang extracts the first language tag before any ";q=" weight.
func primaryLang(al string) string {
	if al == "" {
		return ""
	}
	tag := strings.TrimSpace(strings.Split(al, ",")[0])
	if i := strings.Index(tag, ";"); i != -1 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}

// lookupGeo returns best-effort Geo data.
func lookupGeo(ip net.IP) Geo {
	r := geoReader.Load()
	if r == nil || ip == nil {
		return Geo{IP: ip}
	}
	rec, err := r.City(ip)
	if err != nil {
		return Geo{IP: ip}
	}
	return Geo{
		IP:         ip,
		CountryISO: rec.Country.IsoCode,
		City:       rec.City.Names["en"],
	}
}
