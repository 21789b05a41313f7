package requestinfo

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chromeMac = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/125.0.6422.60 Safari/537.36"

func TestEnrich_AttachesInfo(t *testing.T) {
	var got *Info
	h := Enrich(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/volunteer", nil)
	req.RemoteAddr = "203.0.113.7:5123"
	req.Header.Set("User-Agent", chromeMac)
	req.Header.Set("Accept-Language", "en-GB;q=0.9, fr")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, "203.0.113.7", got.Geo.IP.String())
	assert.Empty(t, got.Geo.CountryISO, "no database loaded")
	assert.Equal(t, "Chrome", got.UA.Browser)
	assert.Equal(t, "macOS", got.UA.OS)
	assert.Equal(t, "Desktop", got.UA.Device)
	assert.False(t, got.UA.IsBot)
	assert.Equal(t, "en-gb", got.UA.PrimaryLang)
	assert.False(t, got.Timestamp.IsZero())
}

func TestFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, FromContext(req.Context()))
	assert.Nil(t, FromContext(req.Context()).Fields())
}

func TestInitGeo(t *testing.T) {
	assert.NoError(t, InitGeo(""))
	assert.Error(t, InitGeo("/nonexistent/GeoLite2-City.mmdb"))
}

func TestPrimaryLang(t *testing.T) {
	assert.Equal(t, "", primaryLang(""))
	assert.Equal(t, "es", primaryLang("ES;q=0.8"))
	assert.Equal(t, "de-at", primaryLang("de-AT, de;q=0.9"))
}
