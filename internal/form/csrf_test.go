package form

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() string {
	return base64.RawURLEncoding.EncodeToString([]byte(strings.Repeat("k", 32)))
}

func TestCSRF_IssueVerify(t *testing.T) {
	c, err := NewCSRF(testKey())
	require.NoError(t, err)

	tok, err := c.Issue()
	require.NoError(t, err)
	assert.NoError(t, c.Verify(tok))
}

func TestCSRF_RejectsTamperedAndForeign(t *testing.T) {
	c, err := NewCSRF(testKey())
	require.NoError(t, err)
	tok, _ := c.Issue()

	other, err := NewCSRF("")
	require.NoError(t, err)
	assert.ErrorIs(t, other.Verify(tok), ErrCSRF, "different key")

	raw, _ := base64.RawURLEncoding.DecodeString(tok)
	raw[len(raw)-1] ^= 0xff
	assert.ErrorIs(t, c.Verify(base64.RawURLEncoding.EncodeToString(raw)), ErrCSRF)

	assert.ErrorIs(t, c.Verify(""), ErrCSRF)
	assert.ErrorIs(t, c.Verify("!!!"), ErrCSRF)
}

func TestCSRF_Expires(t *testing.T) {
	c, err := NewCSRF(testKey())
	require.NoError(t, err)

	issued := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return issued }
	tok, _ := c.Issue()

	c.now = func() time.Time { return issued.Add(MaxAge + time.Second) }
	assert.ErrorIs(t, c.Verify(tok), ErrCSRF)
}

func TestNewCSRF_ShortKey(t *testing.T) {
	_, err := NewCSRF(base64.RawURLEncoding.EncodeToString([]byte("short")))
	assert.Error(t, err)
}
