package form

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postForm(vals url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/volunteer", strings.NewReader(vals.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestHandleSubmit_AppliesFieldsThenSubmits(t *testing.T) {
	c := &fakeCollector{payload: json.RawMessage(`{"id":"7"}`)}
	f := newForm(t, c)
	csrf, err := NewCSRF(testKey())
	require.NoError(t, err)
	tok, _ := csrf.Issue()

	vals := url.Values{
		"name": {"Ada"}, "email": {"a@b.com"}, "motivation": {"help"},
		"positions": {"Tabling"}, "terms": {"on"}, "csrf_token": {tok},
	}
	require.NoError(t, HandleSubmit(f, csrf, postForm(vals)))

	require.Len(t, c.calls, 1)
	assert.Equal(t, validRecord(), c.calls[0])
	assert.Equal(t, NewRecord(loadSignup(t)), f.Snapshot().Values)
}

func TestHandleSubmit_UncheckedTermsBlocksSubmit(t *testing.T) {
	c := &fakeCollector{}
	f := newForm(t, c)
	csrf, _ := NewCSRF(testKey())
	tok, _ := csrf.Issue()

	vals := url.Values{
		"name": {"Ada"}, "email": {"a@b.com"}, "motivation": {"help"},
		"positions": {"Tabling"}, "csrf_token": {tok},
	}
	err := HandleSubmit(f, csrf, postForm(vals))

	assert.True(t, errors.Is(err, ErrNotReady))
	assert.True(t, IsUserError(err))
	assert.Empty(t, c.calls)
	assert.Equal(t, "Ada", f.Snapshot().Values["name"])
}

func TestHandleSubmit_BadTokenLeavesStateAlone(t *testing.T) {
	f := newForm(t, &fakeCollector{})
	csrf, _ := NewCSRF(testKey())

	err := HandleSubmit(f, csrf, postForm(url.Values{"name": {"Ada"}, "csrf_token": {"forged"}}))

	assert.True(t, errors.Is(err, ErrCSRF))
	assert.Equal(t, "", f.Snapshot().Values["name"])
}

func TestIsUserError_CollectorFailure(t *testing.T) {
	assert.False(t, IsUserError(errors.New("collector down")))
	assert.False(t, IsUserError(context.Canceled))
}
