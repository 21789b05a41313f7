// internal/collector/client.go
//
// HTTP client for the remote collector.
//
// Context
//   The collector is whatever endpoint operators point collector.url at: the
//   bundled echo collector, a form-backend SaaS, or a test server.  Its
//   contract is not stable, so the client asks little of it: one POST with
//   the record as JSON, any 2xx is success, anything else is a generic
//   failure.  There is no retry.  The response body is handed back as the
//   payload; non-JSON bodies are wrapped as a JSON string so the page can
//   always render them.
//
//------------------------------------------------------------------------------

package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/yanizio/volunteer/internal/form"
)

// maxPayload caps how much of the collector's reply is kept.
const maxPayload = 1 << 20

// ErrStatus is wrapped by Submit for non-2xx replies.
var ErrStatus = errors.New("collector: unexpected status")

// Client posts records to one collector URL.
type Client struct {
	url  string
	http *http.Client
}

var _ form.Submitter = (*Client)(nil)

// NewClient returns a Client for url.  A nil hc uses http.DefaultClient.
func NewClient(url string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{url: url, http: hc}
}

// Submit implements form.Submitter.
func (c *Client) Submit(ctx context.Context, rec form.Record) (json.RawMessage, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPayload))
	if err != nil {
		return nil, fmt.Errorf("read reply: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		zap.S().Warnw("collector rejected submission", "url", c.url, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	zap.S().Infow("collector accepted submission", "url", c.url, "status", resp.StatusCode, "bytes", len(raw))
	return payload(raw), nil
}

// payload normalises a reply body into valid JSON.  An empty body becomes
// the empty string.
func payload(raw []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return json.RawMessage(`""`)
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(string(trimmed))
	return json.RawMessage(quoted)
}
