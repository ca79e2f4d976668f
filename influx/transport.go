package influx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Content types used on the wire.
const (
	contentTypeForm = "application/x-www-form-urlencoded"
	contentTypeLine = "text/plain; charset=utf-8"
)

// maxResponseSize caps how much of an error or query response is read.
const maxResponseSize = 10 << 20 // 10 MB

// RequestKind distinguishes query requests (which carry a parsed JSON
// response) from write requests (which succeed with no content).
type RequestKind int

const (
	KindQuery RequestKind = iota
	KindWrite
)

// Transport performs a single HTTP request against the server and maps
// the status code into a result. Implementations must be safe for
// concurrent use by multiple goroutines.
//
// A timeout of zero means wait indefinitely (bounded only by ctx).
type Transport interface {
	Post(ctx context.Context, kind RequestKind, endpoint string, cfg Config, contentType string, body []byte, timeout time.Duration) (*Response, error)
}

// Response is the decoded JSON body of a successful query.
type Response struct {
	Results []Result `json:"results"`
}

// Result holds the outcome of one statement within a query.
type Result struct {
	StatementID int      `json:"statement_id"`
	Series      []Series `json:"series,omitempty"`
	Err         string   `json:"error,omitempty"`
}

// Series is one table of values in a query result.
type Series struct {
	Name    string            `json:"name,omitempty"`
	Tags    map[string]string `json:"tags,omitempty"`
	Columns []string          `json:"columns,omitempty"`
	Values  [][]interface{}   `json:"values,omitempty"`
}

// HTTPTransport is the net/http implementation of Transport.
//
// It authenticates with HTTP Basic auth using the credentials from the
// Config passed to each call, and classifies HTTP 404 as ErrNotFound and
// 5xx as ErrServerError (with the response body included in the message).
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport returns a transport backed by a dedicated http.Client.
// Per-request deadlines come from the timeout argument of each call, so
// the underlying client itself carries no timeout.
func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{client: &http.Client{}}
}

// Post implements Transport.
func (t *HTTPTransport) Post(ctx context.Context, kind RequestKind, endpoint string, cfg Config, contentType string, body []byte, timeout time.Duration) (*Response, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("influx: creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.SetBasicAuth(cfg.Username, cfg.Password)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("influx: executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("influx: reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, strings.TrimSpace(string(respBody)))
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrServerError, resp.StatusCode, strings.TrimSpace(string(respBody)))
	case resp.StatusCode == http.StatusNoContent:
		return nil, nil
	case resp.StatusCode == http.StatusOK:
		if kind == KindWrite {
			return nil, nil
		}
		var r Response
		if err := json.Unmarshal(respBody, &r); err != nil {
			return nil, fmt.Errorf("influx: decoding response: %w", err)
		}
		return &r, nil
	default:
		return nil, fmt.Errorf("influx: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
}

// Ping verifies the server is reachable via GET /ping.
//
// The ping endpoint sits directly under the sub-path and returns 204
// when the server is up.
func (t *HTTPTransport) Ping(ctx context.Context, cfg Config, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.baseURL()+"/ping", nil)
	if err != nil {
		return fmt.Errorf("influx: ping: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("influx: ping: %w", err)
	}
	defer resp.Body.Close()
	// Drain body to allow connection reuse
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("influx: ping: status %d", resp.StatusCode)
	}

	return nil
}
