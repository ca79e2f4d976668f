package influx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// defaultDispatchTimeout bounds how long WriteAsync waits for the
// resolved pool to report its available workers.
const defaultDispatchTimeout = 5 * time.Second

// Client issues queries and writes against one InfluxDB connection.
//
// The zero-cost Config is held by value; a Client is safe for concurrent
// use from multiple goroutines.
type Client struct {
	cfg             Config
	transport       Transport
	registry        *Registry
	dispatchTimeout time.Duration
}

// ClientOption customises a Client at construction time.
type ClientOption func(*Client)

// WithTransport replaces the default HTTP transport. Used by tests and
// by callers that need custom TLS or connection handling.
func WithTransport(t Transport) ClientOption {
	return func(c *Client) { c.transport = t }
}

// WithRegistry attaches a pool registry, enabling WriteAsync. Without a
// registry the asynchronous path fails with ErrPoolUnavailable.
func WithRegistry(r *Registry) ClientOption {
	return func(c *Client) { c.registry = r }
}

// WithDispatchTimeout overrides how long WriteAsync waits for available
// workers (default 5s).
func WithDispatchTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.dispatchTimeout = d }
}

// NewClient creates a client for the given connection config.
func NewClient(cfg Config, opts ...ClientOption) *Client {
	c := &Client{
		cfg:             cfg,
		transport:       NewHTTPTransport(),
		dispatchTimeout: defaultDispatchTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the connection config the client was built with.
func (c *Client) Config() Config {
	return c.cfg
}

// Query executes an InfluxQL statement and returns the parsed results.
//
// The statement and any bound parameters are sent as a form-encoded POST
// body to the query endpoint: "q" carries the statement text and
// "params" the JSON-encoded parameter map. Database, epoch and retention
// policy travel in the same form per the options.
//
// Server-side failures surface as wrapped ErrNotFound / ErrServerError
// values, never as panics.
func (c *Client) Query(ctx context.Context, q string, params map[string]interface{}, opts QueryOptions) (*Response, error) {
	form := queryParams(c.cfg, opts)
	form.Set("q", q)
	if len(params) > 0 {
		encoded, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("influx: encoding query params: %w", err)
		}
		form.Set("params", string(encoded))
	}

	return c.transport.Post(ctx, KindQuery, c.cfg.queryEndpoint(), c.cfg, contentTypeForm, []byte(form.Encode()), opts.Timeout)
}

// Write encodes the points into line protocol and sends them in one
// synchronous request. A nil error means the server accepted the write
// (204, no content).
func (c *Client) Write(ctx context.Context, points []Point, opts WriteOptions) error {
	endpoint := c.cfg.writeEndpoint() + "?" + writeParams(c.cfg, opts).Encode()
	_, err := c.transport.Post(ctx, KindWrite, endpoint, c.cfg, contentTypeLine, EncodePoints(points), opts.Timeout)
	return err
}

// pinger is implemented by transports that support an active liveness probe.
type pinger interface {
	Ping(ctx context.Context, cfg Config, timeout time.Duration) error
}

// Ping verifies the server is reachable. Transports without a ping
// probe (e.g. test fakes) report an error rather than a false positive.
func (c *Client) Ping(ctx context.Context) error {
	p, ok := c.transport.(pinger)
	if !ok {
		return errors.New("influx: transport does not support ping")
	}
	return p.Ping(ctx, c.cfg, defaultDispatchTimeout)
}
