package relay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/greyorange-labs/go-influxdb/influx"
	"github.com/greyorange-labs/go-influxdb/internal/infrastructure/config"
	"github.com/greyorange-labs/go-influxdb/internal/infrastructure/logging"
	"github.com/greyorange-labs/go-influxdb/internal/infrastructure/mqtt"
)

// ErrBadSample is returned by the message handler when a payload cannot
// be decoded into a valid sample. Bad samples are dropped, not retried.
var ErrBadSample = errors.New("relay: invalid sample")

// broker is the subset of the MQTT client the relay uses. Narrowed to an
// interface so tests can feed messages without a live broker.
type broker interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Sample is the JSON shape carried on the metric topics.
type Sample struct {
	Database    string                 `json:"database,omitempty"`
	Measurement string                 `json:"measurement"`
	Tags        map[string]string      `json:"tags,omitempty"`
	Fields      map[string]interface{} `json:"fields"`
	Timestamp   int64                  `json:"timestamp,omitempty"` // nanoseconds since epoch
}

// Stats is a snapshot of the relay's message counters.
type Stats struct {
	Received int64
	Relayed  int64
	Dropped  int64
}

// Relay consumes samples from MQTT and dispatches them to InfluxDB
// through the asynchronous write path.
//
// Thread Safety:
//   - Safe for concurrent use; message handlers run in broker goroutines.
type Relay struct {
	cfg      *config.Config
	broker   broker
	registry *influx.Registry
	log      *logging.Logger

	// transport overrides the HTTP transport on lazily built clients.
	// Nil means the default transport; tests inject fakes here.
	transport influx.Transport

	// clients caches one client per target database. All of them share
	// the registry, so pool routing stays consistent across databases.
	clients map[string]*influx.Client
	mu      sync.Mutex

	received atomic.Int64
	relayed  atomic.Int64
	dropped  atomic.Int64
}

// Option customises a Relay at construction time.
type Option func(*Relay)

// WithTransport replaces the HTTP transport used by the relay's InfluxDB
// clients. Used by tests.
func WithTransport(t influx.Transport) Option {
	return func(r *Relay) { r.transport = t }
}

// New creates a relay wired to the given broker and pool registry.
func New(cfg *config.Config, b broker, registry *influx.Registry, log *logging.Logger, opts ...Option) *Relay {
	r := &Relay{
		cfg:      cfg,
		broker:   b,
		registry: registry,
		log:      log,
		clients:  make(map[string]*influx.Client),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start subscribes to every configured topic. It returns on the first
// subscription failure; already established subscriptions stay active
// and are cleaned up by closing the broker.
func (r *Relay) Start() error {
	qos := byte(r.cfg.MQTT.QoS)
	for _, topic := range r.cfg.Relay.Topics {
		if err := r.broker.Subscribe(topic, qos, r.HandleMessage); err != nil {
			return fmt.Errorf("subscribing to %q: %w", topic, err)
		}
		r.log.Info("subscribed", "topic", topic, "qos", qos)
	}
	return nil
}

// HandleMessage decodes one sample payload and enqueues it for delivery.
//
// Returned errors are logged by the MQTT layer; they do not affect
// message acknowledgment. Every failure increments the dropped counter.
func (r *Relay) HandleMessage(topic string, payload []byte) error {
	r.received.Add(1)

	sample, err := decodeSample(payload)
	if err != nil {
		r.dropped.Add(1)
		return err
	}

	point := influx.Point{
		Measurement: sample.Measurement,
		Tags:        sample.Tags,
		Fields:      sample.Fields,
	}
	if sample.Timestamp != 0 {
		point.Time = time.Unix(0, sample.Timestamp)
	}

	client, err := r.clientFor(sample.Database)
	if err != nil {
		r.dropped.Add(1)
		return err
	}

	if err := client.WriteAsync([]influx.Point{point}, influx.WriteOptions{}); err != nil {
		r.dropped.Add(1)
		return fmt.Errorf("dispatching sample from %q: %w", topic, err)
	}

	r.relayed.Add(1)
	return nil
}

// Stats returns a snapshot of the message counters.
func (r *Relay) Stats() Stats {
	return Stats{
		Received: r.received.Load(),
		Relayed:  r.relayed.Load(),
		Dropped:  r.dropped.Load(),
	}
}

// clientFor returns the cached client targeting the given database,
// building it on first use. An empty database falls back to the
// configured default database.
func (r *Relay) clientFor(database string) (*influx.Client, error) {
	if database == "" {
		database = r.cfg.InfluxDB.Database
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[database]; ok {
		return c, nil
	}

	cfg, err := influx.NewConfig(influx.Options{
		Scheme:   r.cfg.InfluxDB.Scheme,
		Host:     r.cfg.InfluxDB.Host,
		Port:     r.cfg.InfluxDB.Port,
		SubPath:  r.cfg.InfluxDB.SubPath,
		Username: r.cfg.InfluxDB.Username,
		Password: r.cfg.InfluxDB.Password,
		Database: database,
	})
	if err != nil {
		return nil, fmt.Errorf("building client for %q: %w", database, err)
	}

	opts := []influx.ClientOption{
		influx.WithRegistry(r.registry),
		influx.WithDispatchTimeout(r.cfg.GetDispatchTimeout()),
	}
	if r.transport != nil {
		opts = append(opts, influx.WithTransport(r.transport))
	}

	c := influx.NewClient(cfg, opts...)
	r.clients[database] = c
	return c, nil
}

// decodeSample parses and validates one JSON payload.
//
// Numbers decode through json.Number so integer field values keep their
// type on the wire (42 encodes as 42i, not 42).
func decodeSample(payload []byte) (*Sample, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var s Sample
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadSample, err)
	}

	if s.Measurement == "" {
		return nil, fmt.Errorf("%w: missing measurement", ErrBadSample)
	}
	if len(s.Fields) == 0 {
		return nil, fmt.Errorf("%w: no fields", ErrBadSample)
	}

	for k, v := range s.Fields {
		n, ok := v.(json.Number)
		if !ok {
			continue
		}
		if i, err := n.Int64(); err == nil {
			s.Fields[k] = i
			continue
		}
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %w", ErrBadSample, k, err)
		}
		s.Fields[k] = f
	}

	return &s, nil
}
