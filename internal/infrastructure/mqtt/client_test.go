package mqtt

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/greyorange-labs/go-influxdb/internal/infrastructure/config"
)

// ============================================================================
// Validation Tests (no broker required)
// ============================================================================

// newDisconnectedClient builds a client that has never connected.
// Validation paths run before any network operation, so these tests
// exercise them without a broker.
func newDisconnectedClient() *Client {
	return &Client{
		subscriptions: make(map[string]subscription),
	}
}

func TestSubscribe_Validation(t *testing.T) {
	noop := func(topic string, payload []byte) error { return nil }

	tests := []struct {
		name    string
		topic   string
		qos     byte
		handler MessageHandler
		wantErr error
	}{
		{
			name:    "empty topic",
			topic:   "",
			qos:     1,
			handler: noop,
			wantErr: ErrInvalidTopic,
		},
		{
			name:    "invalid qos",
			topic:   "metrics/#",
			qos:     3,
			handler: noop,
			wantErr: ErrInvalidQoS,
		},
		{
			name:    "nil handler",
			topic:   "metrics/#",
			qos:     1,
			handler: nil,
			wantErr: ErrSubscribeFailed,
		},
		{
			name:    "not connected",
			topic:   "metrics/#",
			qos:     1,
			handler: noop,
			wantErr: ErrNotConnected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newDisconnectedClient()
			err := c.Subscribe(tt.topic, tt.qos, tt.handler)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Subscribe() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUnsubscribe_Validation(t *testing.T) {
	c := newDisconnectedClient()

	if err := c.Unsubscribe(""); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Unsubscribe(\"\") error = %v, want ErrInvalidTopic", err)
	}
	if err := c.Unsubscribe("metrics/#"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Unsubscribe() on disconnected client error = %v, want ErrNotConnected", err)
	}
}

func TestHealthCheck_Disconnected(t *testing.T) {
	c := newDisconnectedClient()

	err := c.HealthCheck(context.Background())
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestHealthCheck_ContextCancelled(t *testing.T) {
	c := newDisconnectedClient()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.HealthCheck(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck() error = %v, want context.Canceled", err)
	}
}

func TestSubscriptionCount(t *testing.T) {
	c := newDisconnectedClient()

	if got := c.SubscriptionCount(); got != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", got)
	}

	c.subscriptions["a"] = subscription{topic: "a"}
	c.subscriptions["b"] = subscription{topic: "b"}

	if got := c.SubscriptionCount(); got != 2 {
		t.Errorf("SubscriptionCount() = %d, want 2", got)
	}
}

func TestClose_NeverConnected(t *testing.T) {
	c := newDisconnectedClient()
	if err := c.Close(); err != nil {
		t.Errorf("Close() on never-connected client error = %v, want nil", err)
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := config.MQTTConfig{}
	cfg.Broker.Host = "broker.local"
	cfg.Broker.Port = 1883
	cfg.Broker.ClientID = "test-relay"
	cfg.Auth.Username = "user"
	cfg.Auth.Password = "pass"
	cfg.Reconnect.InitialDelay = 1
	cfg.Reconnect.MaxDelay = 30

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 {
		t.Fatalf("expected 1 broker server, got %d", len(opts.Servers))
	}
	if got := opts.Servers[0].String(); got != "tcp://broker.local:1883" {
		t.Errorf("broker URL = %q, want %q", got, "tcp://broker.local:1883")
	}
	if opts.ClientID != "test-relay" {
		t.Errorf("ClientID = %q, want %q", opts.ClientID, "test-relay")
	}
	if opts.Username != "user" {
		t.Errorf("Username = %q, want %q", opts.Username, "user")
	}
	if !opts.AutoReconnect {
		t.Error("AutoReconnect = false, want true")
	}
}

func TestBuildClientOptions_TLS(t *testing.T) {
	cfg := config.MQTTConfig{}
	cfg.Broker.Host = "broker.local"
	cfg.Broker.Port = 8883
	cfg.Broker.TLS = true
	cfg.Broker.ClientID = "test-relay"

	opts := buildClientOptions(cfg)

	if got := opts.Servers[0].Scheme; got != "ssl" {
		t.Errorf("broker scheme = %q, want %q", got, "ssl")
	}
	if opts.TLSConfig == nil {
		t.Fatal("TLSConfig is nil, want configured")
	}
	if opts.TLSConfig.MinVersion != tlsMinVersion {
		t.Errorf("TLS MinVersion = %d, want %d", opts.TLSConfig.MinVersion, tlsMinVersion)
	}
}

// ============================================================================
// Integration Tests (require a live broker)
//
// Run with: RUN_INTEGRATION=1 go test ./internal/infrastructure/mqtt/
// Override broker with MQTT_TEST_HOST (default localhost:1883).
// ============================================================================

func integrationConfig(t *testing.T) config.MQTTConfig {
	t.Helper()

	if os.Getenv("RUN_INTEGRATION") == "" {
		t.Skip("set RUN_INTEGRATION=1 to run broker integration tests")
	}

	cfg := config.MQTTConfig{}
	cfg.Broker.Host = "localhost"
	if h := os.Getenv("MQTT_TEST_HOST"); h != "" {
		cfg.Broker.Host = h
	}
	cfg.Broker.Port = 1883
	cfg.Broker.ClientID = "influx-relay-test"
	cfg.QoS = 1
	cfg.Reconnect.InitialDelay = 1
	cfg.Reconnect.MaxDelay = 5
	return cfg
}

func TestIntegration_ConnectSubscribeClose(t *testing.T) {
	cfg := integrationConfig(t)

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if !client.IsConnected() {
		t.Fatal("IsConnected() = false after Connect")
	}

	var mu sync.Mutex
	received := 0
	err = client.Subscribe("influx-relay-test/echo", 1,
		func(topic string, payload []byte) error {
			mu.Lock()
			received++
			mu.Unlock()
			return nil
		})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if got := client.SubscriptionCount(); got != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1", got)
	}

	// Publish through the underlying client to exercise the round trip.
	token := client.client.Publish("influx-relay-test/echo", 1, false, []byte(`{"v":1}`))
	if !token.WaitTimeout(5 * time.Second) {
		t.Fatal("publish timed out")
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := received
		mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	mu.Lock()
	n := received
	mu.Unlock()
	if n == 0 {
		t.Error("no message received within deadline")
	}

	if err := client.Unsubscribe("influx-relay-test/echo"); err != nil {
		t.Errorf("Unsubscribe() error = %v", err)
	}
	if got := client.SubscriptionCount(); got != 0 {
		t.Errorf("SubscriptionCount() after unsubscribe = %d, want 0", got)
	}
}
