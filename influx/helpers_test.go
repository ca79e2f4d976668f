package influx_test

import (
	"context"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/greyorange-labs/go-influxdb/influx"
)

// transportCall records one Post invocation on the fake transport.
type transportCall struct {
	kind        influx.RequestKind
	endpoint    string
	cfg         influx.Config
	contentType string
	body        []byte
	timeout     time.Duration
}

// fakeTransport records every call and returns canned results.
type fakeTransport struct {
	mu       sync.Mutex
	calls    []transportCall
	response *influx.Response
	err      error
}

func (f *fakeTransport) Post(_ context.Context, kind influx.RequestKind, endpoint string, cfg influx.Config, contentType string, body []byte, timeout time.Duration) (*influx.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	bodyCopy := make([]byte, len(body))
	copy(bodyCopy, body)
	f.calls = append(f.calls, transportCall{
		kind:        kind,
		endpoint:    endpoint,
		cfg:         cfg,
		contentType: contentType,
		body:        bodyCopy,
		timeout:     timeout,
	})
	return f.response, f.err
}

func (f *fakeTransport) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeTransport) call(i int) transportCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}

// waitForCalls polls until the fake transport has seen n calls or the
// deadline passes.
func waitForCalls(t *testing.T, f *fakeTransport, n int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if f.callCount() >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("transport calls = %d, want at least %d", f.callCount(), n)
}

// newTestConfig builds a Config pointing at an httptest server URL.
func newTestConfig(t *testing.T, serverURL, database string) influx.Config {
	t.Helper()
	u, err := url.Parse(serverURL)
	if err != nil {
		t.Fatalf("parsing test server URL: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parsing test server port: %v", err)
	}
	cfg, err := influx.NewConfig(influx.Options{
		Scheme:   u.Scheme,
		Host:     u.Hostname(),
		Port:     port,
		Database: database,
	})
	if err != nil {
		t.Fatalf("NewConfig() error = %v", err)
	}
	return cfg
}
