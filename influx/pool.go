package influx

import (
	"fmt"
	"sync"
	"time"
)

// Pool defaults applied by NewPool for any setting left at zero.
const (
	defaultWorkers       = 4
	defaultQueueSize     = 256
	defaultBatchSize     = 100
	defaultFlushInterval = time.Second

	// DefaultPoolName is the well-known name used when no dedicated pool
	// is configured for a database.
	DefaultPoolName = "influxdb_pool"
)

// PoolConfig configures a worker pool.
//
// Workers is the number of concurrent batch writers; QueueSize bounds
// each worker's pending-job queue. A worker coalesces queued jobs into
// one request when it has BatchSize of them or when FlushInterval fires,
// whichever comes first. Zero values use the defaults above.
type PoolConfig struct {
	Name          string
	Workers       int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
}

// Pool fans asynchronous write load out over a fixed set of workers.
//
// Each worker owns a bounded job queue and processes at most one batch
// at a time. The pool owns the batching trigger (size and time based)
// and invokes the supplied merge function on every batch it assembles.
//
// The pool does not retry failed sends, does not guarantee delivery and
// does not persist undelivered batches. Merge failures are reported via
// the error callback only; the producers that enqueued the jobs are
// never notified.
type Pool struct {
	name    string
	merge   BatchFunc
	workers []*worker

	ready chan struct{}
	done  chan struct{}
	wg    sync.WaitGroup

	startOnce sync.Once
	closeOnce sync.Once

	onError func(err error)
	mu      sync.RWMutex
}

// NewPool creates a pool with the given settings and merge function.
// Start must be called before the pool accepts jobs.
func NewPool(cfg PoolConfig, merge BatchFunc) *Pool {
	name := cfg.Name
	if name == "" {
		name = DefaultPoolName
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	flushInterval := cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = defaultFlushInterval
	}

	p := &Pool{
		name:  name,
		merge: merge,
		ready: make(chan struct{}),
		done:  make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		p.workers = append(p.workers, &worker{
			id:            i,
			pool:          p,
			jobs:          make(chan *WriteJob, queueSize),
			batchSize:     batchSize,
			flushInterval: flushInterval,
		})
	}
	return p
}

// Name returns the pool's name, used in errors and logs.
func (p *Pool) Name() string {
	return p.name
}

// Start launches the worker goroutines. Safe to call more than once.
func (p *Pool) Start() {
	p.startOnce.Do(func() {
		for _, w := range p.workers {
			p.wg.Add(1)
			go w.run()
		}
		close(p.ready)
	})
}

// Close stops the workers and waits for them to drain. Jobs already
// queued are flushed through a final merge before the workers exit;
// jobs enqueued after Close may be dropped.
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		close(p.done)
		p.wg.Wait()
	})
	return nil
}

// SetOnError sets a callback invoked when a worker's merge fails.
//
// This is the only place asynchronous write failures are observable:
// by the time a batch is sent, the callers that enqueued its jobs have
// long since returned.
func (p *Pool) SetOnError(callback func(err error)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onError = callback
}

// reportError delivers an error to the onError callback if set.
func (p *Pool) reportError(err error) {
	p.mu.RLock()
	callback := p.onError
	p.mu.RUnlock()

	if callback != nil {
		callback(err)
	}
}

// available blocks until the pool has started workers or the timeout
// elapses, then returns the worker set. An empty set or a pool that
// never starts is surfaced as ErrPoolUnavailable.
func (p *Pool) available(timeout time.Duration) ([]*worker, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-p.ready:
	case <-timer.C:
		return nil, fmt.Errorf("%w: pool %q not started after %v", ErrPoolUnavailable, p.name, timeout)
	}

	select {
	case <-p.done:
		return nil, fmt.Errorf("%w: pool %q is closed", ErrPoolUnavailable, p.name)
	default:
	}

	if len(p.workers) == 0 {
		return nil, fmt.Errorf("%w: pool %q has no workers", ErrPoolUnavailable, p.name)
	}
	return p.workers, nil
}
