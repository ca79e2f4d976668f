package influx

import (
	"fmt"
	"math/rand/v2"
)

// WriteAsync encodes the points and hands the write to a pool worker as
// a fire-and-forget job.
//
// Encoding happens here, before handoff, so the cost is paid by the
// calling goroutine rather than the worker. The pool is resolved through
// the registry by the client's database; a worker is then chosen
// uniformly at random from the pool's available set and the job sent
// with a non-blocking enqueue.
//
// A nil return means enqueued, never written: there is no acknowledgment
// channel, no cancellation after handoff, and no way to learn whether the
// eventual batched write succeeded. Failures after this point are
// observable only via the pool's error callback. Callers that need
// delivery confirmation must use Write instead.
//
// Errors: ErrPoolUnavailable when no registry is attached, the pool has
// not started within the dispatch timeout, or its worker set is empty;
// ErrQueueFull when the chosen worker's queue is at capacity.
func (c *Client) WriteAsync(points []Point, opts WriteOptions) error {
	if c.registry == nil {
		return fmt.Errorf("%w: client has no pool registry", ErrPoolUnavailable)
	}

	body := EncodePoints(points)

	pool := c.registry.Resolve(c.cfg.Database)
	workers, err := pool.available(c.dispatchTimeout)
	if err != nil {
		return err
	}

	w := workers[rand.IntN(len(workers))]
	return w.enqueue(&WriteJob{
		Config:  c.cfg,
		Body:    body,
		Options: opts,
	})
}
