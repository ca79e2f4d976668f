package influx

import (
	"fmt"
	"time"
)

// worker drains its own bounded job queue, coalescing queued jobs into
// batches. A worker processes at most one batch at a time; jobs are
// single-owner after handoff, so no locking is needed around the batch.
type worker struct {
	id            int
	pool          *Pool
	jobs          chan *WriteJob
	batchSize     int
	flushInterval time.Duration
}

// enqueue delivers a job to the worker without blocking. A full queue is
// an enqueue failure, not a reason to wait: the asynchronous path must
// return immediately.
func (w *worker) enqueue(job *WriteJob) error {
	select {
	case w.jobs <- job:
		return nil
	default:
		return fmt.Errorf("%w: worker %d of pool %q at capacity", ErrQueueFull, w.id, w.pool.name)
	}
}

// run is the worker loop: accumulate jobs until the batch is full or the
// flush timer fires, then merge. On shutdown the queue is drained and
// flushed one last time before exiting.
func (w *worker) run() {
	defer w.pool.wg.Done()

	ticker := time.NewTicker(w.flushInterval)
	defer ticker.Stop()

	batch := make([]*WriteJob, 0, w.batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := w.pool.merge(batch); err != nil {
			w.pool.reportError(fmt.Errorf("influx: pool %q worker %d: %w", w.pool.name, w.id, err))
		}
		// The merged batch is discarded; start a fresh slice so the
		// merge function may retain the old one.
		batch = make([]*WriteJob, 0, w.batchSize)
	}

	for {
		select {
		case job := <-w.jobs:
			batch = append(batch, job)
			if len(batch) >= w.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-w.pool.done:
			for {
				select {
				case job := <-w.jobs:
					batch = append(batch, job)
					if len(batch) >= w.batchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}
