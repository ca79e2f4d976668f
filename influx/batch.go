package influx

import (
	"context"
)

// WriteJob is the unit of work handed to a pool worker: an already
// encoded line protocol body plus the routing needed to send it.
//
// Jobs are created by WriteAsync, consumed exactly once by whichever
// worker receives them, and never mutated after creation.
type WriteJob struct {
	Config  Config
	Body    []byte
	Options WriteOptions
}

// BatchFunc merges a non-empty batch of queued write jobs into exactly
// one outbound request. The pool invokes it on every batch it assembles;
// its error is the result for the entire batch, not per job.
type BatchFunc func(batch []*WriteJob) error

// NewBatchWriter returns the merge function used by pool workers.
//
// Routing policy is first-wins: the connection config, database and
// write options of the first job apply to the whole batch. Jobs in one
// batch are assumed to share a destination; a heterogeneous batch is not
// rejected or split — the remaining jobs' routing and options are
// silently ignored.
//
// Bodies are concatenated in arrival order. Each encoded body is already
// newline-terminated, so the combined body is valid line protocol.
func NewBatchWriter(t Transport) BatchFunc {
	return func(batch []*WriteJob) error {
		if len(batch) == 0 {
			return ErrEmptyBatch
		}

		first := batch[0]

		size := 0
		for _, job := range batch {
			size += len(job.Body)
		}
		combined := make([]byte, 0, size)
		for _, job := range batch {
			combined = append(combined, job.Body...)
		}

		endpoint := first.Config.writeEndpoint() + "?" + writeParams(first.Config, first.Options).Encode()
		_, err := t.Post(context.Background(), KindWrite, endpoint, first.Config, contentTypeLine, combined, first.Options.Timeout)
		return err
	}
}
