package influx

import "errors"

// Sentinel errors for InfluxDB client operations.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, influx.ErrNotFound) {
//	    // Database or endpoint does not exist
//	}
var (
	// ErrInvalidPort indicates a port outside the valid TCP range was supplied.
	ErrInvalidPort = errors.New("influx: port must be between 1 and 65535")

	// ErrNotFound indicates the server returned HTTP 404 (missing endpoint or database).
	ErrNotFound = errors.New("influx: not found")

	// ErrServerError indicates the server returned a 5xx response.
	ErrServerError = errors.New("influx: server error")

	// ErrPoolUnavailable indicates no workers could be obtained from the pool.
	ErrPoolUnavailable = errors.New("influx: pool unavailable")

	// ErrQueueFull indicates the selected worker's queue is at capacity.
	ErrQueueFull = errors.New("influx: worker queue full")

	// ErrEmptyBatch indicates a batch writer was invoked with no jobs.
	ErrEmptyBatch = errors.New("influx: empty batch")
)
