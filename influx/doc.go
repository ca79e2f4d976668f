// Package influx is a client for the InfluxDB v1 HTTP API.
//
// It normalizes sparse connection options into a complete connection
// config, encodes points into line protocol, and sends writes either
// synchronously or through pools of background workers that coalesce
// queued writes into a single HTTP request.
//
// # Usage
//
//	cfg, err := influx.NewConfig(influx.Options{
//	    Host:     "db1",
//	    Port:     8086,
//	    Database: "metrics",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client := influx.NewClient(cfg)
//	err = client.Write(ctx, points, influx.WriteOptions{Precision: influx.PrecisionSecond})
//
// # Asynchronous writes
//
// WriteAsync hands the encoded write to a worker pool and returns as soon
// as the job is enqueued. It never reports whether the write eventually
// succeeded; failures inside a worker are only visible through the pool's
// error callback. Callers that need delivery confirmation must use Write.
//
//	pool := influx.NewPool(influx.PoolConfig{}, influx.NewBatchWriter(influx.NewHTTPTransport()))
//	pool.Start()
//	defer pool.Close()
//
//	registry := influx.NewRegistry("myapp", pool)
//	client := influx.NewClient(cfg, influx.WithRegistry(registry))
//	err = client.WriteAsync(points, influx.WriteOptions{})
//
// # Thread Safety
//
// Config is an immutable value and safe to share. Client, Pool and
// Registry methods are safe for concurrent use once started; Registry
// registration must complete before the registry is shared.
//
// # Error Handling
//
// Server-side failures on the synchronous paths are returned as wrapped
// sentinel errors (ErrNotFound, ErrServerError) checked via errors.Is.
// WriteAsync reports only enqueue failures (ErrPoolUnavailable,
// ErrQueueFull); there is no channel for write results after handoff.
package influx
