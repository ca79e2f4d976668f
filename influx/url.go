package influx

import (
	"fmt"
	"net/url"
)

// baseURL assembles the server root, e.g. "http://db1:8086/influx".
func (c Config) baseURL() string {
	return fmt.Sprintf("%s://%s:%d%s", c.Scheme, c.Host, c.Port, c.SubPath)
}

// writeEndpoint returns the write path under the configured sub-path.
func (c Config) writeEndpoint() string {
	return c.baseURL() + "/write"
}

// queryEndpoint returns the query path under the configured sub-path.
func (c Config) queryEndpoint() string {
	return c.baseURL() + "/query"
}

// baseParams builds the parameters common to both paths: timestamps are
// reported in nanoseconds unless overridden, and the target database is
// included when the config names one.
func baseParams(cfg Config) url.Values {
	v := url.Values{}
	v.Set("epoch", PrecisionNanosecond.code())
	if cfg.Database != "" {
		v.Set("db", cfg.Database)
	}
	return v
}

// writeParams builds the query string for the write path. A supplied
// precision is sent as the separate "precision" parameter; the base
// "epoch" stays as-is.
func writeParams(cfg Config, opts WriteOptions) url.Values {
	v := baseParams(cfg)
	if opts.Precision != PrecisionNone {
		v.Set("precision", opts.Precision.code())
	}
	if opts.RetentionPolicy != "" {
		v.Set("rp", opts.RetentionPolicy)
	}
	return v
}

// queryParams builds the parameters for the query path. A supplied
// precision overwrites "epoch" so results are reported in that unit.
func queryParams(cfg Config, opts QueryOptions) url.Values {
	v := baseParams(cfg)
	if opts.Precision != PrecisionNone {
		v.Set("epoch", opts.Precision.code())
	}
	if opts.RetentionPolicy != "" {
		v.Set("rp", opts.RetentionPolicy)
	}
	return v
}
