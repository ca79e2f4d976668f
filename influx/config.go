package influx

import (
	"fmt"
	"strings"
	"time"
)

// Connection defaults applied by NewConfig for any option left unset.
const (
	defaultScheme   = "http"
	defaultHost     = "localhost"
	defaultPort     = 8086
	defaultUsername = "root"
	defaultPassword = "root"
)

// Options is the sparse set of connection options accepted by NewConfig.
// The zero value of each field means "use the default". Database has no
// default; leaving it empty targets no default database.
type Options struct {
	Scheme   string
	Host     string
	Port     int
	SubPath  string
	Username string
	Password string
	Database string
}

// Config is a complete, validated connection descriptor.
//
// It is created once by NewConfig, never mutated afterwards, and passed
// by value into every call, so it is safe to share across goroutines.
type Config struct {
	Scheme   string
	Host     string
	Port     int
	SubPath  string
	Username string
	Password string
	Database string
}

// NewConfig merges defaults into the supplied options and validates the
// result.
//
// Defaults: scheme "http", host "localhost", port 8086, empty sub-path,
// username/password "root"/"root". A supplied port must be in (0, 65536);
// anything else is a caller error reported as ErrInvalidPort.
//
// A non-empty sub-path is normalised to have a leading slash and no
// trailing slash so endpoint paths compose cleanly.
func NewConfig(opts Options) (Config, error) {
	cfg := Config{
		Scheme:   defaultScheme,
		Host:     defaultHost,
		Port:     defaultPort,
		Username: defaultUsername,
		Password: defaultPassword,
	}

	if opts.Scheme != "" {
		cfg.Scheme = opts.Scheme
	}
	if opts.Host != "" {
		cfg.Host = opts.Host
	}
	if opts.Port != 0 {
		if opts.Port < 1 || opts.Port > 65535 {
			return Config{}, fmt.Errorf("%w: got %d", ErrInvalidPort, opts.Port)
		}
		cfg.Port = opts.Port
	}
	if opts.SubPath != "" {
		cfg.SubPath = normalizeSubPath(opts.SubPath)
	}
	if opts.Username != "" {
		cfg.Username = opts.Username
	}
	if opts.Password != "" {
		cfg.Password = opts.Password
	}
	cfg.Database = opts.Database

	return cfg, nil
}

// normalizeSubPath ensures a leading slash and strips any trailing slash.
func normalizeSubPath(p string) string {
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// Precision is the time unit used to interpret and report timestamps.
// The zero value leaves the server default (nanoseconds) in effect.
type Precision int

// Supported precisions, coarsest first.
const (
	PrecisionNone Precision = iota
	PrecisionHour
	PrecisionMinute
	PrecisionSecond
	PrecisionMillisecond
	PrecisionMicrosecond
	PrecisionNanosecond
)

// code returns the fixed wire code for the precision. The names and codes
// must match the server exactly: h, m, s, ms, u, ns.
func (p Precision) code() string {
	switch p {
	case PrecisionHour:
		return "h"
	case PrecisionMinute:
		return "m"
	case PrecisionSecond:
		return "s"
	case PrecisionMillisecond:
		return "ms"
	case PrecisionMicrosecond:
		return "u"
	default:
		return "ns"
	}
}

// WriteOptions are the per-call options for Write and WriteAsync.
//
// Timeout bounds the HTTP request; zero means wait indefinitely. For
// asynchronous writes the timeout travels with the job and is applied to
// the merged batch request by the worker.
type WriteOptions struct {
	Timeout         time.Duration
	Precision       Precision
	RetentionPolicy string
}

// QueryOptions are the per-call options for Query.
type QueryOptions struct {
	Timeout         time.Duration
	Precision       Precision
	RetentionPolicy string
}
