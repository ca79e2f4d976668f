// influx-relay bridges MQTT metric samples into InfluxDB.
//
// It subscribes to the configured topics, decodes JSON samples and
// dispatches them through batched worker pools. Configuration comes from
// a YAML file (default configs/config.yaml, override with -config or the
// INFLUXRELAY_CONFIG environment variable).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/greyorange-labs/go-influxdb/influx"
	"github.com/greyorange-labs/go-influxdb/internal/infrastructure/config"
	"github.com/greyorange-labs/go-influxdb/internal/infrastructure/logging"
	"github.com/greyorange-labs/go-influxdb/internal/infrastructure/mqtt"
	"github.com/greyorange-labs/go-influxdb/internal/relay"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "influx-relay: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Bootstrap logger until config is loaded.
	log := logging.Default()

	cfg, err := config.Load(getConfigPath(*configPath))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("starting influx-relay",
		"version", version,
		"application", cfg.Relay.Application,
		"topics", cfg.Relay.Topics,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	transport := influx.NewHTTPTransport()
	registry := buildRegistry(cfg, transport, log)
	registry.Start()
	defer registry.Close()

	broker, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT broker: %w", err)
	}
	broker.SetLogger(log.With("component", "mqtt"))
	log.Info("connected to MQTT broker",
		"host", cfg.MQTT.Broker.Host,
		"port", cfg.MQTT.Broker.Port,
	)

	r := relay.New(cfg, broker, registry, log.With("component", "relay"))
	if err := r.Start(); err != nil {
		broker.Close()
		return fmt.Errorf("starting relay: %w", err)
	}

	<-ctx.Done()
	log.Info("shutting down")

	// Close the broker first so no new samples arrive, then close the
	// registry so queued batches flush through a final merge.
	if err := broker.Close(); err != nil {
		log.Warn("closing MQTT broker", "error", err)
	}
	if err := registry.Close(); err != nil {
		log.Warn("closing worker pools", "error", err)
	}

	stats := r.Stats()
	log.Info("stopped",
		"received", stats.Received,
		"relayed", stats.Relayed,
		"dropped", stats.Dropped,
	)
	return nil
}

// buildRegistry wires the default worker pool plus one dedicated pool
// per configured database, all sharing one batch writer over the given
// transport.
func buildRegistry(cfg *config.Config, transport influx.Transport, log *logging.Logger) *influx.Registry {
	merge := influx.NewBatchWriter(transport)

	registry := influx.NewRegistry(cfg.Relay.Application, influx.NewPool(influx.PoolConfig{
		Workers:       cfg.Pools.Default.Workers,
		QueueSize:     cfg.Pools.Default.QueueSize,
		BatchSize:     cfg.Pools.Default.BatchSize,
		FlushInterval: cfg.Pools.Default.GetFlushInterval(),
	}, merge))

	for database, settings := range cfg.Pools.Databases {
		registry.Register(database, influx.NewPool(influx.PoolConfig{
			Name:          influx.PoolName(cfg.Relay.Application, database),
			Workers:       settings.Workers,
			QueueSize:     settings.QueueSize,
			BatchSize:     settings.BatchSize,
			FlushInterval: settings.GetFlushInterval(),
		}, merge))
	}

	registry.SetOnError(func(err error) {
		log.Error("batch write failed", "error", err)
	})

	return registry
}

// getConfigPath resolves the config file location: the -config flag wins,
// then INFLUXRELAY_CONFIG, then the default path.
func getConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("INFLUXRELAY_CONFIG"); env != "" {
		return env
	}
	return "configs/config.yaml"
}
