package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for influx-relay.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Relay    RelayConfig    `yaml:"relay"`
	Logging  LoggingConfig  `yaml:"logging"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Pools    PoolsConfig    `yaml:"pools"`
}

// RelayConfig contains relay identity and subscription settings.
type RelayConfig struct {
	// Application is the calling-application identity used for pool routing.
	Application string `yaml:"application"`

	// Topics are the MQTT topic patterns carrying metric samples.
	Topics []string `yaml:"topics"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB connection options. Empty fields fall
// back to the client library defaults (http, localhost, 8086, root/root).
type InfluxDBConfig struct {
	Scheme   string `yaml:"scheme"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	SubPath  string `yaml:"sub_path"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// PoolsConfig contains worker pool settings: one default pool plus
// optional dedicated pools keyed by database name.
type PoolsConfig struct {
	// DispatchTimeout is how long an async write waits for available
	// workers, in seconds.
	DispatchTimeout int `yaml:"dispatch_timeout"`

	Default   PoolSettings            `yaml:"default"`
	Databases map[string]PoolSettings `yaml:"databases"`
}

// PoolSettings configures a single worker pool. Zero values use the
// client library defaults.
type PoolSettings struct {
	Workers       int `yaml:"workers"`
	QueueSize     int `yaml:"queue_size"`
	BatchSize     int `yaml:"batch_size"`
	FlushInterval int `yaml:"flush_interval"` // seconds
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: INFLUXRELAY_SECTION_KEY
// For example: INFLUXRELAY_MQTT_HOST, INFLUXRELAY_INFLUXDB_PASSWORD
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Relay: RelayConfig{
			Application: "influx_relay",
			Topics:      []string{"metrics/#"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "influx-relay",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Pools: PoolsConfig{
			DispatchTimeout: 5,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: INFLUXRELAY_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// MQTT
	if v := os.Getenv("INFLUXRELAY_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("INFLUXRELAY_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("INFLUXRELAY_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("INFLUXRELAY_INFLUXDB_HOST"); v != "" {
		cfg.InfluxDB.Host = v
	}
	if v := os.Getenv("INFLUXRELAY_INFLUXDB_USERNAME"); v != "" {
		cfg.InfluxDB.Username = v
	}
	if v := os.Getenv("INFLUXRELAY_INFLUXDB_PASSWORD"); v != "" {
		cfg.InfluxDB.Password = v
	}

	// Logging
	if v := os.Getenv("INFLUXRELAY_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Relay validation
	if c.Relay.Application == "" {
		errs = append(errs, "relay.application is required")
	}
	if len(c.Relay.Topics) == 0 {
		errs = append(errs, "relay.topics must list at least one topic")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}

	// InfluxDB validation (0 means "use the library default")
	if c.InfluxDB.Port < 0 || c.InfluxDB.Port > 65535 {
		errs = append(errs, "influxdb.port must be between 1 and 65535")
	}

	// Pools validation
	if c.Pools.DispatchTimeout < 0 {
		errs = append(errs, "pools.dispatch_timeout must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetDispatchTimeout returns the async dispatch timeout as a Duration.
func (c *Config) GetDispatchTimeout() time.Duration {
	return time.Duration(c.Pools.DispatchTimeout) * time.Second
}

// GetFlushInterval returns the pool's flush interval as a Duration.
func (p PoolSettings) GetFlushInterval() time.Duration {
	return time.Duration(p.FlushInterval) * time.Second
}
