package influx_test

import (
	"errors"
	"testing"

	"github.com/greyorange-labs/go-influxdb/influx"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := influx.NewConfig(influx.Options{})
	if err != nil {
		t.Fatalf("NewConfig() error = %v", err)
	}

	if cfg.Scheme != "http" {
		t.Errorf("Scheme = %q, want %q", cfg.Scheme, "http")
	}
	if cfg.Host != "localhost" {
		t.Errorf("Host = %q, want %q", cfg.Host, "localhost")
	}
	if cfg.Port != 8086 {
		t.Errorf("Port = %d, want %d", cfg.Port, 8086)
	}
	if cfg.SubPath != "" {
		t.Errorf("SubPath = %q, want empty", cfg.SubPath)
	}
	if cfg.Username != "root" {
		t.Errorf("Username = %q, want %q", cfg.Username, "root")
	}
	if cfg.Password != "root" {
		t.Errorf("Password = %q, want %q", cfg.Password, "root")
	}
	if cfg.Database != "" {
		t.Errorf("Database = %q, want empty", cfg.Database)
	}
}

func TestNewConfig_OverridesWin(t *testing.T) {
	cfg, err := influx.NewConfig(influx.Options{
		Scheme:   "https",
		Host:     "db1",
		Port:     9096,
		SubPath:  "/influx",
		Username: "writer",
		Password: "secret",
		Database: "metrics",
	})
	if err != nil {
		t.Fatalf("NewConfig() error = %v", err)
	}

	if cfg.Scheme != "https" || cfg.Host != "db1" || cfg.Port != 9096 {
		t.Errorf("endpoint = %s://%s:%d, want https://db1:9096", cfg.Scheme, cfg.Host, cfg.Port)
	}
	if cfg.SubPath != "/influx" {
		t.Errorf("SubPath = %q, want %q", cfg.SubPath, "/influx")
	}
	if cfg.Username != "writer" || cfg.Password != "secret" {
		t.Errorf("credentials = %q/%q, want writer/secret", cfg.Username, cfg.Password)
	}
	if cfg.Database != "metrics" {
		t.Errorf("Database = %q, want %q", cfg.Database, "metrics")
	}
}

func TestNewConfig_InvalidPort(t *testing.T) {
	tests := []struct {
		name string
		port int
		ok   bool
	}{
		{"negative", -1, false},
		{"too large", 65536, false},
		{"way too large", 100000, false},
		{"minimum", 1, true},
		{"maximum", 65535, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := influx.NewConfig(influx.Options{Port: tt.port})
			if tt.ok && err != nil {
				t.Fatalf("NewConfig(port=%d) error = %v, want nil", tt.port, err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatalf("NewConfig(port=%d) error = nil, want ErrInvalidPort", tt.port)
				}
				if !errors.Is(err, influx.ErrInvalidPort) {
					t.Errorf("NewConfig(port=%d) error = %v, want ErrInvalidPort", tt.port, err)
				}
			}
		})
	}
}

func TestNewConfig_SubPathNormalised(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no leading slash", "influx", "/influx"},
		{"trailing slash stripped", "/influx/", "/influx"},
		{"both", "influx/", "/influx"},
		{"bare slash collapses to empty", "/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := influx.NewConfig(influx.Options{SubPath: tt.in})
			if err != nil {
				t.Fatalf("NewConfig() error = %v", err)
			}
			if cfg.SubPath != tt.want {
				t.Errorf("SubPath = %q, want %q", cfg.SubPath, tt.want)
			}
		})
	}
}
