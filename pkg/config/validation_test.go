package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string // substring of the expected error; "" means valid
	}{
		{"defaults pass", func(c *Config) {}, ""},
		{"invalid log level", func(c *Config) { c.Logging.Level = "INVALID" }, "oneof"},
		{"invalid log format", func(c *Config) { c.Logging.Format = "xml" }, "oneof"},
		{"port above range", func(c *Config) { c.Server.Port = 70000 }, "max"},
		{"negative port", func(c *Config) { c.Server.Port = -1 }, "min"},
		{"unknown storage engine", func(c *Config) { c.Storage.Engine = "rocksdb" }, "oneof"},
		{"badger without path", func(c *Config) {
			c.Storage.Engine = "badger"
			c.Storage.Path = ""
		}, "data path"},
		{"auth without password hash", func(c *Config) {
			c.Auth.Enabled = true
			c.Auth.PasswordHash = ""
		}, "password_hash"},
		{"telemetry without endpoint", func(c *Config) {
			c.Telemetry.Enabled = true
			c.Telemetry.Endpoint = ""
		}, "endpoint"},
		{"sample rate above one", func(c *Config) {
			c.Telemetry.Enabled = true
			c.Telemetry.Endpoint = "localhost:4317"
			c.Telemetry.SampleRate = 1.5
		}, "lte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

// Validation accepts levels in either case and must not rewrite them; the
// uppercasing happens in ApplyDefaults.
func TestValidateLogLevelCase(t *testing.T) {
	for _, level := range []string{"info", "INFO", "debug", "DEBUG", "warn", "WARN", "error", "ERROR"} {
		cfg := GetDefaultConfig()
		cfg.Logging.Level = level

		if err := Validate(cfg); err != nil {
			t.Errorf("Validate rejected level %q: %v", level, err)
		}
		if cfg.Logging.Level != level {
			t.Errorf("Validate rewrote level %q to %q", level, cfg.Logging.Level)
		}
	}

	cfg := &Config{Logging: LoggingConfig{Level: "info"}}
	ApplyDefaults(cfg)
	if cfg.Logging.Level != "INFO" {
		t.Errorf("ApplyDefaults normalized 'info' to %q, want INFO", cfg.Logging.Level)
	}
}
