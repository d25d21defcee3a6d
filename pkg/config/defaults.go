package config

import (
	"strings"
	"time"

	"github.com/colonnadedb/colonnade/pkg/protocol/native"
)

// ApplyDefaults fills zero-valued fields in cfg with their defaults and
// normalizes the log level to uppercase. Explicit values are preserved.
// Load calls this after unmarshalling; callers constructing a Config by
// hand should apply it themselves before Validate.
func ApplyDefaults(cfg *Config) {
	l := &cfg.Logging
	l.Level = strings.ToUpper(orString(l.Level, "INFO"))
	l.Format = orString(l.Format, "text")
	l.Output = orString(l.Output, "stdout")

	t := &cfg.Telemetry
	t.Endpoint = orString(t.Endpoint, "localhost:4317")
	if t.SampleRate == 0 {
		t.SampleRate = 1.0
	}
	t.Profiling.Endpoint = orString(t.Profiling.Endpoint, "http://localhost:4040")
	if len(t.Profiling.ProfileTypes) == 0 {
		t.Profiling.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}

	cfg.ShutdownTimeout = orDuration(cfg.ShutdownTimeout, 30*time.Second)
	cfg.ClusterName = orString(cfg.ClusterName, "Test Cluster")

	s := &cfg.Server
	if s.Port == 0 {
		s.Port = native.DefaultPort
	}
	s.ReadRequestTimeout = orDuration(s.ReadRequestTimeout, 5*time.Second)
	s.WriteRequestTimeout = orDuration(s.WriteRequestTimeout, 2*time.Second)
	// BindAddress, MaxConnections, MaxInFlight and MaxFrameSize keep their
	// zero values: all interfaces, unlimited, and the protocol frame cap.

	// The memory engine needs no filesystem setup, so a freshly initialized
	// node starts without configuring storage. Path stays empty: the badger
	// engine requires it explicitly.
	cfg.Storage.Engine = orString(cfg.Storage.Engine, "memory")

	// PasswordHash has no default; init or set-password fills it in.
	cfg.Auth.Username = orString(cfg.Auth.Username, "colonnade")

	if cfg.Metrics.Enabled && cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}

	cfg.Admin.ApplyDefaults()
}

func orString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func orDuration(d, fallback time.Duration) time.Duration {
	if d == 0 {
		return fallback
	}
	return d
}

// GetDefaultConfig returns a Config with every default applied. Used for
// sample config generation and in tests.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
