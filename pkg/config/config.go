package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/colonnadedb/colonnade/internal/admin"
	"github.com/colonnadedb/colonnade/internal/bytesize"
)

// Config is the full static configuration of a colonnade node: the native
// transport, the storage engine, authentication, the admin API, and the
// observability stack. Load resolves it from COLONNADE_* environment
// variables, the config file, and defaults, in that order of precedence.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// ShutdownTimeout bounds graceful shutdown. Connections still open
	// when it expires are closed hard.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// ClusterName is the human-readable cluster name reported by
	// system.local and the admin status endpoint.
	ClusterName string `mapstructure:"cluster_name" yaml:"cluster_name"`

	// Server configures the native transport.
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Storage selects and configures the storage engine.
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`

	// Auth configures authentication.
	//
	// When Enabled is true the native transport answers STARTUP with
	// AUTHENTICATE and validates credentials against Username/PasswordHash.
	// The admin API login endpoint always validates against the same
	// credentials, independent of Enabled.
	Auth AuthConfig `mapstructure:"auth" yaml:"auth"`

	Admin   admin.Config  `mapstructure:"admin" yaml:"admin"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is the minimum level to emit: DEBUG, INFO, WARN or ERROR.
	// Lowercase is accepted and normalized to uppercase.
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format is "text" or "json".
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output is "stdout", "stderr", or a file path.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry tracing. Spans are exported to an
// OTLP gRPC collector such as Jaeger or Tempo.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector host:port. Default: localhost:4317.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure skips TLS on the collector connection. On by default for
	// local development.
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate is the fraction of traces to sample, 0.0 to 1.0.
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls continuous profiling via Pyroscope.
type ProfilingConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server URL. Default: http://localhost:4040.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// ProfileTypes selects what to collect: cpu, alloc_objects, alloc_space,
	// inuse_objects, inuse_space, goroutines, mutex_count, mutex_duration,
	// block_count, block_duration.
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// ServerConfig configures the native transport.
type ServerConfig struct {
	// BindAddress is the IP address the native transport binds to.
	// Empty string binds to all interfaces.
	BindAddress string `mapstructure:"bind_address" yaml:"bind_address,omitempty"`

	// Port is the TCP port for the native transport.
	// Default: 9052
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`

	// MaxConnections limits concurrent client connections.
	// 0 means unlimited.
	MaxConnections int `mapstructure:"max_connections" yaml:"max_connections,omitempty"`

	// MaxInFlight limits queries executing concurrently across all
	// connections. Excess queries are rejected with Overloaded.
	// 0 means unlimited.
	MaxInFlight int `mapstructure:"max_in_flight" yaml:"max_in_flight,omitempty"`

	// MaxFrameSize is the largest frame body accepted from a client.
	// Supports human-readable formats: "16Mi", "1MB", or plain bytes.
	// 0 uses the protocol default (16Mi).
	MaxFrameSize bytesize.ByteSize `mapstructure:"max_frame_size" yaml:"max_frame_size,omitempty"`

	// IdleTimeout closes connections with no traffic for this duration.
	// 0 disables the idle deadline.
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout,omitempty"`

	// ReadRequestTimeout bounds the execution of read statements.
	// Reads that exceed it answer ReadTimeout. Default: 5s
	ReadRequestTimeout time.Duration `mapstructure:"read_request_timeout" yaml:"read_request_timeout"`

	// WriteRequestTimeout bounds the execution of write and DDL statements.
	// Writes that exceed it answer WriteTimeout. Default: 2s
	WriteRequestTimeout time.Duration `mapstructure:"write_request_timeout" yaml:"write_request_timeout"`
}

// StorageConfig selects and configures the storage engine.
type StorageConfig struct {
	// Engine selects the storage engine.
	// Valid values: memory, badger
	Engine string `mapstructure:"engine" validate:"required,oneof=memory badger" yaml:"engine"`

	// Path is the data directory for the badger engine.
	// Required when Engine is "badger"; ignored by the memory engine.
	Path string `mapstructure:"path" yaml:"path,omitempty"`
}

// AuthConfig holds the node's single admin identity.
//
// The password hash is a bcrypt hash; generate it with
// `colonnade config set-password`.
type AuthConfig struct {
	// Enabled controls whether the native transport requires
	// authentication. Default: false
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Username is the admin username. Default: "colonnade".
	Username string `mapstructure:"username" yaml:"username"`

	// PasswordHash is the bcrypt hash of the admin password.
	PasswordHash string `mapstructure:"password_hash" yaml:"password_hash,omitempty"`
}

// MetricsConfig configures the Prometheus metrics HTTP server. When disabled,
// nothing is collected.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port serves GET /metrics. Default: 9090.
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// Load loads configuration from file, environment, and defaults.
//
// Precedence, highest first: COLONNADE_* environment variables, the config
// file, then defaults. An empty configPath reads the default location; a
// missing file is not an error and yields the default configuration.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !found {
		return GetDefaultConfig(), nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// MustLoad is Load for commands that require a config file on disk: a
// missing file is an error with instructions, instead of silent defaults.
func MustLoad(configPath string) (*Config, error) {
	switch {
	case configPath == "" && !DefaultConfigExists():
		return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
			"Please initialize a configuration file first:\n"+
			"  colonnade init\n\n"+
			"Or specify a custom config file:\n"+
			"  colonnade <command> --config /path/to/config.yaml",
			GetDefaultConfigPath())
	case configPath == "":
		configPath = GetDefaultConfigPath()
	default:
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Please create the configuration file:\n"+
				"  colonnade init --config %s",
				configPath, configPath)
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the configuration to path as YAML, creating parent
// directories as needed.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600: the file carries password hashes and the JWT secret.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func setupViper(v *viper.Viper, configPath string) {
	// COLONNADE_LOGGING_LEVEL=DEBUG overrides logging.level, and so on.
	v.SetEnvPrefix("COLONNADE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.AddConfigPath(getConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

// readConfigFile reads the config file into v. A missing file, at the
// default location or an explicit path, reports found=false without error.
func readConfigFile(v *viper.Viper) (found bool, err error) {
	err = v.ReadInConfig()
	if err == nil {
		return true, nil
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to read config file: %w", err)
}

var (
	byteSizeType = reflect.TypeOf(bytesize.ByteSize(0))
	durationType = reflect.TypeOf(time.Duration(0))
)

// configDecodeHooks converts config values into the custom types the Config
// struct uses: "500Mi" or a plain number into bytesize.ByteSize, "30s" into
// time.Duration.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		switch to {
		case byteSizeType:
			if s, ok := data.(string); ok {
				return bytesize.Parse(s)
			}
			if n, ok := toInt64(data); ok {
				return bytesize.ByteSize(n), nil
			}
		case durationType:
			if s, ok := data.(string); ok {
				return time.ParseDuration(s)
			}
			// Raw numbers are taken as nanoseconds.
			if n, ok := toInt64(data); ok {
				return time.Duration(n), nil
			}
		}
		return data, nil
	}
}

// toInt64 widens the numeric types YAML and TOML decoders hand us. YAML in
// particular deserializes numbers as float64.
func toInt64(data interface{}) (int64, bool) {
	switch v := data.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case uint64:
		return int64(v), true
	case float64:
		return int64(v), true
	}
	return 0, false
}

// getConfigDir returns $XDG_CONFIG_HOME/colonnade, falling back to
// ~/.config/colonnade, then the current directory.
func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "colonnade")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "colonnade")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the default
// location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir exposes the config directory for the init command.
func GetConfigDir() string {
	return getConfigDir()
}
