package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/colonnadedb/colonnade/pkg/protocol/native"
)

// configTemplate is the annotated configuration file written by init.
//
// Duration and size fields are shown commented out with their defaults;
// ApplyDefaults fills them in at load time. The JWT secret placeholder is
// filled with a freshly generated value.
const configTemplate = `# Colonnade Configuration File
#
# This file configures the colonnade daemon. All values can be overridden
# with COLONNADE_* environment variables, for example:
#   COLONNADE_LOGGING_LEVEL=DEBUG
#   COLONNADE_SERVER_PORT=9052

# Logging configuration
logging:
  level: INFO          # DEBUG, INFO, WARN, ERROR
  format: text         # text, json
  output: stdout       # stdout, stderr, or a file path

# Maximum time to wait for graceful shutdown (default: 30s)
# shutdown_timeout: 30s

# Cluster name reported by SELECT queries on system.local and the admin API
cluster_name: Test Cluster

# Native transport (binary protocol)
server:
  port: %d
  # bind_address: 127.0.0.1    # empty binds all interfaces
  # max_connections: 0         # 0 = unlimited
  # max_in_flight: 0           # 0 = unlimited concurrent queries
  # max_frame_size: 16Mi       # largest accepted frame body
  # idle_timeout: 10m          # 0 disables the idle deadline
  # read_request_timeout: 5s   # reads exceeding this answer ReadTimeout
  # write_request_timeout: 2s  # writes exceeding this answer WriteTimeout

# Storage engine
storage:
  engine: memory       # memory, badger
  # path: /var/lib/colonnade/data   # required for the badger engine

# Authentication for the native transport.
# The same credential protects the admin API login endpoint.
auth:
  enabled: false
  username: colonnade
  # password_hash is set by 'colonnade config set-password'

# Admin HTTP API
admin:
  port: 8080
  # read_timeout: 10s
  # write_timeout: 10s
  # idle_timeout: 60s
  jwt:
    # Signing key for admin API tokens, generated during init.
    # Can be overridden with the COLONNADE_ADMIN_SECRET environment variable.
    secret: "%s"
    # access_token_duration: 15m
    # refresh_token_duration: 168h

# Prometheus metrics endpoint
metrics:
  enabled: false
  # port: 9090

# OpenTelemetry distributed tracing
telemetry:
  enabled: false
  # endpoint: localhost:4317
  # insecure: true
  # sample_rate: 1.0
`

// InitConfig creates a new configuration file at the default location.
//
// The generated file is an annotated template with a freshly generated JWT
// secret. Returns the path of the created file.
//
// Parameters:
//   - force: Overwrite an existing configuration file
//
// Returns an error containing "already exists" if the file exists and force
// is false.
func InitConfig(force bool) (string, error) {
	configPath := GetDefaultConfigPath()

	if err := InitConfigToPath(configPath, force); err != nil {
		return "", err
	}

	return configPath, nil
}

// InitConfigToPath creates a new configuration file at the specified path.
//
// Parent directories are created as needed. The file is written with 0600
// permissions because it contains the JWT signing secret.
func InitConfigToPath(path string, force bool) error {
	// Refuse to overwrite unless forced
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}

	// Create parent directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	secret, err := generateJWTSecret()
	if err != nil {
		return fmt.Errorf("failed to generate JWT secret: %w", err)
	}

	content := fmt.Sprintf(configTemplate, native.DefaultPort, secret)

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// generateJWTSecret creates a cryptographically random secret for JWT signing.
// 32 random bytes encode to a 43-character base64url string.
func generateJWTSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
