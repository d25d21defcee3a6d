package admin

import (
	"os"
	"time"

	"github.com/colonnadedb/colonnade/internal/logger"
)

// EnvAdminSecret names the environment variable holding the admin API's JWT
// signing secret. It takes precedence over the config file value.
const EnvAdminSecret = "COLONNADE_ADMIN_SECRET"

// Config configures the admin HTTP server: health checks, node lifecycle
// operations, and table management on a port separate from the native
// transport.
type Config struct {
	// Port is the HTTP port for the admin endpoints. Default 8080.
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`

	// HTTP server timeouts. Zero means the default below; the read timeout
	// covers the whole request including the body, and the idle timeout
	// bounds keep-alive waits.
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`

	// JWT configures bearer-token auth for the protected endpoints.
	JWT JWTConfig `mapstructure:"jwt" yaml:"jwt"`
}

// JWTConfig configures token issuance for the admin API.
type JWTConfig struct {
	// Secret is the HMAC signing key, at least 32 characters. The
	// COLONNADE_ADMIN_SECRET environment variable overrides it.
	Secret string `mapstructure:"secret" yaml:"secret"`

	// Token lifetimes. Defaults: 15m access, 168h refresh.
	AccessTokenDuration  time.Duration `mapstructure:"access_token_duration" yaml:"access_token_duration"`
	RefreshTokenDuration time.Duration `mapstructure:"refresh_token_duration" yaml:"refresh_token_duration"`
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	c.ReadTimeout = orDuration(c.ReadTimeout, 10*time.Second)
	c.WriteTimeout = orDuration(c.WriteTimeout, 10*time.Second)
	c.IdleTimeout = orDuration(c.IdleTimeout, 60*time.Second)
	c.JWT.AccessTokenDuration = orDuration(c.JWT.AccessTokenDuration, 15*time.Minute)
	c.JWT.RefreshTokenDuration = orDuration(c.JWT.RefreshTokenDuration, 7*24*time.Hour)
}

func orDuration(d, fallback time.Duration) time.Duration {
	if d == 0 {
		return fallback
	}
	return d
}

// GetJWTSecret resolves the signing secret, preferring the environment
// variable over the config file. Returns "" when neither is set.
func (c *Config) GetJWTSecret() string {
	secret := c.JWT.Secret
	if env := os.Getenv(EnvAdminSecret); env != "" {
		if secret != "" && secret != env {
			logger.Warn("JWT secret from environment variable overrides config file value",
				"env_var", EnvAdminSecret)
		}
		secret = env
	}
	return secret
}

// HasJWTSecret reports whether a signing secret is configured at all.
func (c *Config) HasJWTSecret() bool {
	return c.GetJWTSecret() != ""
}
