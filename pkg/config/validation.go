package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the package-level validator instance.
// Validator instances cache struct metadata, so reuse is recommended.
var validate = validator.New()

// Validate checks the configuration for errors.
//
// Validation happens in two phases:
//  1. Struct tag validation (required fields, value ranges, enums)
//  2. Cross-field semantic validation (engine/path pairing, auth completeness)
//
// Returns a descriptive error if validation fails, nil otherwise.
func Validate(cfg *Config) error {
	// Phase 1: struct tag validation
	if err := validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return fmt.Errorf("invalid configuration: %w", validationErrors)
		}
		return fmt.Errorf("configuration validation error: %w", err)
	}

	// Phase 2: cross-field semantic validation
	if err := validateTelemetry(&cfg.Telemetry); err != nil {
		return err
	}
	if err := validateStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := validateAuth(&cfg.Auth); err != nil {
		return err
	}

	return nil
}

// validateTelemetry checks telemetry configuration consistency.
func validateTelemetry(cfg *TelemetryConfig) error {
	if cfg.Enabled && cfg.Endpoint == "" {
		return errors.New("telemetry is enabled but no endpoint is configured")
	}
	if cfg.Profiling.Enabled && cfg.Profiling.Endpoint == "" {
		return errors.New("profiling is enabled but no endpoint is configured")
	}
	return nil
}

// validateStorage checks storage engine configuration consistency.
func validateStorage(cfg *StorageConfig) error {
	// The badger engine persists to disk and needs a data directory.
	// The memory engine ignores the path.
	if cfg.Engine == "badger" && cfg.Path == "" {
		return errors.New("storage engine 'badger' requires a data path (set storage.path)")
	}
	return nil
}

// validateAuth checks authentication configuration consistency.
func validateAuth(cfg *AuthConfig) error {
	// Enabling native transport auth without a credential would lock out
	// every client, including colsh.
	if cfg.Enabled && cfg.PasswordHash == "" {
		return errors.New("auth is enabled but no password_hash is configured (run 'colonnade config set-password')")
	}
	return nil
}
