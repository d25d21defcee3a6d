package telemetry

// Config controls the trace pipeline.
type Config struct {
	// Enabled turns tracing on. When false every span helper is a no-op.
	Enabled bool

	// ServiceName and ServiceVersion identify this node in the trace
	// backend.
	ServiceName    string
	ServiceVersion string

	// Endpoint is the OTLP gRPC collector address, host:port.
	Endpoint string

	// Insecure disables TLS on the collector connection.
	Insecure bool

	// SampleRate is the fraction of traces to keep, 0.0 through 1.0.
	SampleRate float64
}

// DefaultConfig returns the tracing defaults: disabled, full sampling, a
// collector on localhost.
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		ServiceName:    "colonnade",
		ServiceVersion: "dev",
		Endpoint:       "localhost:4317",
		Insecure:       true,
		SampleRate:     1.0,
	}
}
