// Package health mirrors the admin API health payload for CLI consumers.
package health

// Response is the envelope served by GET /healthz on the admin API. The
// `colonnade status` command decodes into it to report liveness and uptime.
type Response struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Data      struct {
		Service   string `json:"service"`
		StartedAt string `json:"started_at"`
		Uptime    string `json:"uptime"`
		UptimeSec int64  `json:"uptime_sec"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}
