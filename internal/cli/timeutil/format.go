// Package timeutil renders server-reported times for CLI display.
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// localLayout lays timestamps out in the reader's timezone.
const localLayout = "Mon Jan 2 15:04:05 2006"

// FormatUptime renders a Go duration string ("72h30m15s", as reported by the
// admin API) at day granularity: "3d 0h 30m 15s". Input that does not parse
// is returned unchanged.
func FormatUptime(uptime string) string {
	d, err := time.ParseDuration(uptime)
	if err != nil {
		return uptime
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var b strings.Builder
	if days > 0 {
		fmt.Fprintf(&b, "%dd ", days)
	}
	if days > 0 || hours > 0 {
		fmt.Fprintf(&b, "%dh ", hours)
	}
	if days > 0 || hours > 0 || minutes > 0 {
		fmt.Fprintf(&b, "%dm ", minutes)
	}
	fmt.Fprintf(&b, "%ds", seconds)
	return b.String()
}

// FormatTime converts an RFC3339 timestamp to local time for display. Input
// that does not parse is returned unchanged.
func FormatTime(timestamp string) string {
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return timestamp
	}
	return t.Local().Format(localLayout)
}
