// Package bytesize parses human-readable byte quantities used in
// configuration, such as the server's max_frame_size.
package bytesize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ByteSize is a byte count decoded from strings like "16Mi", "100MB", or a
// plain number. Binary suffixes (Ki, Mi, Gi, Ti) scale by 1024 and decimal
// suffixes (K, M, G, T) by 1000; a trailing B is accepted on either form.
type ByteSize uint64

const (
	B ByteSize = 1

	KB ByteSize = 1000
	MB ByteSize = 1000 * KB
	GB ByteSize = 1000 * MB
	TB ByteSize = 1000 * GB

	KiB ByteSize = 1024
	MiB ByteSize = 1024 * KiB
	GiB ByteSize = 1024 * MiB
	TiB ByteSize = 1024 * GiB
)

// sizePattern captures the numeric part and an optional unit suffix.
var sizePattern = regexp.MustCompile(`(?i)^\s*(\d+(?:\.\d+)?)\s*([a-z]*)\s*$`)

// units is keyed by the lowercased suffix with any trailing "b" removed, so
// one entry serves "Ki", "KiB", "ki" and "kib" alike.
var units = map[string]ByteSize{
	"":   B,
	"k":  KB,
	"m":  MB,
	"g":  GB,
	"t":  TB,
	"ki": KiB,
	"mi": MiB,
	"gi": GiB,
	"ti": TiB,
}

// Parse converts a byte size string to its value. Fractional quantities are
// allowed, so "1.5Gi" is 1536 mebibytes.
func Parse(s string) (ByteSize, error) {
	if strings.TrimSpace(s) == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid byte size %q", s)
	}
	suffix := strings.TrimSuffix(strings.ToLower(matches[2]), "b")
	unit, ok := units[suffix]
	if !ok {
		return 0, fmt.Errorf("unknown byte size unit %q", matches[2])
	}

	if strings.Contains(matches[1], ".") {
		num, err := strconv.ParseFloat(matches[1], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number in byte size %q", s)
		}
		return ByteSize(num * float64(unit)), nil
	}

	num, err := strconv.ParseUint(matches[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number in byte size %q", s)
	}
	return ByteSize(num) * unit, nil
}

// UnmarshalText implements encoding.TextUnmarshaler so ByteSize fields
// decode directly from config files.
func (b *ByteSize) UnmarshalText(text []byte) error {
	size, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = size
	return nil
}

var displayUnits = []struct {
	value ByteSize
	name  string
}{
	{TiB, "TiB"},
	{GiB, "GiB"},
	{MiB, "MiB"},
	{KiB, "KiB"},
}

// String renders the size with the largest binary unit it fills.
func (b ByteSize) String() string {
	for _, u := range displayUnits {
		if b >= u.value {
			return fmt.Sprintf("%.2f%s", float64(b)/float64(u.value), u.name)
		}
	}
	return fmt.Sprintf("%dB", b)
}
