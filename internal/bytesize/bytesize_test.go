package bytesize

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ByteSize
		wantErr bool
	}{
		{"plain number", "1024", 1024, false},
		{"zero", "0", 0, false},
		{"bytes suffix", "512B", 512, false},
		{"kibibytes", "1Ki", 1024, false},
		{"mebibytes", "16Mi", 16 * MiB, false},
		{"mebibytes long form", "16MiB", 16 * MiB, false},
		{"gibibytes", "1Gi", GiB, false},
		{"tebibytes", "2Ti", 2 * TiB, false},
		{"kilobytes", "1K", 1000, false},
		{"megabytes", "100MB", 100 * MB, false},
		{"gigabytes", "1GB", GB, false},
		{"lowercase unit", "1gi", GiB, false},
		{"surrounding space", "  16Mi  ", 16 * MiB, false},
		{"space before unit", "16 Mi", 16 * MiB, false},
		{"fractional", "1.5Mi", ByteSize(1.5 * float64(MiB)), false},
		{"empty", "", 0, true},
		{"whitespace only", "   ", 0, true},
		{"unknown unit", "1Xi", 0, true},
		{"negative", "-1Gi", 0, true},
		{"unit only", "Gi", 0, true},
		{"garbage", "lots", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Parse(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestUnmarshalText(t *testing.T) {
	var b ByteSize
	if err := b.UnmarshalText([]byte("32Mi")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if b != 32*MiB {
		t.Errorf("got %d, want %d", b, 32*MiB)
	}
	if err := b.UnmarshalText([]byte("invalid")); err == nil {
		t.Error("expected error for invalid input")
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		input ByteSize
		want  string
	}{
		{512, "512B"},
		{2 * KiB, "2.00KiB"},
		{16 * MiB, "16.00MiB"},
		{GiB, "1.00GiB"},
		{ByteSize(1.5 * float64(GiB)), "1.50GiB"},
		{2 * TiB, "2.00TiB"},
	}

	for _, tt := range tests {
		if got := tt.input.String(); got != tt.want {
			t.Errorf("ByteSize(%d).String() = %q, want %q", tt.input, got, tt.want)
		}
	}
}
