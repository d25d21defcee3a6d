package native

import "testing"

func TestOpcodeName(t *testing.T) {
	tests := []struct {
		op   Opcode
		want string
	}{
		{op: OpError, want: "ERROR"},
		{op: OpStartup, want: "STARTUP"},
		{op: OpReady, want: "READY"},
		{op: OpAuthenticate, want: "AUTHENTICATE"},
		{op: OpOptions, want: "OPTIONS"},
		{op: OpSupported, want: "SUPPORTED"},
		{op: OpQuery, want: "QUERY"},
		{op: OpResult, want: "RESULT"},
		{op: OpAuthResponse, want: "AUTH_RESPONSE"},
		{op: OpAuthSuccess, want: "AUTH_SUCCESS"},
		{op: Opcode(0x04), want: "UNKNOWN(0x04)"},
		{op: Opcode(0xFF), want: "UNKNOWN(0xFF)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := OpcodeName(tt.op); got != tt.want {
				t.Errorf("OpcodeName(0x%02X) = %q, want %q", byte(tt.op), got, tt.want)
			}
			if got := tt.op.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOpcodeIsRequest(t *testing.T) {
	requests := []Opcode{OpStartup, OpOptions, OpQuery, OpAuthResponse}
	responses := []Opcode{OpError, OpReady, OpAuthenticate, OpSupported, OpResult, OpAuthSuccess}

	for _, op := range requests {
		if !op.IsRequest() {
			t.Errorf("IsRequest(%v) = false, want true", op)
		}
	}
	for _, op := range responses {
		if op.IsRequest() {
			t.Errorf("IsRequest(%v) = true, want false", op)
		}
	}
}
