package native

import "fmt"

// ============================================================================
// Opcodes
// ============================================================================

// Opcode identifies the message kind carried in a frame body.
type Opcode byte

const (
	OpError        Opcode = 0x00
	OpStartup      Opcode = 0x01
	OpReady        Opcode = 0x02
	OpAuthenticate Opcode = 0x03
	OpOptions      Opcode = 0x05
	OpSupported    Opcode = 0x06
	OpQuery        Opcode = 0x07
	OpResult       Opcode = 0x08
	OpAuthResponse Opcode = 0x0F
	OpAuthSuccess  Opcode = 0x10
)

// OpcodeName returns the wire-canonical name of an opcode, or "UNKNOWN(0xNN)"
// for an unassigned value.
func OpcodeName(op Opcode) string {
	switch op {
	case OpError:
		return "ERROR"
	case OpStartup:
		return "STARTUP"
	case OpReady:
		return "READY"
	case OpAuthenticate:
		return "AUTHENTICATE"
	case OpOptions:
		return "OPTIONS"
	case OpSupported:
		return "SUPPORTED"
	case OpQuery:
		return "QUERY"
	case OpResult:
		return "RESULT"
	case OpAuthResponse:
		return "AUTH_RESPONSE"
	case OpAuthSuccess:
		return "AUTH_SUCCESS"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))
	}
}

func (op Opcode) String() string {
	return OpcodeName(op)
}

// IsRequest reports whether the opcode is one a client may send. The
// remaining opcodes only appear in server responses.
func (op Opcode) IsRequest() bool {
	switch op {
	case OpStartup, OpOptions, OpQuery, OpAuthResponse:
		return true
	default:
		return false
	}
}
