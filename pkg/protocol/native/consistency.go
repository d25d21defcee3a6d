package native

import (
	"fmt"
	"strings"
)

// ============================================================================
// Consistency Levels
// ============================================================================

// Consistency is the replica-agreement level requested for a QUERY, carried
// on the wire as a [short]. A single node accepts and records the level but
// coordinates no replicas; the full range is kept so clients written against
// a future multi-node deployment speak the same protocol.
type Consistency uint16

const (
	ConsistencyAny         Consistency = 0x00
	ConsistencyOne         Consistency = 0x01
	ConsistencyTwo         Consistency = 0x02
	ConsistencyThree       Consistency = 0x03
	ConsistencyQuorum      Consistency = 0x04
	ConsistencyAll         Consistency = 0x05
	ConsistencyLocalQuorum Consistency = 0x06
	ConsistencyEachQuorum  Consistency = 0x07
	ConsistencyLocalOne    Consistency = 0x0A
)

// consistencyNames maps levels to their wire-canonical names. Built once,
// read-only; ParseConsistency derives its lookup from it.
var consistencyNames = map[Consistency]string{
	ConsistencyAny:         "ANY",
	ConsistencyOne:         "ONE",
	ConsistencyTwo:         "TWO",
	ConsistencyThree:       "THREE",
	ConsistencyQuorum:      "QUORUM",
	ConsistencyAll:         "ALL",
	ConsistencyLocalQuorum: "LOCAL_QUORUM",
	ConsistencyEachQuorum:  "EACH_QUORUM",
	ConsistencyLocalOne:    "LOCAL_ONE",
}

func (c Consistency) String() string {
	if name, ok := consistencyNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Consistency(0x%04X)", uint16(c))
}

// Valid reports whether c is an assigned consistency level.
func (c Consistency) Valid() bool {
	_, ok := consistencyNames[c]
	return ok
}

// ParseConsistency resolves a case-insensitive level name ("QUORUM",
// "local_one", ...) to its Consistency value.
func ParseConsistency(name string) (Consistency, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for c, n := range consistencyNames {
		if n == upper {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown consistency level %q", name)
}
