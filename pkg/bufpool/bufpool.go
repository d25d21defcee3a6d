// Package bufpool provides a tiered buffer pool for frame bodies.
//
// The native transport reads one request body per frame; pooling those
// buffers keeps a busy node from churning short-lived allocations. Three
// size tiers cover the traffic shape:
//   - Small buffers (default 4KB): handshake frames and typical statements
//   - Medium buffers (default 64KB): statements carrying larger values
//   - Large buffers (default 1MB): values near the frame size limit
//
// Requests above the large tier are allocated directly and never pooled,
// so an occasional huge frame does not pin its buffer in memory.
//
// All operations are safe for concurrent use; the tiers are built on
// sync.Pool.
//
// Usage:
//
//	buf := bufpool.Get(size)
//	defer bufpool.Put(buf)
package bufpool

import (
	"sync"
)

// Default size classes. NewPool accepts overrides.
const (
	// DefaultSmallSize covers handshake frames and most statements (4KB)
	DefaultSmallSize = 4 << 10

	// DefaultMediumSize covers statements with larger values (64KB)
	DefaultMediumSize = 64 << 10

	// DefaultLargeSize covers values near the frame size limit (1MB)
	DefaultLargeSize = 1 << 20
)

// tier is one size class backed by its own sync.Pool. The pool stores
// *[]byte so the slice header itself is not boxed on every round trip.
type tier struct {
	size int
	pool sync.Pool
}

func newTier(size int) *tier {
	t := &tier{size: size}
	t.pool.New = func() any {
		buf := make([]byte, size)
		return &buf
	}
	return t
}

func (t *tier) get(size int) []byte {
	buf := *t.pool.Get().(*[]byte)
	return buf[:size]
}

func (t *tier) put(buf []byte) {
	full := buf[:t.size]
	t.pool.Put(&full)
}

// Pool hands out byte slices from tiered size classes. Get selects the
// smallest tier that fits and falls back to direct allocation above the
// largest one.
type Pool struct {
	tiers [3]*tier // ascending by size
}

// Config holds size class overrides for a custom pool. Zero fields keep
// their defaults.
type Config struct {
	SmallSize  int
	MediumSize int
	LargeSize  int
}

// NewPool creates a buffer pool. A nil config uses the default size classes.
func NewPool(cfg *Config) *Pool {
	sizes := [3]int{DefaultSmallSize, DefaultMediumSize, DefaultLargeSize}
	if cfg != nil {
		for i, override := range [3]int{cfg.SmallSize, cfg.MediumSize, cfg.LargeSize} {
			if override > 0 {
				sizes[i] = override
			}
		}
	}

	p := &Pool{}
	for i, size := range sizes {
		p.tiers[i] = newTier(size)
	}
	return p
}

// Get returns a byte slice with length size. The backing array may be
// larger to align with a pool size class; sizes above the large tier are
// allocated directly and will not be pooled.
//
// The caller must hand the buffer back with Put when finished; buffers that
// never return simply fall to the garbage collector.
func (p *Pool) Get(size int) []byte {
	for _, t := range p.tiers {
		if size <= t.size {
			return t.get(size)
		}
	}
	return make([]byte, size)
}

// Put returns a buffer to the pool for reuse. The buffer must have come
// from Get and must not be used afterwards. Buffers whose capacity matches
// no size class are left to the garbage collector.
func (p *Pool) Put(buf []byte) {
	if buf == nil {
		return
	}
	// The tier is recovered from the capacity Get sliced down.
	for _, t := range p.tiers {
		if cap(buf) == t.size {
			t.put(buf)
			return
		}
	}
}

// globalPool serves the package-level Get/Put used by the transport.
var globalPool = NewPool(nil)

// Get returns a byte slice of the requested size from the global pool.
func Get(size int) []byte {
	return globalPool.Get(size)
}

// Put returns a buffer to the global pool.
func Put(buf []byte) {
	globalPool.Put(buf)
}

// GetUint32 is a convenience wrapper for the frame length field, which is
// carried on the wire as a uint32.
func GetUint32(size uint32) []byte {
	return globalPool.Get(int(size))
}
