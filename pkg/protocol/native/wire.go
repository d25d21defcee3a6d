package native

import (
	"encoding/binary"
	"fmt"
)

// Primitive body formats, all big-endian:
//
//	[int]             4-byte unsigned integer
//	[short]           2-byte unsigned integer
//	[string]          [short] length + UTF-8 bytes
//	[long string]     [int] length + UTF-8 bytes
//	[bytes]           [int] length + bytes, length 0xFFFFFFFF means null
//	[string list]     [short] count + count [string]
//	[string map]      [short] count + count ([string] key, [string] value)
//	[string multimap] [short] count + count ([string] key, [string list])
//	[consistency]     [short] holding a Consistency value
//
// Readers operate on a fully-read frame body, so every length is checked
// against the remaining buffer before use.

// nullBytes is the [bytes] length marker for a null value.
const nullBytes = 0xFFFFFFFF

type reader struct {
	buf []byte
	pos int
}

func newReader(b []byte) *reader {
	return &reader{buf: b}
}

func (r *reader) remaining() int {
	return len(r.buf) - r.pos
}

func (r *reader) read(n int) ([]byte, error) {
	if r.remaining() < n {
		return nil, fmt.Errorf("short body: need %d bytes, have %d", n, r.remaining())
	}
	start := r.pos
	r.pos += n
	return r.buf[start:r.pos], nil
}

func (r *reader) Int() (uint32, error) {
	b, err := r.read(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *reader) Short() (uint16, error) {
	b, err := r.read(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *reader) String() (string, error) {
	n, err := r.Short()
	if err != nil {
		return "", fmt.Errorf("read string length: %w", err)
	}
	b, err := r.read(int(n))
	if err != nil {
		return "", fmt.Errorf("read string body: %w", err)
	}
	return string(b), nil
}

func (r *reader) LongString() (string, error) {
	n, err := r.Int()
	if err != nil {
		return "", fmt.Errorf("read long string length: %w", err)
	}
	if int(n) > r.remaining() {
		return "", fmt.Errorf("long string length %d exceeds body", n)
	}
	b, err := r.read(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Bytes reads a [bytes] value. A null value decodes as a nil slice.
func (r *reader) Bytes() ([]byte, error) {
	n, err := r.Int()
	if err != nil {
		return nil, fmt.Errorf("read bytes length: %w", err)
	}
	if n == nullBytes {
		return nil, nil
	}
	if int(n) > r.remaining() {
		return nil, fmt.Errorf("bytes length %d exceeds body", n)
	}
	b, err := r.read(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

func (r *reader) StringList() ([]string, error) {
	n, err := r.Short()
	if err != nil {
		return nil, fmt.Errorf("read string list count: %w", err)
	}
	list := make([]string, 0, n)
	for i := 0; i < int(n); i++ {
		s, err := r.String()
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, nil
}

func (r *reader) StringMap() (map[string]string, error) {
	n, err := r.Short()
	if err != nil {
		return nil, fmt.Errorf("read string map count: %w", err)
	}
	m := make(map[string]string, n)
	for i := 0; i < int(n); i++ {
		k, err := r.String()
		if err != nil {
			return nil, err
		}
		v, err := r.String()
		if err != nil {
			return nil, err
		}
		m[k] = v
	}
	return m, nil
}

func (r *reader) StringMultimap() (map[string][]string, error) {
	n, err := r.Short()
	if err != nil {
		return nil, fmt.Errorf("read string multimap count: %w", err)
	}
	m := make(map[string][]string, n)
	for i := 0; i < int(n); i++ {
		k, err := r.String()
		if err != nil {
			return nil, err
		}
		v, err := r.StringList()
		if err != nil {
			return nil, err
		}
		m[k] = v
	}
	return m, nil
}

func (r *reader) Consistency() (Consistency, error) {
	v, err := r.Short()
	if err != nil {
		return 0, fmt.Errorf("read consistency: %w", err)
	}
	return Consistency(v), nil
}

type writer struct {
	buf []byte
}

func newWriter(capacity int) *writer {
	return &writer{buf: make([]byte, 0, capacity)}
}

func (w *writer) write(b []byte) {
	w.buf = append(w.buf, b...)
}

func (w *writer) Int(v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	w.write(tmp[:])
}

func (w *writer) Short(v uint16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	w.write(tmp[:])
}

func (w *writer) String(v string) error {
	if len(v) > 0xFFFF {
		return fmt.Errorf("string too long for [string]: %d bytes", len(v))
	}
	w.Short(uint16(len(v)))
	w.write([]byte(v))
	return nil
}

func (w *writer) LongString(v string) {
	w.Int(uint32(len(v)))
	w.write([]byte(v))
}

// Bytes writes a [bytes] value. A nil slice encodes as null; an empty
// non-nil slice encodes as zero-length bytes.
func (w *writer) Bytes(v []byte) {
	if v == nil {
		w.Int(nullBytes)
		return
	}
	w.Int(uint32(len(v)))
	w.write(v)
}

func (w *writer) StringList(v []string) error {
	if len(v) > 0xFFFF {
		return fmt.Errorf("string list too long: %d entries", len(v))
	}
	w.Short(uint16(len(v)))
	for _, s := range v {
		if err := w.String(s); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) StringMap(m map[string]string) error {
	if len(m) > 0xFFFF {
		return fmt.Errorf("string map too large: %d entries", len(m))
	}
	w.Short(uint16(len(m)))
	for k, v := range m {
		if err := w.String(k); err != nil {
			return err
		}
		if err := w.String(v); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) StringMultimap(m map[string][]string) error {
	if len(m) > 0xFFFF {
		return fmt.Errorf("string multimap too large: %d entries", len(m))
	}
	w.Short(uint16(len(m)))
	for k, v := range m {
		if err := w.String(k); err != nil {
			return err
		}
		if err := w.StringList(v); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) Consistency(c Consistency) {
	w.Short(uint16(c))
}

// Buffer returns the accumulated buffer.
func (w *writer) Buffer() []byte {
	return w.buf
}
