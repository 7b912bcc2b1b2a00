package ann

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// maxString bounds decoded strings in index streams.
const maxString = 1 << 12

// Encoder writes little-endian primitives and keeps the first error, so
// builders can emit a payload without checking every call.
type Encoder struct {
	w   io.Writer
	buf [8]byte
	err error
}

// NewEncoder wraps w.
func NewEncoder(w io.Writer) *Encoder { return &Encoder{w: w} }

func (e *Encoder) write(p []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(p)
}

// Uint32 writes v.
func (e *Encoder) Uint32(v uint32) {
	binary.LittleEndian.PutUint32(e.buf[:4], v)
	e.write(e.buf[:4])
}

// Uint64 writes v.
func (e *Encoder) Uint64(v uint64) {
	binary.LittleEndian.PutUint64(e.buf[:8], v)
	e.write(e.buf[:8])
}

// Float32 writes v.
func (e *Encoder) Float32(v float32) { e.Uint32(math.Float32bits(v)) }

// String writes a uint32 length followed by the bytes of s.
func (e *Encoder) String(s string) {
	e.Uint32(uint32(len(s)))
	e.write([]byte(s))
}

// Err returns the first write error.
func (e *Encoder) Err() error { return e.err }

// Decoder reads what Encoder writes. It never reads past the last requested
// value and keeps the first error.
type Decoder struct {
	r   io.Reader
	buf [8]byte
	err error
}

// NewDecoder wraps r.
func NewDecoder(r io.Reader) *Decoder { return &Decoder{r: r} }

func (d *Decoder) read(p []byte) bool {
	if d.err != nil {
		return false
	}
	if _, err := io.ReadFull(d.r, p); err != nil {
		d.err = fmt.Errorf("%w: %v", ErrCorruptIndex, err)
		return false
	}
	return true
}

// Uint32 reads a uint32.
func (d *Decoder) Uint32() uint32 {
	if !d.read(d.buf[:4]) {
		return 0
	}
	return binary.LittleEndian.Uint32(d.buf[:4])
}

// Uint64 reads a uint64.
func (d *Decoder) Uint64() uint64 {
	if !d.read(d.buf[:8]) {
		return 0
	}
	return binary.LittleEndian.Uint64(d.buf[:8])
}

// Float32 reads a float32.
func (d *Decoder) Float32() float32 { return math.Float32frombits(d.Uint32()) }

// String reads a length-prefixed string.
func (d *Decoder) String() string {
	n := d.Uint32()
	if d.err != nil {
		return ""
	}
	if n > maxString {
		d.err = fmt.Errorf("%w: string length %d", ErrCorruptIndex, n)
		return ""
	}
	b := make([]byte, n)
	if !d.read(b) {
		return ""
	}
	return string(b)
}

// Fail records err unless an earlier error is already kept.
func (d *Decoder) Fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

// Err returns the first read error.
func (d *Decoder) Err() error { return d.err }
