package vector

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// maxDim bounds a decoded vector dimension so corrupt input cannot trigger
// huge allocations.
const maxDim = 1 << 20

// ErrDimensionMismatch reports vectors of different dimensions in one collection.
var ErrDimensionMismatch = errors.New("vector: dimension mismatch")

// Elements is the ordered collection of vectors pushed into one index. The
// position of a vector is its element id. Elements is not safe for concurrent
// mutation; the registry serializes access per index.
type Elements struct {
	items []Vector
	mags  []float32
}

// NewElements returns an empty collection.
func NewElements() *Elements { return &Elements{} }

// Push appends v and returns the element count after the push.
func (e *Elements) Push(v Vector) int {
	e.items = append(e.items, v)
	e.mags = append(e.mags, v.Magnitude())
	return len(e.items)
}

// Len returns the number of elements.
func (e *Elements) Len() int { return len(e.items) }

// At returns the element with the given id.
func (e *Elements) At(id int) Vector { return e.items[id] }

// Magnitude returns the cached L2 norm of the element with the given id.
func (e *Elements) Magnitude(id int) float32 { return e.mags[id] }

// CheckDim verifies that the first n elements share one dimension and
// returns it.
func (e *Elements) CheckDim(n int) (int, error) {
	if n > len(e.items) {
		n = len(e.items)
	}
	if n == 0 {
		return 0, nil
	}
	dim := len(e.items[0])
	for i := 1; i < n; i++ {
		if len(e.items[i]) != dim {
			return 0, fmt.Errorf("%w: element %d has %d values, element 0 has %d", ErrDimensionMismatch, i, len(e.items[i]), dim)
		}
	}
	return dim, nil
}

// WriteTo stores: count(uint64), then for each element dim(uint32) followed
// by dim little-endian float32 values.
func (e *Elements) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(e.items)))
	n, err := bw.Write(buf[:8])
	written += int64(n)
	if err != nil {
		return written, err
	}
	for _, v := range e.items {
		binary.LittleEndian.PutUint32(buf[:4], uint32(len(v)))
		n, err = bw.Write(buf[:4])
		written += int64(n)
		if err != nil {
			return written, err
		}
		for _, x := range v {
			binary.LittleEndian.PutUint32(buf[:4], math.Float32bits(x))
			n, err = bw.Write(buf[:4])
			written += int64(n)
			if err != nil {
				return written, err
			}
		}
	}
	return written, bw.Flush()
}

// ReadElements decodes a collection written by WriteTo. It reads exactly the
// bytes of the collection and nothing past it.
func ReadElements(r io.Reader) (*Elements, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:8]); err != nil {
		return nil, fmt.Errorf("vector: read element count: %w", err)
	}
	count := binary.LittleEndian.Uint64(buf[:8])
	if count > math.MaxInt32 {
		return nil, fmt.Errorf("vector: element count %d out of range", count)
	}
	e := &Elements{
		items: make([]Vector, 0, min(int(count), 1<<16)),
		mags:  make([]float32, 0, min(int(count), 1<<16)),
	}
	for i := uint64(0); i < count; i++ {
		if _, err := io.ReadFull(r, buf[:4]); err != nil {
			return nil, fmt.Errorf("vector: read element %d: %w", i, err)
		}
		dim := binary.LittleEndian.Uint32(buf[:4])
		if dim > maxDim {
			return nil, fmt.Errorf("vector: element %d dimension %d out of range", i, dim)
		}
		raw := make([]byte, int(dim)*4)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, fmt.Errorf("vector: read element %d: %w", i, err)
		}
		v := make(Vector, dim)
		for j := range v {
			v[j] = math.Float32frombits(binary.LittleEndian.Uint32(raw[j*4:]))
		}
		e.Push(v)
	}
	return e, nil
}
