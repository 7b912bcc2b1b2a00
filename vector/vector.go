package vector

import (
	"math"
	"unsafe"
)

// Vector is a single point to index or query. Values are never mutated after
// construction; callers that hold foreign memory must go through Copy or
// FromPointer so that the registry never aliases a caller buffer.
type Vector []float32

// Copy returns a Vector backed by its own memory.
func Copy(values []float32) Vector {
	if len(values) == 0 {
		return nil
	}
	out := make(Vector, len(values))
	copy(out, values)
	return out
}

// FromPointer copies dim float32 values starting at p. The caller guarantees
// that p addresses at least dim readable floats.
func FromPointer(p unsafe.Pointer, dim int) Vector {
	if p == nil || dim <= 0 {
		return nil
	}
	return Copy(unsafe.Slice((*float32)(p), dim))
}

// Dim returns the vector dimension.
func (v Vector) Dim() int { return len(v) }

// Magnitude returns the L2 norm.
func (v Vector) Magnitude() float32 {
	var s float64
	for _, x := range v {
		s += float64(x) * float64(x)
	}
	return float32(math.Sqrt(s))
}

// Equal reports whether both vectors hold the same values.
func (v Vector) Equal(o Vector) bool {
	if len(v) != len(o) {
		return false
	}
	for i := range v {
		if v[i] != o[i] {
			return false
		}
	}
	return true
}
