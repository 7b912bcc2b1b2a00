package vector

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestFromPointer_Copies(t *testing.T) {
	raw := []float32{1, 2, 3, 4}
	v := FromPointer(unsafe.Pointer(&raw[0]), 3)
	assert.Equal(t, Vector{1, 2, 3}, v)

	raw[0] = 42
	assert.Equal(t, float32(1), v[0])

	assert.Nil(t, FromPointer(nil, 3))
	assert.Nil(t, FromPointer(unsafe.Pointer(&raw[0]), 0))
}

func TestCopy(t *testing.T) {
	assert.Nil(t, Copy(nil))
	src := []float32{1, 2}
	c := Copy(src)
	src[1] = 9
	assert.Equal(t, Vector{1, 2}, c)
}
