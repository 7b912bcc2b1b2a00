package vector

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElements_PushCounts(t *testing.T) {
	e := NewElements()
	for i := 1; i <= 5; i++ {
		assert.Equal(t, i, e.Push(Vector{float32(i), 1}))
	}
	assert.Equal(t, 5, e.Len())
	assert.Equal(t, Vector{3, 1}, e.At(2))

	m := NewElements()
	m.Push(Vector{3, 4})
	assert.InDelta(t, 5.0, float64(m.Magnitude(0)), 1e-6)
}

func TestElements_CheckDim(t *testing.T) {
	e := NewElements()
	dim, err := e.CheckDim(10)
	require.NoError(t, err)
	assert.Zero(t, dim)

	e.Push(Vector{1, 2})
	e.Push(Vector{3, 4})
	dim, err = e.CheckDim(e.Len())
	require.NoError(t, err)
	assert.Equal(t, 2, dim)

	e.Push(Vector{1, 2, 3})
	_, err = e.CheckDim(e.Len())
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	_, err = e.CheckDim(2)
	assert.NoError(t, err)
}

func TestElements_StreamRoundTrip(t *testing.T) {
	e := NewElements()
	e.Push(Vector{1, 1, 1})
	e.Push(Vector{0.5, -2})
	e.Push(Vector{7})

	var buf bytes.Buffer
	n, err := e.WriteTo(&buf)
	require.NoError(t, err)
	assert.EqualValues(t, buf.Len(), n)
	buf.WriteString("trailing")

	got, err := ReadElements(&buf)
	require.NoError(t, err)
	require.Equal(t, e.Len(), got.Len())
	for i := 0; i < e.Len(); i++ {
		assert.True(t, e.At(i).Equal(got.At(i)), "element %d", i)
	}
	assert.Equal(t, "trailing", buf.String())
}

func TestReadElements_Truncated(t *testing.T) {
	e := NewElements()
	e.Push(Vector{1, 2, 3, 4})
	var buf bytes.Buffer
	_, err := e.WriteTo(&buf)
	require.NoError(t, err)

	_, err = ReadElements(bytes.NewReader(buf.Bytes()[:buf.Len()-2]))
	assert.Error(t, err)
	_, err = ReadElements(bytes.NewReader(nil))
	assert.Error(t, err)
}
