package bruteforce

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/annreg/ann"
	"github.com/viant/annreg/vector"
)

func TestIndex_SearchOrder(t *testing.T) {
	idx := New(vector.MetricAngular)
	assert.Equal(t, 1, idx.Push(vector.Vector{1, 1, 1, 1, 1, 1, 1, 1}))
	assert.Equal(t, 2, idx.Push(vector.Vector{2, 2, 2, 2, 1, 1, 1, 1}))
	assert.Equal(t, 3, idx.Push(vector.Vector{0, 0, 0, 0, 1, 1, 1, 1}))

	got, err := idx.Search(vector.Vector{2, 2, 2, 2, 1, 1, 1, 1}, 3, 100)
	require.NoError(t, err)
	assert.Empty(t, got, "search before build")

	require.NoError(t, idx.Build())
	got, err = idx.Search(vector.Vector{2, 2, 2, 2, 1, 1, 1, 1}, 3, 100)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []uint64{1, 0, 2}, ids(got))
	assert.InDelta(t, 0, got[0].Score, 1e-6)
}

func TestIndex_PushAfterBuildIsInvisible(t *testing.T) {
	idx := New(vector.MetricEuclidean)
	idx.Push(vector.Vector{0, 0})
	require.NoError(t, idx.Build())
	idx.Push(vector.Vector{1, 1})

	got, err := idx.Search(vector.Vector{1, 1}, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0}, ids(got))

	require.NoError(t, idx.Build())
	got, err = idx.Search(vector.Vector{1, 1}, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 0}, ids(got))
}

func TestIndex_DimensionErrors(t *testing.T) {
	idx := New(vector.MetricAngular)
	idx.Push(vector.Vector{1, 2})
	idx.Push(vector.Vector{1, 2, 3})
	assert.ErrorIs(t, idx.Build(), vector.ErrDimensionMismatch)

	idx = New(vector.MetricAngular)
	idx.Push(vector.Vector{1, 2})
	require.NoError(t, idx.Build())
	_, err := idx.Search(vector.Vector{1}, 1, 0)
	assert.ErrorIs(t, err, vector.ErrDimensionMismatch)
}

func TestFactory_ReadIndex(t *testing.T) {
	idx := New(vector.MetricEuclidean)
	for i := 0; i < 4; i++ {
		idx.Push(vector.Vector{float32(i), 0})
	}
	require.NoError(t, idx.Build())
	idx.Push(vector.Vector{9, 9})

	var index, elements bytes.Buffer
	require.NoError(t, idx.WriteIndex(&index))
	require.NoError(t, idx.WriteElements(&elements))

	elems, err := vector.ReadElements(&elements)
	require.NoError(t, err)
	restored, err := Factory{}.ReadIndex(&index, elems)
	require.NoError(t, err)
	assert.Equal(t, 5, restored.Len())
	assert.Equal(t, 4, restored.Built())

	want, err := idx.Search(vector.Vector{2.2, 0}, 2, 0)
	require.NoError(t, err)
	got, err := restored.Search(vector.Vector{2.2, 0}, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFactory_ReadIndexRejectsMismatch(t *testing.T) {
	idx := New(vector.MetricAngular)
	idx.Push(vector.Vector{1})
	idx.Push(vector.Vector{2})
	require.NoError(t, idx.Build())
	var index bytes.Buffer
	require.NoError(t, idx.WriteIndex(&index))

	short := vector.NewElements()
	short.Push(vector.Vector{1})
	_, err := Factory{}.ReadIndex(&index, short)
	assert.ErrorIs(t, err, ann.ErrCorruptIndex)

	_, err = Factory{}.ReadIndex(bytes.NewReader([]byte{1, 2}), short)
	assert.ErrorIs(t, err, ann.ErrCorruptIndex)
}

func ids(results []ann.Result) []uint64 {
	out := make([]uint64, len(results))
	for i, r := range results {
		out[i] = r.ID
	}
	return out
}
