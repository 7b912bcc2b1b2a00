package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeEmbedding(t *testing.T) {
	orig := Vector{0.0, 1.5, -2.25, 3.75}
	decoded, err := DecodeEmbedding(EncodeEmbedding(orig))
	require.NoError(t, err)
	assert.Equal(t, orig, decoded)

	assert.Empty(t, EncodeEmbedding(nil))
	vec, err := DecodeEmbedding(nil)
	require.NoError(t, err)
	assert.Empty(t, vec)

	_, err = DecodeEmbedding([]byte{1, 2, 3})
	assert.Error(t, err)
}
