package engine_test

import (
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/annreg/ann/bruteforce"
	"github.com/viant/annreg/engine"
	"github.com/viant/annreg/registry"
	"github.com/viant/annreg/vector"
)

func TestRegisterVectorFunctions(t *testing.T) {
	require.NoError(t, engine.RegisterVectorFunctions())
	require.NoError(t, engine.RegisterVectorFunctions())
	db, err := engine.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	a := vector.EncodeEmbedding(vector.Vector{1, 0})
	b := vector.EncodeEmbedding(vector.Vector{0, 1})

	var sim float64
	require.NoError(t, db.QueryRow(`SELECT vec_cosine(?, ?)`, a, b).Scan(&sim))
	assert.InDelta(t, 0, sim, 1e-6)
	require.NoError(t, db.QueryRow(`SELECT vec_cosine(?, ?)`, a, a).Scan(&sim))
	assert.InDelta(t, 1, sim, 1e-6)

	var dist float64
	zero := vector.EncodeEmbedding(vector.Vector{0, 0})
	threeFour := vector.EncodeEmbedding(vector.Vector{3, 4})
	require.NoError(t, db.QueryRow(`SELECT vec_l2(?, ?)`, zero, threeFour).Scan(&dist))
	assert.InDelta(t, 5, dist, 1e-6)

	err = db.QueryRow(`SELECT vec_l2(?, ?)`, zero, vector.EncodeEmbedding(vector.Vector{1})).Scan(&dist)
	assert.Error(t, err)
	err = db.QueryRow(`SELECT vec_cosine(?, ?)`, zero, a).Scan(&sim)
	assert.Error(t, err)

	var null sql.NullFloat64
	require.NoError(t, db.QueryRow(`SELECT vec_cosine(NULL, ?)`, a).Scan(&null))
	assert.False(t, null.Valid)
}

func TestRegisterRegistryFunctions(t *testing.T) {
	reg := registry.New(registry.WithFactory(bruteforce.Factory{Metric: vector.MetricEuclidean}))
	require.NoError(t, engine.RegisterRegistryFunctions(reg))
	db, err := engine.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, reg.Create("docs"))
	var count int64
	for i, v := range []vector.Vector{{0, 0}, {1, 1}, {5, 5}} {
		require.NoError(t, db.QueryRow(`SELECT ann_add('docs', ?)`, vector.EncodeEmbedding(v)).Scan(&count))
		assert.Equal(t, int64(i+1), count)
	}
	require.NoError(t, db.QueryRow(`SELECT ann_count('docs')`).Scan(&count))
	assert.Equal(t, int64(3), count)
	require.NoError(t, reg.Build("docs"))

	var raw string
	require.NoError(t, db.QueryRow(`SELECT ann_search('docs', 2, ?)`, vector.EncodeEmbedding(vector.Vector{1, 1})).Scan(&raw))
	var matches []struct {
		ID    uint64  `json:"id"`
		Score float32 `json:"score"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &matches))
	require.Len(t, matches, 2)
	assert.Equal(t, uint64(1), matches[0].ID)
	assert.Equal(t, uint64(0), matches[1].ID)

	err = db.QueryRow(`SELECT ann_count('missing')`).Scan(&count)
	assert.ErrorContains(t, err, "not found")
	err = db.QueryRow(`SELECT ann_search('docs', -1, ?)`, vector.EncodeEmbedding(vector.Vector{1, 1})).Scan(&raw)
	assert.Error(t, err)
	err = db.QueryRow(`SELECT ann_add('', ?)`, vector.EncodeEmbedding(vector.Vector{1, 1})).Scan(&count)
	assert.Error(t, err)
}
