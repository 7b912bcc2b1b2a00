package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetric(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Metric
	}{
		{"", MetricAngular},
		{"cosine", MetricAngular},
		{"Angular", MetricAngular},
		{"l2", MetricEuclidean},
		{"euclidean", MetricEuclidean},
	} {
		got, err := ParseMetric(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
	_, err := ParseMetric("hamming")
	assert.Error(t, err)
}

func TestMetricDistance(t *testing.T) {
	a := Vector{1, 0}
	b := Vector{0, 1}

	assert.InDelta(t, 1.0, MetricAngular.Distance(a, 0, b, 0), 1e-6)
	assert.InDelta(t, 0.0, MetricAngular.Distance(a, 0, a, 0), 1e-6)
	assert.InDelta(t, 5.0, MetricEuclidean.Distance(Vector{0, 0}, 0, Vector{3, 4}, 0), 1e-6)
}

func TestCosineSimilarity(t *testing.T) {
	sim, err := CosineSimilarity(Vector{1, 0}, Vector{1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-6)

	_, err = CosineSimilarity(Vector{1, 0}, Vector{1})
	assert.Error(t, err)
	_, err = CosineSimilarity(Vector{0, 0}, Vector{1, 0})
	assert.Error(t, err)
}

func TestMetricDistance_AngularWithCachedMagnitudes(t *testing.T) {
	a := Vector{3, 4, 0}
	b := Vector{4, 3, 0}
	want := 1 - float32(24)/25

	assert.InDelta(t, want, MetricAngular.Distance(a, 0, b, 0), 1e-6)
	assert.InDelta(t, want, MetricAngular.Distance(a, a.Magnitude(), b, b.Magnitude()), 1e-6)
	assert.InDelta(t, 2.0, MetricAngular.Distance(a, 0, Vector{-3, -4, 0}, 0), 1e-6)
	assert.Equal(t, float32(1), MetricAngular.Distance(Vector{0, 0, 0}, 0, b, 0))
	assert.Equal(t, float32(1), MetricAngular.Distance(a, 0, Vector{0, 0, 0}, 0))
}
