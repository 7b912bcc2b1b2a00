package vector

import (
	"fmt"
	"strings"

	"github.com/viant/vec/search"
)

// Metric names a distance function. Smaller distances are better for every
// metric, so builders can order results uniformly.
type Metric string

const (
	// MetricAngular is the cosine distance (1 - cosine similarity).
	MetricAngular Metric = "angular"
	// MetricEuclidean is the L2 distance.
	MetricEuclidean Metric = "euclidean"
)

// ParseMetric resolves a metric name; the empty string selects MetricAngular.
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "angular", "cos", "cosine":
		return MetricAngular, nil
	case "euclidean", "l2":
		return MetricEuclidean, nil
	}
	return "", fmt.Errorf("vector: unsupported metric %q", name)
}

// Distance computes the distance between a and b. Magnitudes are optional
// hints for the angular metric: a zero magnitude on either side yields 1
// without touching the vector kernels.
func (m Metric) Distance(a Vector, am float32, b Vector, bm float32) float32 {
	if m == MetricEuclidean {
		return search.Float32s(a).EuclideanDistance([]float32(b))
	}
	if am == 0 {
		am = search.Float32s(a).Magnitude()
	}
	if bm == 0 {
		bm = search.Float32s(b).Magnitude()
	}
	if am == 0 || bm == 0 {
		return 1
	}
	return search.Float32s(a).CosineDistance([]float32(b))
}

// CosineSimilarity computes the cosine similarity between two vectors. It
// returns an error if the vectors have different lengths or if either vector
// has zero magnitude.
func CosineSimilarity(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector: cosine similarity dimension mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("vector: cosine similarity on empty vectors")
	}
	am, bm := a.Magnitude(), b.Magnitude()
	if am == 0 || bm == 0 {
		return 0, fmt.Errorf("vector: cosine similarity with zero-magnitude vector")
	}
	return 1 - float64(MetricAngular.Distance(a, am, b, bm)), nil
}
