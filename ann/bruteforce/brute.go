package bruteforce

import (
	"fmt"
	"io"

	"github.com/viant/annreg/ann"
	"github.com/viant/annreg/vector"
)

// Kind identifies this builder in index streams.
const Kind = "bruteforce"

// Index scans all built elements on every query.
type Index struct {
	metric   vector.Metric
	elements *vector.Elements
	built    int
	dim      int
}

// New creates an empty index using metric.
func New(metric vector.Metric) *Index {
	return &Index{metric: metric, elements: vector.NewElements()}
}

// Kind implements ann.Builder.
func (i *Index) Kind() string { return Kind }

// Push implements ann.Builder.
func (i *Index) Push(v vector.Vector) int { return i.elements.Push(v) }

// Len implements ann.Builder.
func (i *Index) Len() int { return i.elements.Len() }

// Built implements ann.Builder.
func (i *Index) Built() int { return i.built }

// Build validates dimensions and makes every pushed element searchable.
func (i *Index) Build() error {
	dim, err := i.elements.CheckDim(i.elements.Len())
	if err != nil {
		return fmt.Errorf("bruteforce: %w", err)
	}
	i.dim = dim
	i.built = i.elements.Len()
	return nil
}

// Search returns the k nearest built elements; width is ignored.
func (i *Index) Search(query vector.Vector, k, _ int) ([]ann.Result, error) {
	if i.built == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != i.dim {
		return nil, fmt.Errorf("bruteforce: %w: query dim %d != index dim %d", vector.ErrDimensionMismatch, len(query), i.dim)
	}
	qm := query.Magnitude()
	results := make([]ann.Result, i.built)
	for j := 0; j < i.built; j++ {
		results[j] = ann.Result{
			ID:    uint64(j),
			Score: i.metric.Distance(query, qm, i.elements.At(j), i.elements.Magnitude(j)),
		}
	}
	return ann.TopK(results, k), nil
}

// WriteIndex stores: metric(string), built(uint64).
func (i *Index) WriteIndex(w io.Writer) error {
	enc := ann.NewEncoder(w)
	enc.String(string(i.metric))
	enc.Uint64(uint64(i.built))
	return enc.Err()
}

// WriteElements implements ann.Builder.
func (i *Index) WriteElements(w io.Writer) error {
	_, err := i.elements.WriteTo(w)
	return err
}

// Factory creates bruteforce builders.
type Factory struct {
	Metric vector.Metric
}

// Kind implements ann.Factory.
func (f Factory) Kind() string { return Kind }

// New implements ann.Factory.
func (f Factory) New() ann.Builder { return New(f.Metric) }

// ReadIndex restores an index written by WriteIndex over elements.
func (f Factory) ReadIndex(r io.Reader, elements *vector.Elements) (ann.Builder, error) {
	dec := ann.NewDecoder(r)
	metric, err := vector.ParseMetric(dec.String())
	if err != nil {
		dec.Fail(fmt.Errorf("%w: %v", ann.ErrCorruptIndex, err))
	}
	built := dec.Uint64()
	if dec.Err() == nil && built > uint64(elements.Len()) {
		dec.Fail(fmt.Errorf("%w: built count %d exceeds %d elements", ann.ErrCorruptIndex, built, elements.Len()))
	}
	if dec.Err() != nil {
		return nil, dec.Err()
	}
	idx := &Index{metric: metric, elements: elements, built: int(built)}
	dim, err := elements.CheckDim(idx.built)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ann.ErrCorruptIndex, err)
	}
	idx.dim = dim
	return idx, nil
}
