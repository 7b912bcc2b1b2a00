package cover

import (
	"fmt"
	"io"

	"github.com/viant/annreg/ann"
	"github.com/viant/annreg/internal/cover/tree"
	"github.com/viant/annreg/vector"
)

// Kind identifies this builder in index streams.
const Kind = "cover"

// Options configures the cover tree.
type Options struct {
	Base   float32
	Metric vector.Metric
}

// Index implements ann.Builder on a cover tree.
type Index struct {
	elements *vector.Elements
	tree     *tree.Tree
	dim      int
}

// New creates an empty index.
func New(opts Options) *Index {
	return &Index{
		elements: vector.NewElements(),
		tree:     tree.New(opts.Base, opts.Metric),
	}
}

// Kind implements ann.Builder.
func (i *Index) Kind() string { return Kind }

// Push implements ann.Builder.
func (i *Index) Push(v vector.Vector) int { return i.elements.Push(v) }

// Len implements ann.Builder.
func (i *Index) Len() int { return i.elements.Len() }

// Built implements ann.Builder.
func (i *Index) Built() int { return i.tree.Len() }

// Build inserts every element pushed since the last build.
func (i *Index) Build() error {
	dim, err := i.elements.CheckDim(i.elements.Len())
	if err != nil {
		return fmt.Errorf("cover: %w", err)
	}
	i.dim = dim
	i.insertUpTo(i.elements.Len())
	return nil
}

func (i *Index) insertUpTo(n int) {
	for id := i.tree.Len(); id < n; id++ {
		i.tree.Insert(tree.NewPoint(int32(id), i.elements.At(id), i.elements.Magnitude(id)))
	}
}

// Search returns up to k nearest built elements, expanding at most width
// tree nodes (never fewer than k).
func (i *Index) Search(query vector.Vector, k, width int) ([]ann.Result, error) {
	if i.tree.Len() == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != i.dim {
		return nil, fmt.Errorf("cover: %w: query dim %d != index dim %d", vector.ErrDimensionMismatch, len(query), i.dim)
	}
	found := i.tree.Nearest(tree.NewPoint(-1, query, 0), k, width)
	results := make([]ann.Result, len(found))
	for j, n := range found {
		results[j] = ann.Result{ID: uint64(n.Point.ID), Score: n.Distance}
	}
	return ann.TopK(results, k), nil
}

// WriteIndex stores: metric(string), base(float32), built(uint64).
func (i *Index) WriteIndex(w io.Writer) error {
	enc := ann.NewEncoder(w)
	enc.String(string(i.tree.Metric()))
	enc.Float32(i.tree.Base())
	enc.Uint64(uint64(i.tree.Len()))
	return enc.Err()
}

// WriteElements implements ann.Builder.
func (i *Index) WriteElements(w io.Writer) error {
	_, err := i.elements.WriteTo(w)
	return err
}

// Factory creates cover builders.
type Factory struct {
	Options Options
}

// Kind implements ann.Factory.
func (f Factory) Kind() string { return Kind }

// New implements ann.Factory.
func (f Factory) New() ann.Builder { return New(f.Options) }

// ReadIndex rebuilds the tree over the first built elements.
func (f Factory) ReadIndex(r io.Reader, elements *vector.Elements) (ann.Builder, error) {
	dec := ann.NewDecoder(r)
	metric, err := vector.ParseMetric(dec.String())
	if err != nil {
		dec.Fail(fmt.Errorf("%w: %v", ann.ErrCorruptIndex, err))
	}
	base := dec.Float32()
	built := dec.Uint64()
	if dec.Err() == nil && built > uint64(elements.Len()) {
		dec.Fail(fmt.Errorf("%w: built count %d exceeds %d elements", ann.ErrCorruptIndex, built, elements.Len()))
	}
	if dec.Err() != nil {
		return nil, dec.Err()
	}
	dim, err := elements.CheckDim(int(built))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ann.ErrCorruptIndex, err)
	}
	idx := &Index{elements: elements, tree: tree.New(base, metric), dim: dim}
	idx.insertUpTo(int(built))
	return idx, nil
}
