package graph

import (
	"fmt"
	"io"

	"github.com/viant/annreg/ann"
	"github.com/viant/annreg/vector"
)

// WriteIndex stores the graph topology:
//
//	metric(string) maxNeighbors(u32) constructionWidth(u32) seed(u64)
//	built(u64) entry(u32) top(u32)
//	per node: levels(u32), per level: count(u32) ids(u32...)
func (g *Index) WriteIndex(w io.Writer) error {
	enc := ann.NewEncoder(w)
	enc.String(string(g.opts.Metric))
	enc.Uint32(uint32(g.opts.MaxNeighbors))
	enc.Uint32(uint32(g.opts.ConstructionWidth))
	enc.Uint64(g.opts.Seed)
	enc.Uint64(uint64(len(g.nodes)))
	enc.Uint32(g.entry)
	enc.Uint32(uint32(g.top))
	for _, n := range g.nodes {
		enc.Uint32(uint32(len(n.links)))
		for _, links := range n.links {
			enc.Uint32(uint32(len(links)))
			for _, id := range links {
				enc.Uint32(id)
			}
		}
		if enc.Err() != nil {
			break
		}
	}
	return enc.Err()
}

// Factory creates graph builders.
type Factory struct {
	Options Options
}

// Kind implements ann.Factory.
func (f Factory) Kind() string { return Kind }

// New implements ann.Factory.
func (f Factory) New() ann.Builder { return New(f.Options) }

// ReadIndex restores a graph written by WriteIndex over elements. Construction
// parameters come from the stream, not from the factory.
func (f Factory) ReadIndex(r io.Reader, elements *vector.Elements) (ann.Builder, error) {
	dec := ann.NewDecoder(r)
	metric, err := vector.ParseMetric(dec.String())
	if err != nil {
		dec.Fail(fmt.Errorf("%w: %v", ann.ErrCorruptIndex, err))
	}
	opts := Options{
		Metric:            metric,
		MaxNeighbors:      int(dec.Uint32()),
		ConstructionWidth: int(dec.Uint32()),
		Seed:              dec.Uint64(),
	}
	built := dec.Uint64()
	entry := dec.Uint32()
	top := dec.Uint32()
	if err := dec.Err(); err != nil {
		return nil, err
	}
	if built > uint64(elements.Len()) {
		return nil, fmt.Errorf("%w: built count %d exceeds %d elements", ann.ErrCorruptIndex, built, elements.Len())
	}
	if top > maxLevel || (built == 0) != (entry == noEntry) || (built > 0 && uint64(entry) >= built) {
		return nil, fmt.Errorf("%w: invalid entry point", ann.ErrCorruptIndex)
	}

	g := New(opts)
	g.elements = elements
	g.entry = entry
	g.top = int(top)
	g.nodes = make([]node, built)
	for i := range g.nodes {
		levels := dec.Uint32()
		if dec.Err() != nil {
			return nil, dec.Err()
		}
		if levels == 0 || levels > maxLevel+1 {
			return nil, fmt.Errorf("%w: node %d has %d levels", ann.ErrCorruptIndex, i, levels)
		}
		links := make([][]uint32, levels)
		for l := range links {
			count := dec.Uint32()
			if dec.Err() == nil && count > uint32(built) {
				dec.Fail(fmt.Errorf("%w: node %d degree %d", ann.ErrCorruptIndex, i, count))
			}
			if dec.Err() != nil {
				return nil, dec.Err()
			}
			links[l] = make([]uint32, count)
			for j := range links[l] {
				id := dec.Uint32()
				if dec.Err() == nil && uint64(id) >= built {
					dec.Fail(fmt.Errorf("%w: node %d links to %d", ann.ErrCorruptIndex, i, id))
				}
				links[l][j] = id
			}
		}
		g.nodes[i] = node{links: links}
	}
	if err := dec.Err(); err != nil {
		return nil, err
	}
	if built > 0 && len(g.nodes[entry].links) <= g.top {
		return nil, fmt.Errorf("%w: entry point below top layer", ann.ErrCorruptIndex)
	}
	for i, n := range g.nodes {
		for l, links := range n.links {
			for _, id := range links {
				if len(g.nodes[id].links) <= l {
					return nil, fmt.Errorf("%w: node %d links to %d above its level", ann.ErrCorruptIndex, i, id)
				}
			}
		}
	}
	dim, err := elements.CheckDim(int(built))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ann.ErrCorruptIndex, err)
	}
	g.dim = dim
	return g, nil
}
