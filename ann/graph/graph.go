package graph

import (
	"container/heap"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/viant/annreg/ann"
	"github.com/viant/annreg/vector"
)

// Kind identifies this builder in index streams.
const Kind = "graph"

const (
	defaultMaxNeighbors      = 16
	defaultConstructionWidth = 100
	defaultSeed              = 1
	maxLevel                 = 16
	noEntry                  = math.MaxUint32
)

// Options configures graph construction.
type Options struct {
	// MaxNeighbors is the per-layer degree bound (doubled on the base layer).
	MaxNeighbors int
	// ConstructionWidth is the beam width used while linking new nodes.
	ConstructionWidth int
	Metric            vector.Metric
	Seed              uint64
}

func (o Options) withDefaults() Options {
	if o.MaxNeighbors <= 0 {
		o.MaxNeighbors = defaultMaxNeighbors
	}
	if o.ConstructionWidth <= 0 {
		o.ConstructionWidth = defaultConstructionWidth
	}
	if o.Metric == "" {
		o.Metric = vector.MetricAngular
	}
	if o.Seed == 0 {
		o.Seed = defaultSeed
	}
	return o
}

type node struct {
	// links[l] holds the neighbor ids on layer l.
	links [][]uint32
}

// Index implements ann.Builder on a layered small-world graph.
type Index struct {
	opts      Options
	elements  *vector.Elements
	nodes     []node
	entry     uint32
	top       int
	dim       int
	levelMult float64
}

// New creates an empty graph.
func New(opts Options) *Index {
	opts = opts.withDefaults()
	return &Index{
		opts:      opts,
		elements:  vector.NewElements(),
		entry:     noEntry,
		levelMult: 1 / math.Log(float64(opts.MaxNeighbors)),
	}
}

// Kind implements ann.Builder.
func (g *Index) Kind() string { return Kind }

// Push implements ann.Builder.
func (g *Index) Push(v vector.Vector) int { return g.elements.Push(v) }

// Len implements ann.Builder.
func (g *Index) Len() int { return g.elements.Len() }

// Built implements ann.Builder.
func (g *Index) Built() int { return len(g.nodes) }

// Build links every element pushed since the previous build.
func (g *Index) Build() error {
	dim, err := g.elements.CheckDim(g.elements.Len())
	if err != nil {
		return fmt.Errorf("graph: %w", err)
	}
	g.dim = dim
	for id := len(g.nodes); id < g.elements.Len(); id++ {
		g.insert(uint32(id))
	}
	return nil
}

// level draws the node level from a splitmix64 hash of the id.
func (g *Index) level(id uint32) int {
	z := g.opts.Seed + uint64(id)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31
	u := (float64(z>>11) + 1) / (1 << 53)
	l := int(-math.Log(u) * g.levelMult)
	return min(l, maxLevel)
}

func (g *Index) distanceTo(query vector.Vector, qm float32, id uint32) float32 {
	return g.opts.Metric.Distance(query, qm, g.elements.At(int(id)), g.elements.Magnitude(int(id)))
}

func (g *Index) degree(layer int) int {
	if layer == 0 {
		return g.opts.MaxNeighbors * 2
	}
	return g.opts.MaxNeighbors
}

func (g *Index) insert(id uint32) {
	lvl := g.level(id)
	g.nodes = append(g.nodes, node{links: make([][]uint32, lvl+1)})
	if g.entry == noEntry {
		g.entry = id
		g.top = lvl
		return
	}
	query := g.elements.At(int(id))
	qm := g.elements.Magnitude(int(id))

	current := g.entry
	for l := g.top; l > lvl; l-- {
		current = g.greedy(query, qm, current, l)
	}
	for l := min(lvl, g.top); l >= 0; l-- {
		found := g.searchLayer(query, qm, current, g.opts.ConstructionWidth, l)
		g.connect(id, found, l)
		if len(found) > 0 {
			current = found[0].id
		}
	}
	if lvl > g.top {
		g.top = lvl
		g.entry = id
	}
}

// greedy walks layer l towards the query until no neighbor is closer.
func (g *Index) greedy(query vector.Vector, qm float32, from uint32, l int) uint32 {
	best := candidate{id: from, dist: g.distanceTo(query, qm, from)}
	for {
		moved := false
		for _, n := range g.nodes[best.id].links[l] {
			c := candidate{id: n, dist: g.distanceTo(query, qm, n)}
			if closer(c, best) {
				best = c
				moved = true
			}
		}
		if !moved {
			return best.id
		}
	}
}

// searchLayer runs a beam search of the given width on layer l and returns
// the beam ordered closest first.
func (g *Index) searchLayer(query vector.Vector, qm float32, entry uint32, width, l int) []candidate {
	visited := roaring.New()
	visited.Add(entry)
	start := candidate{id: entry, dist: g.distanceTo(query, qm, entry)}
	frontier := &nearQueue{start}
	beam := &farQueue{start}

	for frontier.Len() > 0 {
		c := heap.Pop(frontier).(candidate)
		if beam.Len() >= width && closer((*beam)[0], c) {
			break
		}
		for _, n := range g.nodes[c.id].links[l] {
			if visited.Contains(n) {
				continue
			}
			visited.Add(n)
			nc := candidate{id: n, dist: g.distanceTo(query, qm, n)}
			if beam.Len() < width || closer(nc, (*beam)[0]) {
				heap.Push(frontier, nc)
				heap.Push(beam, nc)
				if beam.Len() > width {
					heap.Pop(beam)
				}
			}
		}
	}
	out := make([]candidate, beam.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(beam).(candidate)
	}
	return out
}

func (g *Index) connect(id uint32, found []candidate, l int) {
	m := g.degree(l)
	if len(found) > m {
		found = found[:m]
	}
	links := make([]uint32, len(found))
	for i, c := range found {
		links[i] = c.id
	}
	g.nodes[id].links[l] = links
	for _, c := range found {
		peer := &g.nodes[c.id]
		peer.links[l] = append(peer.links[l], id)
		if len(peer.links[l]) > m {
			g.prune(c.id, l, m)
		}
	}
}

// prune keeps the m closest neighbors of id on layer l.
func (g *Index) prune(id uint32, l, m int) {
	base := g.elements.At(int(id))
	bm := g.elements.Magnitude(int(id))
	links := g.nodes[id].links[l]
	scored := make([]candidate, len(links))
	for i, n := range links {
		scored[i] = candidate{id: n, dist: g.distanceTo(base, bm, n)}
	}
	sort.Slice(scored, func(i, j int) bool { return closer(scored[i], scored[j]) })
	kept := make([]uint32, m)
	for i := range kept {
		kept[i] = scored[i].id
	}
	g.nodes[id].links[l] = kept
}

// Search returns up to k nearest built elements using a base-layer beam of
// max(width, k) candidates.
func (g *Index) Search(query vector.Vector, k, width int) ([]ann.Result, error) {
	if len(g.nodes) == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != g.dim {
		return nil, fmt.Errorf("graph: %w: query dim %d != index dim %d", vector.ErrDimensionMismatch, len(query), g.dim)
	}
	qm := query.Magnitude()
	current := g.entry
	for l := g.top; l > 0; l-- {
		current = g.greedy(query, qm, current, l)
	}
	found := g.searchLayer(query, qm, current, max(width, k), 0)
	results := make([]ann.Result, len(found))
	for i, c := range found {
		results[i] = ann.Result{ID: uint64(c.id), Score: c.dist}
	}
	return ann.TopK(results, k), nil
}

// WriteElements implements ann.Builder.
func (g *Index) WriteElements(w io.Writer) error {
	_, err := g.elements.WriteTo(w)
	return err
}
