package tree

// Adapted from github.com/viant/gds/tree/cover, reduced to the insert-only,
// element-id keyed form the cover builder needs.

import (
	"container/heap"

	"github.com/viant/annreg/vector"
)

// DefaultBase is the level expansion factor used when none is configured.
const DefaultBase float32 = 1.3

// Tree is a cover tree for kNN queries. It is not safe for concurrent use.
type Tree struct {
	root   *Node
	base   float32
	metric vector.Metric
	size   int
}

// New constructs a cover tree with the provided base and metric.
func New(base float32, metric vector.Metric) *Tree {
	if base <= 1 {
		base = DefaultBase
	}
	if metric == "" {
		metric = vector.MetricAngular
	}
	return &Tree{base: base, metric: metric}
}

// Base returns the level expansion factor.
func (t *Tree) Base() float32 { return t.base }

// Metric returns the distance metric.
func (t *Tree) Metric() vector.Metric { return t.metric }

// Len returns the number of inserted points.
func (t *Tree) Len() int { return t.size }

func (t *Tree) distance(a, b *Point) float32 {
	return t.metric.Distance(a.Vector, a.Magnitude, b.Vector, b.Magnitude)
}

// Insert adds a point. Insertion is deterministic: inserting the same points
// in the same order always yields the same tree.
func (t *Tree) Insert(point *Point) {
	t.size++
	if t.root == nil {
		t.root = newNode(point, 0, t.base)
		return
	}
	d := t.distance(point, t.root.point)
	for d > t.root.cover {
		t.root.raise(t.base)
	}
	node := t.root
	for {
		if d > node.radius {
			node.radius = d
		}
		var next *Node
		var nextDist float32
		for _, child := range node.children {
			cd := t.distance(point, child.point)
			if cd <= child.cover {
				next, nextDist = child, cd
				break
			}
		}
		if next == nil {
			node.children = append(node.children, newNode(point, node.level-1, t.base))
			return
		}
		node, d = next, nextDist
	}
}

// Nearest runs a best-first kNN search. maxVisits bounds the number of
// expanded nodes; values below k are raised to k and 0 means unbounded.
// Results are ordered by ascending distance.
func (t *Tree) Nearest(query *Point, k, maxVisits int) []Neighbor {
	if t.root == nil || k <= 0 {
		return nil
	}
	if maxVisits > 0 && maxVisits < k {
		maxVisits = k
	}
	best := &neighbors{}
	pq := &nodeQueue{}
	rootDist := t.distance(query, t.root.point)
	heap.Push(pq, nodeItem{node: t.root, lb: rootDist - t.root.radius, centerDist: rootDist})

	visits := 0
	for pq.Len() > 0 {
		if maxVisits > 0 && visits >= maxVisits {
			break
		}
		top := heap.Pop(pq).(nodeItem)
		if best.Len() == k && top.lb >= (*best)[0].Distance {
			break
		}
		visits++
		candidate := Neighbor{Point: top.node.point, Distance: top.centerDist}
		if best.Len() < k {
			heap.Push(best, candidate)
		} else if candidate.Distance < (*best)[0].Distance {
			heap.Pop(best)
			heap.Push(best, candidate)
		}
		for _, child := range top.node.children {
			cd := t.distance(query, child.point)
			lb := cd - child.radius
			if best.Len() == k && lb >= (*best)[0].Distance {
				continue
			}
			heap.Push(pq, nodeItem{node: child, lb: lb, centerDist: cd})
		}
	}
	result := make([]Neighbor, best.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(best).(Neighbor)
	}
	return result
}
