package tree

import (
	"math"

	"github.com/viant/annreg/vector"
)

// Point is an element stored in the tree.
type Point struct {
	ID        int32
	Vector    vector.Vector
	Magnitude float32
}

// NewPoint constructs a point, computing the magnitude when it is not known.
func NewPoint(id int32, v vector.Vector, magnitude float32) *Point {
	if magnitude == 0 {
		magnitude = v.Magnitude()
	}
	return &Point{ID: id, Vector: v, Magnitude: magnitude}
}

// Node represents a cover-tree node. Every descendant lies within radius of
// the node's point; cover is the insertion threshold base^level.
type Node struct {
	level    int32
	cover    float32
	radius   float32
	point    *Point
	children []*Node
}

func newNode(point *Point, level int32, base float32) *Node {
	return &Node{
		level: level,
		cover: float32(math.Pow(float64(base), float64(level))),
		point: point,
	}
}

func (n *Node) raise(base float32) {
	n.level++
	n.cover = float32(math.Pow(float64(base), float64(n.level)))
}
