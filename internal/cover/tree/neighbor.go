package tree

// Neighbor describes a candidate returned by a kNN search.
type Neighbor struct {
	Point    *Point
	Distance float32
}

// neighbors implements heap.Interface as a max-heap on distance, so the
// current worst candidate sits at the top.
type neighbors []Neighbor

func (h neighbors) Len() int { return len(h) }
func (h neighbors) Less(i, j int) bool {
	if h[i].Distance != h[j].Distance {
		return h[i].Distance > h[j].Distance
	}
	return h[i].Point.ID > h[j].Point.ID
}
func (h neighbors) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *neighbors) Push(x interface{}) { *h = append(*h, x.(Neighbor)) }

func (h *neighbors) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

type nodeItem struct {
	node       *Node
	lb         float32
	centerDist float32
}

// nodeQueue is a min-heap on the lower bound of a subtree's distance.
type nodeQueue []nodeItem

func (q nodeQueue) Len() int            { return len(q) }
func (q nodeQueue) Less(i, j int) bool  { return q[i].lb < q[j].lb }
func (q nodeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x interface{}) { *q = append(*q, x.(nodeItem)) }
func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}
