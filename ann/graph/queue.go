package graph

type candidate struct {
	id   uint32
	dist float32
}

func closer(a, b candidate) bool {
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	return a.id < b.id
}

// nearQueue pops the closest candidate first.
type nearQueue []candidate

func (q nearQueue) Len() int            { return len(q) }
func (q nearQueue) Less(i, j int) bool  { return closer(q[i], q[j]) }
func (q nearQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *nearQueue) Push(x interface{}) { *q = append(*q, x.(candidate)) }
func (q *nearQueue) Pop() interface{} {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}

// farQueue keeps the farthest candidate on top; it holds the current beam.
type farQueue []candidate

func (q farQueue) Len() int            { return len(q) }
func (q farQueue) Less(i, j int) bool  { return closer(q[j], q[i]) }
func (q farQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *farQueue) Push(x interface{}) { *q = append(*q, x.(candidate)) }
func (q *farQueue) Pop() interface{} {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}
