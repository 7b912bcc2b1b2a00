package ann

import (
	"io"

	"github.com/viant/annreg/vector"
)

// Builder accumulates vectors and, after Build, answers kNN queries. Element
// ids are assigned in push order starting at 0. Search reflects the state at
// the last Build; vectors pushed later stay invisible until Build is called
// again. Builders are not safe for concurrent use.
type Builder interface {
	// Kind names the implementation; it is recorded in the index stream.
	Kind() string

	// Push appends v and returns the element count after the push.
	Push(v vector.Vector) int

	// Len returns the number of pushed elements.
	Len() int

	// Build compiles every pushed element into the searchable structure.
	Build() error

	// Built returns the number of elements visible to Search.
	Built() int

	// Search returns up to k results ordered best first. width controls how
	// many candidates the search explores; exact implementations ignore it.
	Search(query vector.Vector, k, width int) ([]Result, error)

	// WriteIndex serializes the searchable structure.
	WriteIndex(w io.Writer) error

	// WriteElements serializes the pushed vectors.
	WriteElements(w io.Writer) error
}

// Factory creates empty builders of one kind and reconstructs them from an
// index stream plus the elements decoded with vector.ReadElements.
type Factory interface {
	Kind() string
	New() Builder
	ReadIndex(r io.Reader, elements *vector.Elements) (Builder, error)
}
