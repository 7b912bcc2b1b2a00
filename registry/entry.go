package registry

import (
	"sync"

	"github.com/viant/annreg/ann"
)

// entry owns one builder. mu is held for the whole of every operation on it.
type entry struct {
	mu      sync.Mutex
	builder ann.Builder
}

func newEntry(b ann.Builder) *entry {
	return &entry{builder: b}
}
