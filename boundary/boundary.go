// Package boundary adapts raw foreign-call arguments to registry calls. Every
// function accepts the pointers a C caller passes, validates them, runs the
// operation against the process registry and reduces the outcome to a plain
// value: failures are logged and mapped to the neutral result (0, empty,
// false), and no panic escapes.
package boundary

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/text/encoding/unicode"

	"github.com/viant/annreg/ann"
	"github.com/viant/annreg/config"
	"github.com/viant/annreg/registry"
	"github.com/viant/annreg/vector"
)

const (
	// MaxNameLen bounds the scan for a name's NUL terminator.
	MaxNameLen = 1 << 16
	// MaxDim bounds the dimension of a vector argument.
	MaxDim = 1 << 20
)

var (
	current  atomic.Pointer[registry.Registry]
	initOnce sync.Once
)

// Registry returns the process registry, creating it from the default
// configuration on first use.
func Registry() *registry.Registry {
	initOnce.Do(func() {
		if current.Load() != nil {
			return
		}
		r, err := registry.FromConfig(context.Background(), config.Default())
		if err != nil {
			r = registry.New()
		}
		current.CompareAndSwap(nil, r)
	})
	return current.Load()
}

// SetRegistry replaces the process registry and returns the previous one.
func SetRegistry(r *registry.Registry) *registry.Registry {
	initOnce.Do(func() {})
	return current.Swap(r)
}

func invalid(op, name, format string, args ...any) error {
	return &registry.Error{Op: op, Name: name, Kind: registry.InvalidInput, Err: fmt.Errorf(format, args...)}
}

// DecodeString reads a NUL-terminated string at p. Invalid UTF-8 bytes are
// replaced with U+FFFD.
func DecodeString(p unsafe.Pointer) (string, error) {
	if p == nil {
		return "", errors.New("null string pointer")
	}
	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
		if n > MaxNameLen {
			return "", fmt.Errorf("string exceeds %d bytes", MaxNameLen)
		}
	}
	raw := unsafe.String((*byte)(p), n)
	return unicode.UTF8.NewDecoder().String(raw)
}

func decodeName(op string, p unsafe.Pointer) (string, error) {
	name, err := DecodeString(p)
	if err != nil {
		return "", invalid(op, "", "name: %v", err)
	}
	if name == "" {
		return "", invalid(op, "", "empty index name")
	}
	return name, nil
}

func decodeVector(op, name string, p unsafe.Pointer, dim uintptr) (vector.Vector, error) {
	if p == nil {
		return nil, invalid(op, name, "null vector pointer")
	}
	if dim == 0 || dim > MaxDim {
		return nil, invalid(op, name, "dimension %d out of range", dim)
	}
	return vector.FromPointer(p, int(dim)), nil
}

// call runs fn, logging failures and converting panics.
func call(op string, fn func() error) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			Registry().Logger().LogFault(context.Background(), op, "", rec)
			ok = false
		}
	}()
	if err := fn(); err != nil {
		kind := registry.KindOf(err)
		if kind == 0 {
			kind = registry.InternalFault
		}
		Registry().Logger().LogRejected(context.Background(), op, kind.String(), err)
		return false
	}
	return true
}

// NewIndex installs an empty index under the name at namePtr.
func NewIndex(namePtr unsafe.Pointer) {
	call("new_index", func() error {
		name, err := decodeName("new_index", namePtr)
		if err != nil {
			return err
		}
		return Registry().Create(name)
	})
}

// Add appends the dim floats at data to the named index and returns the
// element count, or 0 on failure.
func Add(namePtr, data unsafe.Pointer, dim uintptr) uintptr {
	var count int
	call("add", func() error {
		name, err := decodeName("add", namePtr)
		if err != nil {
			return err
		}
		v, err := decodeVector("add", name, data, dim)
		if err != nil {
			return err
		}
		count, err = Registry().Add(name, v)
		return err
	})
	return uintptr(count)
}

// Len returns the element count of the named index, or 0 on failure.
func Len(namePtr unsafe.Pointer) uintptr {
	var count int
	call("len", func() error {
		name, err := decodeName("len", namePtr)
		if err != nil {
			return err
		}
		count, err = Registry().Len(name)
		return err
	})
	return uintptr(count)
}

// Build builds the named index.
func Build(namePtr unsafe.Pointer) {
	call("build", func() error {
		name, err := decodeName("build", namePtr)
		if err != nil {
			return err
		}
		return Registry().Build(name)
	})
}

// Search returns up to k results for the query at data, or nil on failure.
func Search(namePtr unsafe.Pointer, k uintptr, data unsafe.Pointer, dim uintptr) []ann.Result {
	var results []ann.Result
	call("search", func() error {
		name, err := decodeName("search", namePtr)
		if err != nil {
			return err
		}
		query, err := decodeVector("search", name, data, dim)
		if err != nil {
			return err
		}
		if k > uintptr(int(^uint(0)>>1)) {
			return invalid("search", name, "k %d out of range", k)
		}
		results, err = Registry().Search(name, int(k), query)
		return err
	})
	return results
}

// Save writes the named index to the two locations.
func Save(namePtr, indexPtr, elementsPtr unsafe.Pointer) bool {
	return call("save", func() error {
		name, err := decodeName("save", namePtr)
		if err != nil {
			return err
		}
		indexLocation, elementsLocation, err := decodeLocations("save", name, indexPtr, elementsPtr)
		if err != nil {
			return err
		}
		return Registry().Save(context.Background(), name, indexLocation, elementsLocation)
	})
}

// Load restores the named index from the two locations.
func Load(namePtr, indexPtr, elementsPtr unsafe.Pointer) bool {
	return call("load", func() error {
		name, err := decodeName("load", namePtr)
		if err != nil {
			return err
		}
		indexLocation, elementsLocation, err := decodeLocations("load", name, indexPtr, elementsPtr)
		if err != nil {
			return err
		}
		return Registry().Load(context.Background(), name, indexLocation, elementsLocation)
	})
}

func decodeLocations(op, name string, indexPtr, elementsPtr unsafe.Pointer) (string, string, error) {
	indexLocation, err := DecodeString(indexPtr)
	if err != nil || indexLocation == "" {
		return "", "", invalid(op, name, "index location: %v", orEmpty(err))
	}
	elementsLocation, err := DecodeString(elementsPtr)
	if err != nil || elementsLocation == "" {
		return "", "", invalid(op, name, "elements location: %v", orEmpty(err))
	}
	return indexLocation, elementsLocation, nil
}

func orEmpty(err error) error {
	if err == nil {
		return errors.New("empty")
	}
	return err
}

// Configure rebuilds the process registry from the YAML file at pathPtr. It
// is refused once any index exists.
func Configure(pathPtr unsafe.Pointer) bool {
	return call("configure", func() error {
		path, err := DecodeString(pathPtr)
		if err != nil || path == "" {
			return invalid("configure", "", "config path: %v", orEmpty(err))
		}
		cfg, err := config.Load(path)
		if err != nil {
			return invalid("configure", "", "%v", err)
		}
		r, err := registry.FromConfig(context.Background(), cfg)
		if err != nil {
			return invalid("configure", "", "%v", err)
		}
		old := Registry()
		if err := old.Retire(); err != nil {
			_ = r.Close()
			return err
		}
		if !current.CompareAndSwap(old, r) {
			_ = r.Close()
			return invalid("configure", "", "registry changed concurrently")
		}
		_ = old.Close()
		return nil
	})
}
