package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

var (
	// ErrNotFound reports a location with no stored stream.
	ErrNotFound = errors.New("store: not found")
	// ErrUnsupportedScheme reports a location whose scheme has no backend.
	ErrUnsupportedScheme = errors.New("store: unsupported scheme")
	// ErrInvalidLocation reports a malformed location.
	ErrInvalidLocation = errors.New("store: invalid location")
)

// Store reads and writes whole streams addressed by key.
type Store interface {
	// Create opens key for writing, replacing any previous content once the
	// writer is closed successfully.
	Create(ctx context.Context, key string) (io.WriteCloser, error)
	// Open opens key for reading.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Aborter is implemented by writers that can discard what was written
// instead of committing it.
type Aborter interface {
	Abort(cause error) error
}

// Abort discards w without committing it when w supports that, and closes
// it otherwise.
func Abort(w io.WriteCloser, cause error) error {
	if a, ok := w.(Aborter); ok {
		return a.Abort(cause)
	}
	return w.Close()
}

// Resolver maps location schemes to stores.
type Resolver struct {
	mu      sync.RWMutex
	schemes map[string]Store
	local   Store
}

// NewResolver returns a resolver with local files registered as the default
// and under "file".
func NewResolver() *Resolver {
	local := NewFileStore()
	return &Resolver{
		schemes: map[string]Store{"file": local},
		local:   local,
	}
}

// Register binds scheme to s, replacing any previous binding.
func (r *Resolver) Register(scheme string, s Store) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemes[strings.ToLower(scheme)] = s
}

// Close releases stores that hold resources.
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for _, s := range r.schemes {
		if c, ok := s.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

// Resolve returns the store and key for location.
func (r *Resolver) Resolve(location string) (Store, string, error) {
	if location == "" {
		return nil, "", fmt.Errorf("%w: empty location", ErrInvalidLocation)
	}
	scheme, key, ok := splitScheme(location)
	if !ok {
		return r.local, location, nil
	}
	r.mu.RLock()
	s, found := r.schemes[scheme]
	r.mu.RUnlock()
	if !found {
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
	if key == "" {
		return nil, "", fmt.Errorf("%w: %q has no key", ErrInvalidLocation, location)
	}
	return s, key, nil
}

// Create resolves location and opens it for writing.
func (r *Resolver) Create(ctx context.Context, location string) (io.WriteCloser, error) {
	s, key, err := r.Resolve(location)
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, key)
}

// Open resolves location and opens it for reading.
func (r *Resolver) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	s, key, err := r.Resolve(location)
	if err != nil {
		return nil, err
	}
	return s.Open(ctx, key)
}

// splitScheme recognizes "<scheme>://<rest>" where scheme is a letter followed
// by letters, digits, '+', '-' or '.'. Drive letters ("C:\x") never match.
func splitScheme(location string) (string, string, bool) {
	i := strings.Index(location, "://")
	if i <= 0 {
		return "", "", false
	}
	scheme := location[:i]
	for j, c := range scheme {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case j > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return "", "", false
		}
	}
	return strings.ToLower(scheme), location[i+3:], true
}

// splitBucket splits "bucket/key" object locations.
func splitBucket(key string) (string, string, error) {
	bucket, object, ok := strings.Cut(key, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("%w: want bucket/key, got %q", ErrInvalidLocation, key)
	}
	return bucket, object, nil
}
