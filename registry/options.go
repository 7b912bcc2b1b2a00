package registry

import (
	"github.com/viant/annreg/ann"
	"github.com/viant/annreg/ann/graph"
	"github.com/viant/annreg/config"
	"github.com/viant/annreg/logger"
	"github.com/viant/annreg/store"
)

// LockMode selects how operations are serialized.
type LockMode string

const (
	// PerIndex holds the name map lock only for lookup and install, and a
	// per-entry lock for the duration of each operation.
	PerIndex LockMode = config.LockPerIndex
	// Global holds one registry-wide lock for the whole of every operation.
	Global LockMode = config.LockGlobal
)

type options struct {
	factory     ann.Factory
	loaders     []ann.Factory
	searchWidth int
	lockMode    LockMode
	logger      *logger.Logger
	resolver    *store.Resolver
}

func defaultOptions() options {
	return options{
		factory:     graph.Factory{},
		searchWidth: config.DefaultSearchWidth,
		lockMode:    PerIndex,
		logger:      logger.NoopLogger(),
	}
}

// Option configures a Registry.
type Option func(*options)

// WithFactory sets the builder kind used by Create. The factory can also
// restore its own kind on Load.
func WithFactory(f ann.Factory) Option {
	return func(o *options) {
		if f != nil {
			o.factory = f
		}
	}
}

// WithLoaders adds factories for kinds accepted by Load.
func WithLoaders(fs ...ann.Factory) Option {
	return func(o *options) { o.loaders = append(o.loaders, fs...) }
}

// WithSearchWidth sets the candidate width passed to builders on Search.
func WithSearchWidth(width int) Option {
	return func(o *options) {
		if width > 0 {
			o.searchWidth = width
		}
	}
}

// WithLockMode selects the locking discipline.
func WithLockMode(mode LockMode) Option {
	return func(o *options) {
		if mode == Global || mode == PerIndex {
			o.lockMode = mode
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithResolver sets the location resolver used by Save and Load.
func WithResolver(r *store.Resolver) Option {
	return func(o *options) { o.resolver = r }
}
