package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/viant/annreg/ann"
	"github.com/viant/annreg/ann/bruteforce"
	"github.com/viant/annreg/ann/cover"
	"github.com/viant/annreg/ann/graph"
	"github.com/viant/annreg/config"
	"github.com/viant/annreg/logger"
	"github.com/viant/annreg/persist"
	"github.com/viant/annreg/store"
	"github.com/viant/annreg/vector"
)

// Registry maps index names to builders.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	retired bool
	global  sync.Mutex

	factory     ann.Factory
	searchWidth int
	lockMode    LockMode
	adapter     *persist.Adapter
	logger      *logger.Logger
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	loaders := append([]ann.Factory{o.factory}, o.loaders...)
	if o.resolver == nil {
		o.resolver = store.NewResolver()
		o.resolver.Register("sqlite", store.NewCatalogStore())
	}
	return &Registry{
		entries:     make(map[string]*entry),
		factory:     o.factory,
		searchWidth: o.searchWidth,
		lockMode:    o.lockMode,
		adapter:     persist.NewAdapter(o.resolver, loaders...),
		logger:      o.logger,
	}
}

// FromConfig creates a registry from configuration, logging to stderr. All
// builder kinds can be loaded; cfg.Kind selects the kind Create uses.
func FromConfig(ctx context.Context, cfg *config.Config) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	metric, err := vector.ParseMetric(cfg.Metric)
	if err != nil {
		return nil, err
	}
	factories := map[string]ann.Factory{
		graph.Kind: graph.Factory{Options: graph.Options{
			MaxNeighbors:      cfg.Graph.MaxNeighbors,
			ConstructionWidth: cfg.Graph.ConstructionWidth,
			Metric:            metric,
			Seed:              cfg.Graph.Seed,
		}},
		cover.Kind:      cover.Factory{Options: cover.Options{Base: float32(cfg.Cover.Base), Metric: metric}},
		bruteforce.Kind: bruteforce.Factory{Metric: metric},
	}
	resolver, err := store.FromConfig(ctx, cfg.Stores)
	if err != nil {
		return nil, err
	}
	opts := []Option{
		WithFactory(factories[cfg.Kind]),
		WithSearchWidth(cfg.SearchWidth),
		WithLockMode(LockMode(cfg.Lock)),
		WithLogger(logger.FromConfig(cfg.Log, os.Stderr)),
		WithResolver(resolver),
	}
	for kind, f := range factories {
		if kind != cfg.Kind {
			opts = append(opts, WithLoaders(f))
		}
	}
	return New(opts...), nil
}

// Close releases store resources.
func (r *Registry) Close() error {
	return r.adapter.Resolver().Close()
}

// Logger returns the registry logger.
func (r *Registry) Logger() *logger.Logger { return r.logger }

// SearchWidth returns the candidate width used by Search.
func (r *Registry) SearchWidth() int { return r.searchWidth }

// exclusive takes the registry-wide lock in Global mode.
func (r *Registry) exclusive() func() {
	if r.lockMode != Global {
		return func() {}
	}
	r.global.Lock()
	return r.global.Unlock
}

// recoverFault converts a panic into an InternalFault stored in *err.
func (r *Registry) recoverFault(op, name string, err *error) {
	if rec := recover(); rec != nil {
		r.logger.LogFault(context.Background(), op, name, rec)
		*err = newError(op, name, InternalFault, fmt.Errorf("panic: %v", rec))
	}
}

func (r *Registry) lookup(name string) *entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[name]
}

func (r *Registry) install(op, name string, e *entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.retired {
		return newError(op, name, InternalFault, errRetired)
	}
	r.entries[name] = e
	return nil
}

var errRetired = errors.New("registry retired")

// Retire marks an empty registry as replaced: later Create and Load calls
// fail instead of installing indexes nobody will reach. It fails with
// InvalidInput when the registry holds any index.
func (r *Registry) Retire() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) > 0 {
		return newError("retire", "", InvalidInput, fmt.Errorf("registry holds %d indexes", len(r.entries)))
	}
	r.retired = true
	return nil
}

func validName(op, name string) error {
	if name == "" {
		return newError(op, name, InvalidInput, errors.New("empty index name"))
	}
	return nil
}

func builderFailure(op, name string, err error) error {
	if errors.Is(err, vector.ErrDimensionMismatch) {
		return newError(op, name, InvalidInput, err)
	}
	return newError(op, name, InternalFault, err)
}

// Create installs a fresh empty index under name, replacing any prior one.
func (r *Registry) Create(name string) (err error) {
	defer r.recoverFault("create", name, &err)
	if err := validName("create", name); err != nil {
		return err
	}
	defer r.exclusive()()
	return r.install("create", name, newEntry(r.factory.New()))
}

// Add appends v to the named index and returns the element count after the
// push.
func (r *Registry) Add(name string, v vector.Vector) (count int, err error) {
	defer r.recoverFault("add", name, &err)
	defer r.exclusive()()
	e := r.lookup(name)
	if e == nil {
		return 0, newError("add", name, NotFound, nil)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.builder.Push(v), nil
}

// Len returns the number of elements in the named index.
func (r *Registry) Len(name string) (count int, err error) {
	defer r.recoverFault("len", name, &err)
	defer r.exclusive()()
	e := r.lookup(name)
	if e == nil {
		return 0, newError("len", name, NotFound, nil)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.builder.Len(), nil
}

// Build compiles every element of the named index. It always delegates to
// the builder, so building twice rebuilds.
func (r *Registry) Build(name string) (err error) {
	defer r.recoverFault("build", name, &err)
	defer r.exclusive()()
	e := r.lookup(name)
	if e == nil {
		return newError("build", name, NotFound, nil)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.builder.Build(); err != nil {
		r.logger.LogBuild(context.Background(), name, e.builder.Built(), err)
		return builderFailure("build", name, err)
	}
	r.logger.LogBuild(context.Background(), name, e.builder.Built(), nil)
	return nil
}

// Search returns up to k nearest built elements, best first. An index that
// was never built yields no results.
func (r *Registry) Search(name string, k int, query vector.Vector) (results []ann.Result, err error) {
	defer r.recoverFault("search", name, &err)
	defer r.exclusive()()
	e := r.lookup(name)
	if e == nil {
		return nil, newError("search", name, NotFound, nil)
	}
	if k <= 0 {
		return []ann.Result{}, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	results, err = e.builder.Search(query, k, r.searchWidth)
	if err != nil {
		return nil, builderFailure("search", name, err)
	}
	if results == nil {
		results = []ann.Result{}
	}
	return results, nil
}

// Names returns the registered names in ascending order.
func (r *Registry) Names() []string {
	defer r.exclusive()()
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Drop removes the named index.
func (r *Registry) Drop(name string) error {
	defer r.exclusive()()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; !ok {
		return newError("drop", name, NotFound, nil)
	}
	delete(r.entries, name)
	return nil
}

func persistFailure(op, name string, err error) error {
	switch {
	case errors.Is(err, persist.ErrPanic):
		return newError(op, name, InternalFault, err)
	case errors.Is(err, persist.ErrIO):
		return newError(op, name, IOFailure, err)
	case errors.Is(err, persist.ErrFormat), errors.Is(err, ann.ErrCorruptIndex):
		return newError(op, name, InvalidInput, err)
	}
	return newError(op, name, InternalFault, err)
}

// Save writes the named index to indexLocation and its elements to
// elementsLocation. Nothing is created when the name is unknown.
func (r *Registry) Save(ctx context.Context, name, indexLocation, elementsLocation string) (err error) {
	defer func() { r.logger.LogSave(ctx, name, indexLocation, elementsLocation, err) }()
	defer r.recoverFault("save", name, &err)
	defer r.exclusive()()
	e := r.lookup(name)
	if e == nil {
		return newError("save", name, NotFound, nil)
	}
	if indexLocation == "" || elementsLocation == "" {
		return newError("save", name, InvalidInput, errors.New("empty location"))
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := r.adapter.Save(ctx, e.builder, indexLocation, elementsLocation); err != nil {
		return persistFailure("save", name, err)
	}
	return nil
}

// Load restores an index from its two streams and installs it under name,
// replacing any prior index. Nothing is installed unless both streams load.
func (r *Registry) Load(ctx context.Context, name, indexLocation, elementsLocation string) (err error) {
	elements := 0
	defer func() { r.logger.LogLoad(ctx, name, indexLocation, elementsLocation, elements, err) }()
	defer r.recoverFault("load", name, &err)
	if err := validName("load", name); err != nil {
		return err
	}
	if indexLocation == "" || elementsLocation == "" {
		return newError("load", name, InvalidInput, errors.New("empty location"))
	}
	defer r.exclusive()()
	b, err := r.adapter.Load(ctx, indexLocation, elementsLocation)
	if err != nil {
		return persistFailure("load", name, err)
	}
	if err := r.install("load", name, newEntry(b)); err != nil {
		return err
	}
	elements = b.Len()
	return nil
}
