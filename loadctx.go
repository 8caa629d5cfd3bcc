// Package loadctx is a module-resolution layer for application startup.
//
// A LoadContext owns the modules loaded into the process and acts as the
// host loader: Load and LoadNative first try default search and, when that
// fails, ask the registered Resolver for an alternative. The stock
// Resolvers type looks for managed modules embedded as resources in modules
// that are already loaded, and for native libraries in a platform specific
// directory under a fixed root.
package loadctx

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/sliverarmory/loadctx/module"
	"github.com/sliverarmory/loadctx/native"
)

// State is the lifecycle stage of a LoadContext. Contexts only move
// forward; there is no teardown.
type State int

const (
	Uninitialized State = iota
	Initialized
	Active
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Active:
		return "active"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// LoadContext is the scope that owns loaded modules. Construct one per
// process and pass it explicitly to whatever needs to load modules.
type LoadContext struct {
	mu       sync.RWMutex
	state    State
	root     string
	resolver Resolver

	modules       *module.Set
	defaultNative native.Loader
	logger        *zap.Logger
}

type Option func(*LoadContext)

func WithLogger(logger *zap.Logger) Option {
	return func(lc *LoadContext) {
		if logger != nil {
			lc.logger = logger
		}
	}
}

// WithDefaultNativeLoader sets the loader LoadNative uses for default
// search by bare library name. A nil loader disables default search, so
// every native request goes straight to the resolver.
func WithDefaultNativeLoader(loader native.Loader) Option {
	return func(lc *LoadContext) {
		lc.defaultNative = loader
	}
}

// New returns an uninitialized context.
func New(opts ...Option) *LoadContext {
	lc := &LoadContext{
		modules:       module.NewSet(),
		defaultNative: native.System{},
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(lc)
	}
	return lc
}

// Initialize fixes the root directory. It must be absolute and can only be
// set once.
func (lc *LoadContext) Initialize(root string) error {
	if root == "" {
		return errors.New("loadctx: empty root directory")
	}
	if !filepath.IsAbs(root) {
		return fmt.Errorf("loadctx: root directory %q is not absolute", root)
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	if lc.state != Uninitialized {
		lc.logger.Error("rejecting re-initialization",
			zap.String("root", lc.root),
			zap.String("requested_root", root),
		)
		return ErrAlreadyInitialized
	}
	lc.root = filepath.Clean(root)
	lc.state = Initialized

	lc.logger.Info("load context initialized", zap.String("root", lc.root))
	return nil
}

// RegisterResolvers attaches the resolver consulted when default search
// fails and activates the context.
func (lc *LoadContext) RegisterResolvers(r Resolver) error {
	if r == nil {
		return errors.New("loadctx: nil resolver")
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	switch lc.state {
	case Uninitialized:
		return ErrNotInitialized
	case Active:
		return ErrResolversRegistered
	}
	lc.resolver = r
	lc.state = Active

	lc.logger.Debug("resolvers registered")
	return nil
}

func (lc *LoadContext) Root() string {
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return lc.root
}

func (lc *LoadContext) State() State {
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return lc.state
}

// Add registers an already loaded module, such as the host binary's own
// embedded module. It returns the module resident under that name.
func (lc *LoadContext) Add(m module.Module) module.Module {
	resident, added := lc.modules.Add(m)
	if added {
		lc.logger.Debug("module added", zap.String("module", m.Name()))
	}
	return resident
}

// Snapshot returns the loaded modules in load order.
func (lc *LoadContext) Snapshot() []module.Module {
	return lc.modules.Snapshot()
}

// Modules is an alias of Snapshot.
func (lc *LoadContext) Modules() []module.Module {
	return lc.Snapshot()
}

func (lc *LoadContext) activeResolver() (Resolver, error) {
	lc.mu.RLock()
	defer lc.mu.RUnlock()

	if lc.state != Active {
		return nil, ErrNotActive
	}
	return lc.resolver, nil
}

// Load returns the module called name. Default search is the set of
// modules already owned by the context; on a miss the resolver is asked
// and its result becomes owned by the context.
//
// An empty name, or a resolver reporting a mismatched context, is a
// programming error: it is logged and Load panics with the error.
func (lc *LoadContext) Load(ctx context.Context, name string) (module.Module, error) {
	if name == "" {
		lc.fatal(ErrNullModuleReference)
	}

	resolver, err := lc.activeResolver()
	if err != nil {
		lc.logger.Error("load before activation", zap.String("requested", name), zap.Error(err))
		return nil, err
	}

	if m, ok := lc.modules.Lookup(name); ok {
		return m, nil
	}

	lc.logger.Debug("module not resident, resolving", zap.String("requested", name))
	m, err := resolver.ResolveModule(ctx, lc, name)
	if err != nil {
		if IsFatal(err) {
			lc.fatal(err, zap.String("requested", name))
		}
		lc.logger.Error("module load failed", zap.String("requested", name), zap.Error(err))
		return nil, fmt.Errorf("loadctx: load %s: %w", name, err)
	}
	if m == nil {
		lc.logger.Error("module load failed", zap.String("requested", name), zap.Error(ErrUnresolvedManagedReference))
		return nil, fmt.Errorf("loadctx: load %s: %w", name, ErrUnresolvedManagedReference)
	}

	resident, added := lc.modules.Add(m)
	if !added {
		lc.logger.Debug("module became resident concurrently, keeping first", zap.String("module", name))
	}
	return resident, nil
}

// LoadNative opens a native library for requester. Default search by bare
// name runs first; when it fails the resolver is asked.
func (lc *LoadContext) LoadNative(requester, name string) (*native.Library, error) {
	if name == "" {
		err := errors.New("loadctx: empty native library name")
		lc.logger.Error("native load failed", zap.String("requester", requester), zap.Error(err))
		return nil, err
	}

	resolver, err := lc.activeResolver()
	if err != nil {
		lc.logger.Error("native load before activation", zap.String("library", name), zap.Error(err))
		return nil, err
	}

	if lc.defaultNative != nil {
		library, err := native.Open(lc.defaultNative, name)
		if err == nil {
			lc.logger.Debug("native library found by default search",
				zap.String("requester", requester),
				zap.String("library", name),
			)
			return library, nil
		}
		lc.logger.Debug("default native search failed",
			zap.String("library", name),
			zap.Error(err),
		)
	}

	library, err := resolver.ResolveNative(requester, name)
	if err == nil && library == nil {
		err = ErrNativeLibraryNotFound
	}
	if err != nil {
		if errors.Is(err, ErrNativeLibraryNotFound) {
			lc.logger.Warn("native library not found",
				zap.String("requester", requester),
				zap.String("library", name),
			)
		} else {
			lc.logger.Error("native load failed",
				zap.String("requester", requester),
				zap.String("library", name),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("loadctx: load native %s: %w", name, err)
	}
	return library, nil
}

func (lc *LoadContext) fatal(err error, fields ...zap.Field) {
	lc.logger.Error("fatal load context failure", append(fields, zap.Error(err))...)
	panic(err)
}
