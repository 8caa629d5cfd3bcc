package native

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/sliverarmory/loadctx/platform"
)

const defaultPreloadConcurrency = 4

// Resolver finds native libraries in the platform subdirectory of a fixed
// root. It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	root        string
	family      platform.Family
	loader      Loader
	logger      *zap.Logger
	concurrency int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFamily overrides the operating system family used to pick the
// platform subdirectory.
func WithFamily(family platform.Family) Option {
	return func(r *Resolver) {
		r.family = family
	}
}

// WithLoader replaces the System loader.
func WithLoader(loader Loader) Option {
	return func(r *Resolver) {
		if loader != nil {
			r.loader = loader
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithPreloadConcurrency bounds the number of libraries Preload opens at once.
func WithPreloadConcurrency(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// NewResolver creates a resolver rooted at root, which must be absolute.
func NewResolver(root string, opts ...Option) (*Resolver, error) {
	if root == "" {
		return nil, errors.New("native: empty root directory")
	}
	if !filepath.IsAbs(root) {
		return nil, fmt.Errorf("native: root directory %q is not absolute", root)
	}

	r := &Resolver{
		root:        filepath.Clean(root),
		family:      platform.Current(),
		loader:      System{},
		logger:      zap.NewNop(),
		concurrency: defaultPreloadConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Resolver) Root() string {
	return r.root
}

func (r *Resolver) Family() platform.Family {
	return r.family
}

// Path composes root/<platform dir>/name. For unrecognized families the
// platform directory is empty and the library is expected directly under
// the root.
func (r *Resolver) Path(name string) string {
	return filepath.Join(r.root, platform.Dir(r.family), name)
}

// Resolve opens name from the platform directory on behalf of requester.
// The path is recomputed and re-checked on every call. A missing file
// returns ErrNotFound; a present file that fails to load returns the
// loader error.
func (r *Resolver) Resolve(requester, name string) (*Library, error) {
	r.logger.Debug("resolving native library",
		zap.String("requester", requester),
		zap.String("library", name),
	)

	path := r.Path(name)
	r.logger.Debug("composed native library path",
		zap.String("library", name),
		zap.String("path", path),
	)

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		r.logger.Debug("native library not present", zap.String("path", path))
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	case err != nil:
		r.logger.Warn("stat native library", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, path, err)
	case info.IsDir():
		r.logger.Debug("native library path is a directory", zap.String("path", path))
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}

	library, err := Open(r.loader, path)
	if err != nil {
		r.logger.Error("load native library",
			zap.String("requester", requester),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	r.logger.Info("loaded native library",
		zap.String("requester", requester),
		zap.String("path", path),
	)
	return library, nil
}

// Preload resolves names concurrently. The returned slice matches names by
// index; entries that failed are nil and their errors are joined into the
// returned error.
func (r *Resolver) Preload(ctx context.Context, requester string, names []string) ([]*Library, error) {
	libraries := make([]*Library, len(names))

	p := pool.New().WithContext(ctx).WithMaxGoroutines(r.concurrency)
	for i, name := range names {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			library, err := r.Resolve(requester, name)
			if err != nil {
				return fmt.Errorf("preload %s: %w", name, err)
			}
			libraries[i] = library
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return libraries, err
	}
	return libraries, nil
}
