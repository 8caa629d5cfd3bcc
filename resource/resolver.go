// Package resource resolves missing module references from payloads
// embedded in modules that are already loaded.
package resource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"go.uber.org/zap"

	"github.com/sliverarmory/loadctx/module"
)

const (
	// DefaultSuffix is the file suffix of embedded module payloads.
	DefaultSuffix = "wasm"

	// SystemPrefix marks modules whose resource tables are never searched.
	SystemPrefix = "System."
)

// ErrUnresolved reports that no loaded module embeds a payload for the
// requested name.
var ErrUnresolved = errors.New("resource: unresolved module reference")

// Source enumerates the modules currently loaded.
type Source interface {
	Snapshot() []module.Module
}

// Loader turns a payload into a resident module.
type Loader interface {
	Load(ctx context.Context, name string, payload []byte) (module.Module, error)
}

// Resolver scans loaded modules for an embedded payload matching a
// requested name. It keeps no state between calls.
type Resolver struct {
	source Source
	loader Loader
	suffix string
	logger *zap.Logger
}

type Option func(*Resolver)

// WithSuffix sets the payload suffix used when composing keys.
func WithSuffix(suffix string) Option {
	return func(r *Resolver) {
		if s := strings.TrimPrefix(suffix, "."); s != "" {
			r.suffix = s
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

func New(source Source, loader Loader, opts ...Option) *Resolver {
	r := &Resolver{
		source: source,
		loader: loader,
		suffix: DefaultSuffix,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Key composes the resource key a host module stores a payload under.
func Key(host, requested, suffix string) string {
	return host + "." + requested + "." + suffix
}

// Suffix returns the payload suffix in use.
func (r *Resolver) Suffix() string {
	return r.suffix
}

// Resolve searches a snapshot of the loaded modules in enumeration order
// and loads the first non-empty payload stored under
// <module>.<name>.<suffix>. Modules under SystemPrefix are skipped.
//
// Enumeration order is whatever the Source provides. When several modules
// embed the same payload name the first one wins; the chosen module is
// logged so the decision is visible.
func (r *Resolver) Resolve(ctx context.Context, name string) (module.Module, error) {
	if name == "" {
		return nil, errors.New("resource: empty module name")
	}

	r.logger.Debug("resolving module from embedded resources", zap.String("requested", name))

	for _, host := range r.source.Snapshot() {
		if strings.HasPrefix(host.Name(), SystemPrefix) {
			continue
		}

		key := Key(host.Name(), name, r.suffix)
		payload, err := host.Resource(key)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				r.logger.Warn("read embedded resource",
					zap.String("module", host.Name()),
					zap.String("key", key),
					zap.Error(err),
				)
			}
			continue
		}
		if len(payload) == 0 {
			continue
		}

		digest := module.Digest(payload)
		r.logger.Info("resolved module from embedded resource",
			zap.String("requested", name),
			zap.String("module", host.Name()),
			zap.String("key", key),
			zap.String("digest", digest),
		)

		loaded, err := r.loader.Load(ctx, name, payload)
		if err != nil {
			r.logger.Error("load embedded module payload",
				zap.String("requested", name),
				zap.String("module", host.Name()),
				zap.Error(err),
			)
			return nil, fmt.Errorf("resource: load %s from %s: %w", name, host.Name(), err)
		}
		return loaded, nil
	}

	r.logger.Warn("no embedded resource for module", zap.String("requested", name))
	return nil, fmt.Errorf("%w: %s", ErrUnresolved, name)
}
