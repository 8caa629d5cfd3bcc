package loadctx

import (
	"context"
	"fmt"

	"github.com/sliverarmory/loadctx/module"
	"github.com/sliverarmory/loadctx/native"
	"github.com/sliverarmory/loadctx/resource"
)

// Resolver supplies modules and native libraries that default search could
// not find. Implementations must be safe for concurrent use.
type Resolver interface {
	ResolveModule(ctx context.Context, lc *LoadContext, name string) (module.Module, error)
	ResolveNative(requester, name string) (*native.Library, error)
}

// Resolvers binds an embedded resource resolver and a native resolver to
// one LoadContext.
type Resolvers struct {
	lc      *LoadContext
	modules *resource.Resolver
	natives *native.Resolver
}

var _ Resolver = (*Resolvers)(nil)

// NewResolver binds the given resolvers to lc. Either resolver may be nil,
// in which case every request of that kind goes unresolved.
func NewResolver(lc *LoadContext, modules *resource.Resolver, natives *native.Resolver) *Resolvers {
	return &Resolvers{lc: lc, modules: modules, natives: natives}
}

func (r *Resolvers) ResolveModule(ctx context.Context, lc *LoadContext, name string) (module.Module, error) {
	if lc != r.lc {
		return nil, ErrMismatchedLoadContext
	}
	if name == "" {
		return nil, ErrNullModuleReference
	}
	if r.modules == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedManagedReference, name)
	}
	return r.modules.Resolve(ctx, name)
}

func (r *Resolvers) ResolveNative(requester, name string) (*native.Library, error) {
	if r.natives == nil {
		return nil, fmt.Errorf("%w: %s", ErrNativeLibraryNotFound, name)
	}
	return r.natives.Resolve(requester, name)
}
