package loadctx

import (
	"errors"

	"github.com/sliverarmory/loadctx/native"
	"github.com/sliverarmory/loadctx/resource"
)

var (
	// ErrUnresolvedManagedReference reports that no loaded module embeds a
	// payload for the requested module. The triggering load fails.
	ErrUnresolvedManagedReference = resource.ErrUnresolved

	// ErrNativeLibraryNotFound reports that neither default search nor the
	// platform directory under the root holds the library. Recoverable.
	ErrNativeLibraryNotFound = native.ErrNotFound

	// ErrMismatchedLoadContext reports a resolution request issued for a
	// context other than the one the resolver was bound to. Fatal.
	ErrMismatchedLoadContext = errors.New("loadctx: mismatched load context")

	// ErrNullModuleReference reports a resolution request without a module
	// name. Fatal.
	ErrNullModuleReference = errors.New("loadctx: null module reference")

	ErrAlreadyInitialized  = errors.New("loadctx: already initialized")
	ErrNotInitialized      = errors.New("loadctx: not initialized")
	ErrNotActive           = errors.New("loadctx: resolvers not registered")
	ErrResolversRegistered = errors.New("loadctx: resolvers already registered")
)

// IsFatal reports whether err belongs to the classes that abort the
// process: a mismatched context or a null module reference.
func IsFatal(err error) bool {
	return errors.Is(err, ErrMismatchedLoadContext) || errors.Is(err, ErrNullModuleReference)
}
