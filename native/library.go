// Package native locates platform shared libraries under a resolution root
// and opens them by absolute path with the operating system loader.
package native

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound reports that no file exists at the composed library path.
	// It is a soft failure: callers may still fall back to the default OS
	// search.
	ErrNotFound = errors.New("native: library not found")

	// ErrUnsupported is returned by System on platforms without a dynamic
	// loader binding.
	ErrUnsupported = errors.New("native: dynamic loading is not supported on this platform")
)

// Loader opens shared libraries and resolves their exports.
type Loader interface {
	Open(path string) (uintptr, error)
	Symbol(handle uintptr, name string) (uintptr, error)
}

// System is the Loader backed by the operating system's dynamic linker.
type System struct{}

var _ Loader = System{}

// Library is a shared library opened from an absolute path. Libraries stay
// resident for the life of the process.
type Library struct {
	path   string
	handle uintptr
	loader Loader
}

// Open loads the library at path using loader.
func Open(loader Loader, path string) (*Library, error) {
	if path == "" {
		return nil, errors.New("native: empty library path")
	}

	handle, err := loader.Open(path)
	if err != nil {
		return nil, fmt.Errorf("native: open %s: %w", path, err)
	}
	if handle == 0 {
		return nil, fmt.Errorf("native: open %s: loader returned a nil handle", path)
	}
	return &Library{path: path, handle: handle, loader: loader}, nil
}

// Path returns the path the library was opened from.
func (library *Library) Path() string {
	return library.path
}

// Handle returns the opaque OS handle.
func (library *Library) Handle() uintptr {
	return library.handle
}

// Symbol resolves an exported symbol. Toolchains disagree on a leading
// underscore, so both spellings are tried.
func (library *Library) Symbol(name string) (uintptr, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, errors.New("native: symbol name cannot be empty")
	}

	candidates := []string{name}
	if strings.HasPrefix(name, "_") {
		candidates = append(candidates, strings.TrimPrefix(name, "_"))
	} else {
		candidates = append(candidates, "_"+name)
	}

	var (
		addr uintptr
		err  error
	)
	for _, candidate := range candidates {
		addr, err = library.loader.Symbol(library.handle, candidate)
		if err == nil && addr != 0 {
			return addr, nil
		}
	}
	if err == nil {
		err = errors.New("symbol resolved to a nil address")
	}
	return 0, fmt.Errorf("native: resolve symbol %q in %s: %w", name, library.path, err)
}
