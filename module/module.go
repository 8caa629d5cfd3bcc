// Package module defines the managed modules a load context owns and the
// embedded resource tables they expose.
package module

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/cespare/xxhash/v2"
)

// Module is a loaded unit with an embedded resource table.
type Module interface {
	Name() string

	// Resource returns the payload stored under key. A missing key returns
	// an error matching fs.ErrNotExist.
	Resource(key string) ([]byte, error)
}

// FS is a module whose resource table is a filesystem, typically an
// embed.FS compiled into the host binary or a bundle directory on disk.
// Resource keys are file names relative to the filesystem root.
type FS struct {
	name string
	fsys fs.FS
}

// NewFS returns a module named name backed by fsys.
func NewFS(name string, fsys fs.FS) *FS {
	return &FS{name: name, fsys: fsys}
}

func (m *FS) Name() string {
	return m.name
}

func (m *FS) Resource(key string) ([]byte, error) {
	if !fs.ValidPath(key) {
		return nil, fmt.Errorf("module %s: resource %q: %w", m.name, key, fs.ErrNotExist)
	}

	data, err := fs.ReadFile(m.fsys, key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("module %s: resource %q: %w", m.name, key, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("module %s: read resource %q: %w", m.name, key, err)
	}
	return data, nil
}

// Digest returns a short content hash of payload. It identifies which
// payload was loaded in logs; it is not a verification mechanism.
func Digest(payload []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(payload))
}
