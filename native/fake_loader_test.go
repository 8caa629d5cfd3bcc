package native

import (
	"errors"
	"fmt"
	"sync"
)

// fakeLoader hands out one stable handle per path, the way dlopen does, and
// counts how often each path was opened.
type fakeLoader struct {
	mu      sync.Mutex
	handles map[string]uintptr
	opens   map[string]int
	symbols map[string]uintptr
	openErr error
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		handles: make(map[string]uintptr),
		opens:   make(map[string]int),
		symbols: make(map[string]uintptr),
	}
}

func (f *fakeLoader) Open(path string) (uintptr, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.openErr != nil {
		return 0, f.openErr
	}
	f.opens[path]++
	handle, ok := f.handles[path]
	if !ok {
		handle = uintptr(0x1000 + len(f.handles))
		f.handles[path] = handle
	}
	return handle, nil
}

func (f *fakeLoader) Symbol(handle uintptr, name string) (uintptr, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	addr, ok := f.symbols[name]
	if !ok {
		return 0, fmt.Errorf("symbol %s not found in %#x", name, handle)
	}
	return addr, nil
}

func (f *fakeLoader) openCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens[path]
}

var errFakeBadImage = errors.New("bad image format")
