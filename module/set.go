package module

import "sync"

// Set is an insertion-ordered collection of modules keyed by name. It is
// safe for concurrent use; enumeration goes through Snapshot so callers
// never iterate a slice that another goroutine is appending to.
type Set struct {
	mu      sync.RWMutex
	modules []Module
	byName  map[string]Module
}

func NewSet() *Set {
	return &Set{byName: make(map[string]Module)}
}

// Add registers m. If a module with the same name is already resident the
// set is unchanged and the resident module is returned with false.
func (s *Set) Add(m Module) (Module, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.byName[m.Name()]; ok {
		return existing, false
	}
	s.byName[m.Name()] = m
	s.modules = append(s.modules, m)
	return m, true
}

func (s *Set) Lookup(name string) (Module, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.byName[name]
	return m, ok
}

// Snapshot returns the modules in insertion order. The returned slice is a
// copy owned by the caller.
func (s *Set) Snapshot() []Module {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Module, len(s.modules))
	copy(out, s.modules)
	return out
}

func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.modules)
}
