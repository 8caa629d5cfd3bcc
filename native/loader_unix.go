//go:build darwin || freebsd || linux

package native

import "github.com/ebitengine/purego"

// Open calls dlopen with RTLD_NOW so missing dependencies fail here rather
// than at first call.
func (System) Open(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

func (System) Symbol(handle uintptr, name string) (uintptr, error) {
	return purego.Dlsym(handle, name)
}
