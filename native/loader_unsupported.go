//go:build !windows && !darwin && !freebsd && !linux

package native

func (System) Open(path string) (uintptr, error) {
	_ = path
	return 0, ErrUnsupported
}

func (System) Symbol(handle uintptr, name string) (uintptr, error) {
	_, _ = handle, name
	return 0, ErrUnsupported
}
