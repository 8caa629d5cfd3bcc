//go:build windows

package native

import "golang.org/x/sys/windows"

// Open loads the DLL with the altered search path so dependencies sitting
// next to it are found before the system directories.
func (System) Open(path string) (uintptr, error) {
	handle, err := windows.LoadLibraryEx(path, 0, windows.LOAD_WITH_ALTERED_SEARCH_PATH)
	if err != nil {
		return 0, err
	}
	return uintptr(handle), nil
}

func (System) Symbol(handle uintptr, name string) (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(handle), name)
}
