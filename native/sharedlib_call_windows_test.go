//go:build windows

package native_test

import "syscall"

// The export takes no arguments; last-error semantics are ignored.
func callInt(addr uintptr) int32 {
	r1, _, _ := syscall.SyscallN(addr)
	return int32(r1)
}
