//go:build darwin || linux

package native_test

import "github.com/ebitengine/purego"

func callInt(addr uintptr) int32 {
	r1, _, _ := purego.SyscallN(addr)
	return int32(r1)
}
