// Package platform maps operating system families to the subdirectory that
// holds their native libraries under a resolution root.
package platform

import (
	"fmt"
	"runtime"
	"strings"
)

// Family identifies an operating system family.
type Family string

const (
	Windows Family = "windows"
	Darwin  Family = "darwin"
	Linux   Family = "linux"
)

// Current returns the family of the running process.
func Current() Family {
	return Family(runtime.GOOS)
}

// Families returns the families that have a dedicated native directory.
func Families() []Family {
	return []Family{Windows, Darwin, Linux}
}

// Dir returns the native library subdirectory for family.
//
// Unrecognized families map to the empty string, which places libraries
// directly under the root. Callers join the result into a path, so the
// empty string is returned instead of an error.
func Dir(family Family) string {
	switch family {
	case Windows:
		return "x64"
	case Darwin:
		return "osx"
	case Linux:
		return "lib64"
	default:
		return ""
	}
}

// Parse converts a user supplied family name. GOOS names are accepted along
// with a few common aliases. Any other non-empty value is kept as an
// unrecognized family so the empty-directory fallback still applies.
func Parse(name string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return "", fmt.Errorf("platform: empty family name")
	case "windows", "win", "win64":
		return Windows, nil
	case "darwin", "macos", "osx":
		return Darwin, nil
	case "linux":
		return Linux, nil
	default:
		return Family(strings.ToLower(strings.TrimSpace(name))), nil
	}
}

// Known reports whether family has a dedicated native directory.
func (f Family) Known() bool {
	return Dir(f) != ""
}

func (f Family) String() string {
	return string(f)
}
