package native_test

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// buildSharedLib compiles testdata/c/basic.c for the host into outDir. zig is
// preferred because it ships a cross-capable toolchain; the system cc is the
// fallback. The test is skipped when neither is available.
func buildSharedLib(t *testing.T, outDir string, name string) string {
	t.Helper()

	ext, err := sharedLibExt(runtime.GOOS)
	if err != nil {
		t.Skipf("build shared library: %v", err)
	}

	outputPath := filepath.Join(outDir, name+"."+ext)
	sourcePath := filepath.Join("testdata", "c", "basic.c")

	var linkArgs []string
	switch runtime.GOOS {
	case "darwin":
		linkArgs = []string{"-dynamiclib", "-fPIC"}
	case "windows":
		linkArgs = []string{"-shared"}
	default:
		linkArgs = []string{"-shared", "-fPIC"}
	}

	if _, err := exec.LookPath("zig"); err == nil {
		args := append([]string{"cc", "-O2", "-g0"}, linkArgs...)
		if target, ok := zigTargetFor(runtime.GOOS, runtime.GOARCH); ok {
			args = append(args, "-target", target)
		}
		args = append(args, "-o", outputPath, sourcePath)

		cmd := exec.Command("zig", args...)
		cmd.Env = append(
			os.Environ(),
			"ZIG_GLOBAL_CACHE_DIR="+filepath.Join(os.TempDir(), "loadctx-zig-global-cache"),
			"ZIG_LOCAL_CACHE_DIR="+filepath.Join(os.TempDir(), "loadctx-zig-local-cache"),
		)
		out, err := cmd.CombinedOutput()
		if err == nil {
			cleanupSidecars(outputPath, ext)
			return outputPath
		}
		t.Logf("zig cc failed, retrying with cc: %v\n%s", err, out)
	}

	if _, err := exec.LookPath("cc"); err != nil {
		t.Skip("neither zig nor cc found in PATH")
	}
	args := append([]string{"-O2", "-g0"}, linkArgs...)
	args = append(args, "-o", outputPath, sourcePath)
	out, err := exec.Command("cc", args...).CombinedOutput()
	if err != nil {
		t.Skipf("cc could not build a shared library: %v\n%s", err, out)
	}

	cleanupSidecars(outputPath, ext)
	return outputPath
}

func zigTargetFor(goos string, goarch string) (string, bool) {
	switch {
	case goos == "darwin" && goarch == "amd64":
		return "x86_64-macos", true
	case goos == "darwin" && goarch == "arm64":
		return "aarch64-macos", true
	case goos == "linux" && goarch == "386":
		return "x86-linux-gnu", true
	case goos == "linux" && goarch == "amd64":
		return "x86_64-linux-gnu", true
	case goos == "linux" && goarch == "arm64":
		return "aarch64-linux-gnu", true
	case goos == "windows" && goarch == "386":
		return "x86-windows-gnu", true
	case goos == "windows" && goarch == "amd64":
		return "x86_64-windows-gnu", true
	case goos == "windows" && goarch == "arm64":
		return "aarch64-windows-gnu", true
	default:
		return "", false
	}
}

func sharedLibExt(goos string) (string, error) {
	switch goos {
	case "darwin":
		return "dylib", nil
	case "linux":
		return "so", nil
	case "windows":
		return "dll", nil
	default:
		return "", fmt.Errorf("unsupported target os: %s", goos)
	}
}

func cleanupSidecars(outputPath string, ext string) {
	base := strings.TrimSuffix(outputPath, "."+ext)
	if strings.EqualFold(ext, "dll") {
		_ = os.Remove(base + ".lib")
		_ = os.Remove(base + ".exp")
		_ = os.Remove(base + ".pdb")
	}
}
