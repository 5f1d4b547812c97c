package utils

import (
	"os"
	"path/filepath"
	"runtime"
)

// moduleRoot is the directory holding go.mod, found by walking up from this source file.
var moduleRoot = findModuleRoot()

func findModuleRoot() string {
	//nolint:dogsled
	_, thisFile, _, _ := runtime.Caller(0)
	dir := filepath.Dir(thisFile)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Not inside a module checkout; resolve against the parent of utils.
			return filepath.Join(filepath.Dir(thisFile), "..")
		}
		dir = parent
	}
}

// ResolveFile returns the path of fn, given relative to the module root. Fixtures such as
// "referenceframe/testdata/panda.urdf" are found this way from any package's tests.
func ResolveFile(fn string) string {
	return filepath.Join(moduleRoot, filepath.FromSlash(fn))
}
