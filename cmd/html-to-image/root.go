package main

import (
	"os"
	"path/filepath"
	"strings"
)

// entryDir is the directory holding the running binary. Binaries built by
// `go run` live in a temporary go-build directory, so those fall back to
// the working directory.
func entryDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return os.Getwd()
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	dir := filepath.Dir(exe)
	if isBuildCache(dir) {
		return os.Getwd()
	}
	return dir, nil
}

func isBuildCache(dir string) bool {
	return strings.Contains(filepath.ToSlash(dir), "/go-build")
}
