// Package archive provides the path, tree-hash, and unpack primitives used
// by internal/store and internal/part to compute signatures and lay out
// distributions on disk.
package archive

import (
	"os"
	"path/filepath"
)

// Realpath returns the absolute, symlink-resolved form of p.
func Realpath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			// A path that doesn't exist yet (e.g. a not-yet-created launcher
			// target) still normalizes; only the symlink resolution is skipped.
			return abs, nil
		}
		return "", err
	}

	return resolved, nil
}
