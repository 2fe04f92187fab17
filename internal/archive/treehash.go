package archive

import (
	"crypto/sha256"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// excludedSuffixes are file suffixes that never contribute to a tree hash:
// compiled bytecode artifacts, not shipped source.
var excludedSuffixes = []string{".pyc", ".pyo"}

// excludedDirs are directory names that never contribute to a tree hash:
// version-control metadata.
var excludedDirs = map[string]bool{
	".svn": true,
	"CVS":  true,
}

// TreeHash walks dir depth-first, folding in sorted sub-directory names,
// then sorted file names, then each file's byte contents, excluding
// .pyc/.pyo files and .svn/CVS directories. It returns the base64 encoding
// of the resulting digest.
//
// The fold is stable across reorderings of filesystem directory listings
// and ignores derived artifacts, so edits that don't affect shipped source
// don't change the result — and by extension don't bust a part's cached
// signature.
func TreeHash(dir string) (string, error) {
	h := sha256.New()
	if err := foldDir(h, dir); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}

func foldDir(h io.Writer, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var subdirs, files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			if excludedDirs[name] {
				continue
			}
			subdirs = append(subdirs, name)
			continue
		}
		if hasExcludedSuffix(name) {
			continue
		}
		files = append(files, name)
	}

	sort.Strings(subdirs)
	sort.Strings(files)

	h.Write([]byte(strings.Join(subdirs, " ")))
	h.Write([]byte(strings.Join(files, " ")))

	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		h.Write(data)
	}

	for _, name := range subdirs {
		if err := foldDir(h, filepath.Join(dir, name)); err != nil {
			return err
		}
	}

	return nil
}

func hasExcludedSuffix(name string) bool {
	for _, suffix := range excludedSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
