package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// metadata is what a distribution tree's EGG-INFO (or PKG-INFO, for a
// develop checkout) directory reveals: name/version from PKG-INFO, plus
// the small marker files the resolver's namespace-package heuristic and
// unpack policy consult.
type metadata struct {
	Name              string
	Version           string
	Requires          []string
	NamespacePackages []string
	DependencyLinks   []string
	HasZipSafe        bool
	NotZipSafe        bool
}

// readMetadata loads a distribution's metadata from dir, trying an
// EGG-INFO subdirectory first, then the first top-level *.egg-info
// directory (the layout a develop checkout uses), and finally dir itself.
func readMetadata(dir string) (metadata, error) {
	infoDir := filepath.Join(dir, "EGG-INFO")
	if _, err := os.Stat(infoDir); err != nil {
		eggInfoDirs, globErr := filepath.Glob(filepath.Join(dir, "*.egg-info"))
		if globErr == nil && len(eggInfoDirs) > 0 {
			infoDir = eggInfoDirs[0]
		} else {
			infoDir = dir
		}
	}

	pkgInfo := filepath.Join(infoDir, "PKG-INFO")
	name, version, err := readPkgInfo(pkgInfo)
	if err != nil {
		return metadata{}, fmt.Errorf("reading %s: %w", pkgInfo, err)
	}

	m := metadata{Name: name, Version: version}
	m.Requires = readLines(filepath.Join(infoDir, "requires.txt"))
	m.NamespacePackages = readLines(filepath.Join(infoDir, "namespace_packages.txt"))
	m.DependencyLinks = readLines(filepath.Join(infoDir, "dependency_links.txt"))

	if _, err := os.Stat(filepath.Join(infoDir, "zip-safe")); err == nil {
		m.HasZipSafe = true
	}
	if _, err := os.Stat(filepath.Join(infoDir, "not-zip-safe")); err == nil {
		m.NotZipSafe = true
		m.HasZipSafe = true
	}

	return m, nil
}

func readPkgInfo(path string) (name, version string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "Name:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
		case strings.HasPrefix(line, "Version:"):
			version = strings.TrimSpace(strings.TrimPrefix(line, "Version:"))
		}
	}
	if err := scanner.Err(); err != nil {
		return "", "", err
	}
	if name == "" {
		return "", "", fmt.Errorf("no Name: field found")
	}
	return name, version, nil
}

func readLines(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "[") {
			continue
		}
		out = append(out, line)
	}
	return out
}
