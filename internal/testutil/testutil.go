// Package testutil collects small fixture helpers shared by the test
// suites under internal/. Most of partforge's functional tests center on
// a temporary project directory holding eggs/develop-eggs/bin/parts, and
// on distributions represented as a directory carrying an EGG-INFO
// PKG-INFO file, so those two shapes are what's centralized here rather
// than anything recipe- or config-specific.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TempDir creates a temporary directory and returns a cleanup function.
func TempDir(t *testing.T) (string, func()) {
	t.Helper()
	dir, err := os.MkdirTemp("", "partforge-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	return dir, func() { os.RemoveAll(dir) }
}

// ProjectDir is a scratch buildout-style project root with the standard
// eggs/develop-eggs/bin/parts layout already created.
type ProjectDir struct {
	Root           string
	EggsDir        string
	DevelopEggsDir string
	BinDir         string
	PartsDir       string
}

// NewProjectDir creates a ProjectDir under t.TempDir().
func NewProjectDir(t *testing.T) ProjectDir {
	t.Helper()
	root := t.TempDir()
	p := ProjectDir{
		Root:           root,
		EggsDir:        filepath.Join(root, "eggs"),
		DevelopEggsDir: filepath.Join(root, "develop-eggs"),
		BinDir:         filepath.Join(root, "bin"),
		PartsDir:       filepath.Join(root, "parts"),
	}
	for _, dir := range []string{p.EggsDir, p.DevelopEggsDir, p.BinDir, p.PartsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}
	return p
}

// WriteEggInfo writes an EGG-INFO/PKG-INFO pair (plus any extra metadata
// files) under dir, as if a distribution had been unpacked there.
func WriteEggInfo(t *testing.T, dir string, pkgInfo string, extra map[string]string) {
	t.Helper()
	infoDir := filepath.Join(dir, "EGG-INFO")
	if err := os.MkdirAll(infoDir, 0755); err != nil {
		t.Fatalf("failed to create %s: %v", infoDir, err)
	}
	if err := os.WriteFile(filepath.Join(infoDir, "PKG-INFO"), []byte(pkgInfo), 0644); err != nil {
		t.Fatalf("failed to write PKG-INFO: %v", err)
	}
	for name, content := range extra {
		if err := os.WriteFile(filepath.Join(infoDir, name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
}

// WriteInstalledEgg writes a minimal PKG-INFO for project/version under
// eggsDir, named the way Store.Scan expects a binary egg to be named.
func WriteInstalledEgg(t *testing.T, eggsDir, project, version string) string {
	t.Helper()
	dir := filepath.Join(eggsDir, project+"-"+version+".egg")
	WriteEggInfo(t, dir, "Name: "+project+"\nVersion: "+version+"\n", nil)
	return dir
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// AssertFileExists checks if a file exists at the given path.
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if !FileExists(path) {
		t.Errorf("file does not exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does NOT exist at the given path.
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if FileExists(path) {
		t.Errorf("file should not exist: %s", path)
	}
}
