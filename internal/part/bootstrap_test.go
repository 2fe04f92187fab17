package part

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrapWritesExecutableWrapper(t *testing.T) {
	root := t.TempDir()
	binDir := filepath.Join(root, "bin")

	path, err := Bootstrap(root, binDir, "/opt/partforge/partforge")
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "/opt/partforge/partforge")
	assert.Contains(t, string(content), root)
}

func TestBootstrapRejectsUnsafeExecutablePath(t *testing.T) {
	root := t.TempDir()
	_, err := Bootstrap(root, filepath.Join(root, "bin"), "/bin/sh; rm -rf /")
	require.Error(t, err)
}
