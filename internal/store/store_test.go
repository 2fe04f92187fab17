package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partforge/partforge/internal/testutil"
)

func writeEggInfo(t *testing.T, eggDir string, pkgInfo string, extra map[string]string) {
	t.Helper()
	testutil.WriteEggInfo(t, eggDir, pkgInfo, extra)
}

func TestScanFindsUnpackedEgg(t *testing.T) {
	root := t.TempDir()
	eggsDir := filepath.Join(root, "eggs")
	eggDir := filepath.Join(eggsDir, "widget-1.0-py3.12.egg")
	writeEggInfo(t, eggDir, "Name: widget\nVersion: 1.0\n", nil)

	s := New(eggsDir, filepath.Join(root, "develop-eggs"))
	require.NoError(t, s.Scan())

	dist, ok := s.BestMatch("widget", nil)
	require.True(t, ok)
	assert.Equal(t, "1.0", dist.Version)
	assert.Equal(t, Binary, dist.Kind)
}

func TestScanFindsDevelopEggOverBinary(t *testing.T) {
	root := t.TempDir()
	eggsDir := filepath.Join(root, "eggs")
	eggDir := filepath.Join(eggsDir, "widget-1.0-py3.12.egg")
	writeEggInfo(t, eggDir, "Name: widget\nVersion: 1.0\n", nil)

	sourceDir := filepath.Join(root, "src", "widget")
	writeEggInfo(t, sourceDir, "Name: widget\nVersion: 1.1dev\n", nil)
	// A develop checkout keeps its own *.egg-info next to the source
	// rather than under a nested EGG-INFO subdirectory.
	require.NoError(t, os.Rename(filepath.Join(sourceDir, "EGG-INFO"), filepath.Join(sourceDir, "widget.egg-info")))

	developEggsDir := filepath.Join(root, "develop-eggs")
	require.NoError(t, os.MkdirAll(developEggsDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(developEggsDir, "widget.egg-link"), []byte(sourceDir+"\n"), 0644))

	s := New(eggsDir, developEggsDir)
	require.NoError(t, s.Scan())

	dist, ok := s.BestMatch("widget", func(string) bool { return false })
	require.True(t, ok)
	assert.Equal(t, Develop, dist.Kind)
	assert.Equal(t, "1.1dev", dist.Version)
}

func TestWorkingSetRejectsConflictingVersion(t *testing.T) {
	ws := NewWorkingSet()
	require.NoError(t, ws.Add(Distribution{Project: "widget", Version: "1.0"}))
	require.NoError(t, ws.Add(Distribution{Project: "widget", Version: "1.0"}))

	err := ws.Add(Distribution{Project: "widget", Version: "2.0"})
	require.Error(t, err)
}

func TestShouldUnpackPolicy(t *testing.T) {
	assert.True(t, (Distribution{}).ShouldUnpack(true))
	assert.True(t, (Distribution{NotZipSafe: true}).ShouldUnpack(false))
	assert.True(t, (Distribution{}).ShouldUnpack(false), "missing zip-safe metadata forces unpack")
	assert.False(t, (Distribution{HasZipSafe: true}).ShouldUnpack(false))
}
