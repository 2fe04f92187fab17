package part

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestManifestRoundTrip covers spec.md §8's testable property #7: saving
// and reloading a manifest must reproduce every part's options, signature
// and installed-files list exactly, including an option whose value spans
// multiple lines (e.g. a resolved "eggs ="-style option) and one that is
// blank or whitespace-only. This is the case that must survive
// cfgfile.Parse on the very next install, not just round-trip through
// encode/decodeWhitespace in isolation.
func TestManifestRoundTrip(t *testing.T) {
	m := NewManifest()
	m.SetDevelopEggs([]string{"foo", "bar"})
	m.SetPart(Part{
		Name: "app",
		Options: map[string]string{
			"eggs":      "demo\nsample\nwidget",
			"recipe":    "partforge.recipe.mkdir:default",
			"blank-opt": "",
			"space-opt": "a\n \nb",
		},
		Signature: "demo-1.0 sample-2.0",
		Installed: []string{"/buildout/output", "/buildout/bin/app"},
	})
	m.SetPart(Part{
		Name:      "other",
		Options:   map[string]string{"path": "/buildout/other"},
		Signature: "other-1.0",
		Installed: []string{"/buildout/other"},
	})

	path := filepath.Join(t.TempDir(), ".installed.cfg")
	require.NoError(t, m.Save(path))

	loaded, err := LoadManifest(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"app", "other"}, loaded.PartNames())
	assert.Equal(t, []string{"foo", "bar"}, loaded.DevelopEggs())

	app, ok := loaded.Part("app")
	require.True(t, ok)
	assert.Equal(t, "demo\nsample\nwidget", app.Options["eggs"])
	assert.Equal(t, "partforge.recipe.mkdir:default", app.Options["recipe"])
	assert.Equal(t, "", app.Options["blank-opt"])
	assert.Equal(t, "a\n \nb", app.Options["space-opt"])
	assert.Equal(t, "demo-1.0 sample-2.0", app.Signature)
	assert.Equal(t, []string{"/buildout/output", "/buildout/bin/app"}, app.Installed)

	other, ok := loaded.Part("other")
	require.True(t, ok)
	assert.Equal(t, "/buildout/other", other.Options["path"])
	assert.Equal(t, []string{"/buildout/other"}, other.Installed)
}

// TestManifestRoundTripEmptyRemovesFile covers the companion case: an
// empty manifest is removed rather than written (spec.md §4.H step 10),
// and reloading a path that no longer exists yields an empty manifest.
func TestManifestRoundTripEmptyRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".installed.cfg")

	m := NewManifest()
	m.SetPart(Part{Name: "app", Installed: []string{"/x"}})
	require.NoError(t, m.Save(path))
	require.FileExists(t, path)

	m.RemovePart("app")
	require.NoError(t, m.Save(path))

	_, err := filepath.EvalSymlinks(path)
	assert.Error(t, err)

	loaded, err := LoadManifest(path)
	require.NoError(t, err)
	assert.True(t, loaded.Empty())
}

// TestEncodeWhitespaceProducesParseableContinuations is a narrower
// regression test for the bug where a multi-line option value's
// continuation lines were written without the leading tab cfgfile's
// parser requires to recognize them as continuations rather than new
// keys.
func TestEncodeWhitespaceProducesParseableContinuations(t *testing.T) {
	encoded := encodeWhitespace("first\nsecond\nthird")
	assert.Equal(t, "first\n\tsecond\n\tthird", encoded)
}
