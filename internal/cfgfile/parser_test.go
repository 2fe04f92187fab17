package cfgfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStringBasic(t *testing.T) {
	tree, err := ParseString("t", "[a]\nx = 1\n[b]\ny = ${a:x}\n")
	require.NoError(t, err)

	require.True(t, tree.Has("a"))
	require.True(t, tree.Has("b"))

	v, ok := tree.Section("a").Get("x")
	require.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestParseStringContinuationLine(t *testing.T) {
	tree, err := ParseString("t", "[buildout]\nparts = a\n  b\n  c\n")
	require.NoError(t, err)

	v, _ := tree.Section("buildout").Get("parts")
	assert.Equal(t, "a\nb\nc", v)
}

func TestParseStringAppendOperator(t *testing.T) {
	tree, err := ParseString("t", "[s]\nx = a\n  b\nx+ = c\n")
	require.NoError(t, err)

	v, _ := tree.Section("s").Get("x")
	assert.Equal(t, "a\nb\nc", v)
}

func TestParseStringRemoveOperator(t *testing.T) {
	tree, err := ParseString("t", "[s]\nx = a\n  b\nx- = b\n")
	require.NoError(t, err)

	v, _ := tree.Section("s").Get("x")
	assert.Equal(t, "a", v)
}

func TestParseExtends(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.cfg")
	require.NoError(t, os.WriteFile(base, []byte("[buildout]\nparts = foo\n[foo]\nrecipe = x:y\n"), 0644))

	child := filepath.Join(dir, "child.cfg")
	require.NoError(t, os.WriteFile(child, []byte("[buildout]\nextends = base.cfg\nparts = bar\n"), 0644))

	tree, err := Parse(child)
	require.NoError(t, err)

	parts, ok := tree.Section("buildout").Get("parts")
	require.True(t, ok)
	assert.Equal(t, "bar", parts)

	recipe, ok := tree.Section("foo").Get("recipe")
	require.True(t, ok)
	assert.Equal(t, "x:y", recipe)
}

func TestParseRecursiveIncludeRejected(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.cfg")
	b := filepath.Join(dir, "b.cfg")
	require.NoError(t, os.WriteFile(a, []byte("[buildout]\nextends = b.cfg\n"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("[buildout]\nextends = a.cfg\n"), 0644))

	_, err := Parse(a)
	require.Error(t, err)
}

func TestSectionDeleteRemovesFromKeysAndValues(t *testing.T) {
	tree, err := ParseString("t", "[s]\nx = 1\ny = 2\n")
	require.NoError(t, err)

	sec := tree.Section("s")
	sec.Delete("x")

	_, ok := sec.Get("x")
	assert.False(t, ok)
	assert.Equal(t, []string{"y"}, sec.Keys)
}
