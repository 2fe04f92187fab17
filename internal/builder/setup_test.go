package builder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunSetupScriptRejectsMissingScript(t *testing.T) {
	err := RunSetupScript(filepath.Join(t.TempDir(), "missing.go"), nil, nil)
	require.Error(t, err)
}

func TestRunSetupScriptRejectsDirWithoutSetupGo(t *testing.T) {
	dir := t.TempDir()
	err := RunSetupScript(dir, nil, nil)
	require.Error(t, err)
}

func TestRunSetupScriptRunsScript(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "setup.go")
	require.NoError(t, os.WriteFile(script, []byte(`package main

func main() {}
`), 0644))

	err := RunSetupScript(dir, nil, []string{"/some/egg"})
	require.NoError(t, err)
}
