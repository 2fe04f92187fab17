package functional

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// aFileNamedWith writes content to name under the scenario's project
// directory, substituting "{{SERVER_URL}}" with the local file server's
// base URL once "a local file server serving ..." has started one.
func aFileNamedWith(ctx context.Context, name, content string) (context.Context, error) {
	state := getState(ctx)
	if state.serverURL != "" {
		content = strings.ReplaceAll(content, "{{SERVER_URL}}", state.serverURL)
	}
	path := filepath.Join(state.projectDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return ctx, err
	}
	return ctx, os.WriteFile(path, []byte(content), 0644)
}

// aLocalFileServerServing starts an httptest.Server rooted at dir (relative
// to the project directory) and records its base URL, so a scenario can
// reference a genuinely non-file:// download location without reaching
// any host beyond loopback.
func aLocalFileServerServing(ctx context.Context, dir string) (context.Context, error) {
	state := getState(ctx)
	root := filepath.Join(state.projectDir, dir)
	if err := os.MkdirAll(root, 0755); err != nil {
		return ctx, err
	}
	state.server = httptest.NewServer(http.FileServer(http.Dir(root)))
	state.serverURL = state.server.URL
	return ctx, nil
}

func aDirectoryNamed(ctx context.Context, name string) (context.Context, error) {
	state := getState(ctx)
	return ctx, os.MkdirAll(filepath.Join(state.projectDir, name), 0755)
}

// iRun executes a command string, replacing "partforge" at the start with
// the path to the compiled test binary.
func iRun(ctx context.Context, command string) (context.Context, error) {
	state := getState(ctx)
	if state == nil {
		return ctx, fmt.Errorf("no test state; is the Before hook running?")
	}

	args := strings.Fields(command)
	if len(args) > 0 && args[0] == "partforge" {
		args[0] = state.binPath
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = state.projectDir
	cmd.Env = os.Environ()

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	state.stdout = stdout.String()
	state.stderr = stderr.String()

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			state.exitCode = exitErr.ExitCode()
		} else {
			return ctx, fmt.Errorf("command execution failed: %w", err)
		}
	} else {
		state.exitCode = 0
	}

	return ctx, nil
}

func theExitCodeIs(ctx context.Context, expected int) error {
	state := getState(ctx)
	if state.exitCode != expected {
		return fmt.Errorf("expected exit code %d, got %d\nstdout: %s\nstderr: %s",
			expected, state.exitCode, state.stdout, state.stderr)
	}
	return nil
}

func theExitCodeIsNot(ctx context.Context, notExpected int) error {
	state := getState(ctx)
	if state.exitCode == notExpected {
		return fmt.Errorf("expected exit code to not be %d\nstdout: %s\nstderr: %s",
			notExpected, state.stdout, state.stderr)
	}
	return nil
}

func theOutputContains(ctx context.Context, text string) error {
	state := getState(ctx)
	if !strings.Contains(state.stdout, text) {
		return fmt.Errorf("expected stdout to contain %q, got:\n%s", text, state.stdout)
	}
	return nil
}

func theErrorOutputContains(ctx context.Context, text string) error {
	state := getState(ctx)
	if !strings.Contains(state.stderr, text) {
		return fmt.Errorf("expected stderr to contain %q, got:\n%s", text, state.stderr)
	}
	return nil
}

func theFileExists(ctx context.Context, path string) error {
	state := getState(ctx)
	full := filepath.Join(state.projectDir, path)
	if _, err := os.Lstat(full); os.IsNotExist(err) {
		return fmt.Errorf("expected file %q to exist", full)
	}
	return nil
}

func theFileDoesNotExist(ctx context.Context, path string) error {
	state := getState(ctx)
	full := filepath.Join(state.projectDir, path)
	if _, err := os.Lstat(full); err == nil {
		return fmt.Errorf("expected file %q not to exist", full)
	}
	return nil
}

func theDirectoryExists(ctx context.Context, path string) error {
	state := getState(ctx)
	full := filepath.Join(state.projectDir, path)
	info, err := os.Stat(full)
	if err != nil {
		return fmt.Errorf("expected directory %q to exist: %w", full, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("expected %q to be a directory", full)
	}
	return nil
}

func theFileContains(ctx context.Context, path, text string) error {
	state := getState(ctx)
	full := filepath.Join(state.projectDir, path)
	data, err := os.ReadFile(full)
	if err != nil {
		return fmt.Errorf("reading %q: %w", full, err)
	}
	if !strings.Contains(string(data), text) {
		return fmt.Errorf("expected %q to contain %q, got:\n%s", full, text, data)
	}
	return nil
}
