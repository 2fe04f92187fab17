// Package functional runs the project's end-to-end scenarios against a
// compiled partforge binary via cucumber/godog, the same way the teacher
// drives its own CLI through feature files rather than in-process calls —
// the binary's argument parsing, exit codes, and stdout/stderr framing are
// exactly what a user sees, and only an exec'd process exercises all of
// that together.
package functional

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/cucumber/godog"
)

type stateKeyType struct{}

var stateKey = stateKeyType{}

type testState struct {
	projectDir string
	binPath    string
	stdout     string
	stderr     string
	exitCode   int

	server    *httptest.Server // non-nil once "a local file server..." has run
	serverURL string
}

func getState(ctx context.Context) *testState {
	if s, ok := ctx.Value(stateKey).(*testState); ok {
		return s
	}
	return nil
}

func setState(ctx context.Context, s *testState) context.Context {
	return context.WithValue(ctx, stateKey, s)
}

func TestFeatures(t *testing.T) {
	binPath := os.Getenv("PARTFORGE_TEST_BINARY")
	if binPath == "" {
		t.Skip("PARTFORGE_TEST_BINARY not set; build cmd/partforge and set it to the binary path")
	}
	absBin, err := filepath.Abs(binPath)
	if err != nil {
		t.Fatalf("resolving binary path: %v", err)
	}
	binPath = absBin

	opts := &godog.Options{
		Format:   "pretty",
		Paths:    []string{"features"},
		TestingT: t,
	}
	if tags := os.Getenv("PARTFORGE_TEST_TAGS"); tags != "" {
		opts.Tags = tags
	}

	suite := godog.TestSuite{
		ScenarioInitializer: func(ctx *godog.ScenarioContext) {
			initializeScenario(ctx, binPath)
		},
		Options: opts,
	}
	if suite.Run() != 0 {
		t.Fatal("functional tests failed")
	}
}

func initializeScenario(ctx *godog.ScenarioContext, binPath string) {
	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		projectDir, err := os.MkdirTemp("", "partforge-scenario-*")
		if err != nil {
			return ctx, err
		}
		state := &testState{projectDir: projectDir, binPath: binPath}
		return setState(ctx, state), nil
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, scErr error) (context.Context, error) {
		if state := getState(ctx); state != nil {
			if state.server != nil {
				state.server.Close()
			}
			os.RemoveAll(state.projectDir)
		}
		return ctx, nil
	})

	ctx.Step(`^a file named "([^"]*)" with:$`, aFileNamedWith)
	ctx.Step(`^a directory named "([^"]*)"$`, aDirectoryNamed)
	ctx.Step(`^a local file server serving "([^"]*)"$`, aLocalFileServerServing)

	ctx.Step(`^I run "([^"]*)"$`, iRun)

	ctx.Step(`^the exit code is (\d+)$`, theExitCodeIs)
	ctx.Step(`^the exit code is not (\d+)$`, theExitCodeIsNot)
	ctx.Step(`^the output contains "([^"]*)"$`, theOutputContains)
	ctx.Step(`^the error output contains "([^"]*)"$`, theErrorOutputContains)
	ctx.Step(`^the file "([^"]*)" exists$`, theFileExists)
	ctx.Step(`^the file "([^"]*)" does not exist$`, theFileDoesNotExist)
	ctx.Step(`^the directory "([^"]*)" exists$`, theDirectoryExists)
	ctx.Step(`^the file "([^"]*)" contains "([^"]*)"$`, theFileContains)
}
