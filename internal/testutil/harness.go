// Package testutil provides shared helpers for system-level tests: a
// thread-safe log buffer and a harness that runs a full scenario from
// in-memory HCL sources.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/tickgrid/internal/app"
	"github.com/vk/tickgrid/internal/registry"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of a scenario test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
}

// RunScenarioTest writes the given scenario files to a temporary directory,
// starts an app over them and runs the simulation to completion. Startup
// panics are recovered into the result's Err. File names are relative paths
// inside the scenario directory.
func RunScenarioTest(t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunScenarioTestWithConfig(t, files, &app.Config{}, modules...)
}

// RunScenarioTestWithConfig is RunScenarioTest with control over the app
// config. The harness fills in GridPath, log level and format.
func RunScenarioTestWithConfig(t *testing.T, files map[string]string, cfg *app.Config, modules ...registry.Module) *HarnessResult {
	t.Helper()

	gridDir := filepath.Join(t.TempDir(), "grid")
	require.NoError(t, os.Mkdir(gridDir, 0o755))
	for name, content := range files {
		filePath := filepath.Join(gridDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	cfg.GridPath = gridDir
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"

	logBuffer := &SafeBuffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(logBuffer, cfg, modules...)
	}()

	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	runErr := testApp.Run(context.Background(), cfg)

	if os.Getenv("TICKGRID_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
	}
}

// AssertLogged checks the harness log output for a substring.
func AssertLogged(t *testing.T, result *HarnessResult, substring string) {
	t.Helper()
	require.True(t,
		strings.Contains(result.LogOutput, substring),
		"expected log output to contain %q, got:\n%s", substring, result.LogOutput,
	)
}
