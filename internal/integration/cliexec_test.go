package integration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		// Started at init by opencensus, which genai pulls in.
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
	)
}

// writeScript creates an executable shell script in a temp dir and returns
// its path.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "fake-runner")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestExec_CapturesOutputAndStdin(t *testing.T) {
	script := writeScript(t, `echo "args: $*"; cat; echo "warn" >&2`)

	result, err := NewCLIExecutor().Exec(context.Background(), CLIExecConfig{
		CLI:   script,
		Args:  []string{"run", "codellama"},
		Stdin: strings.NewReader("the prompt"),
	})

	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "args: run codellama\nthe prompt", result.Stdout)
	assert.Equal(t, "warn\n", result.Stderr)
}

func TestExec_NonZeroExit(t *testing.T) {
	script := writeScript(t, `echo "model not found" >&2; exit 3`)

	result, err := NewCLIExecutor().Exec(context.Background(), CLIExecConfig{CLI: script})

	require.NoError(t, err)
	assert.Equal(t, 3, result.ExitCode)
	assert.Contains(t, result.Stderr, "model not found")
}

func TestExec_CommandNotFound(t *testing.T) {
	_, err := NewCLIExecutor().Exec(context.Background(), CLIExecConfig{CLI: "definitely-not-a-real-binary-xyz"})

	assert.ErrorIs(t, err, ErrCommandNotFound)
}

func TestExec_Timeout(t *testing.T) {
	script := writeScript(t, `exec sleep 5`)

	start := time.Now()
	_, err := NewCLIExecutor().Exec(context.Background(), CLIExecConfig{CLI: script, Timeout: 100 * time.Millisecond})

	assert.ErrorIs(t, err, ErrCommandTimeout)
	assert.Less(t, time.Since(start), 4*time.Second, "process should be killed at the timeout")
}

func TestExec_ParentCancelled(t *testing.T) {
	script := writeScript(t, `exec sleep 5`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCLIExecutor().Exec(ctx, CLIExecConfig{CLI: script})

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "err = %v", err)
	assert.False(t, errors.Is(err, ErrCommandTimeout))
}
