package integration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/exec"
	"time"
)

// ErrCommandNotFound is returned when the executable cannot be located.
var ErrCommandNotFound = errors.New("command not found")

// ErrCommandTimeout is returned when the command outlives its timeout.
var ErrCommandTimeout = errors.New("command timed out")

// waitDelay bounds how long Exec waits for output pipes after the process
// has been killed, so a lingering grandchild cannot hold the call open.
const waitDelay = 2 * time.Second

// CLIExecConfig holds all parameters needed to execute an external CLI tool.
type CLIExecConfig struct {
	CLI     string
	Args    []string
	Stdin   io.Reader
	Timeout time.Duration // zero means no timeout beyond ctx
}

// CLIExecResult captures the outcome of an external CLI invocation.
type CLIExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// CLIExecutor runs external command-line tools.
type CLIExecutor interface {
	// Exec runs the command to completion. A non-zero exit status is
	// reported through CLIExecResult.ExitCode, not as an error.
	Exec(ctx context.Context, config CLIExecConfig) (*CLIExecResult, error)
}

// cliExecutor implements CLIExecutor with os/exec.
type cliExecutor struct{}

// NewCLIExecutor creates a new CLIExecutor.
func NewCLIExecutor() CLIExecutor {
	return &cliExecutor{}
}

// Exec starts config.CLI with config.Args, feeds config.Stdin and captures
// stdout and stderr. Missing executables yield ErrCommandNotFound and an
// expired timeout yields ErrCommandTimeout.
func (e *cliExecutor) Exec(ctx context.Context, config CLIExecConfig) (*CLIExecResult, error) {
	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, config.CLI, config.Args...)
	cmd.WaitDelay = waitDelay

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	if config.Stdin != nil {
		cmd.Stdin = config.Stdin
	}

	err := cmd.Run()

	result := &CLIExecResult{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}

	if err == nil {
		return result, nil
	}

	switch ctxErr := ctx.Err(); {
	case errors.Is(ctxErr, context.DeadlineExceeded):
		return result, fmt.Errorf("%w: %s after %s", ErrCommandTimeout, config.CLI, config.Timeout)
	case ctxErr != nil:
		return result, fmt.Errorf("executing %s: %w", config.CLI, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return result, fmt.Errorf("%w: %s", ErrCommandNotFound, config.CLI)
	}
	// Command could not be started for another reason (e.g. permissions).
	return result, fmt.Errorf("executing %s: %w", config.CLI, err)
}
