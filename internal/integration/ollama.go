package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valter-silva-au/ai-coder/pkg/models"
)

// DefaultLocalTimeout bounds a single local model run.
const DefaultLocalTimeout = 60 * time.Second

// LocalProvider generates code with a command-line model runner such as
// ollama: `<command> run <model>`, prompt on stdin, completion on stdout.
type LocalProvider struct {
	exec    CLIExecutor
	command string
	model   string
	timeout time.Duration
}

// NewLocalProvider creates a LocalProvider from configuration.
func NewLocalProvider(executor CLIExecutor, cfg models.LocalAIConfig) *LocalProvider {
	command := cfg.Command
	if command == "" {
		command = "ollama"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultLocalTimeout
	}
	return &LocalProvider{exec: executor, command: command, model: cfg.Model, timeout: timeout}
}

// Name returns the provider name.
func (p *LocalProvider) Name() string { return models.ProviderLocal }

// Generate runs the model with the prompt on stdin.
func (p *LocalProvider) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := p.exec.Exec(ctx, CLIExecConfig{
		CLI:     p.command,
		Args:    []string{"run", p.model},
		Stdin:   strings.NewReader(prompt),
		Timeout: p.timeout,
	})
	switch {
	case errors.Is(err, ErrCommandNotFound):
		return "", fmt.Errorf("%w: '%s' command not found", ErrRunnerNotInstalled, p.command)
	case errors.Is(err, ErrCommandTimeout):
		return "", fmt.Errorf("%w after %s", ErrGenerationTimeout, p.timeout)
	case err != nil:
		return "", err
	}

	if result.ExitCode != 0 {
		return "", &ExitError{Command: p.command, ExitCode: result.ExitCode, Stderr: strings.TrimSpace(result.Stderr)}
	}
	return result.Stdout, nil
}
