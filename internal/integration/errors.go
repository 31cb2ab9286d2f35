package integration

import (
	"errors"
	"fmt"
)

// Generation errors. The gateway turns every one of them into placeholder
// text; they never reach the resolver.
var (
	ErrRunnerNotInstalled  = errors.New("model runner is not installed")
	ErrGenerationTimeout   = errors.New("AI response timed out")
	ErrNotImplemented      = errors.New("cloud provider is not implemented")
	ErrUnsupportedProvider = errors.New("unsupported AI provider")
	ErrMissingAPIKey       = errors.New("API key is not configured")
	ErrEmptyCompletion     = errors.New("model returned an empty completion")
)

// StatusError reports a non-200 answer from a cloud API.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Body)
}

// ExitError reports a model runner that exited with a non-zero status.
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d: %s", e.Command, e.ExitCode, e.Stderr)
}
