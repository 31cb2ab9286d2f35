package cli

import (
	"github.com/valter-silva-au/ai-coder/internal/core"
	"github.com/valter-silva-au/ai-coder/internal/observability"
	"go.uber.org/zap"
)

// InitFunc loads configuration and wires the package-level services below.
// It returns a function releasing whatever it opened.
type InitFunc func(configPath string, verbose bool) (func() error, error)

// Initialize is set by main to the application wiring in app.go.
var Initialize InitFunc

// Services, set by Initialize before a command runs.
var (
	Pipeline    core.Pipeline
	Searcher    core.CodeSearcher
	Decomposer  core.TaskDecomposer
	MetricsCalc observability.MetricsCalculator
	Logger      = zap.NewNop()
)
