// Package internal provides the App struct that wires all components of
// ai-coder together and initializes the CLI layer.
package internal

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/valter-silva-au/ai-coder/internal/cli"
	"github.com/valter-silva-au/ai-coder/internal/core"
	"github.com/valter-silva-au/ai-coder/internal/integration"
	"github.com/valter-silva-au/ai-coder/internal/observability"
	"github.com/valter-silva-au/ai-coder/internal/storage"
	"github.com/valter-silva-au/ai-coder/pkg/models"
	"go.uber.org/zap"
)

// App holds all service dependencies for one ai-coder invocation.
type App struct {
	Config *models.Config
	RunID  string

	Logger      *zap.Logger
	closeLogger func() error

	// Core services
	Searcher   core.CodeSearcher
	Decomposer core.TaskDecomposer
	Resolver   core.TaskResolver
	Pipeline   core.Pipeline

	// Integration services
	Executor integration.CLIExecutor
	Gateway  *integration.Gateway

	// Storage layer
	Artifacts storage.ArtifactStore

	// Observability
	EventLog    observability.EventLog
	Recorder    *observability.RunRecorder
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
}

// NewApp loads the configuration at configPath and wires every component.
// Output from the pipeline goes to stdout.
func NewApp(configPath string, verbose bool) (*App, error) {
	cfg, err := core.NewConfigurationManager(configPath).Load()
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, RunID: uuid.NewString()}

	// --- Logging ---
	app.Logger, app.closeLogger, err = observability.NewLogger(cfg.Output.LogsDir, verbose)
	if err != nil {
		return nil, err
	}
	app.Logger = app.Logger.With(zap.String("run_id", app.RunID))

	// --- Observability ---
	eventLogPath := filepath.Join(cfg.Output.LogsDir, observability.EventLogFileName)
	app.EventLog, err = observability.NewJSONLEventLog(eventLogPath)
	if err != nil {
		// Non-fatal: the run works without an event history.
		app.Logger.Warn("event log disabled", zap.Error(err))
		app.EventLog = nil
	}
	if app.EventLog != nil {
		app.Recorder = observability.NewRunRecorder(app.EventLog, app.RunID, time.Now)
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}
	app.Notifier = observability.NewNotifierFromConfig(cfg.Notifications, app.Logger)

	// --- Integration services ---
	app.Executor = integration.NewCLIExecutor()
	app.Gateway = integration.NewGatewayFromConfig(cfg.AI, app.Executor, app.Logger)

	// --- Storage layer ---
	app.Artifacts = storage.NewArtifactStore(cfg.Output.LogsDir, time.Now)

	// --- Core services ---
	app.Searcher = core.NewCodeSearcher(core.SearchOptionsFromConfig(cfg), app.Logger)
	rules := append(core.RulesFromConfig(cfg.Decomposition), core.DefaultRules...)
	app.Decomposer = core.NewTaskDecomposer(rules...)

	// A nil *RunRecorder must not reach the interface as a non-nil value.
	var events core.EventLogger
	if app.Recorder != nil {
		events = app.Recorder
	}
	app.Resolver = core.NewTaskResolver(app.Searcher, app.Gateway, app.Artifacts, events, core.ResolverOptions{
		ReuseThreshold: cfg.Search.ReuseThreshold,
		TechStack:      cfg.TechStack,
	}, app.Logger)
	app.Pipeline = core.NewPipeline(app.Decomposer, app.Resolver, app.Notifier, events, core.PipelineOptions{
		ReuseThreshold: cfg.Search.ReuseThreshold,
		Out:            os.Stdout,
	}, app.Logger)

	// --- Wire CLI package-level variables ---
	cli.Pipeline = app.Pipeline
	cli.Searcher = app.Searcher
	cli.Decomposer = app.Decomposer
	cli.MetricsCalc = app.MetricsCalc
	cli.Logger = app.Logger

	return app, nil
}

// Initialize is the cli.InitFunc used by main.
func Initialize(configPath string, verbose bool) (func() error, error) {
	app, err := NewApp(configPath, verbose)
	if err != nil {
		return nil, err
	}
	return app.Close, nil
}

// Close releases resources held by the App, such as the event log file
// handle and the log file. It is safe to call on an App whose EventLog is nil.
func (a *App) Close() error {
	var errs []error
	if a.EventLog != nil {
		errs = append(errs, a.EventLog.Close())
	}
	if a.closeLogger != nil {
		errs = append(errs, a.closeLogger())
	}
	return errors.Join(errs...)
}
