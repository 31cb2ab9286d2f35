package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/valter-silva-au/ai-coder/pkg/models"
	"go.uber.org/zap"
)

// Notifier delivers the run summary to an external channel. Send must not
// fail the run; implementations log their own delivery problems.
type Notifier interface {
	Send(ctx context.Context, message string)
}

// RunResult is what one pipeline run produced.
type RunResult struct {
	Request   string
	Tasks     []*models.Task
	Completed []*models.Task
	Failed    []*models.Task
	Summary   string
}

// Pipeline decomposes a request and resolves every task in order.
type Pipeline interface {
	Run(ctx context.Context, request string) (*RunResult, error)
}

// PipelineOptions carries the collaborators a Pipeline writes to.
type PipelineOptions struct {
	ReuseThreshold int
	// Out receives the printed summary. Nil discards it.
	Out io.Writer
	// Now is the clock used for the summary timestamp. Nil means time.Now.
	Now func() time.Time
}

type pipeline struct {
	decomposer TaskDecomposer
	resolver   TaskResolver
	notifier   Notifier
	events     EventLogger
	opts       PipelineOptions
	logger     *zap.Logger
}

// NewPipeline creates a Pipeline. notifier and events may be nil.
func NewPipeline(decomposer TaskDecomposer, resolver TaskResolver, notifier Notifier, events EventLogger, opts PipelineOptions, logger *zap.Logger) Pipeline {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &pipeline{
		decomposer: decomposer,
		resolver:   resolver,
		notifier:   notifier,
		events:     events,
		opts:       opts,
		logger:     logger,
	}
}

// Run resolves the request's tasks one at a time. A task whose resolution
// fails is marked failed and the run moves on. If ctx is cancelled the run
// stops at the next task boundary and returns ctx.Err() without a summary.
func (p *pipeline) Run(ctx context.Context, request string) (*RunResult, error) {
	p.logger.Info("request received", zap.String("request", request))

	tasks := p.decomposer.Decompose(request)
	p.logger.Info("request decomposed", zap.Int("tasks", len(tasks)))
	p.record(models.EventRunStarted, map[string]any{"request": request, "tasks": len(tasks)})

	result := &RunResult{Request: request, Tasks: tasks}

	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("run cancelled", zap.String("task", task.ID))
			return nil, err
		}

		if err := p.resolve(ctx, task); err != nil {
			p.logger.Error("task failed", zap.String("task", task.ID), zap.String("description", task.Description), zap.Error(err))
			task.Status = models.StatusFailed
			p.record(models.EventTaskFailed, map[string]any{"task_id": task.ID, "error": err.Error()})
			result.Failed = append(result.Failed, task)
			continue
		}
		result.Completed = append(result.Completed, task)
	}

	if err := ctx.Err(); err != nil {
		p.logger.Warn("run cancelled before summary")
		return nil, err
	}

	result.Summary = BuildSummary(request, p.opts.Now(), result.Completed, result.Failed, p.opts.ReuseThreshold)
	fmt.Fprintln(p.opts.Out, result.Summary)

	if p.notifier != nil {
		p.notifier.Send(ctx, result.Summary)
	}

	p.record(models.EventRunFinished, map[string]any{
		"completed": len(result.Completed),
		"failed":    len(result.Failed),
	})
	p.logger.Info("all tasks processed", zap.Int("completed", len(result.Completed)), zap.Int("failed", len(result.Failed)))
	return result, nil
}

// resolve runs the resolver, turning a panic into an error so one broken
// task cannot take the whole run down.
func (p *pipeline) resolve(ctx context.Context, task *models.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while resolving task %s: %v", task.ID, r)
		}
	}()
	return p.resolver.Resolve(ctx, task)
}

func (p *pipeline) record(eventType string, data map[string]any) {
	if p.events != nil {
		p.events.LogEvent(eventType, data)
	}
}
