package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/valter-silva-au/ai-coder/pkg/models"
	"go.uber.org/zap"
)

// ErrNoGeneratedCode is returned when the generator hands back blank text.
// No artifact is written in that case.
var ErrNoGeneratedCode = errors.New("generator returned no code")

// CodeGenerator produces code for a prompt. Implementations never fail:
// problems are reported inside the returned text.
type CodeGenerator interface {
	Generate(ctx context.Context, prompt string) string
}

// ArtifactWriter persists the Markdown record of a generated task and
// returns its location.
type ArtifactWriter interface {
	WriteArtifact(task *models.Task) (string, error)
}

// EventLogger records pipeline events. Defined here so core does not
// import the observability package.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any)
}

// TaskResolver applies the reuse-or-generate policy to a single task.
type TaskResolver interface {
	Resolve(ctx context.Context, task *models.Task) error
}

// ResolverOptions configures a TaskResolver.
type ResolverOptions struct {
	ReuseThreshold int
	TechStack      models.TechStack
}

type taskResolver struct {
	searcher  CodeSearcher
	generator CodeGenerator
	artifacts ArtifactWriter
	events    EventLogger
	opts      ResolverOptions
	logger    *zap.Logger
}

// NewTaskResolver creates a TaskResolver. events may be nil.
func NewTaskResolver(searcher CodeSearcher, generator CodeGenerator, artifacts ArtifactWriter, events EventLogger, opts ResolverOptions, logger *zap.Logger) TaskResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &taskResolver{
		searcher:  searcher,
		generator: generator,
		artifacts: artifacts,
		events:    events,
		opts:      opts,
		logger:    logger,
	}
}

// ReuseHeader is the provenance header placed above reused file content.
func ReuseHeader(path string) string {
	return fmt.Sprintf("# Reused existing code\n# File: %s\n\n", path)
}

// Resolve searches for existing code by task id. When the best match scores
// above the reuse threshold its content is adopted verbatim and no artifact
// is written; otherwise the generator is asked for new code and the result
// is persisted. Resolve never marks a task failed; that is left to the
// caller when an error is returned.
func (r *taskResolver) Resolve(ctx context.Context, task *models.Task) error {
	r.logger.Info("task started", zap.String("task", task.ID), zap.String("description", task.Description))
	if err := task.Transition(models.StatusInProgress); err != nil {
		return err
	}

	matches := r.searcher.Search(ctx, task.ID)
	task.CodeMatches = matches

	if len(matches) > 0 {
		r.logger.Info("existing code found", zap.String("task", task.ID), zap.Int("matches", len(matches)))
		for i, m := range matches {
			if i == 3 {
				break
			}
			r.logger.Info("candidate", zap.String("path", m.FilePath), zap.Int("score", m.RelevanceScore))
		}

		// The top file is adopted wholesale; it is neither merged nor checked
		// against the task requirements.
		if task.Reused(r.opts.ReuseThreshold) {
			top := matches[0]
			task.GeneratedCode = ReuseHeader(top.FilePath) + top.Content
			if err := task.Transition(models.StatusCompleted); err != nil {
				return err
			}
			r.record(models.EventTaskReused, task)
			return nil
		}
	}

	r.logger.Info("no sufficient existing code, calling AI", zap.String("task", task.ID))
	prompt := BuildPrompt(task, r.opts.TechStack, matches)
	task.GeneratedCode = r.generator.Generate(ctx, prompt)
	if strings.TrimSpace(task.GeneratedCode) == "" {
		return fmt.Errorf("%w for task %s", ErrNoGeneratedCode, task.ID)
	}

	path, err := r.artifacts.WriteArtifact(task)
	if err != nil {
		return fmt.Errorf("writing artifact for task %s: %w", task.ID, err)
	}
	task.OutputPath = path

	if err := task.Transition(models.StatusCompleted); err != nil {
		return err
	}
	r.logger.Info("AI code generated", zap.String("task", task.ID), zap.String("artifact", path))
	r.record(models.EventTaskGenerated, task)
	return nil
}

func (r *taskResolver) record(eventType string, task *models.Task) {
	if r.events == nil {
		return
	}
	data := map[string]any{"task_id": task.ID}
	if top, ok := task.TopMatch(); ok {
		data["top_score"] = top.RelevanceScore
		data["top_path"] = top.FilePath
	}
	if task.OutputPath != "" {
		data["artifact"] = task.OutputPath
	}
	r.events.LogEvent(eventType, data)
}
