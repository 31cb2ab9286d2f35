package core

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/valter-silva-au/ai-coder/pkg/models"
	"go.uber.org/zap"
)

// Score weights of the relevance heuristic.
const (
	occurrenceWeight = 10
	fileNameBonus    = 50
	definitionBonus  = 100
)

// CodeSearcher finds existing files relevant to a keyword.
type CodeSearcher interface {
	// Search returns at most MaxResults matches ordered by descending score.
	Search(ctx context.Context, keyword string) []models.CodeMatch
}

// SearchOptions configures the relevance scorer.
type SearchOptions struct {
	BaseDir     string
	Extensions  []string
	ExcludeDirs []string
	MaxResults  int
}

// SearchOptionsFromConfig builds SearchOptions from the loaded configuration.
func SearchOptionsFromConfig(cfg *models.Config) SearchOptions {
	return SearchOptions{
		BaseDir:     cfg.Project.BasePath,
		Extensions:  cfg.Search.FileExtensions,
		ExcludeDirs: cfg.Search.ExcludeDirs,
		MaxResults:  cfg.Search.MaxResults,
	}
}

// relevanceScorer implements CodeSearcher by walking the source tree and
// scoring each candidate file with a keyword heuristic.
type relevanceScorer struct {
	opts   SearchOptions
	logger *zap.Logger
}

// NewCodeSearcher creates a CodeSearcher over opts.BaseDir.
func NewCodeSearcher(opts SearchOptions, logger *zap.Logger) CodeSearcher {
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &relevanceScorer{opts: opts, logger: logger}
}

// ScoreContent computes the relevance of one file to keyword. Matching is
// case-insensitive: 10 points per occurrence in the content, 50 when the
// keyword is part of the file name and 100 when the content looks like it
// defines a class or function of that name.
func ScoreContent(keyword, fileName, content string) int {
	kw := strings.ToLower(keyword)
	if kw == "" {
		return 0
	}
	lower := strings.ToLower(content)

	score := strings.Count(lower, kw) * occurrenceWeight
	if strings.Contains(strings.ToLower(fileName), kw) {
		score += fileNameBonus
	}
	if strings.Contains(lower, "class "+kw) || strings.Contains(lower, "function "+kw) {
		score += definitionBonus
	}
	return score
}

// Search walks the base directory and returns the best scoring files.
// Unreadable files are skipped and a missing base directory yields no
// matches; neither is reported as an error.
func (s *relevanceScorer) Search(ctx context.Context, keyword string) []models.CodeMatch {
	if strings.TrimSpace(keyword) == "" {
		return nil
	}

	info, err := os.Stat(s.opts.BaseDir)
	if err != nil || !info.IsDir() {
		s.logger.Warn("source directory does not exist", zap.String("path", s.opts.BaseDir))
		return nil
	}

	var matches []models.CodeMatch
	walkErr := filepath.WalkDir(s.opts.BaseDir, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			s.logger.Debug("skipping unreadable path", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if s.excluded(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !s.hasExtension(d.Name()) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Debug("failed to read file", zap.String("path", path), zap.Error(err))
			return nil
		}
		content := strings.ToValidUTF8(string(data), "")

		if score := ScoreContent(keyword, d.Name(), content); score > 0 {
			matches = append(matches, models.CodeMatch{
				FilePath:       path,
				Content:        content,
				RelevanceScore: score,
			})
		}
		return nil
	})
	if walkErr != nil && !errors.Is(walkErr, context.Canceled) && !errors.Is(walkErr, context.DeadlineExceeded) {
		s.logger.Debug("source walk stopped", zap.String("path", s.opts.BaseDir), zap.Error(walkErr))
	}

	return rankMatches(matches, s.opts.MaxResults)
}

// rankMatches orders matches by descending score, keeping encounter order
// among equal scores, and truncates to limit.
func rankMatches(matches []models.CodeMatch, limit int) []models.CodeMatch {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].RelevanceScore > matches[j].RelevanceScore
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func (s *relevanceScorer) excluded(path string) bool {
	for _, fragment := range s.opts.ExcludeDirs {
		if fragment != "" && strings.Contains(path, fragment) {
			return true
		}
	}
	return false
}

func (s *relevanceScorer) hasExtension(name string) bool {
	for _, ext := range s.opts.Extensions {
		if ext != "" && strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
