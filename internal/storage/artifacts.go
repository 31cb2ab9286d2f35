// Package storage persists run output: one Markdown artifact per task that
// went through code generation.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/valter-silva-au/ai-coder/pkg/models"
)

// artifactTimeLayout is the YYYYMMDD_HHMMSS suffix of artifact file names.
const artifactTimeLayout = "20060102_150405"

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// ArtifactStore writes task artifacts under a logs directory.
type ArtifactStore interface {
	WriteArtifact(task *models.Task) (string, error)
}

type fileArtifactStore struct {
	dir string
	now func() time.Time
}

// NewArtifactStore creates an ArtifactStore writing to dir. now may be nil,
// in which case time.Now is used for file name timestamps.
func NewArtifactStore(dir string, now func() time.Time) ArtifactStore {
	if now == nil {
		now = time.Now
	}
	return &fileArtifactStore{dir: dir, now: now}
}

// ArtifactFilename returns <task-id>_<YYYYMMDD_HHMMSS>.md. Characters that
// are unsafe in file names are replaced by hyphens.
func ArtifactFilename(taskID string, at time.Time) string {
	stem := strings.Trim(unsafeFilenameChars.ReplaceAllString(taskID, "-"), "-")
	if stem == "" {
		stem = "task"
	}
	return fmt.Sprintf("%s_%s.md", stem, at.Format(artifactTimeLayout))
}

// FormatArtifact renders the Markdown body of a task artifact.
func FormatArtifact(task *models.Task) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", task.Description))
	sb.WriteString("## Existing code search results\n")
	if len(task.CodeMatches) == 0 {
		sb.WriteString("- none\n")
	}
	for _, m := range task.CodeMatches {
		sb.WriteString(fmt.Sprintf("- %s (score: %d)\n", m.FilePath, m.RelevanceScore))
	}
	sb.WriteString("\n## Generated code\n\n")
	sb.WriteString(task.GeneratedCode)
	sb.WriteString("\n")

	return sb.String()
}

// WriteArtifact writes the task's artifact and returns its path.
func (s *fileArtifactStore) WriteArtifact(task *models.Task) (string, error) {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return "", fmt.Errorf("creating artifact directory %s: %w", s.dir, err)
	}

	path := filepath.Join(s.dir, ArtifactFilename(task.ID, s.now()))
	if err := os.WriteFile(path, []byte(FormatArtifact(task)), 0o644); err != nil {
		return "", fmt.Errorf("writing artifact %s: %w", path, err)
	}
	return path, nil
}
