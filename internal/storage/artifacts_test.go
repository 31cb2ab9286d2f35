package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/ai-coder/pkg/models"
)

var artifactTime = time.Date(2026, 3, 1, 9, 30, 5, 0, time.UTC)

func TestArtifactFilename(t *testing.T) {
	tests := []struct {
		taskID string
		want   string
	}{
		{"db_design", "db_design_20260301_093005.md"},
		{"general_task", "general_task_20260301_093005.md"},
		{"../etc/passwd", "etc-passwd_20260301_093005.md"},
		{"a b/c", "a-b-c_20260301_093005.md"},
		{"", "task_20260301_093005.md"},
	}
	for _, tt := range tests {
		if got := ArtifactFilename(tt.taskID, artifactTime); got != tt.want {
			t.Errorf("ArtifactFilename(%q) = %q, want %q", tt.taskID, got, tt.want)
		}
	}
}

func TestFormatArtifact(t *testing.T) {
	task := models.NewTask("post_api", "Post CRUD API")
	task.CodeMatches = []models.CodeMatch{
		{FilePath: "src/posts.py", RelevanceScore: 40},
		{FilePath: "src/api.py", RelevanceScore: 10},
	}
	task.GeneratedCode = "```python\nprint('hi')\n```"

	want := "# Post CRUD API\n\n" +
		"## Existing code search results\n" +
		"- src/posts.py (score: 40)\n" +
		"- src/api.py (score: 10)\n" +
		"\n## Generated code\n\n" +
		"```python\nprint('hi')\n```\n"
	if got := FormatArtifact(task); got != want {
		t.Errorf("FormatArtifact =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatArtifact_NoMatches(t *testing.T) {
	task := models.NewTask("general_task", "something")
	task.GeneratedCode = "x"

	if got := FormatArtifact(task); !strings.Contains(got, "## Existing code search results\n- none\n") {
		t.Errorf("expected '- none' line:\n%s", got)
	}
}

func TestWriteArtifact(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	store := NewArtifactStore(dir, func() time.Time { return artifactTime })

	task := models.NewTask("cart_api", "Shopping cart API")
	task.GeneratedCode = "# AI generation failed\n# Error: boom"

	path, err := store.WriteArtifact(task)
	if err != nil {
		t.Fatalf("WriteArtifact: %v", err)
	}
	if want := filepath.Join(dir, "cart_api_20260301_093005.md"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	if string(data) != FormatArtifact(task) {
		t.Errorf("artifact content mismatch:\n%s", data)
	}
}

func TestWriteArtifact_UnwritableDir(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := NewArtifactStore(filepath.Join(blocker, "logs"), nil)

	if _, err := store.WriteArtifact(models.NewTask("x", "x")); err == nil {
		t.Error("expected error when the logs directory cannot be created")
	}
}
