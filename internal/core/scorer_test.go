package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/valter-silva-au/ai-coder/pkg/models"
)

func writeFixture(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating fixture dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func newTestSearcher(dir string) CodeSearcher {
	return NewCodeSearcher(SearchOptions{
		BaseDir:     dir,
		Extensions:  []string{".py", ".js", ".sql", ".go"},
		ExcludeDirs: []string{"node_modules", ".git"},
		MaxResults:  5,
	}, nil)
}

func TestScoreContent(t *testing.T) {
	tests := []struct {
		name     string
		keyword  string
		fileName string
		content  string
		want     int
	}{
		{"no match", "user_auth", "main.py", "print('hello')", 0},
		{"single occurrence", "user_auth", "main.py", "# user_auth helper", 10},
		{"repeated occurrences", "cart_api", "x.js", "cart_api cart_api cart_api", 30},
		{"file name only", "db_design", "db_design.sql", "CREATE TABLE users (id int);", 50},
		{"file name and content", "db_design", "db_design.sql", "-- db_design\nCREATE TABLE users (id int);", 60},
		{"class definition", "user_auth", "auth.py", "class user_auth:\n    pass", 110},
		{"function definition", "post_api", "routes.js", "function post_api() {}", 110},
		{"case insensitive", "user_auth", "USER_AUTH.py", "CLASS User_Auth:\n    USER_AUTH = 1", 50 + 100 + 20},
		{"empty keyword", "", "anything.py", "anything", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreContent(tt.keyword, tt.fileName, tt.content)
			if got != tt.want {
				t.Errorf("ScoreContent(%q, %q) = %d, want %d", tt.keyword, tt.fileName, got, tt.want)
			}
		})
	}
}

func TestSearch_RanksByScore(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "low.py", "user_auth")
	writeFixture(t, dir, "high.py", "class user_auth:\n    user_auth = 1")
	writeFixture(t, dir, "user_auth.js", "// empty")
	writeFixture(t, dir, "unrelated.py", "nothing to see")

	matches := newTestSearcher(dir).Search(context.Background(), "user_auth")

	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3: %+v", len(matches), matches)
	}
	wantOrder := []struct {
		name  string
		score int
	}{
		{"high.py", 120},
		{"user_auth.js", 50},
		{"low.py", 10},
	}
	for i, want := range wantOrder {
		if filepath.Base(matches[i].FilePath) != want.name {
			t.Errorf("matches[%d] = %s, want %s", i, matches[i].FilePath, want.name)
		}
		if matches[i].RelevanceScore != want.score {
			t.Errorf("matches[%d].RelevanceScore = %d, want %d", i, matches[i].RelevanceScore, want.score)
		}
	}
	if matches[0].Content != "class user_auth:\n    user_auth = 1" {
		t.Errorf("matches[0].Content = %q, want file content", matches[0].Content)
	}
}

func TestSearch_CapsResults(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 8; i++ {
		writeFixture(t, dir, fmt.Sprintf("file%d.py", i), "product_api")
	}

	matches := newTestSearcher(dir).Search(context.Background(), "product_api")
	if len(matches) != 5 {
		t.Fatalf("got %d matches, want 5", len(matches))
	}
	// Equal scores keep walk order, which is lexical.
	for i, m := range matches {
		want := fmt.Sprintf("file%d.py", i)
		if filepath.Base(m.FilePath) != want {
			t.Errorf("matches[%d] = %s, want %s", i, filepath.Base(m.FilePath), want)
		}
	}
}

func TestSearch_SkipsExcludedDirsAndExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "node_modules/pkg/order_api.js", "class order_api {}")
	writeFixture(t, dir, ".git/order_api.py", "order_api")
	writeFixture(t, dir, "docs/order_api.md", "order_api order_api")
	writeFixture(t, dir, "src/orders.py", "order_api")

	matches := newTestSearcher(dir).Search(context.Background(), "order_api")
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1: %+v", len(matches), matches)
	}
	if filepath.Base(matches[0].FilePath) != "orders.py" {
		t.Errorf("match = %s, want src/orders.py", matches[0].FilePath)
	}
}

func TestSearch_MissingBaseDir(t *testing.T) {
	s := newTestSearcher(filepath.Join(t.TempDir(), "does-not-exist"))
	if matches := s.Search(context.Background(), "db_design"); len(matches) != 0 {
		t.Errorf("got %d matches, want 0", len(matches))
	}
}

func TestSearch_EmptyKeyword(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a.py", "anything")

	if matches := newTestSearcher(dir).Search(context.Background(), "  "); len(matches) != 0 {
		t.Errorf("got %d matches, want 0", len(matches))
	}
}

func TestSearch_InvalidUTF8IsTolerated(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "binary.py", "comment_api \xff\xfe comment_api")

	matches := newTestSearcher(dir).Search(context.Background(), "comment_api")
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].RelevanceScore != 20 {
		t.Errorf("RelevanceScore = %d, want 20", matches[0].RelevanceScore)
	}
	if matches[0].Content != "comment_api  comment_api" {
		t.Errorf("Content = %q, want invalid bytes dropped", matches[0].Content)
	}
}

func TestSearch_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "cart_api.py", "cart_api")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if matches := newTestSearcher(dir).Search(ctx, "cart_api"); len(matches) != 0 {
		t.Errorf("got %d matches, want 0 after cancellation", len(matches))
	}
}

func TestNewCodeSearcher_DefaultsMaxResults(t *testing.T) {
	s := NewCodeSearcher(SearchOptions{BaseDir: "."}, nil).(*relevanceScorer)
	if s.opts.MaxResults != DefaultMaxResults {
		t.Errorf("MaxResults = %d, want %d", s.opts.MaxResults, DefaultMaxResults)
	}
}

func TestSearchOptionsFromConfig(t *testing.T) {
	cfg := &models.Config{
		Project: models.ProjectConfig{BasePath: "./src"},
		Search: models.SearchConfig{
			FileExtensions: []string{".go"},
			ExcludeDirs:    []string{"vendor"},
			MaxResults:     3,
		},
	}
	opts := SearchOptionsFromConfig(cfg)
	if opts.BaseDir != "./src" || opts.MaxResults != 3 {
		t.Errorf("opts = %+v", opts)
	}
	if len(opts.Extensions) != 1 || opts.Extensions[0] != ".go" {
		t.Errorf("Extensions = %v, want [.go]", opts.Extensions)
	}
	if len(opts.ExcludeDirs) != 1 || opts.ExcludeDirs[0] != "vendor" {
		t.Errorf("ExcludeDirs = %v, want [vendor]", opts.ExcludeDirs)
	}
}
