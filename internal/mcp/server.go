// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the code search and request decomposition to AI coding assistants.
package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/ai-coder/internal/core"
	"github.com/valter-silva-au/ai-coder/internal/observability"
)

// Server wraps ai-coder services and exposes them as MCP tools.
type Server struct {
	server      *gomcp.Server
	searcher    core.CodeSearcher
	decomposer  core.TaskDecomposer
	metricsCalc observability.MetricsCalculator
}

// NewServer creates a new MCP server. metricsCalc may be nil when the
// event log is unavailable.
func NewServer(searcher core.CodeSearcher, decomposer core.TaskDecomposer, metricsCalc observability.MetricsCalculator, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		searcher:    searcher,
		decomposer:  decomposer,
		metricsCalc: metricsCalc,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "aicoder", Version: version},
		nil,
	)
	s.registerTools()
	return s
}

// Run serves MCP on stdio until the client disconnects or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type searchCodeInput struct {
	Keyword string `json:"keyword" jsonschema:"required,the keyword to score source files against (typically a task id such as db_design)"`
}

type codeMatchOutput struct {
	FilePath       string `json:"file_path"`
	RelevanceScore int    `json:"relevance_score"`
}

type searchCodeOutput struct {
	Matches []codeMatchOutput `json:"matches"`
	Count   int               `json:"count"`
}

type decomposeInput struct {
	Request string `json:"request" jsonschema:"required,the free-text feature request"`
}

type taskOutput struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

type decomposeOutput struct {
	Tasks []taskOutput `json:"tasks"`
	Count int          `json:"count"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	Runs           int     `json:"runs"`
	TasksReused    int     `json:"tasks_reused"`
	TasksGenerated int     `json:"tasks_generated"`
	TasksFailed    int     `json:"tasks_failed"`
	ReuseRate      float64 `json:"reuse_rate"`
	EventCount     int     `json:"event_count"`
	OldestEvent    string  `json:"oldest_event,omitempty"`
	NewestEvent    string  `json:"newest_event,omitempty"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "search_code",
		Description: "Score files in the configured source tree against a keyword. Returns up to five paths with relevance scores, best first.",
	}, s.handleSearchCode)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "decompose_request",
		Description: "Split a feature request into the ordered sub-tasks ai-coder would resolve.",
	}, s.handleDecompose)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Aggregate past runs from the event log: runs, reused, generated and failed tasks.",
	}, s.handleGetMetrics)
}

// --- Tool handlers ---

func (s *Server) handleSearchCode(ctx context.Context, _ *gomcp.CallToolRequest, input searchCodeInput) (*gomcp.CallToolResult, searchCodeOutput, error) {
	if strings.TrimSpace(input.Keyword) == "" {
		return errorResult("keyword is required"), searchCodeOutput{Matches: []codeMatchOutput{}}, nil
	}

	matches := s.searcher.Search(ctx, input.Keyword)
	out := searchCodeOutput{
		Matches: make([]codeMatchOutput, len(matches)),
		Count:   len(matches),
	}
	for i, m := range matches {
		out.Matches[i] = codeMatchOutput{FilePath: m.FilePath, RelevanceScore: m.RelevanceScore}
	}
	return nil, out, nil
}

func (s *Server) handleDecompose(_ context.Context, _ *gomcp.CallToolRequest, input decomposeInput) (*gomcp.CallToolResult, decomposeOutput, error) {
	if strings.TrimSpace(input.Request) == "" {
		return errorResult("request is required"), decomposeOutput{Tasks: []taskOutput{}}, nil
	}

	tasks := s.decomposer.Decompose(input.Request)
	out := decomposeOutput{
		Tasks: make([]taskOutput, len(tasks)),
		Count: len(tasks),
	}
	for i, t := range tasks {
		out.Tasks[i] = taskOutput{ID: t.ID, Description: t.Description}
	}
	return nil, out, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (event log may be disabled)"), metricsOutput{}, nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}
	sinceTime, err := parseSince(sinceStr, time.Now().UTC())
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), metricsOutput{}, nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), metricsOutput{}, nil
	}

	out := metricsOutput{
		Runs:           metrics.Runs,
		TasksReused:    metrics.TasksReused,
		TasksGenerated: metrics.TasksGenerated,
		TasksFailed:    metrics.TasksFailed,
		ReuseRate:      metrics.ReuseRate(),
		EventCount:     metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}
	return nil, out, nil
}

// --- Helpers ---

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a duration like "7d" or "24h" into the time that far
// before now.
func parseSince(s string, now time.Time) (time.Time, error) {
	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	var num int
	if _, err := fmt.Sscanf(s[:len(s)-1], "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
