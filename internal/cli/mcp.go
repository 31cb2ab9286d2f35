package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	aimcp "github.com/valter-silva-au/ai-coder/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the aicoder MCP (Model Context Protocol) server.",
	// Grouping command: no request argument, no configuration needed.
	Args:              cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the aicoder MCP server on stdio",
	Long: `Start the aicoder MCP server on stdio transport.

The server exposes the code search and request decomposition as MCP tools
that AI coding assistants can call: search_code, decompose_request,
get_metrics.`,
	Args:              cobra.NoArgs,
	PersistentPreRunE: initialize,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Searcher == nil || Decomposer == nil {
			return fmt.Errorf("search services not initialized")
		}

		srv := aimcp.NewServer(Searcher, Decomposer, MetricsCalc, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}
		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
