package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// ErrCancelled is returned when the run is interrupted.
var ErrCancelled = errors.New("run cancelled")

var (
	configPath string
	verbose    bool
	cleanup    func() error
)

var titleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("230")).
	Background(lipgloss.Color("62")).
	Padding(0, 1)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   `aicoder "<request>"`,
	Short: "Reuse your own source code first, generate the rest with AI",
	Long: `aicoder splits a feature request into sub-tasks, searches the configured
source tree for code that already solves each one and asks an AI model to
write whatever is missing. Generated code is stored as Markdown under the
logs directory and a summary is printed (and optionally sent to Telegram or
Slack) when the run finishes.`,
	Example:           `  aicoder "build a blog"`,
	Args:              exactlyOneRequest,
	SilenceErrors:     true,
	PersistentPreRunE: initialize,
	RunE:              runRequest,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// Overrides the root hook: printing the version needs no configuration.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "aicoder %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command and releases whatever initialize acquired,
// including when the command itself failed: cobra skips post-run hooks
// after a RunE error.
func Execute() error {
	err := rootCmd.Execute()
	return errors.Join(err, release())
}

func release() error {
	if cleanup == nil {
		return nil
	}
	err := cleanup()
	cleanup = nil
	return err
}

func exactlyOneRequest(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one request argument, got %d", len(args))
	}
	return nil
}

// initialize loads configuration and wires services. Usage output is
// silenced from here on: argument errors have already been reported.
func initialize(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	if Initialize == nil {
		return fmt.Errorf("application wiring not initialized")
	}
	release, err := Initialize(configPath, verbose)
	if err != nil {
		return err
	}
	cleanup = release
	return nil
}

func runRequest(cmd *cobra.Command, args []string) error {
	if Pipeline == nil {
		return fmt.Errorf("pipeline not initialized")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render("aicoder"))

	if _, err := Pipeline.Run(ctx, args[0]); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(cmd.ErrOrStderr(), "\nRun cancelled.")
			return ErrCancelled
		}
		Logger.Error("unexpected error", zap.Error(err))
		return err
	}
	return nil
}
