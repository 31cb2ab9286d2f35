package main

import (
	"errors"
	"fmt"
	"os"

	app "github.com/valter-silva-au/ai-coder/internal"
	"github.com/valter-silva-au/ai-coder/internal/cli"
)

// Set by goreleaser ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	cli.Initialize = app.Initialize

	if err := cli.Execute(); err != nil {
		if errors.Is(err, cli.ErrCancelled) {
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
