package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dappstore.GO/app"
	"dappstore.GO/config"
)

var rootCmd = &cobra.Command{
	Use:           "dappstore",
	Short:         "dApp store registry tools",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute applies registered commands and runs the CLI.
func Execute() {
	Apply()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newApp builds the services from the environment.
func newApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg)
}
