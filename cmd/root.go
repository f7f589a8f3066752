package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ttctl",
		Short:         "Tradetron strategy toggler: session-backed start/stop automation",
		Long:          "ttctl toggles a deployed Tradetron strategy's run state over an authenticated API session, verifies status, checks wallet cookie health, and reports results to Telegram.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Wiring happens inside each command that needs the app, so a broken
	// environment still leaves version and help working.
	rootCmd.AddCommand(
		newVersionCmd(),
		newToggleCmd(),
		newStatusCmd(),
		newCheckCmd(),
		newCookiesCmd(),
	)

	return rootCmd
}
