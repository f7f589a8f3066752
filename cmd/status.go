package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harilal/tradetoggle/internal/application"
	"github.com/harilal/tradetoggle/internal/domain"
)

func newStatusCmd() *cobra.Command {
	var walletName string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Resolve the current run state of a wallet's strategy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			app, err := wireApp()
			if err != nil {
				return err
			}

			wallet, err := app.cfg.WalletByName(walletName)
			if err != nil {
				return err
			}

			client, err := app.strategyClient(ctx, wallet)
			if err != nil {
				app.notify(ctx, application.FormatFatalReport(wallet.Name, err))
				return err
			}

			// Endpoints mix "Paused", "paused" and "PAUSED" spellings,
			// so the run-state verdict compares normalized forms.
			label := client.ResolveStatus(ctx, wallet.StrategyID)
			runState := "active"
			switch domain.NormalizeStatus(label) {
			case "":
				label, runState = "unknown", "unknown"
			case domain.NormalizeStatus(string(domain.StatePaused)):
				runState = "paused"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Strategy %d status: %s (%s)\n", wallet.StrategyID, label, runState)

			if count, err := client.RunningCount(ctx); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Strategies running: %d\n", count)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&walletName, "wallet", "", "Wallet name")
	_ = cmd.MarkFlagRequired("wallet")

	return cmd
}
