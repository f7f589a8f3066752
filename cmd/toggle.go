package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/harilal/tradetoggle/internal/application"
)

var errToggleRunFailed = errors.New("toggle run failed")

func newToggleCmd() *cobra.Command {
	var walletName string
	var cycles int
	var delaySeconds int

	cmd := &cobra.Command{
		Use:   "toggle",
		Short: "Run the alternating Stop/Start sequence for a wallet's strategy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			app, err := wireApp()
			if err != nil {
				return err
			}

			wallet, err := app.cfg.WalletByName(walletName)
			if err != nil {
				app.notify(ctx, application.FormatFatalReport(walletName, err))
				return err
			}

			if !cmd.Flags().Changed("cycles") {
				cycles = app.cfg.CyclesFor(wallet)
			}
			delay := app.cfg.Delay
			if cmd.Flags().Changed("delay") {
				delay = time.Duration(delaySeconds) * time.Second
			}
			if cycles < 0 {
				return errors.New("cycles must not be negative")
			}
			if delay < 0 {
				return errors.New("delay must not be negative")
			}

			client, err := app.strategyClient(ctx, wallet)
			if err != nil {
				app.notify(ctx, application.FormatFatalReport(wallet.Name, err))
				return err
			}

			log.Info().Str("wallet", wallet.Name).Int64("strategy", int64(wallet.StrategyID)).
				Int("cycles", cycles).Dur("delay", delay).Msg("starting toggle run")

			service := application.NewToggleService(client, app.clock)
			summary := service.Run(ctx, wallet.Name, wallet.StrategyID, cycles, delay)

			app.notify(ctx, application.FormatRunReport(summary))

			if summary.Failed {
				for _, detail := range summary.FailureDetails {
					log.Error().Msg(detail)
				}
				return errToggleRunFailed
			}

			running := "unknown"
			if summary.RunningCount != nil {
				running = fmt.Sprintf("%d", *summary.RunningCount)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Toggled Start/Stop %d times, strategies running: %s\n",
				summary.CompletedCycles, running)
			return nil
		},
	}

	cmd.Flags().StringVar(&walletName, "wallet", "", "Wallet name")
	cmd.Flags().IntVar(&cycles, "cycles", 0, "Number of Stop/Start cycles (default from NUM_TOGGLES)")
	cmd.Flags().IntVar(&delaySeconds, "delay", 0, "Seconds between commands (default from DELAY_SECONDS)")
	_ = cmd.MarkFlagRequired("wallet")

	return cmd
}
