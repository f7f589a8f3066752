package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/harilal/tradetoggle/internal/application"
)

var errWalletCheckFailed = errors.New("one or more wallet sessions are invalid")

func newCheckCmd() *cobra.Command {
	var monitor bool
	var intervalHours int

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate every configured wallet's session cookies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := wireApp()
			if err != nil {
				return err
			}

			if len(app.cfg.Wallets) == 0 {
				return errors.New("no wallets configured")
			}

			service := application.NewHealthService(app.balanceFetcher(), app.clock)

			if !monitor {
				return runCheckOnce(cmd, app, service)
			}

			if intervalHours <= 0 {
				return errors.New("interval must be positive")
			}

			// Periodic mode never exits on invalid wallets; each pass
			// reports and the loop continues until cancelled.
			interval := time.Duration(intervalHours) * time.Hour
			for {
				if err := runCheckOnce(cmd, app, service); err != nil && !errors.Is(err, errWalletCheckFailed) {
					return err
				}
				log.Info().Dur("interval", interval).Msg("next wallet check scheduled")
				if err := app.clock.Sleep(cmd.Context(), interval); err != nil {
					return nil
				}
			}
		},
	}

	cmd.Flags().BoolVar(&monitor, "monitor", false, "Keep running periodic checks")
	cmd.Flags().IntVar(&intervalHours, "interval", 6, "Hours between periodic checks")

	return cmd
}

func runCheckOnce(cmd *cobra.Command, app *app, service *application.HealthService) error {
	ctx := cmd.Context()

	checks := make([]application.WalletCheck, 0, len(app.cfg.Wallets))
	for _, wallet := range app.cfg.Wallets {
		check := application.WalletCheck{Name: wallet.Name}
		check.Blob, check.BlobErr = app.cfg.CookieBlob(wallet)
		checks = append(checks, check)
	}

	report := service.Check(ctx, checks)
	text := application.FormatHealthReport(report)

	fmt.Fprintln(cmd.OutOrStdout(), text)
	app.notify(ctx, text)

	if !report.AllValid() {
		return errWalletCheckFailed
	}
	return nil
}

// balanceFetcher validates a blob end-to-end: session creation runs the
// probe, then the wallet summary supplies the balances.
func (a *app) balanceFetcher() application.BalanceFetcher {
	return func(ctx context.Context, blob string) (map[string]any, error) {
		client, err := a.clientFromBlob(ctx, blob)
		if err != nil {
			return nil, err
		}
		return client.Balances(ctx)
	}
}
