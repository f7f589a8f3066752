package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harilal/tradetoggle/internal/application"
	"github.com/harilal/tradetoggle/internal/domain"
)

func newCookiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cookies",
		Short: "Encode and validate session cookie blobs",
	}

	cmd.AddCommand(newCookiesEncodeCmd(), newCookiesCheckCmd())
	return cmd
}

// cookies encode turns a browser-exported JSON cookie list into the
// blob form carried in TT_COOKIES_B64_* secrets.
func newCookiesEncodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode <cookies.json>",
		Short: "Encode a JSON cookie export into a session blob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read cookie export: %w", err)
			}

			var cookies []domain.Cookie
			if err := json.Unmarshal(raw, &cookies); err != nil {
				return fmt.Errorf("decode cookie export: %w", err)
			}

			blob, err := domain.EncodeCookies(cookies)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), blob)
			return nil
		},
	}
}

// cookies check validates one wallet's blob end-to-end: decode, session
// probe, wallet summary.
func newCookiesCheckCmd() *cobra.Command {
	var walletName string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a wallet's cookie blob against the live API",
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

			fmt.Fprintf(cmd.OutOrStdout(), "Wallet %s session is valid\n", wallet.Name)
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
