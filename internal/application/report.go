package application

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/harilal/tradetoggle/internal/domain"
)

// FormatRunReport renders the final toggle summary as a Telegram
// HTML-mode message. Failure details are preserved in full, never
// summarized away.
func FormatRunReport(summary domain.ToggleRunSummary) string {
	title := walletTitle(summary.Wallet)

	if summary.Failed {
		details := "Unknown error during toggle operations"
		if len(summary.FailureDetails) > 0 {
			details = strings.Join(summary.FailureDetails, "\n")
		}
		return fmt.Sprintf("🤖❌ <b>%s - FAILED</b>\n\n<b>Error Details:</b>\n<pre>%s</pre>",
			title, html.EscapeString(details))
	}

	running := "unknown"
	if summary.RunningCount != nil {
		running = fmt.Sprintf("%d", *summary.RunningCount)
	}

	return fmt.Sprintf(
		"🤖✅ <b>%s - SUCCESS</b>\n\nToggled Start/Stop: <b>%d</b> times\nStrategies Running: <b>%s</b>\n\nAutomation completed successfully!",
		title, summary.CompletedCycles, running)
}

// FormatFatalReport renders a precondition failure that aborted the run
// before any toggling happened.
func FormatFatalReport(wallet string, err error) string {
	return fmt.Sprintf("🤖❌ <b>%s - FAILED</b>\n\n<b>Error:</b> %s",
		walletTitle(wallet), html.EscapeString(err.Error()))
}

// FormatHealthReport renders the multi-wallet check as the compact
// status message: one line per wallet, then an overall verdict.
func FormatHealthReport(report HealthReport) string {
	var lines []string
	valid := 0

	for _, w := range report.Wallets {
		if w.Valid {
			valid++
			lines = append(lines, fmt.Sprintf("✅ %s: Running=%s", w.Name, w.Running))
			continue
		}
		detail := w.Detail
		if detail == "" {
			detail = "Error"
		}
		lines = append(lines, fmt.Sprintf("❌ %s: %s", w.Name, html.EscapeString(detail)))
	}

	summary := "❌ Down"
	switch {
	case len(report.Wallets) > 0 && valid == len(report.Wallets):
		summary = "✅ All Good"
	case valid > 0:
		summary = "⚠️ Check needed"
	}

	return fmt.Sprintf("<b>🤖 Cookie Check</b> %s\n\n%s\n\n%s",
		report.CheckedAt.Format("15:04:05"), strings.Join(lines, "\n"), summary)
}

func walletTitle(wallet string) string {
	if wallet == "" {
		return "TT Wallet"
	}
	first, size := utf8.DecodeRuneInString(wallet)
	return strings.ToUpper(string(first)) + wallet[size:] + " TT Wallet"
}
