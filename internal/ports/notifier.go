package ports

import "context"

// Notifier delivers a human-readable report to the outbound channel.
// Implementations must be safe to call after a failed run; delivery
// failures are the caller's to log, never to crash on.
type Notifier interface {
	Send(ctx context.Context, text string) error
}
