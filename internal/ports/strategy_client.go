package ports

import (
	"context"

	"github.com/harilal/tradetoggle/internal/domain"
)

// StrategyClient is the authenticated surface of the remote strategy
// platform. Toggle reports every outcome through CommandOutcome rather
// than an error so the orchestrator can classify and keep going;
// ResolveStatus is best-effort and returns "" when unresolved.
type StrategyClient interface {
	Toggle(ctx context.Context, id domain.StrategyID, state domain.RunState) domain.CommandOutcome
	ResolveStatus(ctx context.Context, id domain.StrategyID) string
	RunningCount(ctx context.Context) (int, error)
}
