package application

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/harilal/tradetoggle/internal/ports"
)

// WalletCheck is one wallet's health-check input: the cookie blob, or
// the error that prevented loading it.
type WalletCheck struct {
	Name    string
	Blob    string
	BlobErr error
}

type WalletHealth struct {
	Name    string
	Valid   bool
	Running string
	Detail  string
}

type HealthReport struct {
	CheckedAt time.Time
	Wallets   []WalletHealth
}

func (r HealthReport) AllValid() bool {
	for _, w := range r.Wallets {
		if !w.Valid {
			return false
		}
	}
	return true
}

// BalanceFetcher validates a wallet's cookie blob end-to-end and
// returns its balances. Wired to session.Store + tradetron.Client.
type BalanceFetcher func(ctx context.Context, blob string) (map[string]any, error)

// HealthService checks every configured wallet's session validity and
// collects the running counter per wallet. Individual failures never
// abort the sweep.
type HealthService struct {
	fetch BalanceFetcher
	clock ports.Clock
}

func NewHealthService(fetch BalanceFetcher, clock ports.Clock) *HealthService {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &HealthService{fetch: fetch, clock: clock}
}

func (s *HealthService) Check(ctx context.Context, wallets []WalletCheck) HealthReport {
	report := HealthReport{CheckedAt: s.clock.Now()}

	for _, wallet := range wallets {
		report.Wallets = append(report.Wallets, s.checkOne(ctx, wallet))
	}

	return report
}

func (s *HealthService) checkOne(ctx context.Context, wallet WalletCheck) WalletHealth {
	health := WalletHealth{Name: wallet.Name, Running: "?"}

	if wallet.BlobErr != nil {
		health.Detail = wallet.BlobErr.Error()
		return health
	}

	balances, err := s.fetch(ctx, wallet.Blob)
	if err != nil {
		log.Warn().Err(err).Str("wallet", wallet.Name).Msg("wallet check failed")
		health.Detail = err.Error()
		return health
	}

	health.Valid = true
	if running, ok := balances["running"]; ok {
		health.Running = fmt.Sprintf("%v", running)
	}

	return health
}
