package application

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/harilal/tradetoggle/internal/domain"
	"github.com/harilal/tradetoggle/internal/ports"
)

const maxBodyDetail = 200

// ToggleService runs the alternating Stop/Start sequence against one
// strategy. It fails fast on the first failed step but always issues a
// final Paused command so the strategy is left in a safe state no
// matter where the run broke off.
type ToggleService struct {
	client ports.StrategyClient
	clock  ports.Clock
}

func NewToggleService(client ports.StrategyClient, clock ports.Clock) *ToggleService {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &ToggleService{client: client, clock: clock}
}

func (s *ToggleService) Run(ctx context.Context, wallet string, id domain.StrategyID, cycles int, delay time.Duration) domain.ToggleRunSummary {
	summary := domain.ToggleRunSummary{Wallet: wallet, TotalCycles: cycles}

	for i := 1; i <= cycles; i++ {
		log.Info().Int("cycle", i).Int("total", cycles).Msg("sending STOP command")
		if !s.step(ctx, &summary, id, domain.StatePaused, "STOP", i) {
			break
		}

		if !s.pause(ctx, &summary, delay) {
			break
		}

		log.Info().Int("cycle", i).Int("total", cycles).Msg("sending START command")
		if !s.step(ctx, &summary, id, domain.StateStart, "START", i) {
			break
		}

		summary.CompletedCycles++

		if i < cycles {
			if !s.pause(ctx, &summary, delay) {
				break
			}
		}
	}

	// Closing safety command, issued on success and failure alike.
	log.Info().Msg("finalizing: sending STOP command to end in Paused state")
	outcome := s.client.Toggle(ctx, id, domain.StatePaused)
	if !outcome.Succeeded {
		summary.Failed = true
		summary.FailureDetails = append(summary.FailureDetails, outcomeDetail("Final STOP command failed", outcome)...)
	}

	if count, err := s.client.RunningCount(ctx); err == nil {
		summary.RunningCount = &count
	} else {
		log.Warn().Err(err).Msg("running count unavailable")
	}

	return summary
}

// step issues one command and classifies the outcome. Returns false
// when the run must stop cycling.
func (s *ToggleService) step(ctx context.Context, summary *domain.ToggleRunSummary, id domain.StrategyID, state domain.RunState, name string, cycle int) bool {
	outcome := s.client.Toggle(ctx, id, state)
	if outcome.Succeeded {
		return true
	}

	summary.Failed = true
	prefix := fmt.Sprintf("%s command failed at cycle %d/%d", name, cycle, summary.TotalCycles)
	summary.FailureDetails = append(summary.FailureDetails, outcomeDetail(prefix, outcome)...)
	return false
}

func (s *ToggleService) pause(ctx context.Context, summary *domain.ToggleRunSummary, delay time.Duration) bool {
	if err := s.clock.Sleep(ctx, delay); err != nil {
		summary.Failed = true
		summary.FailureDetails = append(summary.FailureDetails, fmt.Sprintf("run cancelled: %v", err))
		return false
	}
	return true
}

// outcomeDetail renders a failed outcome as report lines: the headline
// with the terminal condition, then a body excerpt when one exists.
func outcomeDetail(prefix string, outcome domain.CommandOutcome) []string {
	var details []string

	switch {
	case outcome.StatusCode == 0:
		details = append(details, fmt.Sprintf("%s - no response: %s", prefix, outcome.TransportErr))
	case outcome.StatusCode == 200:
		details = append(details, fmt.Sprintf("%s - response is not valid JSON", prefix))
	default:
		details = append(details, fmt.Sprintf("%s - status %d", prefix, outcome.StatusCode))
	}

	if outcome.Body != "" {
		body := outcome.Body
		if len(body) > maxBodyDetail {
			body = body[:maxBodyDetail]
		}
		details = append(details, "Response: "+body)
	}

	return details
}
