package tradetron

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/harilal/tradetoggle/internal/adapters/session"
	"github.com/harilal/tradetoggle/internal/domain"
	"github.com/harilal/tradetoggle/internal/ports"
)

const (
	toggleStatusPath    = "/api/deployed/status"
	filterDashboardPath = "/api/user/filter/dashboard"
	deployedStatusPath  = "/api/deployed/status?id=%d"
	deployedDetailsPath = "/api/deployed/details?id=%d"
	walletSummaryPath   = "/api/pricing/user-taxes"
	dashboardPath       = "/user/dashboard"

	maxResponseBytes = 1 << 20
)

// Client drives the deployed-strategy API over a validated session.
// It implements ports.StrategyClient.
type Client struct {
	Session     *session.Session
	Clock       ports.Clock
	MaxAttempts int
	BackoffBase time.Duration
}

var _ ports.StrategyClient = (*Client)(nil)

// Toggle issues one state-change command. Transport failures and 5xx
// responses are retried with linear backoff; anything below 500 is
// terminal, 4xx included, because those are definitive rejections.
func (c *Client) Toggle(ctx context.Context, id domain.StrategyID, state domain.RunState) domain.CommandOutcome {
	payload, err := json.Marshal(domain.ToggleCommand{StrategyID: id, State: state})
	if err != nil {
		return domain.CommandOutcome{TransportErr: fmt.Sprintf("marshal toggle command: %v", err)}
	}

	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	backoff := c.BackoffBase
	if backoff <= 0 {
		backoff = 3 * time.Second
	}

	var outcome domain.CommandOutcome
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := c.Session.PostJSON(ctx, toggleStatusPath, bytes.NewReader(payload))
		if err != nil {
			outcome = domain.CommandOutcome{TransportErr: err.Error()}
			log.Warn().Err(err).Int("attempt", attempt).Int("max", attempts).
				Str("state", string(state)).Msg("toggle request failed")
			if attempt < attempts {
				if sleepErr := c.clock().Sleep(ctx, backoff*time.Duration(attempt)); sleepErr != nil {
					return outcome
				}
				continue
			}
			return outcome
		}

		body := readBody(resp)
		outcome = domain.CommandOutcome{StatusCode: resp.StatusCode, Body: body}

		if resp.StatusCode < http.StatusInternalServerError {
			outcome.Succeeded = resp.StatusCode == http.StatusOK && json.Valid([]byte(body))
			return outcome
		}

		log.Warn().Int("status", resp.StatusCode).Int("attempt", attempt).Int("max", attempts).
			Str("state", string(state)).Msg("toggle rejected with server error")
		if attempt < attempts {
			if sleepErr := c.clock().Sleep(ctx, backoff*time.Duration(attempt)); sleepErr != nil {
				return outcome
			}
		}
	}

	return outcome
}

func (c *Client) clock() ports.Clock {
	if c.Clock != nil {
		return c.Clock
	}
	return ports.SystemClock{}
}

func readBody(resp *http.Response) string {
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return ""
	}
	return string(raw)
}
