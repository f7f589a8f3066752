package tradetron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"

	"github.com/rs/zerolog/log"
)

var errRunningCountUnavailable = errors.New("running count unavailable")

type walletSummary struct {
	Data struct {
		Balances map[string]any `json:"balances"`
	} `json:"data"`
}

// Patterns for the markup fallback, in priority order. The dashboard
// renders the running counter in a few different fragments depending on
// the wallet modal state.
var runningCountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)>Running</span>\s*(?:==\s*\$0)?\s*<[^>]*>[\s-]*(\d+)</[^>]*>`),
	regexp.MustCompile(`(?is)>Running<[^>]*>\s*(?:==\s*\$0)?\s*[\s-]*(\d+)`),
	regexp.MustCompile(`(?is)Running["']?\s*[:\-]?\s*(\d+)`),
	regexp.MustCompile(`(?is)wallet.*?running.*?(\d+)`),
}

// RunningCount reports how many strategies the wallet currently runs.
// Primary source is the wallet summary endpoint; when that fails the
// dashboard markup is searched for the counter. Best-effort: callers
// treat an error as "unknown", not as a failed run.
func (c *Client) RunningCount(ctx context.Context) (int, error) {
	if count, err := c.runningFromSummary(ctx); err == nil {
		return count, nil
	} else {
		log.Warn().Err(err).Msg("wallet summary lookup failed, trying markup")
	}

	return c.runningFromMarkup(ctx)
}

// Balances returns the raw wallet balances mapping for health reports.
func (c *Client) Balances(ctx context.Context) (map[string]any, error) {
	resp, err := c.Session.GetJSON(ctx, walletSummaryPath)
	if err != nil {
		return nil, fmt.Errorf("fetch wallet summary: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wallet summary status %d", resp.StatusCode)
	}

	var summary walletSummary
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&summary); err != nil {
		return nil, fmt.Errorf("decode wallet summary: %w", err)
	}

	return summary.Data.Balances, nil
}

func (c *Client) runningFromSummary(ctx context.Context) (int, error) {
	balances, err := c.Balances(ctx)
	if err != nil {
		return 0, err
	}

	running, ok := balances["running"]
	if !ok {
		return 0, errRunningCountUnavailable
	}

	switch v := running.(type) {
	case float64:
		return int(v), nil
	case string:
		count, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("parse running count %q: %w", v, err)
		}
		return count, nil
	default:
		return 0, errRunningCountUnavailable
	}
}

func (c *Client) runningFromMarkup(ctx context.Context) (int, error) {
	resp, err := c.Session.GetHTML(ctx, dashboardPath)
	if err != nil {
		return 0, fmt.Errorf("fetch dashboard markup: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("dashboard markup status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, fmt.Errorf("read dashboard markup: %w", err)
	}

	for _, pattern := range runningCountPatterns {
		match := pattern.FindSubmatch(raw)
		if match == nil {
			continue
		}
		count, err := strconv.Atoi(string(match[1]))
		if err != nil {
			continue
		}
		return count, nil
	}

	return 0, errRunningCountUnavailable
}
