package tradetron

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/harilal/tradetoggle/internal/domain"
)

// Recognized key spellings across the dashboard, status and details
// endpoints. The API is not consistent about which one a given payload
// uses, so all of them are tried.
var (
	strategyIDKeys = []string{
		"id",
		"deployment_id",
		"deployed_id",
		"strategy_id",
		"tradetron_id",
		"deployed_strategy_id",
		"deploy_id",
		"deploymentId",
		"deployedStrategyId",
		"strategy_deploy_id",
	}
	statusKeys = []string{
		"status",
		"execution_status",
		"executionStatus",
		"execution_status_name",
		"state",
		"live_status",
		"current_status",
		"status_label",
		"statusText",
		"execution",
	}
	statusLabelKeys = []string{"status", "label", "name", "text"}
)

const maxExtractDepth = 64

var emptyDashboardFilter = `{"exchange":[],"creator_id":[],"execution":[],"status":[],"broker_id":[],"statuses":[]}`

// ResolveStatus determines the current run state of a strategy. It
// walks a prioritized probe chain: the first probe that yields usable
// JSON decides the answer, even when that payload carries no entry for
// the strategy. The dashboard markup is scraped only when no probe
// yields usable JSON. An empty string means unresolved, never an error.
func (c *Client) ResolveStatus(ctx context.Context, id domain.StrategyID) string {
	probes := []func(context.Context) (*http.Response, error){
		func(ctx context.Context) (*http.Response, error) {
			return c.Session.PostJSON(ctx, filterDashboardPath, strings.NewReader(emptyDashboardFilter))
		},
		func(ctx context.Context) (*http.Response, error) {
			return c.Session.GetJSON(ctx, fmt.Sprintf(deployedStatusPath, id))
		},
		func(ctx context.Context) (*http.Response, error) {
			return c.Session.GetJSON(ctx, fmt.Sprintf(deployedDetailsPath, id))
		},
	}

	for i, probe := range probes {
		resp, err := probe(ctx)
		if err != nil {
			log.Warn().Err(err).Int("probe", i+1).Msg("status probe request failed")
			continue
		}

		payload, ok := decodeJSONBody(resp)
		if !ok {
			log.Warn().Int("probe", i+1).Int("status", resp.StatusCode).Msg("status probe yielded no usable payload")
			continue
		}

		// First usable payload decides, found or not.
		return extractStatus(payload, idString(id), 0)
	}

	return c.statusFromMarkup(ctx, id)
}

func idString(id domain.StrategyID) string {
	return fmt.Sprintf("%d", id)
}

// decodeJSONBody returns (payload, true) only for a 200 response whose
// body decodes to a non-empty JSON value.
func decodeJSONBody(resp *http.Response) (any, bool) {
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, false
	}

	var payload any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return nil, false
	}
	if payload == nil {
		return nil, false
	}
	return payload, true
}

// extractStatus walks the decoded JSON depth-first. A mapping node
// matches when any recognized id key stringifies equal to the target;
// its first recognized status key wins, unwrapping one nested level of
// {status|label|name|text} when the value is itself a mapping. Ids are
// compared as strings because endpoints mix numeric and string forms.
func extractStatus(node any, id string, depth int) string {
	if depth > maxExtractDepth {
		return ""
	}

	switch value := node.(type) {
	case map[string]any:
		for _, idKey := range strategyIDKeys {
			candidate, ok := value[idKey]
			if !ok || stringify(candidate) != id {
				continue
			}
			for _, statusKey := range statusKeys {
				status, ok := value[statusKey]
				if !ok {
					continue
				}
				if nested, ok := status.(map[string]any); ok {
					for _, labelKey := range statusLabelKeys {
						if label, ok := nested[labelKey]; ok {
							return stringify(label)
						}
					}
					continue
				}
				return stringify(status)
			}
		}
		for _, child := range value {
			if label := extractStatus(child, id, depth+1); label != "" {
				return label
			}
		}
	case []any:
		for _, child := range value {
			if label := extractStatus(child, id, depth+1); label != "" {
				return label
			}
		}
	}

	return ""
}

// stringify renders a JSON scalar the way the upstream renders ids:
// integers without an exponent or trailing zeros.
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case bool:
		return fmt.Sprintf("%t", v)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (c *Client) statusFromMarkup(ctx context.Context, id domain.StrategyID) string {
	resp, err := c.Session.GetHTML(ctx, dashboardPath)
	if err != nil {
		log.Warn().Err(err).Msg("dashboard markup fetch failed")
		return ""
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Msg("dashboard markup fetch rejected")
		return ""
	}

	return scanStatusMarkup(io.LimitReader(resp.Body, maxResponseBytes), idString(id))
}
