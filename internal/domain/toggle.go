package domain

import "strings"

// RunState is the wire literal accepted by the deployed-status endpoint.
type RunState string

const (
	StateStart  RunState = "Start"
	StatePaused RunState = "Paused"
)

type StrategyID int64

type ToggleCommand struct {
	StrategyID StrategyID `json:"id"`
	State      RunState   `json:"status"`
}

// CommandOutcome is the transport-level result of one toggle command.
// StatusCode 0 means no response was ever received; TransportErr then
// carries the last network error.
type CommandOutcome struct {
	Succeeded    bool
	StatusCode   int
	Body         string
	TransportErr string
}

// ToggleRunSummary accumulates across one toggle run. FailureDetails is
// append-only and preserved in full for the final report.
type ToggleRunSummary struct {
	Wallet          string
	TotalCycles     int
	CompletedCycles int
	Failed          bool
	FailureDetails  []string
	RunningCount    *int
}

// NormalizeStatus collapses a status label to a comparable form: the
// upstream mixes "Live Entry", "live_entry" and "live-entry" spellings
// across endpoints.
func NormalizeStatus(label string) string {
	replacer := strings.NewReplacer(" ", "", "_", "", "-", "")
	return replacer.Replace(strings.ToLower(strings.TrimSpace(label)))
}
