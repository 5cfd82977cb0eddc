package decision

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/imh0ng/open-machina/internal/types"
)

// Action represents the control action the judge decides for a session.
type Action string

const (
	// ActionAbort stops the session's in-progress autonomous work.
	ActionAbort Action = "abort"

	// ActionDefer postpones the most recent running work item.
	ActionDefer Action = "defer"

	// ActionParallel runs the new instruction alongside current work.
	ActionParallel Action = "parallel"

	// ActionContinue keeps the current plan unchanged.
	ActionContinue Action = "continue"
)

// String returns the string representation of an Action.
func (a Action) String() string {
	return string(a)
}

// IsValid checks if the Action is one of the defined constants.
func (a Action) IsValid() bool {
	switch a {
	case ActionAbort, ActionDefer, ActionParallel, ActionContinue:
		return true
	default:
		return false
	}
}

// Lane identifies where parallel work should run.
type Lane string

const (
	LaneForeground Lane = "foreground"
	LaneBackground Lane = "background"
)

// IsValid checks if the Lane is one of the defined constants.
func (l Lane) IsValid() bool {
	return l == LaneForeground || l == LaneBackground
}

// Concurrency bounds for a parallel plan.
const (
	minConcurrency = 1
	maxConcurrency = 32
)

// ParallelPlan describes how a parallel action should be scheduled.
type ParallelPlan struct {
	Lane           Lane `json:"lane"`
	MaxConcurrency int  `json:"maxConcurrency"`
}

// Decision is the judge's validated arbitration output. A decision is only
// constructed through ParseDecision; fields outside their domains make the
// whole decision invalid, not partially valid.
type Decision struct {
	Action       Action         `json:"action"`
	Confidence   float64        `json:"confidence"`
	Reason       string         `json:"reason"`
	Priority     types.Priority `json:"priority"`
	DeferUntil   string         `json:"deferUntil,omitempty"`
	ParallelPlan *ParallelPlan  `json:"parallelPlan,omitempty"`
}

// String returns a compact human-readable representation of the decision.
func (d *Decision) String() string {
	if d == nil {
		return "<nil decision>"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Decision{Action: %s, Priority: %s, Confidence: %.2f", d.Action, d.Priority, d.Confidence))
	if d.DeferUntil != "" {
		sb.WriteString(", DeferUntil: " + d.DeferUntil)
	}
	if d.ParallelPlan != nil {
		sb.WriteString(fmt.Sprintf(", Plan: %s x%d", d.ParallelPlan.Lane, d.ParallelPlan.MaxConcurrency))
	}
	sb.WriteString("}")
	return sb.String()
}

// ToJSON serializes the Decision to a JSON string.
func (d *Decision) ToJSON() (string, error) {
	if d == nil {
		return "", fmt.Errorf("cannot serialize nil decision")
	}

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal decision: %w", err)
	}

	return string(data), nil
}

// wireDecision is the lenient shape decoded from raw judge output before
// contract validation. Confidence is a pointer so a missing field is
// distinguishable from 0.0; the optional fields stay untyped until checked.
type wireDecision struct {
	Action       string          `json:"action"`
	Confidence   *float64        `json:"confidence"`
	Reason       string          `json:"reason"`
	Priority     string          `json:"priority"`
	DeferUntil   any             `json:"deferUntil"`
	ParallelPlan json.RawMessage `json:"parallelPlan"`
}

// wirePlan mirrors ParallelPlan with MaxConcurrency untyped, so a
// non-numeric value drops the plan instead of failing the decode.
type wirePlan struct {
	Lane           string `json:"lane"`
	MaxConcurrency any    `json:"maxConcurrency"`
}

// ParseDecision parses raw judge output into a validated Decision.
// Strict JSON is attempted first; if that fails, the first balanced JSON
// span is extracted from the surrounding text and parsed instead.
func ParseDecision(raw string) (*Decision, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("empty judge response")
	}

	var wire wireDecision
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		extracted, exErr := ExtractJSON(raw)
		if exErr != nil {
			return nil, fmt.Errorf("response is not JSON: %w", err)
		}
		if err := json.Unmarshal([]byte(extracted), &wire); err != nil {
			return nil, fmt.Errorf("extracted JSON does not match decision shape: %w", err)
		}
	}

	return wire.validate()
}

// validate enforces the five-key contract and normalizes optional fields.
func (w wireDecision) validate() (*Decision, error) {
	action := Action(w.Action)
	if !action.IsValid() {
		return nil, fmt.Errorf("invalid action: %q", w.Action)
	}

	if w.Confidence == nil {
		return nil, fmt.Errorf("confidence is required")
	}
	if *w.Confidence < 0.0 || *w.Confidence > 1.0 {
		return nil, fmt.Errorf("confidence must be within [0,1], got %v", *w.Confidence)
	}

	reason := strings.TrimSpace(w.Reason)
	if reason == "" {
		return nil, fmt.Errorf("reason must be a non-empty string")
	}

	priority := types.Priority(w.Priority)
	if !priority.IsValid() {
		return nil, fmt.Errorf("invalid priority: %q", w.Priority)
	}

	d := &Decision{
		Action:     action,
		Confidence: *w.Confidence,
		Reason:     reason,
		Priority:   priority,
	}

	// deferUntil is kept only when it is a non-empty string.
	if s, ok := w.DeferUntil.(string); ok && s != "" {
		d.DeferUntil = s
	}

	// parallelPlan is kept only when lane is valid and maxConcurrency is
	// numeric; the value is floored and clamped to [1,32].
	if len(w.ParallelPlan) > 0 {
		var plan wirePlan
		if err := json.Unmarshal(w.ParallelPlan, &plan); err == nil {
			lane := Lane(plan.Lane)
			if n, ok := plan.MaxConcurrency.(float64); ok && lane.IsValid() {
				d.ParallelPlan = &ParallelPlan{
					Lane:           lane,
					MaxConcurrency: clampConcurrency(n),
				}
			}
		}
	}

	return d, nil
}

func clampConcurrency(n float64) int {
	v := int(math.Floor(n))
	if v < minConcurrency {
		return minConcurrency
	}
	if v > maxConcurrency {
		return maxConcurrency
	}
	return v
}
