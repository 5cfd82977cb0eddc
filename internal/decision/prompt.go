package decision

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Input is the snapshot of session state embedded in the judge prompt.
// Persona, ActiveWork, and SystemHealth are host-shaped and serialized as-is.
type Input struct {
	Persona      any    `json:"persona,omitempty" mapstructure:"persona"`
	ActiveWork   any    `json:"activeWork,omitempty" mapstructure:"activeWork"`
	SystemHealth any    `json:"systemHealth,omitempty" mapstructure:"systemHealth"`
	Timestamp    string `json:"timestamp" mapstructure:"timestamp"`
	UserMessage  string `json:"userMessage" mapstructure:"userMessage"`
	Intent       string `json:"intent,omitempty" mapstructure:"intent"`
}

// SystemPrompt defines the judge's role for every arbitration call.
const SystemPrompt = `You are an orchestration judge for an autonomous agent runtime.
Background work is in progress and the user has sent a new instruction.
Decide whether the current work should be aborted, deferred, run in
parallel with the new instruction, or continued unchanged.
Respond with a single JSON object and nothing else.`

// decisionSchema is the fixed contract description embedded in every prompt.
// The enumerations are closed: any value outside them invalidates the answer.
const decisionSchema = `{
  "action": "abort" | "defer" | "parallel" | "continue",
  "confidence": <number between 0 and 1>,
  "reason": "<non-empty explanation>",
  "priority": "critical" | "high" | "medium" | "low",
  "deferUntil": "<optional ISO-8601 timestamp, only for defer>",
  "parallelPlan": {
    "lane": "foreground" | "background",
    "maxConcurrency": <integer between 1 and 32>
  }
}`

// BuildPrompt constructs the deterministic arbitration prompt: the fixed
// schema contract followed by the JSON-serialized input snapshot.
func BuildPrompt(input Input) (string, error) {
	snapshot, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize decision input: %w", err)
	}

	var b strings.Builder
	b.WriteString("## Required Response Format\n\n")
	b.WriteString("Respond with a JSON object matching this structure exactly. ")
	b.WriteString("action and priority are closed enumerations; no other keys are read.\n\n")
	b.WriteString(decisionSchema)
	b.WriteString("\n\n## Current Session Snapshot\n\n")
	b.Write(snapshot)
	b.WriteString("\n\nDecide the control action for the new user message above.")

	return b.String(), nil
}

// BuildRepairPrompt frames the single schema-repair retry after an invalid
// first answer. The previous raw output and the validation failure are
// included so the judge can correct its format.
func BuildRepairPrompt(original, previousRaw string, parseErr error) string {
	var b strings.Builder
	b.WriteString("Your previous answer was invalid: ")
	b.WriteString(parseErr.Error())
	b.WriteString("\n\nPrevious answer:\n")
	b.WriteString(previousRaw)
	b.WriteString("\n\nAnswer again with ONLY a valid JSON object matching the required schema.\n\n")
	b.WriteString(original)
	return b.String()
}
