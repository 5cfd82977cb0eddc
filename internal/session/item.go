package session

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/imh0ng/open-machina/internal/types"
)

// WorkStatus represents the lifecycle state of a tracked work item.
type WorkStatus string

const (
	StatusRunning WorkStatus = "running"
	StatusQueued  WorkStatus = "queued"
	StatusBlocked WorkStatus = "blocked"
)

// String returns the string representation of WorkStatus.
func (s WorkStatus) String() string {
	return string(s)
}

// IsValid checks if the WorkStatus is a valid value.
func (s WorkStatus) IsValid() bool {
	switch s {
	case StatusRunning, StatusQueued, StatusBlocked:
		return true
	default:
		return false
	}
}

// MarshalJSON implements json.Marshaler.
func (s WorkStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *WorkStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status := WorkStatus(str)
	if !status.IsValid() {
		return fmt.Errorf("invalid work status: %s", str)
	}

	*s = status
	return nil
}

// WorkItem is one tracked tool invocation within a session. Identity is the
// composite "<toolName>:<callID>" id, unique per concurrent invocation.
type WorkItem struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Status    WorkStatus     `json:"status"`
	Priority  types.Priority `json:"priority"`
	StartedAt time.Time      `json:"startedAt"`
}

// WorkItemID builds the composite identity for a tool invocation.
func WorkItemID(toolName, callID string) string {
	return toolName + ":" + callID
}

// ClassifyPriority derives a work item's priority from its tool name using a
// static keyword classifier. Substring match, case-insensitive.
func ClassifyPriority(toolName string) types.Priority {
	name := strings.ToLower(toolName)

	for _, kw := range []string{"deploy", "incident", "backup", "restore", "secur"} {
		if strings.Contains(name, kw) {
			return types.PriorityCritical
		}
	}
	for _, kw := range []string{"workflow", "channel", "message", "orchestr"} {
		if strings.Contains(name, kw) {
			return types.PriorityHigh
		}
	}
	for _, kw := range []string{"tool", "storage", "file", "memory"} {
		if strings.Contains(name, kw) {
			return types.PriorityMedium
		}
	}
	return types.PriorityLow
}
