package session

import (
	"sync"
	"time"
)

// windowCapacity bounds the per-session recency window. Items past the
// capacity are evicted oldest-first; nothing else ever removes an item.
const windowCapacity = 16

// Tracker maintains, per session, a bounded recency-ordered list of tool
// invocations with inferred priority. It exclusively owns the live-activity
// list; the arbitration state machine never mutates it directly.
type Tracker struct {
	mu       sync.Mutex
	sessions map[string][]*WorkItem
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		sessions: make(map[string][]*WorkItem),
	}
}

// Begin records the start of a tool invocation: a new item with status
// running is prepended to the session's list, which is then truncated to the
// most recent entries.
func (t *Tracker) Begin(sessionID, toolName, callID, title string) *WorkItem {
	if title == "" {
		title = toolName
	}

	item := &WorkItem{
		ID:        WorkItemID(toolName, callID),
		Title:     title,
		Status:    StatusRunning,
		Priority:  ClassifyPriority(toolName),
		StartedAt: time.Now(),
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	items := append([]*WorkItem{item}, t.sessions[sessionID]...)
	if len(items) > windowCapacity {
		items = items[:windowCapacity]
	}
	t.sessions[sessionID] = items

	return item
}

// End marks a tool invocation as finished: the item is found by composite id
// and its status flipped to queued. Finished items are never removed here;
// only the recency window evicts them.
func (t *Tracker) End(sessionID, toolName, callID string) {
	id := WorkItemID(toolName, callID)

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, item := range t.sessions[sessionID] {
		if item.ID == id {
			item.Status = StatusQueued
			return
		}
	}
}

// Active returns the session's currently running items, most recent first.
// Only status running counts as active for arbitration purposes.
func (t *Tracker) Active(sessionID string) []*WorkItem {
	t.mu.Lock()
	defer t.mu.Unlock()

	var active []*WorkItem
	for _, item := range t.sessions[sessionID] {
		if item.Status == StatusRunning {
			active = append(active, item)
		}
	}
	return active
}

// Window returns a copy of the session's full recency window, most recent
// first, including finished items.
func (t *Tracker) Window(sessionID string) []*WorkItem {
	t.mu.Lock()
	defer t.mu.Unlock()

	items := t.sessions[sessionID]
	out := make([]*WorkItem, len(items))
	copy(out, items)
	return out
}

// Evict drops all tracked activity for a session. Wired to the host's
// session-end hook by the adapter layer.
func (t *Tracker) Evict(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, sessionID)
}
