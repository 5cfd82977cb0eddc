package session

import (
	"sync"
)

// queueCapacity bounds the deferred and parallel queues; the oldest entries
// are dropped past it.
const queueCapacity = 16

// State holds one session's arbitration queues, most-recent-first.
// The arbitration state machine exclusively owns these; the tracker never
// touches them.
type State struct {
	Deferred []*WorkItem `json:"deferred"`
	Parallel []*WorkItem `json:"parallel"`
}

// PushDeferred prepends an item to the deferred queue with move-to-front
// semantics: a prior entry with the same id is removed first.
func (s *State) PushDeferred(item *WorkItem) {
	s.Deferred = pushFront(removeByID(s.Deferred, item.ID), item)
}

// PushParallel prepends an item to the parallel queue.
func (s *State) PushParallel(item *WorkItem) {
	s.Parallel = pushFront(s.Parallel, item)
}

// Clear empties both queues unconditionally.
func (s *State) Clear() {
	s.Deferred = nil
	s.Parallel = nil
}

func pushFront(items []*WorkItem, item *WorkItem) []*WorkItem {
	items = append([]*WorkItem{item}, items...)
	if len(items) > queueCapacity {
		items = items[:queueCapacity]
	}
	return items
}

func removeByID(items []*WorkItem, id string) []*WorkItem {
	out := items[:0]
	for _, item := range items {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out
}

// Registry keys runtime state by session id, creating entries lazily on
// first access. Entries live until the host's session-end hook evicts them.
// Each entry carries its own mutex so concurrent arbitration tasks for the
// same session serialize their queue mutations.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Entry
}

// Entry pairs one session's state with its mutation lock.
type Entry struct {
	mu    sync.Mutex
	state State
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Entry),
	}
}

// Get returns the session's entry, creating it on first touch.
func (r *Registry) Get(sessionID string) *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[sessionID]
	if !ok {
		entry = &Entry{}
		r.sessions[sessionID] = entry
	}
	return entry
}

// Evict removes a session's state entirely. Wired to the host's session-end
// hook by the adapter layer.
func (r *Registry) Evict(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

// Update runs fn under the session's lock. All queue mutation goes through
// here.
func (e *Entry) Update(fn func(*State)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.state)
}

// Snapshot returns a copy of the session's current queues.
func (e *Entry) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	return State{
		Deferred: copyItems(e.state.Deferred),
		Parallel: copyItems(e.state.Parallel),
	}
}

func copyItems(items []*WorkItem) []*WorkItem {
	if items == nil {
		return nil
	}
	out := make([]*WorkItem, len(items))
	copy(out, items)
	return out
}
