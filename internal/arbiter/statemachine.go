package arbiter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/imh0ng/open-machina/internal/decision"
	"github.com/imh0ng/open-machina/internal/session"
)

// StateMachine applies arbitration decisions to per-session runtime state.
// It exclusively owns the deferred/parallel queues; the tracker's live list
// is read-only here except for relabeling a deferred head item.
type StateMachine struct {
	registry *session.Registry
	control  SessionControl
	logger   *slog.Logger
}

// NewStateMachine creates a StateMachine over the given registry and host
// control surface.
func NewStateMachine(registry *session.Registry, control SessionControl, logger *slog.Logger) *StateMachine {
	if logger == nil {
		logger = slog.Default()
	}
	return &StateMachine{
		registry: registry,
		control:  control,
		logger:   logger,
	}
}

// Apply mutates the session's runtime state according to the decision and
// returns the resulting queue snapshot for rendering.
//
//   - continue: state unchanged.
//   - abort: one session-abort call to the host; both queues cleared
//     unconditionally, regardless of prior contents.
//   - defer: the most recent running item is relabeled with the optional
//     "(until ...)" suffix, blocked, and moved to the front of the deferred
//     queue (a prior entry with the same id is removed first).
//   - parallel: a synthetic queued item is created describing the requested
//     lane, concurrency cap, and an excerpt of the triggering user text.
func (m *StateMachine) Apply(ctx context.Context, sessionID string, dec *decision.Decision, active []*session.WorkItem, userText string) (session.State, error) {
	entry := m.registry.Get(sessionID)

	switch dec.Action {
	case decision.ActionContinue:
		// State unchanged; only the rendered control text is emitted.

	case decision.ActionAbort:
		if err := m.control.abortSession(ctx, sessionID); err != nil {
			return session.State{}, fmt.Errorf("abort decision could not be realized: %w", err)
		}
		entry.Update(func(s *session.State) {
			s.Clear()
		})
		m.logger.Info("session aborted by arbitration",
			"session_id", sessionID, "reason", dec.Reason)

	case decision.ActionDefer:
		if len(active) > 0 {
			head := active[0]
			if dec.DeferUntil != "" {
				head.Title = fmt.Sprintf("%s (until %s)", head.Title, dec.DeferUntil)
			}
			head.Status = session.StatusBlocked
			entry.Update(func(s *session.State) {
				s.PushDeferred(head)
			})
		}

	case decision.ActionParallel:
		item := m.syntheticParallelItem(dec, userText)
		entry.Update(func(s *session.State) {
			s.PushParallel(item)
		})
	}

	return entry.Snapshot(), nil
}

// syntheticParallelItem builds the queued item representing a parallel run
// of the new instruction. Without a plan the item defaults to a single
// foreground lane.
func (m *StateMachine) syntheticParallelItem(dec *decision.Decision, userText string) *session.WorkItem {
	lane := decision.LaneForeground
	concurrency := 1
	if dec.ParallelPlan != nil {
		lane = dec.ParallelPlan.Lane
		concurrency = dec.ParallelPlan.MaxConcurrency
	}

	return &session.WorkItem{
		ID:        fmt.Sprintf("parallel:%d", time.Now().UnixMilli()),
		Title:     fmt.Sprintf("%s x%d: %s", lane, concurrency, Excerpt(userText)),
		Status:    session.StatusQueued,
		Priority:  dec.Priority,
		StartedAt: time.Now(),
	}
}
