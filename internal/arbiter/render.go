package arbiter

import (
	"fmt"
	"strings"

	"github.com/imh0ng/open-machina/internal/decision"
	"github.com/imh0ng/open-machina/internal/session"
)

// ControlMarker prefixes every injected control block. A prompt that already
// carries the marker is a previously-injected message being reprocessed and
// must not trigger a new decision round.
const ControlMarker = "[machina:control]"

// excerptLimit caps the user-text excerpt embedded in synthetic parallel
// item titles.
const excerptLimit = 80

// HasControlMarker reports whether the text already carries an injected
// control block.
func HasControlMarker(text string) bool {
	return strings.Contains(text, ControlMarker)
}

// RenderControlState renders the session's queue state behind the control
// marker: "continue-current-plan" when both queues are empty, otherwise both
// queue lengths with each head-of-queue title (or "none").
func RenderControlState(state session.State) string {
	if len(state.Deferred) == 0 && len(state.Parallel) == 0 {
		return ControlMarker + " continue-current-plan"
	}

	return fmt.Sprintf("%s deferred=%d (head: %s) parallel=%d (head: %s)",
		ControlMarker,
		len(state.Deferred), headTitle(state.Deferred),
		len(state.Parallel), headTitle(state.Parallel))
}

func headTitle(items []*session.WorkItem) string {
	if len(items) == 0 {
		return "none"
	}
	return fmt.Sprintf("%q", items[0].Title)
}

// BuildControlBlock assembles the full injected block: the rendered control
// state followed by the decision's action, priority, confidence, and reason.
func BuildControlBlock(dec *decision.Decision, state session.State) string {
	var b strings.Builder
	b.WriteString(RenderControlState(state))
	b.WriteString(fmt.Sprintf("\ndecision: action=%s priority=%s confidence=%.2f",
		dec.Action, dec.Priority, dec.Confidence))
	b.WriteString("\nreason: " + dec.Reason)
	return b.String()
}

// Inject prefixes the control block before the first text segment of the
// outgoing message.
func Inject(block, message string) string {
	return block + "\n\n" + message
}

// Excerpt truncates user text to the excerpt limit, rune-safe.
func Excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptLimit {
		return text
	}
	return string(runes[:excerptLimit])
}
