package arbiter

import (
	"context"
	"fmt"
)

// SessionControl is the host's session control surface. Every call is
// optional; hosts expose what they have. An abort decision is realized
// through the first available of Abort, PromptSync, PromptAsync, in that
// preference order.
type SessionControl struct {
	Abort       func(ctx context.Context, sessionID string) error
	PromptSync  func(ctx context.Context, sessionID, text string) error
	PromptAsync func(ctx context.Context, sessionID, text string) error
}

// abortPrompt is sent when the host offers no direct abort call and the
// session must be stopped through its prompt surface instead.
const abortPrompt = "Stop the current autonomous work immediately; the user has issued an overriding instruction."

// abortSession realizes an abort decision against the host. Exactly one
// call is issued.
func (c SessionControl) abortSession(ctx context.Context, sessionID string) error {
	switch {
	case c.Abort != nil:
		return c.Abort(ctx, sessionID)
	case c.PromptSync != nil:
		return c.PromptSync(ctx, sessionID, abortPrompt)
	case c.PromptAsync != nil:
		return c.PromptAsync(ctx, sessionID, abortPrompt)
	default:
		return fmt.Errorf("no session control surface available to abort session %q", sessionID)
	}
}
