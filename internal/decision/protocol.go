package decision

import (
	"context"
	"errors"
	"log/slog"

	"github.com/imh0ng/open-machina/internal/types"
)

// Invoker issues one completion against the resolved judge and returns the
// raw response text. Satisfied by the judge package's client; tests supply
// mocks.
type Invoker interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Protocol runs the structured-decision exchange with the judge: one call,
// strict validation, and exactly one repair retry on invalid output.
type Protocol struct {
	invoker Invoker
	logger  *slog.Logger
}

// NewProtocol creates a Protocol over the given invoker.
func NewProtocol(invoker Invoker, logger *slog.Logger) *Protocol {
	if logger == nil {
		logger = slog.Default()
	}
	return &Protocol{invoker: invoker, logger: logger}
}

// Decide runs one arbitration round. The two judge calls (initial plus at
// most one repair) are strictly sequential; there is no backoff or timeout
// at this layer, so callers needing bounded latency impose a deadline on ctx.
func (p *Protocol) Decide(ctx context.Context, input Input) (*Decision, error) {
	prompt, err := BuildPrompt(input)
	if err != nil {
		return nil, types.WrapError(types.AUTONOMY_JUDGE_FAILED, "failed to build judge prompt", err)
	}

	raw, err := p.invoker.Complete(ctx, SystemPrompt, prompt)
	if err != nil {
		return nil, asJudgeFailure(err)
	}

	dec, parseErr := ParseDecision(raw)
	if parseErr == nil {
		return dec, nil
	}

	p.logger.Warn("judge response failed validation, sending repair prompt",
		"error", parseErr)

	repairRaw, err := p.invoker.Complete(ctx, SystemPrompt, BuildRepairPrompt(prompt, raw, parseErr))
	if err != nil {
		return nil, asJudgeFailure(err)
	}

	dec, parseErr = ParseDecision(repairRaw)
	if parseErr != nil {
		return nil, types.WrapError(types.ORCHESTRATION_DECISION_INVALID,
			"judge response failed contract validation after repair", parseErr)
	}

	return dec, nil
}

// asJudgeFailure keeps already-coded errors intact and wraps everything else
// as a judge transport failure.
func asJudgeFailure(err error) error {
	var machinaErr *types.MachinaError
	if errors.As(err, &machinaErr) {
		return err
	}
	return types.WrapError(types.AUTONOMY_JUDGE_FAILED, "judge call failed", err)
}
