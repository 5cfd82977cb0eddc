package arbiter

import (
	"context"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/imh0ng/open-machina/internal/decision"
	"github.com/imh0ng/open-machina/internal/judge"
	"github.com/imh0ng/open-machina/internal/types"
)

// DecodeInput converts a host-supplied snapshot map into a decision input.
// Unknown keys are ignored; the snapshot contract is additive on the host
// side.
func DecodeInput(raw map[string]any) (decision.Input, error) {
	var input decision.Input
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &input,
		TagName: "mapstructure",
	})
	if err != nil {
		return decision.Input{}, types.WrapError(types.ORCHESTRATION_DECISION_INVALID, "snapshot decoder", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return decision.Input{}, types.WrapError(types.ORCHESTRATION_DECISION_INVALID, "invalid snapshot", err)
	}
	return input, nil
}

// resolveRuntime resolves the judge target for one decision round. An
// unconfigured judge and a missing credential both surface as the stable
// unavailable error so callers can skip arbitration gracefully.
func (s *Service) resolveRuntime(ctx context.Context) (*judge.Runtime, error) {
	runtime, err := s.resolver().Resolve(ctx, "")
	if err != nil {
		return nil, err
	}
	if runtime == nil {
		return nil, types.NewError(types.AUTONOMY_JUDGE_UNAVAILABLE,
			"no judge model configured or no credential resolved")
	}
	return runtime, nil
}

// inferIntent gives the judge a coarse reading of the message so the prompt
// carries a hint alongside the raw text. The judge makes the real call.
func inferIntent(text string) string {
	lowered := strings.ToLower(text)
	switch {
	case containsAny(lowered, "stop", "cancel", "abort", "halt", "nevermind", "never mind"):
		return "interrupt"
	case containsAny(lowered, "instead", "actually", "change of plan", "switch to"):
		return "redirect"
	case strings.Contains(text, "?") || containsAny(lowered, "what", "how", "why", "status", "progress"):
		return "question"
	default:
		return "instruction"
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
