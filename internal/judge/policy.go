package judge

import (
	"github.com/imh0ng/open-machina/internal/types"
)

// Policy holds the operator-supplied allow/deny/fallback lists that govern
// which judge candidates may be selected. Deny always takes precedence over
// allow; an empty allow list means "allow everything not denied".
type Policy struct {
	Allow    []types.ModelRef
	Deny     []types.ModelRef
	Fallback []types.ModelRef
}

// PolicyFromLists parses a Policy from raw "provider/model" string lists as
// they appear in operator configuration. Malformed entries are dropped.
func PolicyFromLists(allow, deny, fallback []string) Policy {
	return Policy{
		Allow:    types.ParseModelRefs(allow),
		Deny:     types.ParseModelRefs(deny),
		Fallback: types.ParseModelRefs(fallback),
	}
}

// IsAllowed reports whether the given ref is admissible under the policy.
// A ref present in both allow and deny is rejected.
func (p Policy) IsAllowed(ref types.ModelRef) bool {
	for _, denied := range p.Deny {
		if denied.Key() == ref.Key() {
			return false
		}
	}
	if len(p.Allow) == 0 {
		return true
	}
	for _, allowed := range p.Allow {
		if allowed.Key() == ref.Key() {
			return true
		}
	}
	return false
}

// BuildCandidates returns the ordered candidate list [base, fallback...]
// with duplicates removed by identity key, preserving first-seen order.
func (p Policy) BuildCandidates(base types.ModelRef) []types.ModelRef {
	seen := make(map[string]bool, 1+len(p.Fallback))
	candidates := make([]types.ModelRef, 0, 1+len(p.Fallback))

	for _, ref := range append([]types.ModelRef{base}, p.Fallback...) {
		if seen[ref.Key()] {
			continue
		}
		seen[ref.Key()] = true
		candidates = append(candidates, ref)
	}

	return candidates
}
