package judge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/imh0ng/open-machina/internal/observability"
	"github.com/imh0ng/open-machina/internal/types"
)

// Config is the judge subsystem's own configuration slice. Model is
// mandatory: an empty model means the judge is unconfigured, which is a
// distinct outcome from "denied by policy".
type Config struct {
	Provider     string
	Model        string
	AuthProvider string
	APIURL       string
}

// Runtime is a fully resolved, authenticated judge target for exactly one
// decision call. It is never persisted: policy, catalog, and credentials may
// all change between calls, so the resolver reconstructs it every time.
type Runtime struct {
	Provider string
	Model    string
	APIURL   string
	Token    string
}

// Ref returns the runtime's provider/model reference.
func (r *Runtime) Ref() types.ModelRef {
	return types.ModelRef{Provider: r.Provider, Model: r.Model}
}

// Resolver composes policy evaluation, catalog validation, and credential
// resolution into one concrete judge target.
type Resolver struct {
	cfg     Config
	policy  Policy
	catalog CatalogClient
	creds   CredentialSource
	logger  *slog.Logger
}

// NewResolver creates a Resolver. catalog may be nil when the host cannot
// list providers; validation is then skipped entirely.
func NewResolver(cfg Config, policy Policy, catalog CatalogClient, creds CredentialSource, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		cfg:     cfg,
		policy:  policy,
		catalog: catalog,
		creds:   creds,
		logger:  logger,
	}
}

// Resolve produces the judge runtime for one decision call.
//
// Returns (nil, nil) when the judge is unconfigured or no credential could be
// resolved: both downgrade to "judge unavailable" at the caller. Returns an
// AUTONOMY_JUDGE_POLICY_BLOCKED error when every candidate was rejected, with
// the pipe-joined skip reasons so an operator can see exactly why.
func (r *Resolver) Resolve(ctx context.Context, modelHint string) (*Runtime, error) {
	if r.cfg.Model == "" {
		return nil, nil
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanJudgeResolve)
	defer span.End()

	base := r.baseRef(modelHint)
	candidates := r.policy.BuildCandidates(base)

	var selected types.ModelRef
	var skipReasons []string
	found := false

	for _, candidate := range candidates {
		if !r.policy.IsAllowed(candidate) {
			skipReasons = append(skipReasons, fmt.Sprintf("%s denied by policy", candidate.Key()))
			continue
		}
		if failure := ValidateTarget(ctx, r.catalog, candidate.Provider, candidate.Model); failure != nil {
			skipReasons = append(skipReasons, fmt.Sprintf("%s %s", candidate.Key(), failure.Message))
			continue
		}
		selected = candidate
		found = true
		break
	}

	if !found {
		return nil, types.NewError(types.AUTONOMY_JUDGE_POLICY_BLOCKED, strings.Join(skipReasons, " | "))
	}

	token, ok := r.creds.ResolveToken(ctx, r.cfg.AuthProvider, selected.Provider)
	if !ok {
		r.logger.Warn("no judge credential resolved",
			"provider", selected.Provider,
			"auth_provider", r.cfg.AuthProvider)
		return nil, nil
	}

	runtime := &Runtime{
		Provider: selected.Provider,
		Model:    selected.Model,
		APIURL:   resolveEndpoint(r.cfg.APIURL, selected.Provider),
		Token:    token,
	}

	r.logger.Debug("judge runtime resolved",
		"target", runtime.Ref().Key(),
		"api_url", runtime.APIURL)

	return runtime, nil
}

// baseRef computes the starting candidate. A hint of the form
// "provider/model" overrides both parts; a bare model id keeps the
// configured provider.
func (r *Resolver) baseRef(modelHint string) types.ModelRef {
	hint := strings.TrimSpace(modelHint)
	if hint == "" {
		return types.ModelRef{Provider: r.cfg.Provider, Model: r.cfg.Model}
	}
	if ref, err := types.ParseModelRef(hint); err == nil {
		return ref
	}
	return types.ModelRef{Provider: r.cfg.Provider, Model: hint}
}

// ProbeStatus classifies a resolution attempt without issuing a model call.
type ProbeStatus string

const (
	ProbeUnconfigured  ProbeStatus = "unconfigured"
	ProbeBlocked       ProbeStatus = "blocked"
	ProbeNoCredentials ProbeStatus = "no-credentials"
	ProbeReady         ProbeStatus = "ready"
)

// ProbeResult reports the outcome of a dry resolution.
type ProbeResult struct {
	Status ProbeStatus
	Detail string
}

// Probe performs a dry resolution for diagnostics (CLI config validation).
func (r *Resolver) Probe(ctx context.Context) ProbeResult {
	if r.cfg.Model == "" {
		return ProbeResult{Status: ProbeUnconfigured, Detail: "no judge model configured"}
	}

	runtime, err := r.Resolve(ctx, "")
	switch {
	case err != nil:
		return ProbeResult{Status: ProbeBlocked, Detail: err.Error()}
	case runtime == nil:
		return ProbeResult{Status: ProbeNoCredentials, Detail: "no credential resolved for configured judge"}
	default:
		return ProbeResult{Status: ProbeReady, Detail: runtime.Ref().Key() + " via " + runtime.APIURL}
	}
}
