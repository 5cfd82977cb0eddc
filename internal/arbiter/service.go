package arbiter

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/imh0ng/open-machina/internal/config"
	"github.com/imh0ng/open-machina/internal/decision"
	"github.com/imh0ng/open-machina/internal/judge"
	"github.com/imh0ng/open-machina/internal/observability"
	"github.com/imh0ng/open-machina/internal/session"
)

// Service is the arbitration core's outward surface. The host adapter calls
// its methods synchronously; the service itself carries no host-specific
// interface shape.
type Service struct {
	cfg      *config.Config
	tracker  *session.Tracker
	registry *session.Registry
	machine  *StateMachine

	catalog    judge.CatalogClient
	accessor   judge.AuthAccessor
	control    SessionControl
	invokerFor judge.InvokerFactory
	enrich     EnrichFunc
	logger     *slog.Logger
}

// EnrichFunc supplies the persona and system-health snapshot slices for a
// session's decision input. Hosts without either return nils.
type EnrichFunc func(ctx context.Context, sessionID string) (persona, health any)

// Option configures a Service.
type Option func(*Service)

// WithCatalog wires the host's provider catalog. Absent a catalog, judge
// candidates skip validation entirely.
func WithCatalog(catalog judge.CatalogClient) Option {
	return func(s *Service) { s.catalog = catalog }
}

// WithAuthAccessor wires the host's live auth callback, already bound to the
// configured auth provider id.
func WithAuthAccessor(accessor judge.AuthAccessor) Option {
	return func(s *Service) { s.accessor = accessor }
}

// WithSessionControl wires the host's session control surface.
func WithSessionControl(control SessionControl) Option {
	return func(s *Service) { s.control = control }
}

// WithInvokerFactory substitutes the judge transport. Tests use this to
// avoid the network.
func WithInvokerFactory(factory judge.InvokerFactory) Option {
	return func(s *Service) { s.invokerFor = factory }
}

// WithEnrichFunc wires the persona/system-health snapshot provider.
func WithEnrichFunc(enrich EnrichFunc) Option {
	return func(s *Service) { s.enrich = enrich }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService constructs the arbitration service from an explicit
// configuration struct.
func NewService(cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		cfg:        cfg,
		tracker:    session.NewTracker(),
		registry:   session.NewRegistry(),
		invokerFor: judge.NewInvoker,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.machine = NewStateMachine(s.registry, s.control, s.logger)
	return s
}

// ToolStarted records the beginning of a tool invocation. Called by the
// host adapter from its tool-execution hook.
func (s *Service) ToolStarted(sessionID, toolName, callID, title string) {
	s.tracker.Begin(sessionID, toolName, callID, title)
}

// ToolFinished records the end of a tool invocation.
func (s *Service) ToolFinished(sessionID, toolName, callID string) {
	s.tracker.End(sessionID, toolName, callID)
}

// SessionEnded evicts all per-session state. Wired to the host's
// session-end hook.
func (s *Service) SessionEnded(sessionID string) {
	s.tracker.Evict(sessionID)
	s.registry.Evict(sessionID)
}

// SessionSnapshot reports the session's current deferred/parallel queues.
func (s *Service) SessionSnapshot(sessionID string) session.State {
	return s.registry.Get(sessionID).Snapshot()
}

// Probe performs a dry judge resolution for diagnostics.
func (s *Service) Probe(ctx context.Context) judge.ProbeResult {
	return s.resolver().Probe(ctx)
}

// HandleMessage arbitrates one incoming user message against the session's
// active work and returns the outgoing message text, with the control block
// injected before it when a decision was made.
//
// Two short-circuits return the text unchanged without consulting the
// judge: a message that already carries the control marker (a re-injected
// message being reprocessed), and a session with no running work items.
func (s *Service) HandleMessage(ctx context.Context, sessionID, text string) (string, error) {
	if HasControlMarker(text) {
		return text, nil
	}

	active := s.tracker.Active(sessionID)
	if len(active) == 0 {
		return text, nil
	}

	roundID := uuid.NewString()
	ctx, span := observability.StartSpan(ctx, observability.SpanDecide,
		attribute.String(observability.AttrSessionID, sessionID),
		attribute.String(observability.AttrRoundID, roundID))
	logger := observability.WithTrace(ctx, s.logger).With(
		"session_id", sessionID, "round_id", roundID)

	dec, err := s.decide(ctx, logger, s.buildInput(ctx, sessionID, text))
	if err != nil {
		observability.EndSpan(span, err)
		return "", err
	}

	state, err := s.machine.Apply(ctx, sessionID, dec, active, text)
	if err != nil {
		observability.EndSpan(span, err)
		return "", err
	}

	span.SetAttributes(
		attribute.String(observability.AttrAction, dec.Action.String()),
		attribute.String(observability.AttrPriority, dec.Priority.String()),
		attribute.Float64(observability.AttrConfidence, dec.Confidence))
	observability.EndSpan(span, nil)

	logger.Info("arbitration complete",
		"action", dec.Action, "priority", dec.Priority,
		"confidence", dec.Confidence,
		"deferred", len(state.Deferred), "parallel", len(state.Parallel))

	return Inject(BuildControlBlock(dec, state), text), nil
}

// RunDecision runs one arbitration decision for an externally supplied
// snapshot and returns the JSON-serialized result. No session state is
// touched; this is the raw decision operation exposed to the host.
func (s *Service) RunDecision(ctx context.Context, raw map[string]any) (string, error) {
	input, err := DecodeInput(raw)
	if err != nil {
		return "", err
	}
	if input.Timestamp == "" {
		input.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanDecide,
		attribute.String(observability.AttrRoundID, uuid.NewString()))
	dec, err := s.decide(ctx, observability.WithTrace(ctx, s.logger), input)
	observability.EndSpan(span, err)
	if err != nil {
		return "", err
	}

	return dec.ToJSON()
}

// decide resolves the judge runtime and runs the decision protocol once.
func (s *Service) decide(ctx context.Context, logger *slog.Logger, input decision.Input) (*decision.Decision, error) {
	runtime, err := s.resolveRuntime(ctx)
	if err != nil {
		return nil, err
	}

	invoker, err := s.invokerFor(runtime)
	if err != nil {
		return nil, err
	}

	return decision.NewProtocol(invoker, logger).Decide(ctx, input)
}

func (s *Service) resolver() *judge.Resolver {
	jc := s.cfg.Judge
	return judge.NewResolver(
		judge.Config{
			Provider:     jc.Provider,
			Model:        jc.Model,
			AuthProvider: jc.AuthProvider,
			APIURL:       jc.APIURL,
		},
		judge.PolicyFromLists(jc.Allow, jc.Deny, jc.Fallback),
		s.catalog,
		judge.CredentialSource{
			Accessor:  s.accessor,
			StorePath: jc.AuthStorePath,
			APIKey:    jc.APIKey,
			Logger:    s.logger,
		},
		s.logger,
	)
}

func (s *Service) buildInput(ctx context.Context, sessionID, text string) decision.Input {
	var persona, health any
	if s.enrich != nil {
		persona, health = s.enrich(ctx, sessionID)
	}

	return decision.Input{
		Persona:      persona,
		ActiveWork:   s.tracker.Window(sessionID),
		SystemHealth: health,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		UserMessage:  text,
		Intent:       inferIntent(text),
	}
}
