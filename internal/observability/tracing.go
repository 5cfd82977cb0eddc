package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName identifies this module's spans in exported traces.
const tracerName = "github.com/imh0ng/open-machina"

// Span names for arbitration operations.
const (
	SpanDecide        = "machina.arbiter.decide"
	SpanJudgeComplete = "machina.judge.complete"
	SpanJudgeResolve  = "machina.judge.resolve"
)

// Attribute keys attached to arbitration spans.
const (
	AttrSessionID  = "machina.session.id"
	AttrRoundID    = "machina.round.id"
	AttrAction     = "machina.decision.action"
	AttrPriority   = "machina.decision.priority"
	AttrConfidence = "machina.decision.confidence"
	AttrJudgeModel = "machina.judge.model"
)

// Tracer returns the module tracer. A global noop provider keeps this safe
// when the host never configures OpenTelemetry.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartSpan starts a span with the module tracer.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records the error (if any) and ends the span.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
