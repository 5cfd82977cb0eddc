package observability

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// NewLogger creates the framework's structured logger. Level accepts
// debug/info/warn/error (case-insensitive); anything else means info.
func NewLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler)
}

// WithTrace returns a logger that carries the trace and span ids of the
// current OpenTelemetry span, so log lines correlate with traces. Returns
// the logger unchanged when the context has no recording span.
func WithTrace(ctx context.Context, logger *slog.Logger) *slog.Logger {
	span := trace.SpanFromContext(ctx)
	sc := span.SpanContext()
	if !sc.IsValid() {
		return logger
	}

	return logger.With(
		"trace_id", sc.TraceID().String(),
		"span_id", sc.SpanID().String(),
	)
}

// sensitiveKeys are redacted from structured log attributes at info level
// and above. Credential material must never reach operator logs.
var sensitiveKeys = map[string]bool{
	"token":    true,
	"api_key":  true,
	"apikey":   true,
	"key":      true,
	"access":   true,
	"secret":   true,
	"password": true,
}

// Redact replaces values for sensitive keys in a key-value argument list.
func Redact(args []any) []any {
	out := make([]any, len(args))
	copy(out, args)

	for i := 0; i+1 < len(out); i += 2 {
		key, ok := out[i].(string)
		if !ok {
			continue
		}
		if sensitiveKeys[strings.ToLower(key)] {
			out[i+1] = "[REDACTED]"
		}
	}
	return out
}
