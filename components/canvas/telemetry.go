package canvas

import (
	"context"
	"log/slog"
)

// Telemetry records canvas events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// SlogTelemetry writes telemetry records as structured log lines.
type SlogTelemetry struct {
	Logger *slog.Logger
	Level  slog.Level
}

// Record logs event with payload flattened into attributes.
func (t SlogTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := make([]slog.Attr, 0, len(payload))
	for key, value := range payload {
		attrs = append(attrs, slog.Any(key, value))
	}
	logger.LogAttrs(ctx, t.Level, event, attrs...)
}
