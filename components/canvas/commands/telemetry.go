package commands

import (
	"context"
	"errors"
)

// ErrNotApplied reports a command the session ignored: the target is unknown,
// edit mode is off, or the gesture was invalid.
var ErrNotApplied = errors.New("commands: command had no effect")

// Telemetry allows commands to emit structured events.
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
