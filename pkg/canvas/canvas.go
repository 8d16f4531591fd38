package canvas

import (
	core "github.com/goliatone/go-canvas/components/canvas"
)

// Session exposes the underlying components/canvas.Session type.
type Session = core.Session

// Options re-export for convenience.
type Options = core.Options

// Widget, Dashboard and Template re-exports.
type (
	Widget     = core.Widget
	WidgetSeed = core.WidgetSeed
	Dashboard  = core.Dashboard
	Template   = core.Template

	CreateDashboardRequest = core.CreateDashboardRequest
)

// NewSession proxies to the internal constructor.
func NewSession(opts Options) *Session {
	return core.NewSession(opts)
}
