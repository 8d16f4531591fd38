package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-canvas/components/canvas"
)

// ReplaceWidgetInput carries the updated widget. The id in the path wins over
// the id inside Widget.
type ReplaceWidgetInput struct {
	WidgetID string        `json:"widget_id"`
	Widget   canvas.Widget `json:"widget"`
}

type replaceService interface {
	Replace(ctx context.Context, widgetID string, updated canvas.Widget) bool
}

// ReplaceWidgetCommand wraps Session.Replace.
type ReplaceWidgetCommand struct {
	service   replaceService
	telemetry Telemetry
}

// NewReplaceWidgetCommand builds the command.
func NewReplaceWidgetCommand(service replaceService, telemetry Telemetry) *ReplaceWidgetCommand {
	return &ReplaceWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ReplaceWidgetInput] = (*ReplaceWidgetCommand)(nil)

// Execute swaps the widget in place.
func (c *ReplaceWidgetCommand) Execute(ctx context.Context, msg ReplaceWidgetInput) error {
	if c.service == nil {
		return errors.New("replace command requires service")
	}
	id := msg.WidgetID
	if id == "" {
		id = msg.Widget.ID
	}
	if !c.service.Replace(ctx, id, msg.Widget) {
		return ErrNotApplied
	}
	c.telemetry.Record(ctx, "canvas.command.replace", map[string]any{"widget_id": id, "kind": string(msg.Widget.Kind())})
	return nil
}
