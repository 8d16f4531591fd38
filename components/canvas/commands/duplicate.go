package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-canvas/components/canvas"
)

// DuplicateWidgetInput identifies the widget to copy.
type DuplicateWidgetInput struct {
	WidgetID string         `json:"widget_id"`
	Result   *canvas.Widget `json:"-"`
}

type duplicateService interface {
	Duplicate(ctx context.Context, widgetID string) (canvas.Widget, bool)
}

// DuplicateWidgetCommand wraps Session.Duplicate.
type DuplicateWidgetCommand struct {
	service   duplicateService
	telemetry Telemetry
}

// NewDuplicateWidgetCommand builds the command.
func NewDuplicateWidgetCommand(service duplicateService, telemetry Telemetry) *DuplicateWidgetCommand {
	return &DuplicateWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DuplicateWidgetInput] = (*DuplicateWidgetCommand)(nil)

// Execute appends the copy.
func (c *DuplicateWidgetCommand) Execute(ctx context.Context, msg DuplicateWidgetInput) error {
	if c.service == nil {
		return errors.New("duplicate command requires service")
	}
	clone, ok := c.service.Duplicate(ctx, msg.WidgetID)
	if !ok {
		return ErrNotApplied
	}
	if msg.Result != nil {
		*msg.Result = clone
	}
	c.telemetry.Record(ctx, "canvas.command.duplicate", map[string]any{"widget_id": msg.WidgetID, "copy_id": clone.ID})
	return nil
}
