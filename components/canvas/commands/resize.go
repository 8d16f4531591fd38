package commands

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-canvas/components/canvas"
)

// ResizeWidgetInput describes a complete resize gesture: the handle grabbed,
// where the pointer started and every position it moved through.
type ResizeWidgetInput struct {
	WidgetID string         `json:"widget_id"`
	Handle   string         `json:"handle"`
	Start    canvas.Point   `json:"start"`
	Moves    []canvas.Point `json:"moves"`
	Result   *canvas.Widget `json:"-"`
}

type resizeService interface {
	Resize(ctx context.Context, widgetID string, handle canvas.Handle, start canvas.Point, moves []canvas.Point) (canvas.Widget, bool)
}

// ResizeWidgetCommand replays a resize gesture through the session.
type ResizeWidgetCommand struct {
	service   resizeService
	telemetry Telemetry
}

// NewResizeWidgetCommand builds the command.
func NewResizeWidgetCommand(service resizeService, telemetry Telemetry) *ResizeWidgetCommand {
	return &ResizeWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ResizeWidgetInput] = (*ResizeWidgetCommand)(nil)

// Execute runs the gesture.
func (c *ResizeWidgetCommand) Execute(ctx context.Context, msg ResizeWidgetInput) error {
	if c.service == nil {
		return errors.New("resize command requires service")
	}
	if msg.WidgetID == "" {
		return errors.New("resize command requires widget id")
	}
	handle, ok := canvas.ParseHandle(msg.Handle)
	if !ok {
		return fmt.Errorf("resize command: unknown handle %q", msg.Handle)
	}
	widget, ok := c.service.Resize(ctx, msg.WidgetID, handle, msg.Start, msg.Moves)
	if !ok {
		return ErrNotApplied
	}
	if msg.Result != nil {
		*msg.Result = widget
	}
	c.telemetry.Record(ctx, "canvas.command.resize", map[string]any{
		"widget_id": msg.WidgetID,
		"handle":    string(handle),
		"moves":     len(msg.Moves),
	})
	return nil
}
