package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-canvas/components/canvas"
)

// SetDateRangeInput associates a date range with a widget.
type SetDateRangeInput struct {
	WidgetID string           `json:"widget_id"`
	Range    canvas.DateRange `json:"range"`
}

type dateRangeService interface {
	SetDateRange(ctx context.Context, widgetID string, r canvas.DateRange) bool
}

// SetDateRangeCommand wraps Session.SetDateRange.
type SetDateRangeCommand struct {
	service   dateRangeService
	telemetry Telemetry
}

// NewSetDateRangeCommand builds the command.
func NewSetDateRangeCommand(service dateRangeService, telemetry Telemetry) *SetDateRangeCommand {
	return &SetDateRangeCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetDateRangeInput] = (*SetDateRangeCommand)(nil)

// Execute stores the range.
func (c *SetDateRangeCommand) Execute(ctx context.Context, msg SetDateRangeInput) error {
	if c.service == nil {
		return errors.New("date range command requires service")
	}
	if !c.service.SetDateRange(ctx, msg.WidgetID, msg.Range) {
		return ErrNotApplied
	}
	c.telemetry.Record(ctx, "canvas.command.date_range", map[string]any{"widget_id": msg.WidgetID})
	return nil
}
