package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// ReorderWidgetsInput moves the widget at From to index To.
type ReorderWidgetsInput struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type reorderService interface {
	Reorder(ctx context.Context, from, to int) bool
}

// ReorderWidgetsCommand wraps Session.Reorder.
type ReorderWidgetsCommand struct {
	service   reorderService
	telemetry Telemetry
}

// NewReorderWidgetsCommand builds the command.
func NewReorderWidgetsCommand(service reorderService, telemetry Telemetry) *ReorderWidgetsCommand {
	return &ReorderWidgetsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ReorderWidgetsInput] = (*ReorderWidgetsCommand)(nil)

// Execute applies the new ordering.
func (c *ReorderWidgetsCommand) Execute(ctx context.Context, msg ReorderWidgetsInput) error {
	if c.service == nil {
		return errors.New("reorder command requires service")
	}
	if !c.service.Reorder(ctx, msg.From, msg.To) {
		return ErrNotApplied
	}
	c.telemetry.Record(ctx, "canvas.command.reorder", map[string]any{
		"from": msg.From,
		"to":   msg.To,
	})
	return nil
}
