package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// SetEditModeInput toggles edit mode.
type SetEditModeInput struct {
	Enabled bool `json:"enabled"`
}

type editModeService interface {
	SetEditMode(ctx context.Context, enabled bool)
}

// SetEditModeCommand wraps Session.SetEditMode.
type SetEditModeCommand struct {
	service   editModeService
	telemetry Telemetry
}

// NewSetEditModeCommand builds the command.
func NewSetEditModeCommand(service editModeService, telemetry Telemetry) *SetEditModeCommand {
	return &SetEditModeCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetEditModeInput] = (*SetEditModeCommand)(nil)

// Execute toggles edit mode.
func (c *SetEditModeCommand) Execute(ctx context.Context, msg SetEditModeInput) error {
	if c.service == nil {
		return errors.New("edit mode command requires service")
	}
	c.service.SetEditMode(ctx, msg.Enabled)
	c.telemetry.Record(ctx, "canvas.command.edit_mode", map[string]any{"enabled": msg.Enabled})
	return nil
}
