package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-canvas/components/canvas"
)

// NavigateInput selects the dashboard to edit. Empty means the default one.
type NavigateInput struct {
	DashboardID string                 `json:"dashboard_id"`
	Result      *canvas.NavigateResult `json:"-"`
}

type navigateService interface {
	Navigate(ctx context.Context, dashboardID string) canvas.NavigateResult
}

// NavigateCommand wraps Session.Navigate.
type NavigateCommand struct {
	service   navigateService
	telemetry Telemetry
}

// NewNavigateCommand builds the command.
func NewNavigateCommand(service navigateService, telemetry Telemetry) *NavigateCommand {
	return &NavigateCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[NavigateInput] = (*NavigateCommand)(nil)

// Execute switches dashboards.
func (c *NavigateCommand) Execute(ctx context.Context, msg NavigateInput) error {
	if c.service == nil {
		return errors.New("navigate command requires service")
	}
	result := c.service.Navigate(ctx, msg.DashboardID)
	if msg.Result != nil {
		*msg.Result = result
	}
	c.telemetry.Record(ctx, "canvas.command.navigate", map[string]any{
		"to":       result.To,
		"switched": result.Switched,
	})
	return nil
}
