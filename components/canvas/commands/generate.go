package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// GenerateChartInput asks for a chart built from a prompt.
type GenerateChartInput struct {
	Title  string `json:"title"`
	Prompt string `json:"prompt"`
}

type chartService interface {
	GenerateChart(ctx context.Context, title, prompt string) (func() bool, error)
}

// GenerateChartCommand schedules chart generation for the active dashboard.
type GenerateChartCommand struct {
	service   chartService
	telemetry Telemetry
}

// NewGenerateChartCommand builds the command.
func NewGenerateChartCommand(service chartService, telemetry Telemetry) *GenerateChartCommand {
	return &GenerateChartCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[GenerateChartInput] = (*GenerateChartCommand)(nil)

// Execute queues the generation; the chart lands asynchronously.
func (c *GenerateChartCommand) Execute(ctx context.Context, msg GenerateChartInput) error {
	if c.service == nil {
		return errors.New("generate command requires service")
	}
	if _, err := c.service.GenerateChart(ctx, msg.Title, msg.Prompt); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "canvas.command.generate_chart", map[string]any{"title": msg.Title})
	return nil
}

// ReviseWidgetInput asks for a prompt-driven edit of a widget.
type ReviseWidgetInput struct {
	WidgetID string `json:"widget_id"`
	Prompt   string `json:"prompt"`
}

type reviseService interface {
	ReviseWidget(ctx context.Context, widgetID, prompt string) (func() bool, error)
}

// ReviseWidgetCommand schedules a widget revision.
type ReviseWidgetCommand struct {
	service   reviseService
	telemetry Telemetry
}

// NewReviseWidgetCommand builds the command.
func NewReviseWidgetCommand(service reviseService, telemetry Telemetry) *ReviseWidgetCommand {
	return &ReviseWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ReviseWidgetInput] = (*ReviseWidgetCommand)(nil)

// Execute queues the revision.
func (c *ReviseWidgetCommand) Execute(ctx context.Context, msg ReviseWidgetInput) error {
	if c.service == nil {
		return errors.New("revise command requires service")
	}
	if _, err := c.service.ReviseWidget(ctx, msg.WidgetID, msg.Prompt); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "canvas.command.revise_widget", map[string]any{"widget_id": msg.WidgetID})
	return nil
}
