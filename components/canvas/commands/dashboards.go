package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-canvas/components/canvas"
)

// CreateDashboardInput creates a dashboard, optionally from a catalog template.
type CreateDashboardInput struct {
	canvas.CreateDashboardRequest
	Result *canvas.Dashboard `json:"-"`
}

type createDashboardService interface {
	CreateDashboard(ctx context.Context, req canvas.CreateDashboardRequest) (canvas.Dashboard, error)
}

// CreateDashboardCommand wraps Session.CreateDashboard.
type CreateDashboardCommand struct {
	service   createDashboardService
	telemetry Telemetry
}

// NewCreateDashboardCommand builds the command.
func NewCreateDashboardCommand(service createDashboardService, telemetry Telemetry) *CreateDashboardCommand {
	return &CreateDashboardCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[CreateDashboardInput] = (*CreateDashboardCommand)(nil)

// Execute creates the dashboard and switches to it.
func (c *CreateDashboardCommand) Execute(ctx context.Context, msg CreateDashboardInput) error {
	if c.service == nil {
		return errors.New("create dashboard command requires service")
	}
	d, err := c.service.CreateDashboard(ctx, msg.CreateDashboardRequest)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = d
	}
	c.telemetry.Record(ctx, "canvas.command.create_dashboard", map[string]any{
		"dashboard_id": d.ID,
		"template_id":  msg.TemplateID,
	})
	return nil
}

// RenameDashboardInput renames a dashboard. Empty fields keep current values.
type RenameDashboardInput struct {
	DashboardID string `json:"dashboard_id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
}

// DashboardIDInput targets a whole dashboard.
type DashboardIDInput struct {
	DashboardID string            `json:"dashboard_id"`
	Result      *canvas.Dashboard `json:"-"`
}

type dashboardLifecycleService interface {
	RenameDashboard(ctx context.Context, dashboardID, name, icon string) bool
	DuplicateDashboard(ctx context.Context, dashboardID string) (canvas.Dashboard, bool)
	DeleteDashboard(ctx context.Context, dashboardID string) bool
}

// RenameDashboardCommand wraps Session.RenameDashboard.
type RenameDashboardCommand struct {
	service   dashboardLifecycleService
	telemetry Telemetry
}

// NewRenameDashboardCommand builds the command.
func NewRenameDashboardCommand(service dashboardLifecycleService, telemetry Telemetry) *RenameDashboardCommand {
	return &RenameDashboardCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RenameDashboardInput] = (*RenameDashboardCommand)(nil)

// Execute renames the dashboard.
func (c *RenameDashboardCommand) Execute(ctx context.Context, msg RenameDashboardInput) error {
	if c.service == nil {
		return errors.New("rename dashboard command requires service")
	}
	if !c.service.RenameDashboard(ctx, msg.DashboardID, msg.Name, msg.Icon) {
		return ErrNotApplied
	}
	c.telemetry.Record(ctx, "canvas.command.rename_dashboard", map[string]any{"dashboard_id": msg.DashboardID})
	return nil
}

// DuplicateDashboardCommand wraps Session.DuplicateDashboard.
type DuplicateDashboardCommand struct {
	service   dashboardLifecycleService
	telemetry Telemetry
}

// NewDuplicateDashboardCommand builds the command.
func NewDuplicateDashboardCommand(service dashboardLifecycleService, telemetry Telemetry) *DuplicateDashboardCommand {
	return &DuplicateDashboardCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DashboardIDInput] = (*DuplicateDashboardCommand)(nil)

// Execute copies the dashboard.
func (c *DuplicateDashboardCommand) Execute(ctx context.Context, msg DashboardIDInput) error {
	if c.service == nil {
		return errors.New("duplicate dashboard command requires service")
	}
	d, ok := c.service.DuplicateDashboard(ctx, msg.DashboardID)
	if !ok {
		return ErrNotApplied
	}
	if msg.Result != nil {
		*msg.Result = d
	}
	c.telemetry.Record(ctx, "canvas.command.duplicate_dashboard", map[string]any{"dashboard_id": msg.DashboardID, "copy_id": d.ID})
	return nil
}

// DeleteDashboardCommand wraps Session.DeleteDashboard.
type DeleteDashboardCommand struct {
	service   dashboardLifecycleService
	telemetry Telemetry
}

// NewDeleteDashboardCommand builds the command.
func NewDeleteDashboardCommand(service dashboardLifecycleService, telemetry Telemetry) *DeleteDashboardCommand {
	return &DeleteDashboardCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DashboardIDInput] = (*DeleteDashboardCommand)(nil)

// Execute deletes the dashboard.
func (c *DeleteDashboardCommand) Execute(ctx context.Context, msg DashboardIDInput) error {
	if c.service == nil {
		return errors.New("delete dashboard command requires service")
	}
	if !c.service.DeleteDashboard(ctx, msg.DashboardID) {
		return ErrNotApplied
	}
	c.telemetry.Record(ctx, "canvas.command.delete_dashboard", map[string]any{"dashboard_id": msg.DashboardID})
	return nil
}

// ApplyTemplateInput sends a catalog template to a dashboard.
type ApplyTemplateInput struct {
	DashboardID string                   `json:"dashboard_id"`
	TemplateID  string                   `json:"template_id"`
	Result      *canvas.TemplateDelivery `json:"-"`
}

type applyTemplateService interface {
	ApplyTemplate(ctx context.Context, dashboardID, templateID string) (canvas.TemplateDelivery, error)
}

// ApplyTemplateCommand wraps Session.ApplyTemplate.
type ApplyTemplateCommand struct {
	service   applyTemplateService
	telemetry Telemetry
}

// NewApplyTemplateCommand builds the command.
func NewApplyTemplateCommand(service applyTemplateService, telemetry Telemetry) *ApplyTemplateCommand {
	return &ApplyTemplateCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ApplyTemplateInput] = (*ApplyTemplateCommand)(nil)

// Execute publishes the template.
func (c *ApplyTemplateCommand) Execute(ctx context.Context, msg ApplyTemplateInput) error {
	if c.service == nil {
		return errors.New("apply template command requires service")
	}
	delivery, err := c.service.ApplyTemplate(ctx, msg.DashboardID, msg.TemplateID)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = delivery
	}
	c.telemetry.Record(ctx, "canvas.command.apply_template", map[string]any{
		"dashboard_id": delivery.DashboardID,
		"template_id":  msg.TemplateID,
		"seq":          delivery.Seq,
	})
	return nil
}
