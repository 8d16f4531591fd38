package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-canvas/components/canvas"
)

// DashboardsInput is the (empty) dashboard list request.
type DashboardsInput struct{}

type dashboardsService interface {
	Dashboards() []canvas.Dashboard
}

// DashboardsQuery lists dashboards in creation order.
type DashboardsQuery struct {
	service dashboardsService
}

// NewDashboardsQuery builds the query.
func NewDashboardsQuery(service dashboardsService) *DashboardsQuery {
	return &DashboardsQuery{service: service}
}

var _ gocommand.Querier[DashboardsInput, []canvas.Dashboard] = (*DashboardsQuery)(nil)

// Query lists dashboards.
func (q *DashboardsQuery) Query(context.Context, DashboardsInput) ([]canvas.Dashboard, error) {
	return q.service.Dashboards(), nil
}

// TemplatesInput optionally filters the catalog by category.
type TemplatesInput struct {
	Category string `json:"category"`
}

type templatesService interface {
	Templates() []canvas.Template
}

// TemplatesQuery lists catalog templates.
type TemplatesQuery struct {
	service templatesService
}

// NewTemplatesQuery builds the query.
func NewTemplatesQuery(service templatesService) *TemplatesQuery {
	return &TemplatesQuery{service: service}
}

var _ gocommand.Querier[TemplatesInput, []canvas.Template] = (*TemplatesQuery)(nil)

// Query lists templates, keeping catalog order.
func (q *TemplatesQuery) Query(_ context.Context, input TemplatesInput) ([]canvas.Template, error) {
	all := q.service.Templates()
	if input.Category == "" {
		return all, nil
	}
	out := make([]canvas.Template, 0, len(all))
	for _, tpl := range all {
		if tpl.Category == input.Category {
			out = append(out, tpl)
		}
	}
	return out, nil
}
