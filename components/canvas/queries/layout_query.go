package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-canvas/components/canvas"
)

// LayoutInput names the dashboard to snapshot. Empty keeps the active one.
type LayoutInput struct {
	DashboardID string `json:"dashboard_id"`
}

type layoutService interface {
	LayoutPayload(ctx context.Context, dashboardID string) (canvas.LayoutSnapshot, error)
}

// LayoutQuery resolves the canvas layout, navigating first when asked.
type LayoutQuery struct {
	service layoutService
}

// NewLayoutQuery builds the query.
func NewLayoutQuery(service layoutService) *LayoutQuery {
	return &LayoutQuery{service: service}
}

var _ gocommand.Querier[LayoutInput, canvas.LayoutSnapshot] = (*LayoutQuery)(nil)

// Query resolves the layout.
func (q *LayoutQuery) Query(ctx context.Context, input LayoutInput) (canvas.LayoutSnapshot, error) {
	return q.service.LayoutPayload(ctx, input.DashboardID)
}
