package queries

import (
	"context"
	"testing"

	"github.com/goliatone/go-canvas/components/canvas"
)

func newSession(t *testing.T) *canvas.Session {
	t.Helper()
	session := canvas.NewSession(canvas.Options{Dashboards: []canvas.Dashboard{
		{ID: "1", Name: "Main", Widgets: []canvas.Widget{{ID: "a", Title: "Notes", ColSpan: 4, RowSpan: 1}}},
		{ID: "2", Name: "Growth"},
	}})
	t.Cleanup(session.Close)
	return session
}

func TestLayoutQueryNavigates(t *testing.T) {
	session := newSession(t)
	controller := canvas.NewController(canvas.ControllerOptions{Session: session})
	query := NewLayoutQuery(controller)

	layout, err := query.Query(context.Background(), LayoutInput{DashboardID: "2"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if layout.DashboardID != "2" || session.ActiveID() != "2" {
		t.Fatalf("expected navigation to dashboard 2, got %s", layout.DashboardID)
	}

	layout, err = query.Query(context.Background(), LayoutInput{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if layout.DashboardID != "2" {
		t.Fatalf("empty id should keep the active dashboard, got %s", layout.DashboardID)
	}
}

func TestDashboardsQuery(t *testing.T) {
	dashboards, err := NewDashboardsQuery(newSession(t)).Query(context.Background(), DashboardsInput{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(dashboards) != 2 || dashboards[0].ID != "1" || dashboards[1].ID != "2" {
		t.Fatalf("unexpected dashboards: %+v", dashboards)
	}
	if len(dashboards[0].Widgets) != 1 {
		t.Fatalf("expected widgets to be listed")
	}
}

func TestTemplatesQueryFiltersByCategory(t *testing.T) {
	query := NewTemplatesQuery(canvas.NewCatalog(nil))

	all, err := query.Query(context.Background(), TemplatesInput{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(all) != len(canvas.DefaultTemplates()) {
		t.Fatalf("expected %d templates, got %d", len(canvas.DefaultTemplates()), len(all))
	}

	marketing, err := query.Query(context.Background(), TemplatesInput{Category: "Marketing"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(marketing) != 1 || marketing[0].ID != "social-media" {
		t.Fatalf("unexpected marketing templates: %+v", marketing)
	}

	none, _ := query.Query(context.Background(), TemplatesInput{Category: "Finance"})
	if len(none) != 0 {
		t.Fatalf("expected no templates, got %d", len(none))
	}
}
