package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"
)

var errRendererMissing = errors.New("canvas: renderer not configured")

// ControllerOptions wires a controller.
type ControllerOptions struct {
	Session  *Session
	Renderer Renderer
	Template string
	BasePath string
}

// Controller turns session state into HTML pages and JSON layout payloads.
type Controller struct {
	opts ControllerOptions
}

// NewController wires the session into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = "canvas.html"
	}
	return &Controller{opts: opts}
}

// Session returns the session behind the controller.
func (c *Controller) Session() *Session {
	return c.opts.Session
}

// LayoutPayload navigates to dashboardID and snapshots its layout. An empty id
// keeps the active dashboard.
func (c *Controller) LayoutPayload(ctx context.Context, dashboardID string) (LayoutSnapshot, error) {
	if c.opts.Session == nil {
		return LayoutSnapshot{}, errors.New("canvas: session not configured")
	}
	if dashboardID != "" {
		c.opts.Session.Navigate(ctx, dashboardID)
	}
	return c.opts.Session.Layout(), nil
}

// RenderTemplate renders the canvas page for dashboardID into out.
func (c *Controller) RenderTemplate(ctx context.Context, dashboardID string, out io.Writer) error {
	if c.opts.Renderer == nil {
		return errRendererMissing
	}
	layout, err := c.LayoutPayload(ctx, dashboardID)
	if err != nil {
		return err
	}
	_, err = c.opts.Renderer.Render(c.opts.Template, c.viewModel(layout), out)
	return err
}

func (c *Controller) viewModel(layout LayoutSnapshot) map[string]any {
	dashboard := map[string]any{"id": layout.DashboardID, "name": "Untitled dashboard"}
	if d := layout.Dashboard; d != nil {
		dashboard = map[string]any{"id": d.ID, "name": d.Name, "icon": d.Icon, "description": d.Description}
	}
	session := c.opts.Session
	dashboards := make([]map[string]any, 0)
	for _, d := range session.Dashboards() {
		dashboards = append(dashboards, map[string]any{"id": d.ID, "name": d.Name, "icon": d.Icon})
	}
	templates := make([]map[string]any, 0)
	for _, tpl := range session.Catalog().Templates() {
		templates = append(templates, map[string]any{"id": tpl.ID, "name": tpl.Name, "icon": tpl.Icon, "description": tpl.Description})
	}
	return map[string]any{
		"base_path":  c.opts.BasePath,
		"dashboard":  dashboard,
		"dashboards": dashboards,
		"templates":  templates,
		"edit_mode":  layout.EditMode,
		"resizing":   layout.Resizing,
		"columns":    GridColumns,
		"row_unit":   int(session.opts.Grid.RowUnit),
		"cards":      cards(layout),
	}
}

// cards joins widgets with their placements. Grid lines are one-based.
func cards(layout LayoutSnapshot) []map[string]any {
	out := make([]map[string]any, 0, len(layout.Widgets))
	for i, w := range layout.Widgets {
		card := map[string]any{
			"id":       w.ID,
			"title":    w.Title,
			"kind":     string(w.Kind()),
			"col_span": w.ColSpan,
			"row_span": w.RowSpan,
		}
		if i < len(layout.Placements) {
			card["column"] = layout.Placements[i].Column + 1
			card["row"] = layout.Placements[i].Row + 1
		}
		switch p := w.Payload.(type) {
		case SummaryPayload:
			card["content"] = p.Content
		case CountPayload:
			card["value"] = strconv.FormatFloat(p.Value, 'f', -1, 64)
			card["label"] = p.Label
		case ChartPayload:
			card["prompt"] = p.Prompt
			if p.Data != nil {
				if raw, err := json.Marshal(p.Data); err == nil {
					card["data"] = string(raw)
				}
			}
		}
		out = append(out, card)
	}
	return out
}
