package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-canvas/components/canvas"
	"github.com/goliatone/go-canvas/components/canvas/commands"
	"github.com/goliatone/go-canvas/components/canvas/httpapi"
	"github.com/goliatone/go-canvas/components/canvas/queries"
)

// Config wires go-router with the canvas controller, command API and event stream.
type Config[T any] struct {
	Router     router.Router[T]
	Controller *canvas.Controller
	API        httpapi.Executor
	Broadcast  *canvas.BroadcastHook
	BasePath   string
	Routes     RouteConfig
}

// RouteConfig customizes the relative paths used for canvas endpoints.
type RouteConfig struct {
	Dashboards      string
	Dashboard       string
	Layout          string
	RenameDashboard string
	CopyDashboard   string
	ApplyTemplate   string
	Templates       string
	EditMode        string
	Resize          string
	Reorder         string
	Generate        string
	WidgetID        string
	CopyWidget      string
	ReviseWidget    string
	DateRange       string
	WebSocket       string
}

// Register mounts canvas routes (HTML, JSON, REST, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/canvas"
	}
	group := cfg.Router.Group(base)
	mount(group, endpoints(cfg.Controller, cfg.API, routes))
	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}
	return nil
}

// requestContext is the part of router.Context the canvas handlers use.
type requestContext interface {
	Context() context.Context
	Param(name string, defaultValue ...string) string
	Query(name string, defaultValue ...string) string
	Body() []byte
	Send(body []byte) error
	SetHeader(key, value string) router.Context
	JSON(code int, v any) error
}

// routeTable is the part of router.Router the canvas registers against.
type routeTable interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	WebSocket(path string, cfg router.WebSocketConfig, handler func(router.WebSocketContext) error) router.RouteInfo
}

type endpoint struct {
	method string
	path   string
	handle func(requestContext) error
}

func mount(r routeTable, list []endpoint) {
	for _, e := range list {
		handle := e.handle
		h := router.WrapHandler(func(ctx router.Context) error { return handle(ctx) })
		switch e.method {
		case http.MethodGet:
			r.Get(e.path, h)
		case http.MethodPost:
			r.Post(e.path, h)
		case http.MethodDelete:
			r.Delete(e.path, h)
		}
	}
}

func endpoints(controller *canvas.Controller, api httpapi.Executor, routes RouteConfig) []endpoint {
	layout := queries.NewLayoutQuery(controller)
	dashboards := queries.NewDashboardsQuery(controller.Session())
	templates := queries.NewTemplatesQuery(controller.Session().Catalog())

	list := []endpoint{
		{http.MethodGet, routes.Dashboard, func(ctx requestContext) error {
			var buf bytes.Buffer
			if err := controller.RenderTemplate(ctx.Context(), ctx.Param("id"), &buf); err != nil {
				return respondError(ctx, http.StatusInternalServerError, err)
			}
			ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
			return ctx.Send(buf.Bytes())
		}},
		{http.MethodGet, routes.Layout, func(ctx requestContext) error {
			payload, err := layout.Query(ctx.Context(), queries.LayoutInput{DashboardID: ctx.Param("id")})
			if err != nil {
				return respondError(ctx, http.StatusInternalServerError, err)
			}
			return ctx.JSON(http.StatusOK, payload)
		}},
		{http.MethodGet, routes.Dashboards, func(ctx requestContext) error {
			list, err := dashboards.Query(ctx.Context(), queries.DashboardsInput{})
			if err != nil {
				return respondError(ctx, http.StatusInternalServerError, err)
			}
			return ctx.JSON(http.StatusOK, map[string]any{
				"active":     controller.Session().ActiveID(),
				"dashboards": list,
			})
		}},
		{http.MethodGet, routes.Templates, func(ctx requestContext) error {
			list, err := templates.Query(ctx.Context(), queries.TemplatesInput{Category: ctx.Query("category")})
			if err != nil {
				return respondError(ctx, http.StatusInternalServerError, err)
			}
			return ctx.JSON(http.StatusOK, map[string]any{"templates": list})
		}},
	}
	if api != nil {
		list = append(list, apiEndpoints(api, routes)...)
	}
	return list
}

func apiEndpoints(api httpapi.Executor, routes RouteConfig) []endpoint {
	return []endpoint{
		{http.MethodPost, routes.Dashboards, func(ctx requestContext) error {
			var payload commands.CreateDashboardInput
			if err := decode(ctx, &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			var created canvas.Dashboard
			payload.Result = &created
			if err := api.CreateDashboard(ctx.Context(), payload); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusCreated, created)
		}},
		{http.MethodPost, routes.RenameDashboard, func(ctx requestContext) error {
			var payload commands.RenameDashboardInput
			if err := decode(ctx, &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			payload.DashboardID = ctx.Param("id")
			if err := api.RenameDashboard(ctx.Context(), payload); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, map[string]string{"status": "renamed"})
		}},
		{http.MethodPost, routes.CopyDashboard, func(ctx requestContext) error {
			var copied canvas.Dashboard
			input := commands.DashboardIDInput{DashboardID: ctx.Param("id"), Result: &copied}
			if err := api.DuplicateDashboard(ctx.Context(), input); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusCreated, copied)
		}},
		{http.MethodDelete, routes.Dashboard, func(ctx requestContext) error {
			if err := api.DeleteDashboard(ctx.Context(), commands.DashboardIDInput{DashboardID: ctx.Param("id")}); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, map[string]string{"status": "deleted"})
		}},
		{http.MethodPost, routes.ApplyTemplate, func(ctx requestContext) error {
			var payload commands.ApplyTemplateInput
			if err := decode(ctx, &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			payload.DashboardID = ctx.Param("id")
			var delivery canvas.TemplateDelivery
			payload.Result = &delivery
			if err := api.ApplyTemplate(ctx.Context(), payload); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusAccepted, delivery)
		}},
		{http.MethodPost, routes.EditMode, func(ctx requestContext) error {
			var payload commands.SetEditModeInput
			if err := decode(ctx, &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			if err := api.SetEditMode(ctx.Context(), payload); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, map[string]bool{"edit_mode": payload.Enabled})
		}},
		{http.MethodPost, routes.Resize, func(ctx requestContext) error {
			var payload commands.ResizeWidgetInput
			if err := decode(ctx, &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			var widget canvas.Widget
			payload.Result = &widget
			if err := api.Resize(ctx.Context(), payload); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, widget)
		}},
		{http.MethodPost, routes.Reorder, func(ctx requestContext) error {
			var payload commands.ReorderWidgetsInput
			if err := decode(ctx, &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			if err := api.Reorder(ctx.Context(), payload); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, map[string]string{"status": "reordered"})
		}},
		{http.MethodPost, routes.Generate, func(ctx requestContext) error {
			var payload commands.GenerateChartInput
			if err := decode(ctx, &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			if err := api.GenerateChart(ctx.Context(), payload); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
		}},
		{http.MethodDelete, routes.WidgetID, func(ctx requestContext) error {
			id := ctx.Param("id")
			if id == "" {
				return respondError(ctx, http.StatusBadRequest, errors.New("widget id is required"))
			}
			if err := api.Remove(ctx.Context(), commands.RemoveWidgetInput{WidgetID: id}); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, map[string]string{"status": "removed"})
		}},
		{http.MethodPost, routes.WidgetID, func(ctx requestContext) error {
			var widget canvas.Widget
			if err := decode(ctx, &widget); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			input := commands.ReplaceWidgetInput{WidgetID: ctx.Param("id"), Widget: widget}
			if err := api.Replace(ctx.Context(), input); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, map[string]string{"status": "replaced"})
		}},
		{http.MethodPost, routes.CopyWidget, func(ctx requestContext) error {
			var clone canvas.Widget
			input := commands.DuplicateWidgetInput{WidgetID: ctx.Param("id"), Result: &clone}
			if err := api.Duplicate(ctx.Context(), input); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusCreated, clone)
		}},
		{http.MethodPost, routes.ReviseWidget, func(ctx requestContext) error {
			var payload commands.ReviseWidgetInput
			if err := decode(ctx, &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			payload.WidgetID = ctx.Param("id")
			if err := api.ReviseWidget(ctx.Context(), payload); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
		}},
		{http.MethodPost, routes.DateRange, func(ctx requestContext) error {
			var payload canvas.DateRange
			if err := decode(ctx, &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			input := commands.SetDateRangeInput{WidgetID: ctx.Param("id"), Range: payload}
			if err := api.SetDateRange(ctx.Context(), input); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, map[string]string{"status": "saved"})
		}},
	}
}

func registerWebSocket(r routeTable, hook *canvas.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe("")
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func decode(ctx requestContext, into any) error {
	body := ctx.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, into)
}

func respondError(ctx requestContext, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.Dashboards == "" {
		routes.Dashboards = "/dashboards"
	}
	if routes.Dashboard == "" {
		routes.Dashboard = "/dashboards/:id"
	}
	if routes.Layout == "" {
		routes.Layout = "/dashboards/:id/_layout"
	}
	if routes.RenameDashboard == "" {
		routes.RenameDashboard = "/dashboards/:id/rename"
	}
	if routes.CopyDashboard == "" {
		routes.CopyDashboard = "/dashboards/:id/duplicate"
	}
	if routes.ApplyTemplate == "" {
		routes.ApplyTemplate = "/dashboards/:id/template"
	}
	if routes.Templates == "" {
		routes.Templates = "/templates"
	}
	if routes.EditMode == "" {
		routes.EditMode = "/edit-mode"
	}
	if routes.Resize == "" {
		routes.Resize = "/widgets/resize"
	}
	if routes.Reorder == "" {
		routes.Reorder = "/widgets/reorder"
	}
	if routes.Generate == "" {
		routes.Generate = "/widgets/generate"
	}
	if routes.WidgetID == "" {
		routes.WidgetID = "/widgets/:id"
	}
	if routes.CopyWidget == "" {
		routes.CopyWidget = "/widgets/:id/duplicate"
	}
	if routes.ReviseWidget == "" {
		routes.ReviseWidget = "/widgets/:id/revise"
	}
	if routes.DateRange == "" {
		routes.DateRange = "/widgets/:id/date-range"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/ws"
	}
	return routes
}
