package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-canvas/components/canvas"
	"github.com/goliatone/go-canvas/components/canvas/commands"
)

var errCommandMissing = errors.New("httpapi: command not configured")

// Executor is the transport-neutral command surface used by routers.
type Executor interface {
	Navigate(ctx context.Context, input commands.NavigateInput) error
	SetEditMode(ctx context.Context, input commands.SetEditModeInput) error
	Resize(ctx context.Context, input commands.ResizeWidgetInput) error
	Reorder(ctx context.Context, input commands.ReorderWidgetsInput) error
	Remove(ctx context.Context, input commands.RemoveWidgetInput) error
	Duplicate(ctx context.Context, input commands.DuplicateWidgetInput) error
	Replace(ctx context.Context, input commands.ReplaceWidgetInput) error
	GenerateChart(ctx context.Context, input commands.GenerateChartInput) error
	ReviseWidget(ctx context.Context, input commands.ReviseWidgetInput) error
	SetDateRange(ctx context.Context, input commands.SetDateRangeInput) error
	CreateDashboard(ctx context.Context, input commands.CreateDashboardInput) error
	RenameDashboard(ctx context.Context, input commands.RenameDashboardInput) error
	DuplicateDashboard(ctx context.Context, input commands.DashboardIDInput) error
	DeleteDashboard(ctx context.Context, input commands.DashboardIDInput) error
	ApplyTemplate(ctx context.Context, input commands.ApplyTemplateInput) error
}

// Handlers exposes HTTP endpoints backed by shared commands. It also
// satisfies Executor so routers other than net/http can reuse the wiring.
type Handlers struct {
	NavigateCommander           gocommand.Commander[commands.NavigateInput]
	EditModeCommander           gocommand.Commander[commands.SetEditModeInput]
	ResizeCommander             gocommand.Commander[commands.ResizeWidgetInput]
	ReorderCommander            gocommand.Commander[commands.ReorderWidgetsInput]
	RemoveCommander             gocommand.Commander[commands.RemoveWidgetInput]
	DuplicateCommander          gocommand.Commander[commands.DuplicateWidgetInput]
	ReplaceCommander            gocommand.Commander[commands.ReplaceWidgetInput]
	GenerateChartCommander      gocommand.Commander[commands.GenerateChartInput]
	ReviseWidgetCommander       gocommand.Commander[commands.ReviseWidgetInput]
	DateRangeCommander          gocommand.Commander[commands.SetDateRangeInput]
	CreateDashboardCommander    gocommand.Commander[commands.CreateDashboardInput]
	RenameDashboardCommander    gocommand.Commander[commands.RenameDashboardInput]
	DuplicateDashboardCommander gocommand.Commander[commands.DashboardIDInput]
	DeleteDashboardCommander    gocommand.Commander[commands.DashboardIDInput]
	ApplyTemplateCommander      gocommand.Commander[commands.ApplyTemplateInput]
}

var _ Executor = (*Handlers)(nil)

// NewHandlers wires every command against a session.
func NewHandlers(session *canvas.Session, telemetry commands.Telemetry) *Handlers {
	return &Handlers{
		NavigateCommander:           commands.NewNavigateCommand(session, telemetry),
		EditModeCommander:           commands.NewSetEditModeCommand(session, telemetry),
		ResizeCommander:             commands.NewResizeWidgetCommand(session, telemetry),
		ReorderCommander:            commands.NewReorderWidgetsCommand(session, telemetry),
		RemoveCommander:             commands.NewRemoveWidgetCommand(session, telemetry),
		DuplicateCommander:          commands.NewDuplicateWidgetCommand(session, telemetry),
		ReplaceCommander:            commands.NewReplaceWidgetCommand(session, telemetry),
		GenerateChartCommander:      commands.NewGenerateChartCommand(session, telemetry),
		ReviseWidgetCommander:       commands.NewReviseWidgetCommand(session, telemetry),
		DateRangeCommander:          commands.NewSetDateRangeCommand(session, telemetry),
		CreateDashboardCommander:    commands.NewCreateDashboardCommand(session, telemetry),
		RenameDashboardCommander:    commands.NewRenameDashboardCommand(session, telemetry),
		DuplicateDashboardCommander: commands.NewDuplicateDashboardCommand(session, telemetry),
		DeleteDashboardCommander:    commands.NewDeleteDashboardCommand(session, telemetry),
		ApplyTemplateCommander:      commands.NewApplyTemplateCommand(session, telemetry),
	}
}

func execute[T any](ctx context.Context, cmd gocommand.Commander[T], msg T) error {
	if cmd == nil {
		return errCommandMissing
	}
	return cmd.Execute(ctx, msg)
}

func (h *Handlers) Navigate(ctx context.Context, input commands.NavigateInput) error {
	return execute(ctx, h.NavigateCommander, input)
}

func (h *Handlers) SetEditMode(ctx context.Context, input commands.SetEditModeInput) error {
	return execute(ctx, h.EditModeCommander, input)
}

func (h *Handlers) Resize(ctx context.Context, input commands.ResizeWidgetInput) error {
	return execute(ctx, h.ResizeCommander, input)
}

func (h *Handlers) Reorder(ctx context.Context, input commands.ReorderWidgetsInput) error {
	return execute(ctx, h.ReorderCommander, input)
}

func (h *Handlers) Remove(ctx context.Context, input commands.RemoveWidgetInput) error {
	return execute(ctx, h.RemoveCommander, input)
}

func (h *Handlers) Duplicate(ctx context.Context, input commands.DuplicateWidgetInput) error {
	return execute(ctx, h.DuplicateCommander, input)
}

func (h *Handlers) Replace(ctx context.Context, input commands.ReplaceWidgetInput) error {
	return execute(ctx, h.ReplaceCommander, input)
}

func (h *Handlers) GenerateChart(ctx context.Context, input commands.GenerateChartInput) error {
	return execute(ctx, h.GenerateChartCommander, input)
}

func (h *Handlers) ReviseWidget(ctx context.Context, input commands.ReviseWidgetInput) error {
	return execute(ctx, h.ReviseWidgetCommander, input)
}

func (h *Handlers) SetDateRange(ctx context.Context, input commands.SetDateRangeInput) error {
	return execute(ctx, h.DateRangeCommander, input)
}

func (h *Handlers) CreateDashboard(ctx context.Context, input commands.CreateDashboardInput) error {
	return execute(ctx, h.CreateDashboardCommander, input)
}

func (h *Handlers) RenameDashboard(ctx context.Context, input commands.RenameDashboardInput) error {
	return execute(ctx, h.RenameDashboardCommander, input)
}

func (h *Handlers) DuplicateDashboard(ctx context.Context, input commands.DashboardIDInput) error {
	return execute(ctx, h.DuplicateDashboardCommander, input)
}

func (h *Handlers) DeleteDashboard(ctx context.Context, input commands.DashboardIDInput) error {
	return execute(ctx, h.DeleteDashboardCommander, input)
}

func (h *Handlers) ApplyTemplate(ctx context.Context, input commands.ApplyTemplateInput) error {
	return execute(ctx, h.ApplyTemplateCommander, input)
}

// StatusFor maps command errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, commands.ErrNotApplied):
		return http.StatusConflict
	case errors.Is(err, canvas.ErrTemplateNotFound), errors.Is(err, canvas.ErrWidgetNotFound):
		return http.StatusNotFound
	case errors.Is(err, canvas.ErrPromptRequired):
		return http.StatusBadRequest
	case errors.Is(err, canvas.ErrSchedulerClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) HandleSetEditMode(w http.ResponseWriter, r *http.Request) {
	var payload commands.SetEditModeInput
	if !decode(w, r, &payload) {
		return
	}
	if err := h.SetEditMode(r.Context(), payload); err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"edit_mode": payload.Enabled})
}

func (h *Handlers) HandleResizeWidget(w http.ResponseWriter, r *http.Request) {
	var payload commands.ResizeWidgetInput
	if !decode(w, r, &payload) {
		return
	}
	var widget canvas.Widget
	payload.Result = &widget
	if err := h.Resize(r.Context(), payload); err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, widget)
}

func (h *Handlers) HandleReorderWidgets(w http.ResponseWriter, r *http.Request) {
	var payload commands.ReorderWidgetsInput
	if !decode(w, r, &payload) {
		return
	}
	if err := h.Reorder(r.Context(), payload); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleRemoveWidget(w http.ResponseWriter, r *http.Request, widgetID string) {
	if err := h.Remove(r.Context(), commands.RemoveWidgetInput{WidgetID: widgetID}); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleDuplicateWidget(w http.ResponseWriter, r *http.Request, widgetID string) {
	var clone canvas.Widget
	if err := h.Duplicate(r.Context(), commands.DuplicateWidgetInput{WidgetID: widgetID, Result: &clone}); err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, clone)
}

func (h *Handlers) HandleReplaceWidget(w http.ResponseWriter, r *http.Request, widgetID string) {
	var widget canvas.Widget
	if !decode(w, r, &widget) {
		return
	}
	if err := h.Replace(r.Context(), commands.ReplaceWidgetInput{WidgetID: widgetID, Widget: widget}); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleGenerateChart(w http.ResponseWriter, r *http.Request) {
	var payload commands.GenerateChartInput
	if !decode(w, r, &payload) {
		return
	}
	if err := h.GenerateChart(r.Context(), payload); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handlers) HandleReviseWidget(w http.ResponseWriter, r *http.Request, widgetID string) {
	var payload commands.ReviseWidgetInput
	if !decode(w, r, &payload) {
		return
	}
	payload.WidgetID = widgetID
	if err := h.ReviseWidget(r.Context(), payload); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handlers) HandleSetDateRange(w http.ResponseWriter, r *http.Request, widgetID string) {
	var payload canvas.DateRange
	if !decode(w, r, &payload) {
		return
	}
	if err := h.SetDateRange(r.Context(), commands.SetDateRangeInput{WidgetID: widgetID, Range: payload}); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleCreateDashboard(w http.ResponseWriter, r *http.Request) {
	var payload commands.CreateDashboardInput
	if !decode(w, r, &payload) {
		return
	}
	var created canvas.Dashboard
	payload.Result = &created
	if err := h.CreateDashboard(r.Context(), payload); err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handlers) HandleRenameDashboard(w http.ResponseWriter, r *http.Request, dashboardID string) {
	var payload commands.RenameDashboardInput
	if !decode(w, r, &payload) {
		return
	}
	payload.DashboardID = dashboardID
	if err := h.RenameDashboard(r.Context(), payload); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleDuplicateDashboard(w http.ResponseWriter, r *http.Request, dashboardID string) {
	var copied canvas.Dashboard
	if err := h.DuplicateDashboard(r.Context(), commands.DashboardIDInput{DashboardID: dashboardID, Result: &copied}); err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, copied)
}

func (h *Handlers) HandleDeleteDashboard(w http.ResponseWriter, r *http.Request, dashboardID string) {
	if err := h.DeleteDashboard(r.Context(), commands.DashboardIDInput{DashboardID: dashboardID}); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleApplyTemplate(w http.ResponseWriter, r *http.Request, dashboardID string) {
	var payload commands.ApplyTemplateInput
	if !decode(w, r, &payload) {
		return
	}
	payload.DashboardID = dashboardID
	var delivery canvas.TemplateDelivery
	payload.Result = &delivery
	if err := h.ApplyTemplate(r.Context(), payload); err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, delivery)
}

// Mux mounts the handlers on a standard library router.
func (h *Handlers) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /edit-mode", h.HandleSetEditMode)
	mux.HandleFunc("POST /widgets/resize", h.HandleResizeWidget)
	mux.HandleFunc("POST /widgets/reorder", h.HandleReorderWidgets)
	mux.HandleFunc("POST /widgets/generate", h.HandleGenerateChart)
	mux.HandleFunc("DELETE /widgets/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleRemoveWidget(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("PUT /widgets/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleReplaceWidget(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST /widgets/{id}/duplicate", func(w http.ResponseWriter, r *http.Request) {
		h.HandleDuplicateWidget(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST /widgets/{id}/revise", func(w http.ResponseWriter, r *http.Request) {
		h.HandleReviseWidget(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST /widgets/{id}/date-range", func(w http.ResponseWriter, r *http.Request) {
		h.HandleSetDateRange(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST /dashboards", h.HandleCreateDashboard)
	mux.HandleFunc("PATCH /dashboards/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleRenameDashboard(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST /dashboards/{id}/duplicate", func(w http.ResponseWriter, r *http.Request) {
		h.HandleDuplicateDashboard(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("DELETE /dashboards/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleDeleteDashboard(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST /dashboards/{id}/template", func(w http.ResponseWriter, r *http.Request) {
		h.HandleApplyTemplate(w, r, r.PathValue("id"))
	})
	return mux
}

func decode(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func fail(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), StatusFor(err))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
