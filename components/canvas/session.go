package canvas

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
)

var (
	// ErrTemplateNotFound is returned when a template id is not in the catalog.
	ErrTemplateNotFound = errors.New("canvas: template not found")
	// ErrWidgetNotFound is returned by asynchronous operations that need a widget snapshot.
	ErrWidgetNotFound = errors.New("canvas: widget not found")
	// ErrPromptRequired is returned when a generation prompt is blank.
	ErrPromptRequired = errors.New("canvas: prompt is required")
)

// Options configures a Session. Every collaborator is optional.
type Options struct {
	DefaultDashboardID string
	Dashboards         []Dashboard
	Grid               GridOptions
	GenerationDelay    time.Duration
	Generator          Generator
	Catalog            *Catalog
	Templates          *TemplateSource
	IDs                IDGenerator
	Clock              func() time.Time
	Hook               Hook
	Telemetry          Telemetry
	Logger             *slog.Logger
}

func (o *Options) normalize() {
	if o.DefaultDashboardID == "" {
		o.DefaultDashboardID = DefaultDashboardID
	}
	if o.Grid.ColumnUnit <= 0 {
		o.Grid.ColumnUnit = DefaultColumnUnit
	}
	if o.Grid.RowUnit <= 0 {
		o.Grid.RowUnit = DefaultRowUnit
	}
	if o.GenerationDelay == 0 {
		o.GenerationDelay = DefaultGenerationDelay
	}
	if o.Generator == nil {
		o.Generator = PlaceholderGenerator{}
	}
	if o.Catalog == nil {
		o.Catalog = NewCatalog(nil)
	}
	if o.Templates == nil {
		o.Templates = NewTemplateSource()
	}
	if o.Hook == nil {
		o.Hook = noopHook{}
	}
	o.Telemetry = normalizeTelemetry(o.Telemetry)
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
}

// Session is the single owner of one editing session: it wires the grid to the
// store, feeds template deliveries into the store and runs generations.
type Session struct {
	opts        Options
	mu          sync.Mutex
	store       *Store
	grid        *Grid
	scheduler   *Scheduler
	unsubscribe func()
}

// NewSession builds a session parked on the default dashboard.
func NewSession(opts Options) *Session {
	opts.normalize()
	s := &Session{opts: opts}
	s.store = NewStore(StoreOptions{
		DefaultDashboardID: opts.DefaultDashboardID,
		Dashboards:         opts.Dashboards,
		IDs:                opts.IDs,
		Clock:              opts.Clock,
		Acknowledger:       opts.Templates,
		Logger:             opts.Logger,
	})
	gridOpts := opts.Grid
	gridOpts.Hook = HookFunc(s.handleGridEvent)
	gridOpts.Logger = opts.Logger
	s.grid = NewGrid(gridOpts)
	s.grid.Load(s.store.ActiveID(), s.store.Active())
	s.scheduler = NewScheduler(opts.GenerationDelay)
	s.unsubscribe = opts.Templates.Subscribe(context.Background(), s.handleDelivery)
	return s
}

// Close stops pending generations and detaches from the template source.
func (s *Session) Close() {
	s.scheduler.Close()
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// Wait blocks until scheduled generations have landed.
func (s *Session) Wait() {
	s.scheduler.Wait()
}

// Store exposes the underlying dashboard store.
func (s *Session) Store() *Store { return s.store }

// Grid exposes the underlying grid.
func (s *Session) Grid() *Grid { return s.grid }

// Catalog exposes the template catalog.
func (s *Session) Catalog() *Catalog { return s.opts.Catalog }

// Templates exposes the template source deliveries flow through.
func (s *Session) Templates() *TemplateSource { return s.opts.Templates }

// ActiveID returns the dashboard being edited.
func (s *Session) ActiveID() string {
	return s.store.ActiveID()
}

// Navigate switches to dashboardID. Empty means the default dashboard.
func (s *Session) Navigate(ctx context.Context, dashboardID string) NavigateResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.navigateLocked(ctx, dashboardID)
}

func (s *Session) navigateLocked(ctx context.Context, dashboardID string) NavigateResult {
	result := s.store.Navigate(ctx, dashboardID)
	s.afterNavigate(ctx, result)
	return result
}

func (s *Session) afterNavigate(ctx context.Context, result NavigateResult) {
	s.grid.Load(result.To, result.Widgets)
	if !result.Switched {
		return
	}
	s.publish(ctx, Event{Type: EventDashboardSwitched, DashboardID: result.To, Widgets: cloneWidgets(result.Widgets)})
	s.record(ctx, "canvas.dashboard.navigate", map[string]any{"from": result.From, "to": result.To})
	if result.Template != nil {
		s.templateApplied(ctx, *result.Template, result.Widgets)
	}
}

// SetEditMode toggles drag and resize affordances.
func (s *Session) SetEditMode(ctx context.Context, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grid.SetEditMode(enabled)
	s.record(ctx, "canvas.edit_mode", map[string]any{"enabled": enabled, "dashboard_id": s.grid.DashboardID()})
}

// EditMode reports whether edit mode is on.
func (s *Session) EditMode() bool {
	return s.grid.EditMode()
}

// BeginResize starts a resize gesture.
func (s *Session) BeginResize(widgetID string, handle Handle, start Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.BeginResize(widgetID, handle, start)
}

// PointerMove feeds a pointer position to the active resize.
func (s *Session) PointerMove(p Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.PointerMove(p)
}

// EndResize commits the active resize.
func (s *Session) EndResize(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.EndResize(ctx)
}

// Resize runs a whole gesture: begin at start, apply moves in order, end.
func (s *Session) Resize(ctx context.Context, widgetID string, handle Handle, start Point, moves []Point) (Widget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.grid.BeginResize(widgetID, handle, start) {
		return Widget{}, false
	}
	for _, p := range moves {
		s.grid.PointerMove(p)
	}
	if !s.grid.EndResize(ctx) {
		return Widget{}, false
	}
	widgets := s.grid.Widgets()
	idx := indexOf(widgets, widgetID)
	if idx < 0 {
		return Widget{}, false
	}
	s.record(ctx, "canvas.widget.resize", map[string]any{
		"dashboard_id": s.grid.DashboardID(),
		"widget_id":    widgetID,
		"handle":       string(handle),
		"col_span":     widgets[idx].ColSpan,
		"row_span":     widgets[idx].RowSpan,
	})
	return widgets[idx], true
}

// Reorder moves a widget within the active sequence.
func (s *Session) Reorder(ctx context.Context, from, to int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.grid.Reorder(ctx, from, to)
	if ok {
		s.record(ctx, "canvas.widget.reorder", map[string]any{"dashboard_id": s.grid.DashboardID(), "from": from, "to": to})
	}
	return ok
}

// Delete removes a widget from the active dashboard.
func (s *Session) Delete(ctx context.Context, widgetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.store.Active())
	s.grid.RequestDelete(ctx, widgetID)
	return len(s.store.Active()) < before
}

// Duplicate copies a widget to the end of the active dashboard.
func (s *Session) Duplicate(ctx context.Context, widgetID string) (Widget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.store.Active())
	s.grid.RequestDuplicate(ctx, widgetID)
	widgets := s.store.Active()
	if len(widgets) <= before {
		return Widget{}, false
	}
	return widgets[len(widgets)-1], true
}

// Replace swaps a widget of the active dashboard, keeping its id.
func (s *Session) Replace(ctx context.Context, widgetID string, updated Widget) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	dashboardID := s.store.ActiveID()
	if !s.store.ReplaceIn(ctx, dashboardID, widgetID, updated) {
		return false
	}
	s.widgetReplaced(ctx, dashboardID, widgetID)
	return true
}

// SelectWidget activates a widget, or focuses it in edit mode.
func (s *Session) SelectWidget(ctx context.Context, widgetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.SelectWidget(ctx, widgetID)
}

// RequestEdit asks listeners to open an editor for the widget.
func (s *Session) RequestEdit(ctx context.Context, widgetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.RequestEdit(ctx, widgetID)
}

// ToggleOverlay opens or closes a widget popover.
func (s *Session) ToggleOverlay(kind OverlayKind, widgetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.ToggleOverlay(kind, widgetID)
}

// DismissOverlays closes every popover.
func (s *Session) DismissOverlays() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grid.DismissOverlays()
}

// SetDateRange associates a date range with a widget and closes the picker.
func (s *Session) SetDateRange(ctx context.Context, widgetID string, r DateRange) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.End.Before(r.Start) {
		r.Start, r.End = r.End, r.Start
	}
	if !s.store.SetDateRange(widgetID, r) {
		return false
	}
	s.grid.DismissOverlays()
	s.record(ctx, "canvas.widget.date_range", map[string]any{"widget_id": widgetID})
	return true
}

// DateRange returns the range associated with a widget.
func (s *Session) DateRange(widgetID string) (DateRange, bool) {
	return s.store.DateRange(widgetID)
}

// GenerateChart schedules a chart for the active dashboard. The dashboard id
// is captured now; if that dashboard is gone when the generation lands, the
// chart is dropped.
func (s *Session) GenerateChart(ctx context.Context, title, prompt string) (func() bool, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrPromptRequired
	}
	dashboardID := s.store.ActiveID()
	s.record(ctx, "canvas.generation.submit", map[string]any{"dashboard_id": dashboardID, "kind": string(KindChart)})
	return s.scheduler.Submit(ctx, func(taskCtx context.Context) {
		seed, err := s.opts.Generator.Chart(taskCtx, title, prompt)
		if err != nil {
			s.opts.Logger.Warn("chart generation failed", "dashboard_id", dashboardID, "error", err)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		widget, ok := s.store.Append(taskCtx, dashboardID, seed.Instantiate(""))
		if !ok {
			s.opts.Logger.Debug("generated chart dropped", "dashboard_id", dashboardID)
			return
		}
		s.syncGridLocked(dashboardID)
		s.publish(taskCtx, Event{Type: EventWidgetAppended, DashboardID: dashboardID, WidgetID: widget.ID, Widget: &widget})
		s.record(taskCtx, "canvas.generation.chart", map[string]any{"dashboard_id": dashboardID, "widget_id": widget.ID})
	})
}

// ReviseWidget schedules an edit of widgetID driven by prompt. The revision
// replaces the widget in the dashboard that was active at submission.
func (s *Session) ReviseWidget(ctx context.Context, widgetID, prompt string) (func() bool, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrPromptRequired
	}
	dashboardID := s.store.ActiveID()
	widgets, _ := s.store.Widgets(dashboardID)
	idx := indexOf(widgets, widgetID)
	if idx < 0 {
		return nil, ErrWidgetNotFound
	}
	snapshot := widgets[idx]
	s.record(ctx, "canvas.generation.submit", map[string]any{"dashboard_id": dashboardID, "widget_id": widgetID, "kind": string(snapshot.Kind())})
	return s.scheduler.Submit(ctx, func(taskCtx context.Context) {
		revised, err := s.opts.Generator.Revise(taskCtx, snapshot, prompt)
		if err != nil {
			s.opts.Logger.Warn("widget revision failed", "dashboard_id", dashboardID, "widget_id", widgetID, "error", err)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.store.ReplaceIn(taskCtx, dashboardID, widgetID, revised) {
			s.opts.Logger.Debug("widget revision dropped", "dashboard_id", dashboardID, "widget_id", widgetID)
			return
		}
		s.syncGridLocked(dashboardID)
		s.widgetReplaced(taskCtx, dashboardID, widgetID)
	})
}

// CreateDashboardRequest describes a dashboard created from the side navigation.
type CreateDashboardRequest struct {
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	TemplateID  string `json:"template_id"`
	IsDefault   bool   `json:"is_default"`
}

// CreateDashboard registers a dashboard and navigates to it. A template's
// widgets travel through the template source before navigation, so they are
// parked in the pending slot and applied on arrival.
func (s *Session) CreateDashboard(ctx context.Context, req CreateDashboardRequest) (Dashboard, error) {
	var tpl *Template
	if req.TemplateID != "" {
		found, ok := s.opts.Catalog.Template(req.TemplateID)
		if !ok {
			return Dashboard{}, ErrTemplateNotFound
		}
		tpl = &found
	}
	input := CreateDashboardInput{
		Name:        strings.TrimSpace(req.Name),
		Icon:        req.Icon,
		Description: req.Description,
		IsDefault:   req.IsDefault,
	}
	if tpl != nil {
		if input.Name == "" {
			input.Name = tpl.Name
		}
		if input.Icon == "" {
			input.Icon = tpl.Icon
		}
		if input.Description == "" {
			input.Description = tpl.Description
		}
	}
	if input.Name == "" {
		input.Name = "Untitled dashboard"
	}
	created := s.store.CreateDashboard(ctx, input)
	if tpl != nil && len(tpl.Widgets) > 0 {
		s.opts.Templates.Publish(ctx, created.ID, tpl.ID, tpl.Widgets)
	}
	s.record(ctx, "canvas.dashboard.create", map[string]any{"dashboard_id": created.ID, "template_id": req.TemplateID})
	s.Navigate(ctx, created.ID)
	d, _ := s.store.Dashboard(created.ID)
	return d, nil
}

// ApplyTemplate sends a catalog template to dashboardID (the active dashboard
// when empty). It lands immediately when that dashboard is active.
func (s *Session) ApplyTemplate(ctx context.Context, dashboardID, templateID string) (TemplateDelivery, error) {
	tpl, ok := s.opts.Catalog.Template(templateID)
	if !ok {
		return TemplateDelivery{}, ErrTemplateNotFound
	}
	if dashboardID == "" {
		dashboardID = s.store.ActiveID()
	}
	return s.opts.Templates.Publish(ctx, dashboardID, tpl.ID, tpl.Widgets), nil
}

// RenameDashboard updates a dashboard's name and icon.
func (s *Session) RenameDashboard(ctx context.Context, dashboardID, name, icon string) bool {
	ok := s.store.RenameDashboard(ctx, dashboardID, name, icon)
	if ok {
		s.record(ctx, "canvas.dashboard.rename", map[string]any{"dashboard_id": dashboardID})
	}
	return ok
}

// DuplicateDashboard copies a dashboard without switching to it.
func (s *Session) DuplicateDashboard(ctx context.Context, dashboardID string) (Dashboard, bool) {
	d, ok := s.store.DuplicateDashboard(ctx, dashboardID)
	if ok {
		s.record(ctx, "canvas.dashboard.duplicate", map[string]any{"dashboard_id": dashboardID, "copy_id": d.ID})
	}
	return d, ok
}

// DeleteDashboard removes a dashboard, moving away from it when it is active.
func (s *Session) DeleteDashboard(ctx context.Context, dashboardID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	result, ok := s.store.DeleteDashboard(ctx, dashboardID)
	if !ok {
		return false
	}
	s.record(ctx, "canvas.dashboard.delete", map[string]any{"dashboard_id": dashboardID})
	if result.Switched {
		s.afterNavigate(ctx, result)
	}
	return true
}

// Dashboard returns one dashboard.
func (s *Session) Dashboard(dashboardID string) (Dashboard, bool) {
	return s.store.Dashboard(dashboardID)
}

// Dashboards lists dashboards in creation order.
func (s *Session) Dashboards() []Dashboard {
	return s.store.Dashboards()
}

// LayoutSnapshot is what a renderer needs to draw the active canvas.
type LayoutSnapshot struct {
	DashboardID string      `json:"dashboard_id"`
	Dashboard   *Dashboard  `json:"dashboard,omitempty"`
	EditMode    bool        `json:"edit_mode"`
	Widgets     []Widget    `json:"widgets"`
	Placements  []Placement `json:"placements"`
	Resizing    string      `json:"resizing,omitempty"`
	Focused     string      `json:"focused,omitempty"`
	Overlay     *Overlay    `json:"overlay,omitempty"`
}

// Layout snapshots the grid, including spans of an uncommitted resize.
func (s *Session) Layout() LayoutSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := LayoutSnapshot{
		DashboardID: s.grid.DashboardID(),
		EditMode:    s.grid.EditMode(),
		Widgets:     s.grid.Widgets(),
		Placements:  s.grid.Layout(),
		Focused:     s.grid.Focused(),
	}
	if d, ok := s.store.Dashboard(snapshot.DashboardID); ok {
		snapshot.Dashboard = &d
	}
	if id, ok := s.grid.Resizing(); ok {
		snapshot.Resizing = id
	}
	if overlay, ok := s.grid.Overlay(); ok {
		snapshot.Overlay = &overlay
	}
	return snapshot
}

// handleGridEvent runs synchronously inside grid calls made with s.mu held.
func (s *Session) handleGridEvent(ctx context.Context, event Event) error {
	switch event.Type {
	case EventItemsChanged:
		if !s.store.Commit(ctx, event.DashboardID, event.Widgets) {
			s.opts.Logger.Debug("stale commit dropped", "dashboard_id", event.DashboardID)
			return nil
		}
	case EventItemDeleted:
		if !s.store.Delete(ctx, event.WidgetID) {
			return nil
		}
		s.syncGridLocked(event.DashboardID)
		s.record(ctx, "canvas.widget.delete", map[string]any{"dashboard_id": event.DashboardID, "widget_id": event.WidgetID})
	case EventItemDuplicated:
		clone, ok := s.store.Duplicate(ctx, event.WidgetID)
		if !ok {
			return nil
		}
		s.syncGridLocked(event.DashboardID)
		event.Widget = &clone
		s.record(ctx, "canvas.widget.duplicate", map[string]any{"dashboard_id": event.DashboardID, "widget_id": event.WidgetID, "copy_id": clone.ID})
	}
	s.publish(ctx, event)
	return nil
}

func (s *Session) handleDelivery(ctx context.Context, delivery TemplateDelivery) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.store.DeliverTemplate(ctx, delivery) {
		return
	}
	widgets := s.store.Active()
	s.grid.Load(delivery.DashboardID, widgets)
	s.templateApplied(ctx, delivery, widgets)
}

func (s *Session) templateApplied(ctx context.Context, delivery TemplateDelivery, widgets []Widget) {
	s.publish(ctx, Event{Type: EventTemplateApplied, DashboardID: delivery.DashboardID, Widgets: cloneWidgets(widgets)})
	s.record(ctx, "canvas.template.apply", map[string]any{
		"dashboard_id": delivery.DashboardID,
		"template_id":  delivery.TemplateID,
		"seq":          delivery.Seq,
		"widgets":      len(widgets),
	})
}

func (s *Session) widgetReplaced(ctx context.Context, dashboardID, widgetID string) {
	s.syncGridLocked(dashboardID)
	widgets, _ := s.store.Widgets(dashboardID)
	event := Event{Type: EventWidgetReplaced, DashboardID: dashboardID, WidgetID: widgetID}
	if idx := indexOf(widgets, widgetID); idx >= 0 {
		event.Widget = &widgets[idx]
	}
	s.publish(ctx, event)
	s.record(ctx, "canvas.widget.replace", map[string]any{"dashboard_id": dashboardID, "widget_id": widgetID})
}

// syncGridLocked reloads the grid when dashboardID is the one on screen.
func (s *Session) syncGridLocked(dashboardID string) {
	if dashboardID != s.store.ActiveID() {
		return
	}
	s.grid.Load(dashboardID, s.store.Active())
}

func (s *Session) publish(ctx context.Context, event Event) {
	if err := s.opts.Hook.CanvasEvent(ctx, event); err != nil {
		s.opts.Logger.Warn("canvas hook failed", "event", string(event.Type), "dashboard_id", event.DashboardID, "error", err)
	}
}

func (s *Session) record(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}
