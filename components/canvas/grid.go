package canvas

import (
	"context"
	"log/slog"
	"math"
	"sync"
)

const (
	// DefaultColumnUnit is the pointer distance, in pixels, of one column step.
	DefaultColumnUnit = 100.0
	// DefaultRowUnit is the pointer distance, in pixels, of one row step.
	DefaultRowUnit = 100.0
)

// GridOptions configures a Grid.
type GridOptions struct {
	ColumnUnit float64
	RowUnit    float64
	Hook       Hook
	Logger     *slog.Logger
}

func (o *GridOptions) normalize() {
	if o.ColumnUnit <= 0 {
		o.ColumnUnit = DefaultColumnUnit
	}
	if o.RowUnit <= 0 {
		o.RowUnit = DefaultRowUnit
	}
	if o.Hook == nil {
		o.Hook = noopHook{}
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
}

// OverlayKind names a per-widget popover.
type OverlayKind string

const (
	OverlayMenu       OverlayKind = "menu"
	OverlayDatePicker OverlayKind = "date_picker"
)

// Overlay is the single popover currently open on the canvas.
type Overlay struct {
	Kind     OverlayKind `json:"kind"`
	WidgetID string      `json:"widget_id"`
}

type resizeState struct {
	widgetID  string
	handle    Handle
	start     Point
	startCols int
	startRows int
}

// Grid tracks placement of one dashboard's widget sequence and interprets
// resize and reorder gestures. Mutations during a resize stay local until
// EndResize commits them through the hook.
type Grid struct {
	mu          sync.Mutex
	opts        GridOptions
	dashboardID string
	widgets     []Widget
	editMode    bool
	resize      *resizeState
	focused     string
	overlay     *Overlay
}

// NewGrid builds a grid with safe defaults.
func NewGrid(opts GridOptions) *Grid {
	opts.normalize()
	return &Grid{opts: opts}
}

// Load replaces the rendered sequence. A resize in flight survives only if its
// target is still part of the new sequence.
func (g *Grid) Load(dashboardID string, widgets []Widget) {
	g.mu.Lock()
	defer g.mu.Unlock()
	switched := dashboardID != g.dashboardID
	g.dashboardID = dashboardID
	g.widgets = cloneWidgets(widgets)
	if g.widgets == nil {
		g.widgets = []Widget{}
	}
	if switched {
		g.resize = nil
		g.focused = ""
		g.overlay = nil
		return
	}
	if g.resize != nil && g.indexOf(g.resize.widgetID) < 0 {
		g.resize = nil
	}
	if g.focused != "" && g.indexOf(g.focused) < 0 {
		g.focused = ""
	}
	if g.overlay != nil && g.indexOf(g.overlay.WidgetID) < 0 {
		g.overlay = nil
	}
}

// DashboardID returns the dashboard currently rendered.
func (g *Grid) DashboardID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dashboardID
}

// Widgets returns a copy of the rendered sequence, including uncommitted spans.
func (g *Grid) Widgets() []Widget {
	g.mu.Lock()
	defer g.mu.Unlock()
	return cloneWidgets(g.widgets)
}

// EditMode reports whether drag/resize affordances are enabled.
func (g *Grid) EditMode() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.editMode
}

// SetEditMode toggles edit mode. Leaving edit mode discards an active resize
// and restores the spans it had at BeginResize, without emitting a commit.
func (g *Grid) SetEditMode(enabled bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.editMode = enabled
	if enabled {
		return
	}
	g.discardResize()
	g.focused = ""
}

// BeginResize starts a resize gesture on widgetID. It is dropped outside edit
// mode, for unknown widgets and for unknown handles.
func (g *Grid) BeginResize(widgetID string, handle Handle, start Point) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.editMode || !handle.Valid() {
		return false
	}
	idx := g.indexOf(widgetID)
	if idx < 0 {
		return false
	}
	g.discardResize()
	w := g.widgets[idx]
	g.resize = &resizeState{
		widgetID:  widgetID,
		handle:    handle,
		start:     start,
		startCols: w.ColSpan,
		startRows: w.RowSpan,
	}
	g.focused = widgetID
	g.opts.Logger.Debug("resize started", "dashboard_id", g.dashboardID, "widget_id", widgetID, "handle", string(handle))
	return true
}

// PointerMove applies the live pointer position to the active resize target.
// Spans are recomputed from the starting spans every time, so replaying the
// same pointer path always lands on the same spans.
func (g *Grid) PointerMove(p Point) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.resize == nil || !g.editMode {
		return false
	}
	idx := g.indexOf(g.resize.widgetID)
	if idx < 0 {
		g.resize = nil
		return false
	}
	cols, rows := g.spansFor(*g.resize, p)
	g.widgets[idx].ColSpan = cols
	g.widgets[idx].RowSpan = rows
	return true
}

// EndResize finishes the gesture and emits the full sequence. A gesture with no
// net movement still commits.
func (g *Grid) EndResize(ctx context.Context) bool {
	g.mu.Lock()
	if g.resize == nil {
		g.mu.Unlock()
		return false
	}
	g.resize = nil
	event := Event{Type: EventItemsChanged, DashboardID: g.dashboardID, Widgets: cloneWidgets(g.widgets)}
	g.mu.Unlock()
	g.emit(ctx, event)
	return true
}

// Resizing returns the id of the active resize target.
func (g *Grid) Resizing() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.resize == nil {
		return "", false
	}
	return g.resize.widgetID, true
}

// Reorder moves the widget at from to to and emits the new sequence. Dropped
// outside edit mode or when either index is out of range. An active resize is
// discarded first, so its live spans never reach the emitted sequence.
func (g *Grid) Reorder(ctx context.Context, from, to int) bool {
	g.mu.Lock()
	if !g.editMode || from < 0 || to < 0 || from >= len(g.widgets) || to >= len(g.widgets) {
		g.mu.Unlock()
		return false
	}
	g.discardResize()
	g.widgets = moveWidget(g.widgets, from, to)
	event := Event{Type: EventItemsChanged, DashboardID: g.dashboardID, Widgets: cloneWidgets(g.widgets)}
	g.mu.Unlock()
	g.emit(ctx, event)
	return true
}

// RequestDelete forwards a delete intent. The grid does not remove anything.
func (g *Grid) RequestDelete(ctx context.Context, widgetID string) bool {
	return g.forward(ctx, EventItemDeleted, widgetID)
}

// RequestDuplicate forwards a duplicate intent. The grid does not copy anything.
func (g *Grid) RequestDuplicate(ctx context.Context, widgetID string) bool {
	return g.forward(ctx, EventItemDuplicated, widgetID)
}

// RequestEdit asks collaborators to open an editor for the widget.
func (g *Grid) RequestEdit(ctx context.Context, widgetID string) bool {
	g.mu.Lock()
	idx := g.indexOf(widgetID)
	if idx < 0 {
		g.mu.Unlock()
		return false
	}
	w := g.widgets[idx].Clone()
	g.overlay = nil
	event := Event{Type: EventEditRequested, DashboardID: g.dashboardID, WidgetID: widgetID, Widget: &w}
	g.mu.Unlock()
	g.emit(ctx, event)
	return true
}

// SelectWidget activates a widget outside edit mode. In edit mode it only
// focuses the widget so its resize affordances show.
func (g *Grid) SelectWidget(ctx context.Context, widgetID string) bool {
	g.mu.Lock()
	idx := g.indexOf(widgetID)
	if idx < 0 {
		g.mu.Unlock()
		return false
	}
	if g.editMode {
		g.focused = widgetID
		g.mu.Unlock()
		return false
	}
	w := g.widgets[idx].Clone()
	event := Event{Type: EventWidgetActivated, DashboardID: g.dashboardID, WidgetID: widgetID, Widget: &w}
	g.mu.Unlock()
	g.emit(ctx, event)
	return true
}

// Focused returns the widget showing resize affordances.
func (g *Grid) Focused() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.focused
}

// OpenOverlay opens a popover for widgetID, closing whichever one was open.
func (g *Grid) OpenOverlay(kind OverlayKind, widgetID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.indexOf(widgetID) < 0 {
		return false
	}
	g.overlay = &Overlay{Kind: kind, WidgetID: widgetID}
	return true
}

// ToggleOverlay opens the popover or closes it when it is already open.
func (g *Grid) ToggleOverlay(kind OverlayKind, widgetID string) bool {
	g.mu.Lock()
	if g.overlay != nil && g.overlay.Kind == kind && g.overlay.WidgetID == widgetID {
		g.overlay = nil
		g.mu.Unlock()
		return false
	}
	g.mu.Unlock()
	return g.OpenOverlay(kind, widgetID)
}

// Overlay returns the open popover, if any.
func (g *Grid) Overlay() (Overlay, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.overlay == nil {
		return Overlay{}, false
	}
	return *g.overlay, true
}

// DismissOverlays closes every popover. Hosts call it for any interaction they
// consider outside the open overlay.
func (g *Grid) DismissOverlays() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.overlay = nil
}

// Layout computes flow placements for the rendered sequence.
func (g *Grid) Layout() []Placement {
	g.mu.Lock()
	defer g.mu.Unlock()
	return FlowLayout(g.widgets)
}

func (g *Grid) forward(ctx context.Context, typ EventType, widgetID string) bool {
	if widgetID == "" {
		return false
	}
	g.mu.Lock()
	g.overlay = nil
	event := Event{Type: typ, DashboardID: g.dashboardID, WidgetID: widgetID}
	g.mu.Unlock()
	g.emit(ctx, event)
	return true
}

func (g *Grid) emit(ctx context.Context, event Event) {
	if err := g.opts.Hook.CanvasEvent(ctx, event); err != nil {
		g.opts.Logger.Warn("canvas hook failed", "event", string(event.Type), "dashboard_id", event.DashboardID, "error", err)
	}
}

func (g *Grid) spansFor(state resizeState, p Point) (int, int) {
	colSign, rowSign := state.handle.axes()
	cols, rows := state.startCols, state.startRows
	if colSign != 0 {
		cols = clampCols(state.startCols + colSign*unitSteps(p.X-state.start.X, g.opts.ColumnUnit))
	}
	if rowSign != 0 {
		rows = clampRows(state.startRows + rowSign*unitSteps(p.Y-state.start.Y, g.opts.RowUnit))
	}
	return cols, rows
}

// discardResize drops the active gesture and restores its starting spans.
func (g *Grid) discardResize() {
	if g.resize == nil {
		return
	}
	if idx := g.indexOf(g.resize.widgetID); idx >= 0 {
		g.widgets[idx].ColSpan = g.resize.startCols
		g.widgets[idx].RowSpan = g.resize.startRows
	}
	g.resize = nil
}

func (g *Grid) indexOf(widgetID string) int {
	return indexOf(g.widgets, widgetID)
}

// unitSteps rounds half up, so -2.5 steps is -2 and 2.5 is 3.
func unitSteps(delta, unit float64) int {
	return int(math.Floor(delta/unit + 0.5))
}

func moveWidget(widgets []Widget, from, to int) []Widget {
	if from == to {
		return widgets
	}
	moved := widgets[from]
	out := make([]Widget, 0, len(widgets))
	out = append(out, widgets[:from]...)
	out = append(out, widgets[from+1:]...)
	out = append(out[:to], append([]Widget{moved}, out[to:]...)...)
	return out
}

// Placement is where a widget lands when the sequence is auto-flowed into the
// grid. Column and Row are zero-based.
type Placement struct {
	WidgetID string `json:"widget_id"`
	Column   int    `json:"column"`
	Row      int    `json:"row"`
	ColSpan  int    `json:"col_span"`
	RowSpan  int    `json:"row_span"`
}

// FlowLayout places widgets in sequence order, row-major, never moving the
// cursor backwards. This matches sparse CSS grid auto-placement.
func FlowLayout(widgets []Widget) []Placement {
	out := make([]Placement, 0, len(widgets))
	occupied := map[[2]int]struct{}{}
	fits := func(row, col, cols, rows int) bool {
		for r := row; r < row+rows; r++ {
			for c := col; c < col+cols; c++ {
				if _, taken := occupied[[2]int{r, c}]; taken {
					return false
				}
			}
		}
		return true
	}
	row, col := 0, 0
	for _, w := range widgets {
		cols, rows := clampCols(w.ColSpan), clampRows(w.RowSpan)
		for {
			if col+cols > GridColumns {
				row++
				col = 0
				continue
			}
			if fits(row, col, cols, rows) {
				break
			}
			col++
		}
		for r := row; r < row+rows; r++ {
			for c := col; c < col+cols; c++ {
				occupied[[2]int{r, c}] = struct{}{}
			}
		}
		out = append(out, Placement{WidgetID: w.ID, Column: col, Row: row, ColSpan: cols, RowSpan: rows})
		col += cols
	}
	return out
}
