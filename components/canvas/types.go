package canvas

import (
	"context"
	"time"
)

const (
	// GridColumns is the fixed column count of every canvas.
	GridColumns = 12
	// MaxRowSpan bounds how many rows a single widget may cover.
	MaxRowSpan = 6
	// DefaultDashboardID is used when navigation does not name a dashboard.
	DefaultDashboardID = "1"
)

// WidgetKind discriminates the payload carried by a widget.
type WidgetKind string

const (
	KindSummary WidgetKind = "summary"
	KindCount   WidgetKind = "count"
	KindChart   WidgetKind = "chart"
)

// Valid reports whether the kind is one of the closed set.
func (k WidgetKind) Valid() bool {
	switch k {
	case KindSummary, KindCount, KindChart:
		return true
	}
	return false
}

// Payload is the kind-specific body of a widget. Only the types in this
// package implement it.
type Payload interface {
	Kind() WidgetKind
	clonePayload() Payload
}

// SummaryPayload holds free text content.
type SummaryPayload struct {
	Content string
}

func (SummaryPayload) Kind() WidgetKind        { return KindSummary }
func (p SummaryPayload) clonePayload() Payload { return p }

// CountPayload holds a single number with its unit label.
type CountPayload struct {
	Value float64
	Label string
}

func (CountPayload) Kind() WidgetKind        { return KindCount }
func (p CountPayload) clonePayload() Payload { return p }

// ChartPayload holds the generation prompt and whatever data was produced for it.
type ChartPayload struct {
	Prompt string
	Data   *ChartData
}

func (ChartPayload) Kind() WidgetKind { return KindChart }

func (p ChartPayload) clonePayload() Payload {
	p.Data = p.Data.clone()
	return p
}

// ChartData is a label/dataset table.
type ChartData struct {
	Labels   []string  `json:"labels" yaml:"labels"`
	Datasets []Dataset `json:"datasets" yaml:"datasets"`
}

// Dataset is one named series inside ChartData.
type Dataset struct {
	Label string    `json:"label" yaml:"label"`
	Data  []float64 `json:"data" yaml:"data"`
}

func (d *ChartData) clone() *ChartData {
	if d == nil {
		return nil
	}
	out := &ChartData{Labels: append([]string(nil), d.Labels...)}
	if d.Datasets != nil {
		out.Datasets = make([]Dataset, len(d.Datasets))
		for i, ds := range d.Datasets {
			out.Datasets[i] = Dataset{Label: ds.Label, Data: append([]float64(nil), ds.Data...)}
		}
	}
	return out
}

// Widget is a unit placed on a dashboard canvas.
type Widget struct {
	ID      string
	Title   string
	ColSpan int
	RowSpan int
	Payload Payload
}

// Kind returns the payload discriminant, defaulting to summary for an empty payload.
func (w Widget) Kind() WidgetKind {
	if w.Payload == nil {
		return KindSummary
	}
	return w.Payload.Kind()
}

// Clone returns a deep copy of the widget.
func (w Widget) Clone() Widget {
	if w.Payload != nil {
		w.Payload = w.Payload.clonePayload()
	}
	return w
}

// WidgetSeed is a widget that has not been assigned an id yet.
type WidgetSeed struct {
	Title   string
	ColSpan int
	RowSpan int
	Payload Payload
}

// Instantiate turns the seed into a widget with the given id and clamped spans.
func (s WidgetSeed) Instantiate(id string) Widget {
	w := Widget{
		ID:      id,
		Title:   s.Title,
		ColSpan: clampCols(s.ColSpan),
		RowSpan: clampRows(s.RowSpan),
		Payload: s.Payload,
	}
	return w.Clone()
}

// Dashboard is a named widget collection.
type Dashboard struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Icon        string    `json:"icon,omitempty"`
	Description string    `json:"description,omitempty"`
	Widgets     []Widget  `json:"widgets"`
	IsDefault   bool      `json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Template is an immutable catalog entry used to seed dashboards.
type Template struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        string       `json:"icon,omitempty" yaml:"icon,omitempty"`
	Category    string       `json:"category,omitempty" yaml:"category,omitempty"`
	Widgets     []WidgetSeed `json:"widgets" yaml:"widgets"`
}

// DateRange is an inclusive time window associated with a widget.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Point is a pointer position in canvas pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Hook receives every outbound canvas event.
type Hook interface {
	CanvasEvent(ctx context.Context, event Event) error
}

// HookFunc adapts a function into a Hook.
type HookFunc func(ctx context.Context, event Event) error

// CanvasEvent calls f.
func (f HookFunc) CanvasEvent(ctx context.Context, event Event) error {
	return f(ctx, event)
}

type noopHook struct{}

func (noopHook) CanvasEvent(context.Context, Event) error { return nil }

func cloneWidgets(widgets []Widget) []Widget {
	if widgets == nil {
		return nil
	}
	out := make([]Widget, len(widgets))
	for i, w := range widgets {
		out[i] = w.Clone()
	}
	return out
}

func clampCols(v int) int {
	return clamp(v, 1, GridColumns)
}

func clampRows(v int) int {
	return clamp(v, 1, MaxRowSpan)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
