package canvas

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// widgetWire is the flat shape used on the wire and in catalogs. Kind-specific
// fields are only populated for their kind.
type widgetWire struct {
	ID      string     `json:"id,omitempty" yaml:"id,omitempty"`
	Kind    WidgetKind `json:"kind" yaml:"kind"`
	Title   string     `json:"title" yaml:"title"`
	ColSpan int        `json:"colSpan" yaml:"colSpan"`
	RowSpan int        `json:"rowSpan" yaml:"rowSpan"`
	Content string     `json:"content,omitempty" yaml:"content,omitempty"`
	Value   *float64   `json:"value,omitempty" yaml:"value,omitempty"`
	Label   string     `json:"label,omitempty" yaml:"label,omitempty"`
	Prompt  string     `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Data    *ChartData `json:"data,omitempty" yaml:"data,omitempty"`
}

func toWire(id, title string, colSpan, rowSpan int, payload Payload) widgetWire {
	wire := widgetWire{
		ID:      id,
		Kind:    KindSummary,
		Title:   title,
		ColSpan: colSpan,
		RowSpan: rowSpan,
	}
	switch p := payload.(type) {
	case SummaryPayload:
		wire.Content = p.Content
	case CountPayload:
		wire.Kind = KindCount
		value := p.Value
		wire.Value = &value
		wire.Label = p.Label
	case ChartPayload:
		wire.Kind = KindChart
		wire.Prompt = p.Prompt
		wire.Data = p.Data.clone()
	}
	return wire
}

func (w widgetWire) payload() (Payload, error) {
	switch w.Kind {
	case KindSummary, "":
		return SummaryPayload{Content: w.Content}, nil
	case KindCount:
		p := CountPayload{Label: w.Label}
		if w.Value != nil {
			p.Value = *w.Value
		}
		return p, nil
	case KindChart:
		return ChartPayload{Prompt: w.Prompt, Data: w.Data.clone()}, nil
	default:
		return nil, fmt.Errorf("canvas: unknown widget kind %q", w.Kind)
	}
}

func (w widgetWire) seed() (WidgetSeed, error) {
	payload, err := w.payload()
	if err != nil {
		return WidgetSeed{}, err
	}
	return WidgetSeed{Title: w.Title, ColSpan: w.ColSpan, RowSpan: w.RowSpan, Payload: payload}, nil
}

// MarshalJSON encodes the widget in its flat wire shape.
func (w Widget) MarshalJSON() ([]byte, error) {
	return json.Marshal(toWire(w.ID, w.Title, w.ColSpan, w.RowSpan, w.Payload))
}

// UnmarshalJSON decodes the flat wire shape.
func (w *Widget) UnmarshalJSON(data []byte) error {
	var wire widgetWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	seed, err := wire.seed()
	if err != nil {
		return err
	}
	*w = Widget{ID: wire.ID, Title: seed.Title, ColSpan: seed.ColSpan, RowSpan: seed.RowSpan, Payload: seed.Payload}
	return nil
}

// MarshalJSON encodes the seed in its flat wire shape.
func (s WidgetSeed) MarshalJSON() ([]byte, error) {
	return json.Marshal(toWire("", s.Title, s.ColSpan, s.RowSpan, s.Payload))
}

// UnmarshalJSON decodes the flat wire shape.
func (s *WidgetSeed) UnmarshalJSON(data []byte) error {
	var wire widgetWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	seed, err := wire.seed()
	if err != nil {
		return err
	}
	*s = seed
	return nil
}

// MarshalYAML encodes the seed in its flat wire shape.
func (s WidgetSeed) MarshalYAML() (any, error) {
	return toWire("", s.Title, s.ColSpan, s.RowSpan, s.Payload), nil
}

// UnmarshalYAML decodes the flat wire shape.
func (s *WidgetSeed) UnmarshalYAML(value *yaml.Node) error {
	var wire widgetWire
	if err := value.Decode(&wire); err != nil {
		return err
	}
	seed, err := wire.seed()
	if err != nil {
		return err
	}
	*s = seed
	return nil
}

// seedDocument renders the seed as a generic map for schema validation.
func seedDocument(s WidgetSeed) (map[string]any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
