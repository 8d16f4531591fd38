package canvas

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// seqIDs mints predictable ids: w1, w2, ... and d1, d2, ...
type seqIDs struct {
	mu         sync.Mutex
	widgets    int
	dashboards int
}

func (s *seqIDs) WidgetID(time.Time, int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.widgets++
	return fmt.Sprintf("w%d", s.widgets)
}

func (s *seqIDs) DashboardID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dashboards++
	return fmt.Sprintf("d%d", s.dashboards)
}

type recordingHook struct {
	mu     sync.Mutex
	events []Event
}

func (h *recordingHook) CanvasEvent(_ context.Context, event Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *recordingHook) snapshot() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Event(nil), h.events...)
}

func (h *recordingHook) ofType(typ EventType) []Event {
	var out []Event
	for _, e := range h.snapshot() {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

type recordingAck struct {
	mu   sync.Mutex
	seqs []uint64
}

func (a *recordingAck) Acknowledge(_ context.Context, seq uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seqs = append(a.seqs, seq)
}

type stubTelemetry struct {
	mu     sync.Mutex
	events []string
}

func (s *stubTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *stubTelemetry) has(event string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if e == event {
			return true
		}
	}
	return false
}

func summaryWidget(id string, cols, rows int) Widget {
	return Widget{ID: id, Title: "Widget " + id, ColSpan: cols, RowSpan: rows, Payload: SummaryPayload{Content: "body"}}
}

func widgetIDs(widgets []Widget) []string {
	out := make([]string, len(widgets))
	for i, w := range widgets {
		out[i] = w.ID
	}
	return out
}
