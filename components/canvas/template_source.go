package canvas

import (
	"context"
	"sync"
)

// TemplateDelivery carries seeds destined for one dashboard. Seq identifies the
// delivery so replays can be recognized; zero means "unsequenced".
type TemplateDelivery struct {
	Seq         uint64       `json:"seq"`
	DashboardID string       `json:"dashboard_id"`
	TemplateID  string       `json:"template_id,omitempty"`
	Seeds       []WidgetSeed `json:"widgets"`
}

// TemplateAcknowledger clears a delivered template so it cannot be replayed.
type TemplateAcknowledger interface {
	Acknowledge(ctx context.Context, seq uint64)
}

// TemplateSource holds the latest template delivery and replays it to every
// new subscriber until it is acknowledged.
type TemplateSource struct {
	mu      sync.Mutex
	seq     uint64
	current *TemplateDelivery
	subs    map[int]func(context.Context, TemplateDelivery)
	nextSub int
}

// NewTemplateSource builds an empty source.
func NewTemplateSource() *TemplateSource {
	return &TemplateSource{subs: map[int]func(context.Context, TemplateDelivery){}}
}

// Publish replaces the current delivery and pushes it to subscribers.
func (s *TemplateSource) Publish(ctx context.Context, dashboardID, templateID string, seeds []WidgetSeed) TemplateDelivery {
	s.mu.Lock()
	s.seq++
	delivery := TemplateDelivery{
		Seq:         s.seq,
		DashboardID: dashboardID,
		TemplateID:  templateID,
		Seeds:       append([]WidgetSeed(nil), seeds...),
	}
	s.current = &delivery
	subs := s.subscribers()
	s.mu.Unlock()
	for _, fn := range subs {
		fn(ctx, delivery)
	}
	return delivery
}

// Current returns the unacknowledged delivery, if any.
func (s *TemplateSource) Current() (TemplateDelivery, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return TemplateDelivery{}, false
	}
	return *s.current, true
}

// Subscribe registers fn and immediately replays the current delivery to it.
func (s *TemplateSource) Subscribe(ctx context.Context, fn func(context.Context, TemplateDelivery)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	var replay *TemplateDelivery
	if s.current != nil {
		d := *s.current
		replay = &d
	}
	s.mu.Unlock()
	if replay != nil {
		fn(ctx, *replay)
	}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Acknowledge clears the current delivery when seq matches it. Acknowledging
// an older delivery leaves a newer one in place.
func (s *TemplateSource) Acknowledge(_ context.Context, seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.Seq == seq {
		s.current = nil
	}
}

func (s *TemplateSource) subscribers() []func(context.Context, TemplateDelivery) {
	out := make([]func(context.Context, TemplateDelivery), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}
