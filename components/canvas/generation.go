package canvas

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultGenerationDelay is how long a generation takes before it lands.
	DefaultGenerationDelay = 2 * time.Second
	// GeneratedChartColSpan and GeneratedChartRowSpan size freshly generated charts.
	GeneratedChartColSpan = 6
	GeneratedChartRowSpan = 3

	editedSuffix = " (Edited)"
)

// ErrSchedulerClosed is returned when work is submitted after Close.
var ErrSchedulerClosed = errors.New("canvas: generation scheduler closed")

// Generator produces widget content from natural language prompts.
type Generator interface {
	Chart(ctx context.Context, title, prompt string) (WidgetSeed, error)
	Revise(ctx context.Context, widget Widget, prompt string) (Widget, error)
}

// PlaceholderGenerator fabricates deterministic chart data from the prompt
// text. The same prompt always yields the same dataset.
type PlaceholderGenerator struct {
	Points int
}

// Chart builds a chart seed sized for a new widget.
func (g PlaceholderGenerator) Chart(_ context.Context, title, prompt string) (WidgetSeed, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return WidgetSeed{}, errors.New("canvas: chart prompt is required")
	}
	if strings.TrimSpace(title) == "" {
		title = promptTitle(prompt)
	}
	return WidgetSeed{
		Title:   title,
		ColSpan: GeneratedChartColSpan,
		RowSpan: GeneratedChartRowSpan,
		Payload: ChartPayload{Prompt: prompt, Data: g.dataset(prompt)},
	}, nil
}

// Revise retitles the widget as edited and attaches the new prompt. Chart
// data is regenerated for chart widgets; other kinds keep their payload.
func (g PlaceholderGenerator) Revise(_ context.Context, widget Widget, prompt string) (Widget, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Widget{}, errors.New("canvas: revision prompt is required")
	}
	out := widget.Clone()
	out.Title = widget.Title + editedSuffix
	if out.Kind() == KindChart {
		out.Payload = ChartPayload{Prompt: prompt, Data: g.dataset(prompt)}
	}
	return out, nil
}

func (g PlaceholderGenerator) dataset(prompt string) *ChartData {
	points := g.Points
	if points <= 0 {
		points = 6
	}
	h := fnv.New64a()
	h.Write([]byte(prompt))
	sum := h.Sum64()
	data := &ChartData{
		Labels:   make([]string, points),
		Datasets: []Dataset{{Label: promptTitle(prompt), Data: make([]float64, points)}},
	}
	for i := 0; i < points; i++ {
		data.Labels[i] = fmt.Sprintf("P%d", i+1)
		// xorshift keeps consecutive points from repeating
		sum ^= sum << 13
		sum ^= sum >> 7
		sum ^= sum << 17
		data.Datasets[0].Data[i] = float64(sum%900 + 100)
	}
	return data
}

func promptTitle(prompt string) string {
	const limit = 40
	runes := []rune(prompt)
	if len(runes) <= limit {
		return prompt
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}

// Scheduler runs deferred generation tasks after a fixed delay. Tasks run on
// timer goroutines and never see the submitting request's cancellation.
type Scheduler struct {
	delay  time.Duration
	mu     sync.Mutex
	wg     sync.WaitGroup
	next   uint64
	timers map[uint64]*time.Timer
	closed bool
}

// NewScheduler builds a scheduler. A negative delay is treated as zero.
func NewScheduler(delay time.Duration) *Scheduler {
	if delay < 0 {
		delay = 0
	}
	return &Scheduler{delay: delay, timers: map[uint64]*time.Timer{}}
}

// Delay returns the fixed delay applied to every task.
func (s *Scheduler) Delay() time.Duration {
	return s.delay
}

// Submit schedules fn. The returned cancel reports whether it stopped the
// task before it started.
func (s *Scheduler) Submit(ctx context.Context, fn func(context.Context)) (func() bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSchedulerClosed
	}
	id := s.next
	s.next++
	taskCtx := context.WithoutCancel(ctx)
	s.wg.Add(1)
	s.timers[id] = time.AfterFunc(s.delay, func() {
		defer s.wg.Done()
		if !s.claim(id) {
			return
		}
		fn(taskCtx)
	})
	return func() bool { return s.cancel(id) }, nil
}

// Pending reports how many tasks have not started yet.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Wait blocks until every submitted task has finished or been cancelled.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Close cancels pending tasks and rejects new ones. Running tasks finish.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	ids := make([]uint64, 0, len(s.timers))
	for id := range s.timers {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	for _, id := range ids {
		s.cancel(id)
	}
}

func (s *Scheduler) claim(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.timers[id]; !ok {
		return false
	}
	delete(s.timers, id)
	return true
}

func (s *Scheduler) cancel(id uint64) bool {
	s.mu.Lock()
	timer, ok := s.timers[id]
	if ok {
		delete(s.timers, id)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	if timer.Stop() {
		s.wg.Done()
	}
	return true
}
