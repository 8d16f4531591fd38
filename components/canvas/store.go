package canvas

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const copySuffix = " (Copy)"

// StoreOptions configures a Store.
type StoreOptions struct {
	DefaultDashboardID string
	Dashboards         []Dashboard
	IDs                IDGenerator
	Clock              func() time.Time
	Acknowledger       TemplateAcknowledger
	Logger             *slog.Logger
}

func (o *StoreOptions) normalize() {
	if o.DefaultDashboardID == "" {
		o.DefaultDashboardID = DefaultDashboardID
	}
	if o.IDs == nil {
		o.IDs = TimestampIDs{}
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
}

// NavigateResult reports what a navigation did.
type NavigateResult struct {
	From     string
	To       string
	Switched bool
	Widgets  []Widget
	Template *TemplateDelivery
}

// Store owns the dashboard id -> widget sequence mapping for one editing
// session. Every read-modify-write happens under one mutex, so timer callbacks
// and transports can call it concurrently.
type Store struct {
	mu         sync.Mutex
	opts       StoreOptions
	activeID   string
	current    []Widget
	dashboards map[string]*Dashboard
	order      []string
	deleted    map[string]struct{}
	pending    *TemplateDelivery
	applied    map[uint64]struct{}
	ranges     map[string]DateRange
}

// NewStore builds a store sitting idle on the default dashboard. The default
// dashboard is registered even when no dashboards are seeded.
func NewStore(opts StoreOptions) *Store {
	opts.normalize()
	s := &Store{
		opts:       opts,
		activeID:   opts.DefaultDashboardID,
		current:    []Widget{},
		dashboards: map[string]*Dashboard{},
		deleted:    map[string]struct{}{},
		applied:    map[uint64]struct{}{},
		ranges:     map[string]DateRange{},
	}
	for _, d := range opts.Dashboards {
		if d.ID == "" {
			continue
		}
		s.putDashboard(d)
	}
	s.current = cloneWidgets(s.ensureLocked(s.activeID).Widgets)
	return s
}

// ActiveID returns the dashboard currently being edited.
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Active returns a copy of the active widget sequence.
func (s *Store) Active() []Widget {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneWidgets(s.current)
}

// Widgets returns a copy of the stored sequence for dashboardID.
func (s *Store) Widgets(dashboardID string) ([]Widget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dashboardID == s.activeID {
		return cloneWidgets(s.current), true
	}
	d, ok := s.dashboards[dashboardID]
	if !ok {
		return nil, false
	}
	return cloneWidgets(d.Widgets), true
}

// Navigate switches the active dashboard. The outgoing sequence is flushed
// first; a template pending for the target is applied exactly once, otherwise
// the stored sequence is loaded or an empty one is created.
func (s *Store) Navigate(ctx context.Context, toID string) NavigateResult {
	if toID == "" {
		toID = s.opts.DefaultDashboardID
	}
	s.mu.Lock()
	result := s.navigateLocked(toID)
	s.mu.Unlock()
	s.acknowledge(ctx, result.Template)
	return result
}

func (s *Store) navigateLocked(toID string) NavigateResult {
	from := s.activeID
	if toID == from {
		return NavigateResult{From: from, To: toID, Widgets: cloneWidgets(s.current)}
	}
	s.flushLocked()
	s.activeID = toID
	delete(s.deleted, toID)
	result := NavigateResult{From: from, To: toID, Switched: true}
	switch {
	case s.pending != nil && s.pending.DashboardID == toID:
		delivery := *s.pending
		s.pending = nil
		s.applyLocked(delivery)
		result.Template = &delivery
	default:
		if d, ok := s.dashboards[toID]; ok {
			s.current = cloneWidgets(d.Widgets)
		} else {
			s.ensureLocked(toID)
			s.current = []Widget{}
		}
	}
	result.Widgets = cloneWidgets(s.current)
	s.opts.Logger.Debug("dashboard switched", "from", from, "to", toID, "template", result.Template != nil)
	return result
}

// DeliverTemplate accepts an inbound template. It applies immediately when it
// targets the active dashboard and otherwise waits in the single pending slot,
// replacing whatever was pending. Replays of an applied delivery and
// deliveries for deleted dashboards are dropped.
func (s *Store) DeliverTemplate(ctx context.Context, delivery TemplateDelivery) bool {
	s.mu.Lock()
	if delivery.Seq != 0 {
		if _, seen := s.applied[delivery.Seq]; seen {
			s.mu.Unlock()
			return false
		}
	}
	if _, gone := s.deleted[delivery.DashboardID]; gone || delivery.DashboardID == "" {
		s.mu.Unlock()
		s.opts.Logger.Debug("template dropped", "dashboard_id", delivery.DashboardID, "seq", delivery.Seq)
		return false
	}
	if delivery.DashboardID != s.activeID {
		d := delivery
		s.pending = &d
		s.mu.Unlock()
		s.opts.Logger.Debug("template pending", "dashboard_id", delivery.DashboardID, "seq", delivery.Seq)
		return false
	}
	if s.pending != nil && s.pending.DashboardID == delivery.DashboardID {
		s.pending = nil
	}
	s.applyLocked(delivery)
	s.mu.Unlock()
	s.acknowledge(ctx, &delivery)
	return true
}

// Pending returns the delivery waiting for navigation, if any.
func (s *Store) Pending() (TemplateDelivery, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return TemplateDelivery{}, false
	}
	return *s.pending, true
}

// Commit persists a sequence emitted by the grid. Commits for a dashboard that
// is no longer active are dropped.
func (s *Store) Commit(_ context.Context, dashboardID string, widgets []Widget) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dashboardID != s.activeID {
		return false
	}
	next := cloneWidgets(widgets)
	if next == nil {
		next = []Widget{}
	}
	for i := range next {
		next[i].ColSpan = clampCols(next[i].ColSpan)
		next[i].RowSpan = clampRows(next[i].RowSpan)
	}
	s.current = next
	s.persistLocked()
	return true
}

// Delete removes a widget from the active sequence. Absent ids are ignored.
func (s *Store) Delete(_ context.Context, widgetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := indexOf(s.current, widgetID)
	if idx < 0 {
		return false
	}
	s.current = append(s.current[:idx:idx], s.current[idx+1:]...)
	delete(s.ranges, widgetID)
	s.persistLocked()
	return true
}

// Duplicate appends a copy of the widget, with a fresh id and a "(Copy)"
// title, to the end of the active sequence.
func (s *Store) Duplicate(_ context.Context, widgetID string) (Widget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := indexOf(s.current, widgetID)
	if idx < 0 {
		return Widget{}, false
	}
	clone := s.current[idx].Clone()
	clone.ID = newIDBatch(s.opts.IDs, s.opts.Clock(), s.allIDsLocked()).next()
	clone.Title += copySuffix
	s.current = append(s.current, clone)
	s.persistLocked()
	return clone.Clone(), true
}

// Replace swaps the active widget with the same id for updated.
func (s *Store) Replace(_ context.Context, widgetID string, updated Widget) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceLocked(s.activeID, widgetID, updated)
}

// ReplaceIn swaps a widget inside a specific dashboard. The widget keeps its id.
func (s *Store) ReplaceIn(_ context.Context, dashboardID, widgetID string, updated Widget) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceLocked(dashboardID, widgetID, updated)
}

func (s *Store) replaceLocked(dashboardID, widgetID string, updated Widget) bool {
	widgets, ok := s.sequenceLocked(dashboardID)
	if !ok {
		return false
	}
	idx := indexOf(widgets, widgetID)
	if idx < 0 {
		return false
	}
	next := updated.Clone()
	next.ID = widgetID
	next.ColSpan = clampCols(next.ColSpan)
	next.RowSpan = clampRows(next.RowSpan)
	widgets[idx] = next
	s.storeSequenceLocked(dashboardID, widgets)
	return true
}

// Append adds a widget to the end of dashboardID's sequence, which need not be
// the active one. It is a no-op when the dashboard no longer exists. Widgets
// without an id, or with a colliding one, get a fresh id.
func (s *Store) Append(_ context.Context, dashboardID string, w Widget) (Widget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	widgets, ok := s.sequenceLocked(dashboardID)
	if !ok {
		return Widget{}, false
	}
	next := w.Clone()
	taken := s.allIDsLocked()
	if _, clash := taken[next.ID]; next.ID == "" || clash {
		next.ID = newIDBatch(s.opts.IDs, s.opts.Clock(), taken).next()
	}
	next.ColSpan = clampCols(next.ColSpan)
	next.RowSpan = clampRows(next.RowSpan)
	s.storeSequenceLocked(dashboardID, append(widgets, next))
	return next.Clone(), true
}

// CreateDashboardInput describes a new dashboard.
type CreateDashboardInput struct {
	ID          string
	Name        string
	Icon        string
	Description string
	IsDefault   bool
	Template    *Template
}

// CreateDashboard registers a dashboard, copying template seeds with fresh ids
// when a template is given. It does not change the active dashboard.
func (s *Store) CreateDashboard(_ context.Context, input CreateDashboardInput) Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := input.ID
	if id == "" {
		id = s.opts.IDs.DashboardID()
	}
	now := s.opts.Clock()
	d := Dashboard{
		ID:          id,
		Name:        input.Name,
		Icon:        input.Icon,
		Description: input.Description,
		IsDefault:   input.IsDefault,
		Widgets:     []Widget{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if input.Template != nil {
		if d.Name == "" {
			d.Name = input.Template.Name
		}
		if d.Icon == "" {
			d.Icon = input.Template.Icon
		}
		if d.Description == "" {
			d.Description = input.Template.Description
		}
		d.Widgets = s.instantiateLocked(input.Template.Widgets)
	}
	delete(s.deleted, id)
	s.putDashboard(d)
	if id == s.activeID {
		s.current = cloneWidgets(d.Widgets)
	}
	return cloneDashboard(d)
}

// RenameDashboard updates the display name and icon. Empty values keep the
// current ones.
func (s *Store) RenameDashboard(_ context.Context, dashboardID, name, icon string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.dashboards[dashboardID]
	if !ok {
		return false
	}
	if name = strings.TrimSpace(name); name != "" {
		d.Name = name
	}
	if icon != "" {
		d.Icon = icon
	}
	d.UpdatedAt = s.opts.Clock()
	return true
}

// DuplicateDashboard copies a dashboard and its widgets under a new id.
func (s *Store) DuplicateDashboard(_ context.Context, dashboardID string) (Dashboard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushLocked()
	src, ok := s.dashboards[dashboardID]
	if !ok {
		return Dashboard{}, false
	}
	now := s.opts.Clock()
	batch := newIDBatch(s.opts.IDs, now, s.allIDsLocked())
	widgets := cloneWidgets(src.Widgets)
	for i := range widgets {
		widgets[i].ID = batch.next()
	}
	d := Dashboard{
		ID:          s.opts.IDs.DashboardID(),
		Name:        src.Name + copySuffix,
		Icon:        src.Icon,
		Description: src.Description,
		Widgets:     widgets,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.putDashboard(d)
	return cloneDashboard(d), true
}

// DeleteDashboard removes a dashboard with its widgets, date ranges and any
// template pending for it. Deleting the active dashboard moves the session to
// the first remaining dashboard, or to the default id when none remain.
func (s *Store) DeleteDashboard(ctx context.Context, dashboardID string) (NavigateResult, bool) {
	s.mu.Lock()
	d, ok := s.dashboards[dashboardID]
	if !ok && dashboardID != s.activeID {
		s.mu.Unlock()
		return NavigateResult{}, false
	}
	widgets := s.current
	if ok && dashboardID != s.activeID {
		widgets = d.Widgets
	}
	for _, w := range widgets {
		delete(s.ranges, w.ID)
	}
	delete(s.dashboards, dashboardID)
	s.order = removeString(s.order, dashboardID)
	s.deleted[dashboardID] = struct{}{}
	if s.pending != nil && s.pending.DashboardID == dashboardID {
		s.pending = nil
	}
	var result NavigateResult
	if dashboardID == s.activeID {
		next := s.opts.DefaultDashboardID
		if len(s.order) > 0 {
			next = s.order[0]
		}
		s.current = nil
		s.activeID = ""
		result = s.navigateLocked(next)
		result.From = dashboardID
	}
	s.mu.Unlock()
	s.acknowledge(ctx, result.Template)
	return result, true
}

// Dashboard returns a copy of one dashboard.
func (s *Store) Dashboard(dashboardID string) (Dashboard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushLocked()
	d, ok := s.dashboards[dashboardID]
	if !ok {
		return Dashboard{}, false
	}
	return cloneDashboard(*d), true
}

// Dashboards lists dashboards in creation order.
func (s *Store) Dashboards() []Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushLocked()
	out := make([]Dashboard, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneDashboard(*s.dashboards[id]))
	}
	return out
}

// SetDateRange associates a date range with a widget of the active
// dashboard. Unknown widgets are ignored.
func (s *Store) SetDateRange(widgetID string, r DateRange) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.current, widgetID) < 0 {
		return false
	}
	s.ranges[widgetID] = r
	return true
}

// ClearDateRange drops the date range of a widget.
func (s *Store) ClearDateRange(widgetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ranges, widgetID)
}

// DateRange returns the date range associated with a widget.
func (s *Store) DateRange(widgetID string) (DateRange, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.ranges[widgetID]
	return r, ok
}

// flushLocked writes the active sequence into the map when it has content or
// the dashboard is already known.
func (s *Store) flushLocked() {
	if s.activeID == "" {
		return
	}
	if _, known := s.dashboards[s.activeID]; !known && len(s.current) == 0 {
		return
	}
	d := s.ensureLocked(s.activeID)
	d.Widgets = cloneWidgets(s.current)
}

// persistLocked flushes and stamps the active dashboard as updated.
func (s *Store) persistLocked() {
	d := s.ensureLocked(s.activeID)
	d.Widgets = cloneWidgets(s.current)
	d.UpdatedAt = s.opts.Clock()
}

func (s *Store) applyLocked(delivery TemplateDelivery) {
	s.current = s.instantiateLocked(delivery.Seeds)
	s.persistLocked()
	if delivery.Seq != 0 {
		s.applied[delivery.Seq] = struct{}{}
	}
	s.opts.Logger.Debug("template applied", "dashboard_id", delivery.DashboardID, "seq", delivery.Seq, "widgets", len(s.current))
}

func (s *Store) instantiateLocked(seeds []WidgetSeed) []Widget {
	batch := newIDBatch(s.opts.IDs, s.opts.Clock(), s.allIDsLocked())
	out := make([]Widget, 0, len(seeds))
	for _, seed := range seeds {
		out = append(out, seed.Instantiate(batch.next()))
	}
	return out
}

func (s *Store) acknowledge(ctx context.Context, delivery *TemplateDelivery) {
	if delivery == nil || delivery.Seq == 0 || s.opts.Acknowledger == nil {
		return
	}
	s.opts.Acknowledger.Acknowledge(ctx, delivery.Seq)
}

// sequenceLocked returns a mutable copy of a dashboard's sequence.
func (s *Store) sequenceLocked(dashboardID string) ([]Widget, bool) {
	if dashboardID == "" {
		return nil, false
	}
	if dashboardID == s.activeID {
		return cloneWidgets(s.current), true
	}
	d, ok := s.dashboards[dashboardID]
	if !ok {
		return nil, false
	}
	return cloneWidgets(d.Widgets), true
}

func (s *Store) storeSequenceLocked(dashboardID string, widgets []Widget) {
	if dashboardID == s.activeID {
		s.current = widgets
		s.persistLocked()
		return
	}
	d := s.dashboards[dashboardID]
	d.Widgets = widgets
	d.UpdatedAt = s.opts.Clock()
}

func (s *Store) ensureLocked(dashboardID string) *Dashboard {
	if d, ok := s.dashboards[dashboardID]; ok {
		return d
	}
	now := s.opts.Clock()
	d := &Dashboard{
		ID:        dashboardID,
		Name:      "Untitled dashboard",
		Widgets:   []Widget{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.dashboards[dashboardID] = d
	s.order = append(s.order, dashboardID)
	return d
}

func (s *Store) putDashboard(d Dashboard) {
	if _, exists := s.dashboards[d.ID]; !exists {
		s.order = append(s.order, d.ID)
	}
	stored := cloneDashboard(d)
	if stored.Widgets == nil {
		stored.Widgets = []Widget{}
	}
	s.dashboards[d.ID] = &stored
}

func (s *Store) allIDsLocked() map[string]struct{} {
	taken := map[string]struct{}{}
	for _, w := range s.current {
		taken[w.ID] = struct{}{}
	}
	for _, d := range s.dashboards {
		for _, w := range d.Widgets {
			taken[w.ID] = struct{}{}
		}
	}
	return taken
}

func cloneDashboard(d Dashboard) Dashboard {
	d.Widgets = cloneWidgets(d.Widgets)
	return d
}

func indexOf(widgets []Widget, widgetID string) int {
	for i, w := range widgets {
		if w.ID == widgetID {
			return i
		}
	}
	return -1
}

func removeString(list []string, value string) []string {
	out := list[:0:0]
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}
