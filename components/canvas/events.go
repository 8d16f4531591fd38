package canvas

// EventType names an outbound canvas notification.
type EventType string

const (
	EventItemsChanged      EventType = "items_changed"
	EventItemDeleted       EventType = "item_deleted"
	EventItemDuplicated    EventType = "item_duplicated"
	EventWidgetActivated   EventType = "widget_activated"
	EventEditRequested     EventType = "edit_requested"
	EventDashboardSwitched EventType = "dashboard_switched"
	EventTemplateApplied   EventType = "template_applied"
	EventWidgetAppended    EventType = "widget_appended"
	EventWidgetReplaced    EventType = "widget_replaced"
)

// Event describes a change collaborators might care about. Widgets carries the
// full sequence for items_changed, Widget the target for single-widget events.
type Event struct {
	Type        EventType `json:"type"`
	DashboardID string    `json:"dashboard_id,omitempty"`
	WidgetID    string    `json:"widget_id,omitempty"`
	Widget      *Widget   `json:"widget,omitempty"`
	Widgets     []Widget  `json:"widgets,omitempty"`
}
