package canvas

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEditingGrid(widgets ...Widget) (*Grid, *recordingHook) {
	hook := &recordingHook{}
	grid := NewGrid(GridOptions{Hook: hook})
	grid.Load("1", widgets)
	grid.SetEditMode(true)
	return grid, hook
}

func TestResizeEastAddsRoundedColumns(t *testing.T) {
	grid, hook := newEditingGrid(summaryWidget("1", 6, 2))

	require.True(t, grid.BeginResize("1", HandleE, Point{X: 0, Y: 0}))
	require.True(t, grid.PointerMove(Point{X: 250, Y: 40}))
	assert.Equal(t, 9, grid.Widgets()[0].ColSpan)
	assert.Equal(t, 2, grid.Widgets()[0].RowSpan)
	assert.Empty(t, hook.snapshot(), "resize must not commit before EndResize")

	require.True(t, grid.EndResize(context.Background()))
	events := hook.ofType(EventItemsChanged)
	require.Len(t, events, 1)
	assert.Equal(t, "1", events[0].DashboardID)
	assert.Equal(t, 9, events[0].Widgets[0].ColSpan)
	_, resizing := grid.Resizing()
	assert.False(t, resizing)
}

func TestResizeIsAbsoluteFromStartAndClamped(t *testing.T) {
	grid, _ := newEditingGrid(summaryWidget("1", 11, 2))

	require.True(t, grid.BeginResize("1", HandleE, Point{}))
	grid.PointerMove(Point{X: 500})
	assert.Equal(t, GridColumns, grid.Widgets()[0].ColSpan)

	grid.PointerMove(Point{X: 0})
	assert.Equal(t, 11, grid.Widgets()[0].ColSpan, "moving back restores the starting span")

	grid.PointerMove(Point{X: -2000})
	assert.Equal(t, 1, grid.Widgets()[0].ColSpan)
}

func TestResizeHandlesMapToAxes(t *testing.T) {
	cases := []struct {
		name     string
		handle   Handle
		move     Point
		wantCols int
		wantRows int
	}{
		{name: "west shrinks on positive x", handle: HandleW, move: Point{X: 200}, wantCols: 2, wantRows: 2},
		{name: "west grows on negative x", handle: HandleW, move: Point{X: -200}, wantCols: 6, wantRows: 2},
		{name: "south grows rows", handle: HandleS, move: Point{X: 300, Y: 100}, wantCols: 4, wantRows: 3},
		{name: "north shrinks rows", handle: HandleN, move: Point{Y: 300}, wantCols: 4, wantRows: 1},
		{name: "south east combines", handle: HandleSE, move: Point{X: 200, Y: 100}, wantCols: 6, wantRows: 3},
		{name: "north west combines", handle: HandleNW, move: Point{X: -100, Y: -500}, wantCols: 5, wantRows: 6},
		{name: "north east mixes signs", handle: HandleNE, move: Point{X: 100, Y: 100}, wantCols: 5, wantRows: 1},
		{name: "south west mixes signs", handle: HandleSW, move: Point{X: 100, Y: 100}, wantCols: 3, wantRows: 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			grid, _ := newEditingGrid(summaryWidget("1", 4, 2))
			require.True(t, grid.BeginResize("1", tc.handle, Point{}))
			grid.PointerMove(tc.move)
			w := grid.Widgets()[0]
			assert.Equal(t, tc.wantCols, w.ColSpan)
			assert.Equal(t, tc.wantRows, w.RowSpan)
		})
	}
}

func TestUnitStepsRoundsHalfUp(t *testing.T) {
	assert.Equal(t, 3, unitSteps(250, 100))
	assert.Equal(t, -2, unitSteps(-250, 100))
	assert.Equal(t, 1, unitSteps(149, 100))
	assert.Equal(t, 2, unitSteps(150, 100))
	assert.Equal(t, 0, unitSteps(49, 100))
	assert.Equal(t, -1, unitSteps(-51, 100))
}

func TestZeroDeltaResizeStillCommits(t *testing.T) {
	grid, hook := newEditingGrid(summaryWidget("1", 4, 2))
	require.True(t, grid.BeginResize("1", HandleSE, Point{X: 10, Y: 10}))
	require.True(t, grid.EndResize(context.Background()))

	events := hook.ofType(EventItemsChanged)
	require.Len(t, events, 1)
	assert.Equal(t, 4, events[0].Widgets[0].ColSpan)
}

func TestLeavingEditModeDiscardsResize(t *testing.T) {
	grid, hook := newEditingGrid(summaryWidget("1", 4, 2))
	require.True(t, grid.BeginResize("1", HandleE, Point{}))
	grid.PointerMove(Point{X: 300})
	require.Equal(t, 7, grid.Widgets()[0].ColSpan)

	grid.SetEditMode(false)

	assert.Equal(t, 4, grid.Widgets()[0].ColSpan)
	_, resizing := grid.Resizing()
	assert.False(t, resizing)
	assert.False(t, grid.EndResize(context.Background()))
	assert.False(t, grid.PointerMove(Point{X: 600}))
	assert.Empty(t, hook.snapshot())
}

func TestResizeOutsideEditModeIsDropped(t *testing.T) {
	grid := NewGrid(GridOptions{})
	grid.Load("1", []Widget{summaryWidget("1", 4, 2)})

	assert.False(t, grid.BeginResize("1", HandleE, Point{}))
	assert.False(t, grid.PointerMove(Point{X: 300}))
	assert.Equal(t, 4, grid.Widgets()[0].ColSpan)
}

func TestBeginResizeRejectsUnknownTargets(t *testing.T) {
	grid, _ := newEditingGrid(summaryWidget("1", 4, 2))
	assert.False(t, grid.BeginResize("missing", HandleE, Point{}))
	assert.False(t, grid.BeginResize("1", Handle("x"), Point{}))
}

func TestSecondBeginResizeReplacesFirst(t *testing.T) {
	grid, _ := newEditingGrid(summaryWidget("1", 4, 2), summaryWidget("2", 4, 2))
	require.True(t, grid.BeginResize("1", HandleE, Point{}))
	grid.PointerMove(Point{X: 200})
	require.True(t, grid.BeginResize("2", HandleE, Point{}))

	id, ok := grid.Resizing()
	require.True(t, ok)
	assert.Equal(t, "2", id)
	assert.Equal(t, 4, grid.Widgets()[0].ColSpan, "abandoned gesture reverts")

	grid.PointerMove(Point{X: 100})
	assert.Equal(t, 4, grid.Widgets()[0].ColSpan)
	assert.Equal(t, 5, grid.Widgets()[1].ColSpan)
}

func TestReorderMovesAndEmits(t *testing.T) {
	grid, hook := newEditingGrid(summaryWidget("a", 4, 1), summaryWidget("b", 4, 1), summaryWidget("c", 4, 1))

	require.True(t, grid.Reorder(context.Background(), 0, 2))
	assert.Equal(t, []string{"b", "c", "a"}, widgetIDs(grid.Widgets()))

	events := hook.ofType(EventItemsChanged)
	require.Len(t, events, 1)
	assert.Equal(t, []string{"b", "c", "a"}, widgetIDs(events[0].Widgets))

	require.True(t, grid.Reorder(context.Background(), 2, 0))
	assert.Equal(t, []string{"a", "b", "c"}, widgetIDs(grid.Widgets()))
}

func TestReorderIsDroppedOutsideEditModeOrRange(t *testing.T) {
	grid, hook := newEditingGrid(summaryWidget("a", 4, 1), summaryWidget("b", 4, 1))
	assert.False(t, grid.Reorder(context.Background(), 0, 5))
	assert.False(t, grid.Reorder(context.Background(), -1, 0))

	grid.SetEditMode(false)
	assert.False(t, grid.Reorder(context.Background(), 0, 1))
	assert.Equal(t, []string{"a", "b"}, widgetIDs(grid.Widgets()))
	assert.Empty(t, hook.snapshot())
}

func TestRequestsForwardWithoutMutating(t *testing.T) {
	grid, hook := newEditingGrid(summaryWidget("a", 4, 1))
	require.True(t, grid.OpenOverlay(OverlayMenu, "a"))

	require.True(t, grid.RequestDelete(context.Background(), "a"))
	require.True(t, grid.RequestDuplicate(context.Background(), "a"))

	assert.Len(t, grid.Widgets(), 1)
	events := hook.snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, EventItemDeleted, events[0].Type)
	assert.Equal(t, "a", events[0].WidgetID)
	assert.Equal(t, EventItemDuplicated, events[1].Type)
	_, open := grid.Overlay()
	assert.False(t, open, "menu actions close the menu")
}

func TestSelectWidgetDependsOnEditMode(t *testing.T) {
	grid, hook := newEditingGrid(summaryWidget("a", 4, 1))

	assert.False(t, grid.SelectWidget(context.Background(), "a"))
	assert.Equal(t, "a", grid.Focused())
	assert.Empty(t, hook.snapshot())

	grid.SetEditMode(false)
	assert.Equal(t, "", grid.Focused())
	require.True(t, grid.SelectWidget(context.Background(), "a"))
	events := hook.ofType(EventWidgetActivated)
	require.Len(t, events, 1)
	require.NotNil(t, events[0].Widget)
	assert.Equal(t, "a", events[0].Widget.ID)

	assert.False(t, grid.SelectWidget(context.Background(), "missing"))
}

func TestRequestEditEmitsWidgetSnapshot(t *testing.T) {
	grid, hook := newEditingGrid(summaryWidget("a", 4, 1))
	require.True(t, grid.RequestEdit(context.Background(), "a"))
	assert.False(t, grid.RequestEdit(context.Background(), "missing"))

	events := hook.ofType(EventEditRequested)
	require.Len(t, events, 1)
	assert.Equal(t, "Widget a", events[0].Widget.Title)
}

func TestOverlaysAreMutuallyExclusive(t *testing.T) {
	grid, _ := newEditingGrid(summaryWidget("a", 4, 1), summaryWidget("b", 4, 1))

	require.True(t, grid.OpenOverlay(OverlayMenu, "a"))
	require.True(t, grid.OpenOverlay(OverlayDatePicker, "b"))
	overlay, ok := grid.Overlay()
	require.True(t, ok)
	assert.Equal(t, Overlay{Kind: OverlayDatePicker, WidgetID: "b"}, overlay)

	assert.False(t, grid.ToggleOverlay(OverlayDatePicker, "b"))
	_, ok = grid.Overlay()
	assert.False(t, ok)

	assert.True(t, grid.ToggleOverlay(OverlayMenu, "a"))
	grid.DismissOverlays()
	_, ok = grid.Overlay()
	assert.False(t, ok)

	assert.False(t, grid.OpenOverlay(OverlayMenu, "missing"))
}

func TestLoadKeepsStateForSameDashboardOnly(t *testing.T) {
	grid, _ := newEditingGrid(summaryWidget("a", 4, 1), summaryWidget("b", 4, 1))
	require.True(t, grid.BeginResize("a", HandleE, Point{}))
	grid.OpenOverlay(OverlayMenu, "b")

	grid.Load("1", []Widget{summaryWidget("a", 4, 1)})
	id, ok := grid.Resizing()
	require.True(t, ok)
	assert.Equal(t, "a", id)
	_, open := grid.Overlay()
	assert.False(t, open, "overlay target left the sequence")

	grid.Load("2", []Widget{summaryWidget("a", 4, 1)})
	_, ok = grid.Resizing()
	assert.False(t, ok)
	assert.Equal(t, "2", grid.DashboardID())
}

func TestFlowLayoutPlacesSparsely(t *testing.T) {
	placements := FlowLayout([]Widget{
		summaryWidget("a", 4, 2),
		summaryWidget("b", 8, 1),
		summaryWidget("c", 8, 1),
		summaryWidget("d", 12, 1),
		summaryWidget("e", 20, 9),
	})
	want := []Placement{
		{WidgetID: "a", Column: 0, Row: 0, ColSpan: 4, RowSpan: 2},
		{WidgetID: "b", Column: 4, Row: 0, ColSpan: 8, RowSpan: 1},
		{WidgetID: "c", Column: 4, Row: 1, ColSpan: 8, RowSpan: 1},
		{WidgetID: "d", Column: 0, Row: 2, ColSpan: 12, RowSpan: 1},
		{WidgetID: "e", Column: 0, Row: 3, ColSpan: 12, RowSpan: 6},
	}
	assert.Equal(t, want, placements)
}

func TestParseHandle(t *testing.T) {
	h, ok := ParseHandle("EN")
	require.True(t, ok)
	assert.Equal(t, HandleNE, h)

	h, ok = ParseHandle(" sw ")
	require.True(t, ok)
	assert.Equal(t, HandleSW, h)

	_, ok = ParseHandle("middle")
	assert.False(t, ok)
}

func TestReorderDuringResizeDiscardsLiveSpans(t *testing.T) {
	grid, hook := newEditingGrid(summaryWidget("a", 6, 2), summaryWidget("b", 3, 1))
	require.True(t, grid.BeginResize("a", HandleE, Point{}))
	grid.PointerMove(Point{X: 250})
	require.Equal(t, 9, grid.Widgets()[0].ColSpan)

	require.True(t, grid.Reorder(context.Background(), 0, 1))

	_, resizing := grid.Resizing()
	assert.False(t, resizing)
	assert.False(t, grid.EndResize(context.Background()))
	events := hook.ofType(EventItemsChanged)
	require.Len(t, events, 1)
	assert.Equal(t, []string{"b", "a"}, widgetIDs(events[0].Widgets))
	assert.Equal(t, 6, events[0].Widgets[1].ColSpan)

	grid.SetEditMode(false)
	assert.Equal(t, 6, grid.Widgets()[1].ColSpan)
}

func TestReplayingPointerPathLandsOnSameSpans(t *testing.T) {
	path := []Point{{X: 40, Y: 10}, {X: 180, Y: 260}, {X: -90, Y: 120}, {X: 310, Y: 160}, {X: 260, Y: 140}}
	replay := func() Widget {
		grid, _ := newEditingGrid(summaryWidget("a", 4, 2))
		require.True(t, grid.BeginResize("a", HandleSE, Point{X: 10, Y: 10}))
		for _, p := range path {
			grid.PointerMove(p)
		}
		require.True(t, grid.EndResize(context.Background()))
		return grid.Widgets()[0]
	}

	first := replay()
	second := replay()
	assert.Equal(t, first.ColSpan, second.ColSpan)
	assert.Equal(t, first.RowSpan, second.RowSpan)
	assert.Equal(t, 7, first.ColSpan)
	assert.Equal(t, 3, first.RowSpan)
}

func TestRowSpansClampToLimits(t *testing.T) {
	grid, hook := newEditingGrid(summaryWidget("a", 4, 5))
	require.True(t, grid.BeginResize("a", HandleS, Point{}))
	grid.PointerMove(Point{Y: 900})
	assert.Equal(t, MaxRowSpan, grid.Widgets()[0].RowSpan)
	assert.Equal(t, 4, grid.Widgets()[0].ColSpan)
	require.True(t, grid.EndResize(context.Background()))

	require.True(t, grid.BeginResize("a", HandleN, Point{}))
	grid.PointerMove(Point{Y: -900})
	assert.Equal(t, MaxRowSpan, grid.Widgets()[0].RowSpan)
	grid.PointerMove(Point{Y: 900})
	assert.Equal(t, 1, grid.Widgets()[0].RowSpan)
	require.True(t, grid.EndResize(context.Background()))

	events := hook.ofType(EventItemsChanged)
	require.Len(t, events, 2)
	assert.Equal(t, MaxRowSpan, events[0].Widgets[0].RowSpan)
	assert.Equal(t, 1, events[1].Widgets[0].RowSpan)
}
