package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-canvas/components/canvas"
	"github.com/goliatone/go-canvas/components/canvas/commands"
)

type stubCommander[T any] struct {
	last  T
	calls int
	err   error
}

func (s *stubCommander[T]) Execute(ctx context.Context, msg T) error {
	s.last = msg
	s.calls++
	return s.err
}

func TestHandleRemoveWidget(t *testing.T) {
	remove := &stubCommander[commands.RemoveWidgetInput]{}
	api := &Handlers{RemoveCommander: remove}
	req := httptest.NewRequest(http.MethodDelete, "/widgets/w1", nil)
	rec := httptest.NewRecorder()
	api.HandleRemoveWidget(rec, req, "w1")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if remove.last.WidgetID != "w1" {
		t.Fatalf("expected widget id propagation")
	}
}

func TestHandleReorderWidgets(t *testing.T) {
	reorder := &stubCommander[commands.ReorderWidgetsInput]{}
	api := &Handlers{ReorderCommander: reorder}
	buf, _ := json.Marshal(commands.ReorderWidgetsInput{From: 2, To: 0})
	req := httptest.NewRequest(http.MethodPost, "/widgets/reorder", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	api.HandleReorderWidgets(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if reorder.last.From != 2 || reorder.last.To != 0 {
		t.Fatalf("unexpected reorder payload: %+v", reorder.last)
	}
}

func TestHandleReorderWidgetsConflict(t *testing.T) {
	reorder := &stubCommander[commands.ReorderWidgetsInput]{err: commands.ErrNotApplied}
	api := &Handlers{ReorderCommander: reorder}
	req := httptest.NewRequest(http.MethodPost, "/widgets/reorder", strings.NewReader(`{"from":0,"to":9}`))
	rec := httptest.NewRecorder()
	api.HandleReorderWidgets(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestHandleResizeWidgetRejectsBadJSON(t *testing.T) {
	resize := &stubCommander[commands.ResizeWidgetInput]{}
	api := &Handlers{ResizeCommander: resize}
	req := httptest.NewRequest(http.MethodPost, "/widgets/resize", strings.NewReader(`{"widget_id":`))
	rec := httptest.NewRecorder()
	api.HandleResizeWidget(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resize.calls != 0 {
		t.Fatalf("command should not run on bad input")
	}
}

func TestHandleReplaceWidgetUsesPathID(t *testing.T) {
	replace := &stubCommander[commands.ReplaceWidgetInput]{}
	api := &Handlers{ReplaceCommander: replace}
	body := `{"id":"other","kind":"count","title":"Followers","colSpan":3,"rowSpan":1,"value":12,"label":"k"}`
	req := httptest.NewRequest(http.MethodPut, "/widgets/w1", strings.NewReader(body))
	rec := httptest.NewRecorder()
	api.HandleReplaceWidget(rec, req, "w1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if replace.last.WidgetID != "w1" {
		t.Fatalf("expected path id, got %q", replace.last.WidgetID)
	}
	if replace.last.Widget.Kind() != canvas.KindCount {
		t.Fatalf("expected count widget, got %s", replace.last.Widget.Kind())
	}
}

func TestHandleGenerateChart(t *testing.T) {
	generate := &stubCommander[commands.GenerateChartInput]{}
	api := &Handlers{GenerateChartCommander: generate}
	req := httptest.NewRequest(http.MethodPost, "/widgets/generate", strings.NewReader(`{"title":"Sales","prompt":"sales by month"}`))
	rec := httptest.NewRecorder()
	api.HandleGenerateChart(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if generate.last.Prompt != "sales by month" {
		t.Fatalf("unexpected prompt %q", generate.last.Prompt)
	}

	generate.err = canvas.ErrPromptRequired
	rec = httptest.NewRecorder()
	api.HandleGenerateChart(rec, httptest.NewRequest(http.MethodPost, "/widgets/generate", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMissingCommanderReturnsServerError(t *testing.T) {
	api := &Handlers{}
	rec := httptest.NewRecorder()
	api.HandleSetEditMode(rec, httptest.NewRequest(http.MethodPost, "/edit-mode", strings.NewReader(`{"enabled":true}`)))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{err: nil, want: http.StatusOK},
		{err: commands.ErrNotApplied, want: http.StatusConflict},
		{err: fmt.Errorf("x: %w", canvas.ErrTemplateNotFound), want: http.StatusNotFound},
		{err: canvas.ErrWidgetNotFound, want: http.StatusNotFound},
		{err: canvas.ErrPromptRequired, want: http.StatusBadRequest},
		{err: canvas.ErrSchedulerClosed, want: http.StatusServiceUnavailable},
		{err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusFor(tc.err); got != tc.want {
			t.Fatalf("StatusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestMuxAgainstSession(t *testing.T) {
	session := canvas.NewSession(canvas.Options{Dashboards: []canvas.Dashboard{{
		ID:      "1",
		Name:    "Main",
		Widgets: []canvas.Widget{{ID: "a", Title: "Notes", ColSpan: 6, RowSpan: 2, Payload: canvas.SummaryPayload{Content: "hi"}}},
	}}})
	defer session.Close()
	server := httptest.NewServer(NewHandlers(session, nil).Mux())
	defer server.Close()

	post := func(path, body string) *http.Response {
		t.Helper()
		resp, err := http.Post(server.URL+path, "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		return resp
	}

	resp := post("/widgets/resize", `{"widget_id":"a","handle":"e","moves":[{"x":250,"y":0}]}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("resize outside edit mode should conflict, got %d", resp.StatusCode)
	}

	resp = post("/edit-mode", `{"enabled":true}`)
	resp.Body.Close()

	resp = post("/widgets/resize", `{"widget_id":"a","handle":"e","moves":[{"x":250,"y":0}]}`)
	var widget canvas.Widget
	if err := json.NewDecoder(resp.Body).Decode(&widget); err != nil {
		t.Fatalf("decode resize response: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || widget.ColSpan != 9 {
		t.Fatalf("unexpected resize response %d %+v", resp.StatusCode, widget)
	}

	resp = post("/dashboards", `{"template_id":"executive"}`)
	var created canvas.Dashboard
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated || len(created.Widgets) != 3 {
		t.Fatalf("unexpected create response %d %+v", resp.StatusCode, created)
	}
	if session.ActiveID() != created.ID {
		t.Fatalf("expected session to switch to %s", created.ID)
	}

	resp = post("/dashboards", `{"template_id":"missing"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown template, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodDelete, server.URL+"/dashboards/"+created.ID, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent || session.ActiveID() != "1" {
		t.Fatalf("unexpected delete outcome %d active=%s", resp.StatusCode, session.ActiveID())
	}
}
