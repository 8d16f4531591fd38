package canvas

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `version: "1"
name: team
templates:
  - id: ops
    name: Operations
    icon: "🛠"
    category: Custom
    widgets:
      - kind: count
        title: Open incidents
        colSpan: 4
        rowSpan: 1
        value: 3
        label: incidents
      - kind: chart
        title: Latency
        colSpan: 8
        rowSpan: 3
        prompt: p95 latency per service
      - kind: summary
        title: Notes
        colSpan: 12
        rowSpan: 2
        content: On call rotation changes Monday.
`

func TestNewCatalogPreloadsBuiltins(t *testing.T) {
	catalog := NewCatalog(nil)
	ids := []string{}
	for _, tpl := range catalog.Templates() {
		ids = append(ids, tpl.ID)
	}
	assert.Equal(t, []string{"blank", "social-media", "youtube", "instagram", "executive"}, ids)

	tpl, ok := catalog.Template("social-media")
	require.True(t, ok)
	assert.Equal(t, "Social Media Analytics", tpl.Name)
	require.Len(t, tpl.Widgets, 6)
	assert.Equal(t, KindCount, tpl.Widgets[0].Payload.Kind())
	assert.Equal(t, 3, tpl.Widgets[0].ColSpan)

	blank, ok := catalog.Template("blank")
	require.True(t, ok)
	assert.Empty(t, blank.Widgets)
}

func TestCatalogTemplateReturnsCopies(t *testing.T) {
	catalog := NewCatalog(nil)
	tpl, _ := catalog.Template("youtube")
	tpl.Widgets[0].Title = "mutated"

	again, _ := catalog.Template("youtube")
	assert.NotEqual(t, "mutated", again.Widgets[0].Title)
}

func TestCatalogRegisterValidatesSeeds(t *testing.T) {
	catalog := NewCatalog(nil)

	err := catalog.Register(Template{ID: "wide", Name: "Wide", Widgets: []WidgetSeed{{Title: "x", ColSpan: 13, RowSpan: 1, Payload: SummaryPayload{}}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template wide widget 0")

	err = catalog.Register(Template{ID: "chart", Name: "Chart", Widgets: []WidgetSeed{{Title: "x", ColSpan: 6, RowSpan: 3, Payload: ChartPayload{}}}})
	require.Error(t, err)

	err = catalog.Register(Template{ID: "untitled", Name: "Untitled", Widgets: []WidgetSeed{{ColSpan: 6, RowSpan: 3, Payload: SummaryPayload{}}}})
	require.Error(t, err)

	require.Error(t, catalog.Register(Template{ID: "nameless"}))
	require.Error(t, catalog.Register(Template{Name: "No id"}))

	require.NoError(t, catalog.Register(Template{ID: "blank", Name: "Empty", Widgets: []WidgetSeed{}}))
	tpl, _ := catalog.Template("blank")
	assert.Equal(t, "Empty", tpl.Name)
	assert.Len(t, catalog.Templates(), 5, "re-registering keeps the slot")
}

func TestDecodeCatalog(t *testing.T) {
	doc, err := DecodeCatalog(strings.NewReader(sampleCatalog))
	require.NoError(t, err)
	assert.Equal(t, "team", doc.Name)
	require.Len(t, doc.Templates, 1)

	widgets := doc.Templates[0].Widgets
	require.Len(t, widgets, 3)
	count, ok := widgets[0].Payload.(CountPayload)
	require.True(t, ok)
	assert.Equal(t, 3.0, count.Value)
	assert.Equal(t, "incidents", count.Label)
	chart, ok := widgets[1].Payload.(ChartPayload)
	require.True(t, ok)
	assert.Equal(t, "p95 latency per service", chart.Prompt)
	assert.Equal(t, SummaryPayload{Content: "On call rotation changes Monday."}, widgets[2].Payload)

	catalog := NewCatalog(nil)
	require.NoError(t, catalog.LoadDocument(doc))
	_, ok = catalog.Template("ops")
	assert.True(t, ok)
}

func TestDecodeCatalogRejectsBadDocuments(t *testing.T) {
	cases := map[string]string{
		"empty":         "",
		"unknown field": "version: \"1\"\nowner: me\ntemplates: []\n",
		"version":       "version: \"2\"\ntemplates: []\n",
		"duplicate ids": "templates:\n  - id: a\n    name: A\n    widgets: []\n  - id: a\n    name: B\n    widgets: []\n",
		"missing id":    "templates:\n  - name: A\n    widgets: []\n",
		"unknown kind":  "templates:\n  - id: a\n    name: A\n    widgets:\n      - kind: map\n        title: x\n        colSpan: 1\n        rowSpan: 1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeCatalog(strings.NewReader(body))
			assert.Error(t, err)
		})
	}
}

func TestCatalogDocumentValidateUsesValidator(t *testing.T) {
	doc := &CatalogDocument{Version: CatalogVersion, Templates: []Template{{
		ID:      "tall",
		Name:    "Tall",
		Widgets: []WidgetSeed{{Title: "x", ColSpan: 1, RowSpan: 7, Payload: SummaryPayload{}}},
	}}}
	assert.NoError(t, doc.Validate(nil))
	assert.Error(t, doc.Validate(NewJSONSchemaValidator()))
}

func TestCatalogFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc, err := DecodeCatalog(strings.NewReader(sampleCatalog))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeCatalog(&buf, doc))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	catalog := NewCatalog(nil)
	loaded, err := catalog.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, loaded.Source)
	assert.Equal(t, doc.Templates, loaded.Templates)

	tpl, ok := catalog.Template("ops")
	require.True(t, ok)
	assert.Equal(t, "🛠", tpl.Icon)

	_, err = catalog.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
