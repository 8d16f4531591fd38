package canvas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestWidgetJSONUsesFlatShape(t *testing.T) {
	w := Widget{ID: "a", Title: "Followers", ColSpan: 3, RowSpan: 1, Payload: CountPayload{Value: 24568, Label: "followers"}}
	raw, err := json.Marshal(w)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"a","kind":"count","title":"Followers","colSpan":3,"rowSpan":1,"value":24568,"label":"followers"}`, string(raw))

	var decoded Widget
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, w, decoded)
}

func TestWidgetJSONZeroCountKeepsValue(t *testing.T) {
	raw, err := json.Marshal(Widget{ID: "z", Title: "Zero", ColSpan: 1, RowSpan: 1, Payload: CountPayload{}})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"value":0`)
}

func TestWidgetJSONDecodesChartData(t *testing.T) {
	body := `{"id":"c","kind":"chart","title":"Trend","colSpan":8,"rowSpan":3,"prompt":"views",
		"data":{"labels":["Mon","Tue"],"datasets":[{"label":"views","data":[1,2]}]}}`
	var w Widget
	require.NoError(t, json.Unmarshal([]byte(body), &w))
	chart, ok := w.Payload.(ChartPayload)
	require.True(t, ok)
	require.NotNil(t, chart.Data)
	assert.Equal(t, []string{"Mon", "Tue"}, chart.Data.Labels)
	assert.Equal(t, []float64{1, 2}, chart.Data.Datasets[0].Data)
}

func TestWidgetJSONDefaultsAndErrors(t *testing.T) {
	var w Widget
	require.NoError(t, json.Unmarshal([]byte(`{"id":"s","title":"Plain","colSpan":2,"rowSpan":1}`), &w))
	assert.Equal(t, KindSummary, w.Kind())

	err := json.Unmarshal([]byte(`{"id":"x","kind":"map","title":"Nope"}`), &w)
	assert.Error(t, err)
}

func TestSeedYAMLRoundTrip(t *testing.T) {
	seed := WidgetSeed{Title: "Trend", ColSpan: 8, RowSpan: 3, Payload: ChartPayload{Prompt: "views"}}
	raw, err := yaml.Marshal(seed)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "kind: chart")
	assert.NotContains(t, string(raw), "id:")

	var decoded WidgetSeed
	require.NoError(t, yaml.Unmarshal(raw, &decoded))
	assert.Equal(t, seed, decoded)
}

func TestSeedInstantiateClampsAndCopies(t *testing.T) {
	data := &ChartData{Labels: []string{"a"}, Datasets: []Dataset{{Label: "x", Data: []float64{1}}}}
	seed := WidgetSeed{Title: "T", ColSpan: 40, RowSpan: 0, Payload: ChartPayload{Prompt: "p", Data: data}}

	w := seed.Instantiate("id-1")
	assert.Equal(t, "id-1", w.ID)
	assert.Equal(t, GridColumns, w.ColSpan)
	assert.Equal(t, 1, w.RowSpan)

	data.Labels[0] = "mutated"
	assert.Equal(t, "a", w.Payload.(ChartPayload).Data.Labels[0])
}
