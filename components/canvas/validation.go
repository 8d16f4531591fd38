package canvas

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const widgetSeedSchemaName = "canvas.widget_seed.json"

// widgetSeedSchema constrains the flat seed shape per kind.
var widgetSeedSchema = map[string]any{
	"type":     "object",
	"required": []string{"kind", "title", "colSpan", "rowSpan"},
	"properties": map[string]any{
		"kind":    map[string]any{"type": "string", "enum": []string{string(KindSummary), string(KindCount), string(KindChart)}},
		"title":   map[string]any{"type": "string", "minLength": 1},
		"colSpan": map[string]any{"type": "integer", "minimum": 1, "maximum": GridColumns},
		"rowSpan": map[string]any{"type": "integer", "minimum": 1, "maximum": MaxRowSpan},
		"content": map[string]any{"type": "string"},
		"value":   map[string]any{"type": "number"},
		"label":   map[string]any{"type": "string"},
		"prompt":  map[string]any{"type": "string"},
		"data":    map[string]any{"type": "object"},
	},
	"allOf": []any{
		map[string]any{
			"if":   map[string]any{"properties": map[string]any{"kind": map[string]any{"const": string(KindCount)}}},
			"then": map[string]any{"required": []string{"value"}},
		},
		map[string]any{
			"if":   map[string]any{"properties": map[string]any{"kind": map[string]any{"const": string(KindChart)}}},
			"then": map[string]any{"required": []string{"prompt"}, "properties": map[string]any{"prompt": map[string]any{"minLength": 1}}},
		},
	},
}

// SeedValidator checks template seeds before they reach a dashboard.
type SeedValidator interface {
	ValidateSeed(seed WidgetSeed) error
}

// JSONSchemaValidator compiles schemas once and validates documents against them.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// ValidateSeed validates a seed against the built-in widget seed schema.
func (v *JSONSchemaValidator) ValidateSeed(seed WidgetSeed) error {
	doc, err := seedDocument(seed)
	if err != nil {
		return fmt.Errorf("canvas: normalize seed %q: %w", seed.Title, err)
	}
	return v.Validate(widgetSeedSchemaName, widgetSeedSchema, doc)
}

// Validate checks payload against the named schema, compiling it on first use.
func (v *JSONSchemaValidator) Validate(name string, schema map[string]any, payload map[string]any) error {
	compiled, err := v.schemaFor(name, schema)
	if err != nil {
		return err
	}
	if payload == nil {
		payload = map[string]any{}
	}
	if err := compiled.Validate(payload); err != nil {
		return fmt.Errorf("canvas: %s failed validation: %w", name, err)
	}
	return nil
}

func (v *JSONSchemaValidator) schemaFor(name string, schema map[string]any) (*jsonschema.Schema, error) {
	v.mu.RLock()
	compiled, ok := v.compiled[name]
	v.mu.RUnlock()
	if ok {
		return compiled, nil
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("canvas: marshal schema %s: %w", name, err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("canvas: load schema %s: %w", name, err)
	}
	compiled, err = compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("canvas: compile schema %s: %w", name, err)
	}
	v.mu.Lock()
	v.compiled[name] = compiled
	v.mu.Unlock()
	return compiled, nil
}

// ValidateTemplate validates every seed of a template and joins the failures.
func ValidateTemplate(validator SeedValidator, tpl Template) error {
	if tpl.ID == "" {
		return errors.New("canvas: template id is required")
	}
	if tpl.Name == "" {
		return fmt.Errorf("canvas: template %s missing name", tpl.ID)
	}
	if validator == nil {
		return nil
	}
	var errs error
	for idx, seed := range tpl.Widgets {
		if err := validator.ValidateSeed(seed); err != nil {
			errs = errors.Join(errs, fmt.Errorf("canvas: template %s widget %d: %w", tpl.ID, idx, err))
		}
	}
	return errs
}
