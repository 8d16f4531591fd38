package canvas

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	catalogVersionV1 = "1"
	// CatalogVersion exposes the current catalog format version for tooling.
	CatalogVersion = catalogVersionV1
)

// CatalogDocument is the YAML form of a template catalog.
type CatalogDocument struct {
	Version   string     `json:"version" yaml:"version"`
	Name      string     `json:"name,omitempty" yaml:"name,omitempty"`
	Templates []Template `json:"templates" yaml:"templates"`
	Source    string     `json:"-" yaml:"-"`
}

// Catalog stores the templates users can create dashboards from.
type Catalog struct {
	mu        sync.RWMutex
	validator SeedValidator
	templates map[string]Template
	order     []string
}

// NewCatalog builds a catalog preloaded with the built-in templates.
func NewCatalog(validator SeedValidator) *Catalog {
	if validator == nil {
		validator = NewJSONSchemaValidator()
	}
	c := &Catalog{
		validator: validator,
		templates: map[string]Template{},
	}
	for _, tpl := range DefaultTemplates() {
		_ = c.Register(tpl)
	}
	return c
}

// Register validates and stores a template, replacing one with the same id.
func (c *Catalog) Register(tpl Template) error {
	if err := ValidateTemplate(c.validator, tpl); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.templates[tpl.ID]; !exists {
		c.order = append(c.order, tpl.ID)
	}
	c.templates[tpl.ID] = cloneTemplate(tpl)
	return nil
}

// Template fetches a template by id.
func (c *Catalog) Template(id string) (Template, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tpl, ok := c.templates[id]
	if !ok {
		return Template{}, false
	}
	return cloneTemplate(tpl), true
}

// Templates lists templates in registration order.
func (c *Catalog) Templates() []Template {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Template, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, cloneTemplate(c.templates[id]))
	}
	return out
}

// LoadDocument registers every template of a decoded catalog.
func (c *Catalog) LoadDocument(doc *CatalogDocument) error {
	if doc == nil {
		return errors.New("canvas: catalog document is nil")
	}
	for _, tpl := range doc.Templates {
		if err := c.Register(tpl); err != nil {
			return fmt.Errorf("canvas: register template %s from %s: %w", tpl.ID, doc.Source, err)
		}
	}
	return nil
}

// LoadFile reads a catalog from disk and registers it.
func (c *Catalog) LoadFile(path string) (*CatalogDocument, error) {
	doc, err := ReadCatalog(path)
	if err != nil {
		return nil, err
	}
	if err := c.LoadDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ReadCatalog loads a catalog file without registering it.
func ReadCatalog(path string) (*CatalogDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("canvas: open catalog %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("canvas: decode catalog %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeCatalog reads a catalog from any reader.
func DecodeCatalog(r io.Reader) (*CatalogDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc CatalogDocument
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, errors.New("canvas: catalog is empty")
		}
		return nil, fmt.Errorf("canvas: parse catalog: %w", err)
	}
	if doc.Version == "" {
		doc.Version = catalogVersionV1
	}
	if err := doc.Validate(nil); err != nil {
		return nil, err
	}
	return &doc, nil
}

// EncodeCatalog writes a catalog as YAML.
func EncodeCatalog(w io.Writer, doc *CatalogDocument) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("canvas: encode catalog: %w", err)
	}
	return encoder.Close()
}

// Validate checks the document structure and, when validator is set, every seed.
func (doc *CatalogDocument) Validate(validator SeedValidator) error {
	if doc.Version != catalogVersionV1 {
		return fmt.Errorf("canvas: unsupported catalog version %q", doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Templates))
	var errs error
	for idx, tpl := range doc.Templates {
		if tpl.ID == "" {
			errs = errors.Join(errs, fmt.Errorf("canvas: catalog template at index %d is missing id", idx))
			continue
		}
		if _, exists := seen[tpl.ID]; exists {
			errs = errors.Join(errs, fmt.Errorf("canvas: catalog duplicates template id %s", tpl.ID))
			continue
		}
		seen[tpl.ID] = struct{}{}
		if err := ValidateTemplate(validator, tpl); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

func cloneTemplate(tpl Template) Template {
	seeds := make([]WidgetSeed, len(tpl.Widgets))
	for i, seed := range tpl.Widgets {
		if seed.Payload != nil {
			seed.Payload = seed.Payload.clonePayload()
		}
		seeds[i] = seed
	}
	tpl.Widgets = seeds
	return tpl
}
