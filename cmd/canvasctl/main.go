package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/ettle/strcase"
	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"github.com/lmittmann/tint"

	"github.com/goliatone/go-canvas/components/canvas"
	"github.com/goliatone/go-canvas/components/canvas/gorouter"
	"github.com/goliatone/go-canvas/components/canvas/httpapi"
)

type cli struct {
	LogLevel slog.Level `name:"log-level" default:"info" help:"Minimum log level (debug, info, warn, error)."`
	LogJSON  bool       `name:"log-json" help:"Emit JSON logs instead of console output."`

	Serve     serveCmd     `cmd:"" help:"Serve the dashboard canvas over HTTP and WebSocket."`
	Templates templatesCmd `cmd:"" help:"Inspect and edit template catalogs."`
}

type serveCmd struct {
	Addr            string        `default:":9876" help:"Listen address."`
	BasePath        string        `default:"/canvas" help:"Route prefix."`
	Catalog         string        `type:"path" help:"Optional template catalog YAML merged over the built-ins."`
	GenerationDelay time.Duration `default:"2s" help:"Delay applied to chart generation and widget revisions."`
	ColumnUnit      float64       `default:"100" help:"Pointer pixels per column step while resizing."`
	RowUnit         float64       `default:"100" help:"Pointer pixels per row step while resizing."`
}

type templatesCmd struct {
	Lint lintCmd `cmd:"" help:"Validate a template catalog."`
	Add  addCmd  `cmd:"" help:"Append a template to a catalog file."`
	List listCmd `cmd:"" help:"List built-in templates and, optionally, a catalog."`
}

type lintCmd struct {
	Path string `arg:"" type:"path" help:"Catalog file to validate."`
}

type addCmd struct {
	Catalog     string `required:"" type:"path" help:"Catalog file to update (created when missing)."`
	Name        string `required:"" help:"Display name of the template."`
	ID          string `help:"Template id (defaults to the kebab-cased name)."`
	Description string `help:"One-line description."`
	Icon        string `help:"Icon shown next to the template."`
	Category    string `default:"Custom" help:"Catalog category."`
	From        string `help:"Copy widgets from a built-in template id."`
	Overwrite   bool   `help:"Replace an existing template with the same id."`
}

type listCmd struct {
	Catalog string `type:"path" help:"Optional catalog file to include."`
}

func main() {
	var app cli
	ctx := kong.Parse(&app,
		kong.Description("Dashboard canvas server and template catalog tooling."),
		kong.UsageOnError(),
	)
	logger := newLogger(app.LogLevel, app.LogJSON)
	err := ctx.Run(context.Background(), logger)
	ctx.FatalIfErrorf(err)
}

func newLogger(level slog.Level, json bool) *slog.Logger {
	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05",
		})
	}
	return slog.New(handler)
}

func (cmd *serveCmd) Run(ctx context.Context, logger *slog.Logger) error {
	catalog := canvas.NewCatalog(nil)
	if cmd.Catalog != "" {
		doc, err := catalog.LoadFile(cmd.Catalog)
		if err != nil {
			return err
		}
		logger.Info("catalog loaded", "path", cmd.Catalog, "templates", len(doc.Templates))
	}

	telemetry := canvas.SlogTelemetry{Logger: logger, Level: slog.LevelDebug}
	hook := canvas.NewBroadcastHook()
	session := canvas.NewSession(canvas.Options{
		Dashboards: []canvas.Dashboard{{
			ID:        canvas.DefaultDashboardID,
			Name:      "Main Dashboard",
			Icon:      "🏠",
			IsDefault: true,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}},
		Grid:            canvas.GridOptions{ColumnUnit: cmd.ColumnUnit, RowUnit: cmd.RowUnit},
		GenerationDelay: cmd.GenerationDelay,
		Catalog:         catalog,
		Hook:            hook,
		Telemetry:       telemetry,
		Logger:          logger,
	})
	defer session.Close()

	renderer, err := canvas.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("canvasctl: build renderer: %w", err)
	}
	controller := canvas.NewController(canvas.ControllerOptions{
		Session:  session,
		Renderer: renderer,
		BasePath: cmd.BasePath,
	})

	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: controller,
		API:        httpapi.NewHandlers(session, telemetry),
		Broadcast:  hook,
		BasePath:   cmd.BasePath,
	}); err != nil {
		return fmt.Errorf("canvasctl: register routes: %w", err)
	}

	logger.Info("canvas ready", "addr", cmd.Addr, "page", cmd.BasePath+"/dashboards/"+canvas.DefaultDashboardID, "ws", cmd.BasePath+"/ws")
	return server.Serve(cmd.Addr)
}

func (cmd *lintCmd) Run(_ context.Context, logger *slog.Logger) error {
	doc, err := canvas.ReadCatalog(cmd.Path)
	if err != nil {
		return err
	}
	if err := doc.Validate(canvas.NewJSONSchemaValidator()); err != nil {
		return fmt.Errorf("canvasctl: %s: %w", cmd.Path, err)
	}
	widgets := 0
	for _, tpl := range doc.Templates {
		widgets += len(tpl.Widgets)
	}
	logger.Info("catalog valid", "path", cmd.Path, "templates", len(doc.Templates), "widgets", widgets)
	return nil
}

func (cmd *addCmd) Run(_ context.Context, logger *slog.Logger) error {
	path, err := filepath.Abs(cmd.Catalog)
	if err != nil {
		return fmt.Errorf("canvasctl: resolve catalog path: %w", err)
	}
	doc, err := loadOrInitCatalog(path)
	if err != nil {
		return err
	}
	tpl, err := cmd.template()
	if err != nil {
		return err
	}
	replaced := false
	for idx := range doc.Templates {
		if doc.Templates[idx].ID != tpl.ID {
			continue
		}
		if !cmd.Overwrite {
			return fmt.Errorf("canvasctl: catalog already defines template %s (use --overwrite to replace)", tpl.ID)
		}
		doc.Templates[idx] = tpl
		replaced = true
	}
	if !replaced {
		doc.Templates = append(doc.Templates, tpl)
	}
	if err := doc.Validate(canvas.NewJSONSchemaValidator()); err != nil {
		return err
	}
	if err := writeCatalog(path, doc); err != nil {
		return err
	}
	logger.Info("template added", "id", tpl.ID, "catalog", path, "widgets", len(tpl.Widgets))
	return nil
}

func (cmd *addCmd) template() (canvas.Template, error) {
	id := strings.TrimSpace(cmd.ID)
	if id == "" {
		id = strcase.ToKebab(cmd.Name)
	}
	if id == "" {
		return canvas.Template{}, errors.New("canvasctl: template id could not be derived from name")
	}
	tpl := canvas.Template{
		ID:          id,
		Name:        cmd.Name,
		Description: cmd.Description,
		Icon:        cmd.Icon,
		Category:    cmd.Category,
		Widgets:     []canvas.WidgetSeed{},
	}
	if cmd.From == "" {
		return tpl, nil
	}
	for _, builtin := range canvas.DefaultTemplates() {
		if builtin.ID == cmd.From {
			tpl.Widgets = builtin.Widgets
			return tpl, nil
		}
	}
	return canvas.Template{}, fmt.Errorf("canvasctl: unknown built-in template %s", cmd.From)
}

func (cmd *listCmd) Run(_ context.Context, _ *slog.Logger) error {
	catalog := canvas.NewCatalog(nil)
	if cmd.Catalog != "" {
		if _, err := catalog.LoadFile(cmd.Catalog); err != nil {
			return err
		}
	}
	for _, tpl := range catalog.Templates() {
		fmt.Fprintf(os.Stdout, "%-16s %-28s %-10s %d widgets\n", tpl.ID, tpl.Name, tpl.Category, len(tpl.Widgets))
	}
	return nil
}

func loadOrInitCatalog(path string) (*canvas.CatalogDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &canvas.CatalogDocument{
				Version:   canvas.CatalogVersion,
				Templates: []canvas.Template{},
				Source:    path,
			}, nil
		}
		return nil, fmt.Errorf("canvasctl: stat catalog: %w", err)
	}
	return canvas.ReadCatalog(path)
}

func writeCatalog(path string, doc *canvas.CatalogDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("canvasctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("canvasctl: create catalog %s: %w", path, err)
	}
	defer file.Close()
	return canvas.EncodeCatalog(file, doc)
}
