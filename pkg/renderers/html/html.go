// Package html renders a form as an HTML fragment through the go-template
// engine. Visible fields render by kind, and the detail table lists one input
// per cell with the amount column read-only when the total is computed.
package html

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-mdaform/pkg/model"
	"github.com/goliatone/go-mdaform/pkg/render"
	"github.com/goliatone/go-mdaform/pkg/render/template"
	"github.com/goliatone/go-mdaform/pkg/render/template/gotemplate"
)

// Name is the registry identifier of this renderer.
const Name = "html"

// Theme partial keys. A theme manifest may point them at its own templates.
const (
	PartialForm  = "forms.form"
	PartialField = "forms.field"
)

// StylesheetAsset is the theme asset key linked ahead of the form.
const StylesheetAsset = "html.stylesheet"

// DefaultPartials maps partial keys to the built-in templates.
func DefaultPartials() map[string]string {
	return map[string]string{
		PartialForm:  "form.html",
		PartialField: "field.html",
	}
}

// Option configures the renderer.
type Option func(*config)

type config struct {
	templates fs.FS
	theme     fs.FS
	engine    template.TemplateRenderer
	submit    string
}

// WithTemplatesFS supplies an alternate template bundle. It must provide
// form.html and field.html at its root, or the paths a theme names.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templates = os.DirFS(path)
	}
}

// WithThemeTemplates layers a theme's template files over the bundle so
// manifest partial paths resolve next to the built-in templates.
func WithThemeTemplates(files fs.FS) Option {
	return func(cfg *config) {
		cfg.theme = files
	}
}

// WithTemplateRenderer renders through a caller supplied engine instead of
// building one over the template bundle.
func WithTemplateRenderer(engine template.TemplateRenderer) Option {
	return func(cfg *config) {
		cfg.engine = engine
	}
}

// WithSubmitLabel overrides the submit button caption.
func WithSubmitLabel(label string) Option {
	return func(cfg *config) {
		if label != "" {
			cfg.submit = label
		}
	}
}

// Renderer implements render.Renderer.
type Renderer struct {
	engine template.TemplateRenderer
	submit string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templates: TemplatesFS(), submit: "Save"}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	engine := cfg.engine
	if engine == nil {
		if cfg.templates == nil {
			return nil, errors.New("html renderer: template bundle is nil")
		}
		files := cfg.templates
		if cfg.theme != nil {
			files = layeredFS{overlay: cfg.theme, base: files}
		}
		built, err := gotemplate.New(gotemplate.WithFS(files))
		if err != nil {
			return nil, fmt.Errorf("html renderer: template engine: %w", err)
		}
		engine = built
	}
	return &Renderer{engine: engine, submit: cfg.submit}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render implements render.Renderer.
func (r *Renderer) Render(ctx context.Context, form *model.Form, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if form == nil {
		return nil, errors.New("html renderer: form is nil")
	}
	if err := form.CheckRenderable(); err != nil {
		return nil, err
	}

	view := buildView(form, options, r.submit)
	out, err := r.engine.RenderTemplate(view.FormTemplate, map[string]any{"form": view})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(out), nil
}
