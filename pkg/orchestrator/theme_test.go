package orchestrator_test

import (
	"context"
	"errors"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-mdaform/pkg/model"
	"github.com/goliatone/go-mdaform/pkg/orchestrator"
	"github.com/goliatone/go-mdaform/pkg/render"
	"github.com/goliatone/go-mdaform/pkg/renderers/html"
	"github.com/goliatone/go-mdaform/pkg/testsupport"
)

type captureRenderer struct {
	options render.RenderOptions
}

func (r *captureRenderer) Name() string        { return "capture" }
func (r *captureRenderer) ContentType() string { return "text/plain" }

func (r *captureRenderer) Render(_ context.Context, form *model.Form, opts render.RenderOptions) ([]byte, error) {
	r.options = opts
	return []byte(form.Name()), nil
}

type selectorCall struct {
	name    string
	variant string
}

type stubThemeSelector struct {
	selection *theme.Selection
	err       error
	calls     []selectorCall
}

func (s *stubThemeSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.calls = append(s.calls, selectorCall{name: name, variant: variant})
	return s.selection, s.err
}

func captureRegistry() (*render.Registry, *captureRenderer) {
	renderer := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)
	return registry, renderer
}

func TestRenderPassesThemeConfigToRenderer(t *testing.T) {
	t.Parallel()

	selector := &stubThemeSelector{selection: &theme.Selection{
		Theme:   "acme",
		Variant: "custom-variant",
		Manifest: &theme.Manifest{
			Name:    "acme",
			Version: "1.0.0",
			Tokens:  map[string]string{"brand": "#123456"},
		},
	}}
	registry, renderer := captureRegistry()
	o := newOrchestrator(t, orchestrator.WithRegistry(registry), orchestrator.WithThemeSelector(selector))

	_, err := o.Render(testsupport.Context(), orchestrator.RenderRequest{
		Module:       "purchasing",
		Form:         "supplier",
		Renderer:     "capture",
		ThemeName:    "custom-theme",
		ThemeVariant: "custom-variant",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if len(selector.calls) != 1 || selector.calls[0] != (selectorCall{"custom-theme", "custom-variant"}) {
		t.Fatalf("unexpected selector calls %+v", selector.calls)
	}
	cfg := renderer.options.Theme
	if cfg == nil {
		t.Fatalf("expected theme config passed to renderer")
	}
	if cfg.Theme != "acme" || cfg.Variant != "custom-variant" {
		t.Fatalf("unexpected theme %q/%q", cfg.Theme, cfg.Variant)
	}
	if cfg.Partials[html.PartialField] != html.DefaultPartials()[html.PartialField] {
		t.Fatalf("partials not merged with fallbacks: %v", cfg.Partials)
	}
	if cfg.Tokens["brand"] != "#123456" || cfg.CSSVars["--brand"] != "#123456" {
		t.Fatalf("tokens not propagated: %v %v", cfg.Tokens, cfg.CSSVars)
	}
	if cfg.AssetURL == nil {
		t.Fatalf("expected AssetURL resolver present")
	}
}

func TestRenderWithThemeProviderUsesDefaults(t *testing.T) {
	t.Parallel()

	provider := theme.NewRegistry()
	err := provider.Register(&theme.Manifest{
		Name:      "acme",
		Version:   "1.0.0",
		Tokens:    map[string]string{"brand": "#123456"},
		Templates: map[string]string{html.PartialForm: "themes/acme/form.html"},
		Assets: theme.Assets{
			Prefix: "/assets/themes/acme",
			Files:  map[string]string{html.StylesheetAsset: "theme.css"},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens:    map[string]string{"brand": "#654321"},
				Templates: map[string]string{html.PartialField: "themes/acme/dark/field.html"},
			},
		},
	})
	if err != nil {
		t.Fatalf("register manifest: %v", err)
	}

	registry, renderer := captureRegistry()
	o := newOrchestrator(t,
		orchestrator.WithRegistry(registry),
		orchestrator.WithThemeProvider(provider, "acme", "dark"),
	)
	if _, err := o.Render(testsupport.Context(), orchestrator.RenderRequest{Module: "sales", Form: "quote", Renderer: "capture"}); err != nil {
		t.Fatalf("render: %v", err)
	}

	cfg := renderer.options.Theme
	if cfg == nil {
		t.Fatalf("expected theme config passed to renderer")
	}
	if cfg.Theme != "acme" || cfg.Variant != "dark" {
		t.Fatalf("unexpected theme %q/%q", cfg.Theme, cfg.Variant)
	}
	if cfg.Partials[html.PartialForm] != "themes/acme/form.html" {
		t.Fatalf("expected base template override, got %s", cfg.Partials[html.PartialForm])
	}
	if cfg.Partials[html.PartialField] != "themes/acme/dark/field.html" {
		t.Fatalf("expected variant template override, got %s", cfg.Partials[html.PartialField])
	}
	if cfg.CSSVars["--brand"] != "#654321" {
		t.Fatalf("css vars not derived from variant tokens, got %s", cfg.CSSVars["--brand"])
	}
	if got := cfg.AssetURL(html.StylesheetAsset); got != "/assets/themes/acme/theme.css" {
		t.Fatalf("unexpected stylesheet url %q", got)
	}
}

func TestRenderFailsWhenThemeCannotBeSelected(t *testing.T) {
	t.Parallel()

	selector := &stubThemeSelector{err: errors.New("theme not found")}
	registry, _ := captureRegistry()
	o := newOrchestrator(t, orchestrator.WithRegistry(registry), orchestrator.WithThemeSelector(selector))

	_, err := o.Render(testsupport.Context(), orchestrator.RenderRequest{Module: "sales", Form: "quote", Renderer: "capture"})
	if err == nil || !errors.Is(err, selector.err) {
		t.Fatalf("expected selector error, got %v", err)
	}
}

func TestRenderKeepsCallerTheme(t *testing.T) {
	t.Parallel()

	selector := &stubThemeSelector{}
	registry, renderer := captureRegistry()
	o := newOrchestrator(t, orchestrator.WithRegistry(registry), orchestrator.WithThemeSelector(selector))

	explicit := &theme.RendererConfig{Theme: "inline"}
	_, err := o.Render(testsupport.Context(), orchestrator.RenderRequest{
		Module:   "sales",
		Form:     "quote",
		Renderer: "capture",
		Options:  render.RenderOptions{Theme: explicit},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if renderer.options.Theme != explicit || len(selector.calls) != 0 {
		t.Fatalf("caller supplied theme must be used as is")
	}
}
