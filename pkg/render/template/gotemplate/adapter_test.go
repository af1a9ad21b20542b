package gotemplate_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-mdaform/pkg/render/template/gotemplate"
)

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()

	files := fstest.MapFS{
		"hello.html":      {Data: []byte(`Hello {{ name }}`)},
		"use-global.html": {Data: []byte(`env={{ settings.env }}`)},
		"use-filter.html": {Data: []byte(`{{ name|mdaform_shout }}`)},
		"escape.html":     {Data: []byte(`<b>{{ name }}</b>`)},
	}
	engine, err := gotemplate.New(gotemplate.WithFS(files))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestEngineRenderTemplate(t *testing.T) {
	engine := newEngine(t)

	var written bytes.Buffer
	got, err := engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, &written)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hello Ada" || written.String() != got {
		t.Fatalf("unexpected output %q (writer %q)", got, written.String())
	}

	got, err = engine.Render("escape.html", map[string]any{"name": "<Bolts>"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "<b>&lt;Bolts&gt;</b>" {
		t.Fatalf("values must be escaped, got %q", got)
	}
}

func TestEngineRenderString(t *testing.T) {
	engine := newEngine(t)

	got, err := engine.Render("{{ a }}-{{ b }}", map[string]any{"a": "x", "b": "y"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "x-y" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngineGlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	got, err := engine.RenderTemplate("use-global", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "env=staging" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngineRegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("mdaform_shout", func(input any, _ any) (any, error) {
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}
	if err := engine.RegisterFilter("", nil); err == nil {
		t.Fatalf("expected an error for an empty filter")
	}

	got, err := engine.RenderTemplate("use-filter", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "ADA!" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestNewRequiresTemplates(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected an error without a template source")
	}

	var engine *gotemplate.Engine
	if _, err := engine.RenderTemplate("hello", nil); err == nil {
		t.Fatalf("expected an error from a nil engine")
	}
}
