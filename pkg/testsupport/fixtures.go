package testsupport

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"testing"
	"time"

	internalmodel "github.com/goliatone/go-mdaform/internal/model"
	"github.com/goliatone/go-mdaform/internal/schema/parser"
	pkgmodel "github.com/goliatone/go-mdaform/pkg/model"
	pkgschema "github.com/goliatone/go-mdaform/pkg/schema"
)

const (
	// ERPMetadata holds two modules with master/detail forms.
	ERPMetadata = "testdata/erp_form_metadata.xml"
	// LegacyForm holds a single bare Form without a Modules node.
	LegacyForm = "testdata/legacy_form.xml"
)

//go:embed testdata/*.xml
var fixtures embed.FS

// FS exposes the embedded fixture documents.
func FS() fs.FS {
	return fixtures
}

// LoadDocument reads an embedded fixture into a schema Document.
func LoadDocument(name string) (pkgschema.Document, error) {
	if name == "" {
		return pkgschema.Document{}, errors.New("testsupport: document name is required")
	}
	data, err := fs.ReadFile(fixtures, name)
	if err != nil {
		return pkgschema.Document{}, fmt.Errorf("testsupport: read document: %w", err)
	}
	return pkgschema.NewDocument(pkgschema.SourceFromFS(name), data)
}

// ParseSchema runs the default parser and builder over raw XML.
func ParseSchema(raw []byte) (*pkgmodel.Schema, error) {
	doc, err := pkgschema.NewDocument(pkgschema.SourceFromFS("inline.xml"), raw)
	if err != nil {
		return nil, err
	}
	return parseDocument(doc)
}

func parseDocument(doc pkgschema.Document) (*pkgmodel.Schema, error) {
	ir, err := parser.New(pkgschema.ParserOptions{}).Parse(context.Background(), doc)
	if err != nil {
		return nil, err
	}
	return internalmodel.New().Build(ir)
}

// MustSchema loads and builds an embedded fixture.
func MustSchema(t testing.TB, name string) *pkgmodel.Schema {
	t.Helper()

	doc, err := LoadDocument(name)
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	schema, err := parseDocument(doc)
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	return schema
}

// MustForm resolves a form from an embedded fixture.
func MustForm(t testing.TB, name, module, form string) *pkgmodel.Form {
	t.Helper()

	f, err := MustSchema(t, name).Form(module, form)
	if err != nil {
		t.Fatalf("resolve form: %v", err)
	}
	return f
}

// FixedClock returns a clock that always reports ts.
func FixedClock(ts time.Time) func() time.Time {
	return func() time.Time {
		return ts
	}
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
