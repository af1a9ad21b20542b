package parser_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-mdaform/internal/schema/parser"
	pkgmodel "github.com/goliatone/go-mdaform/pkg/model"
	pkgschema "github.com/goliatone/go-mdaform/pkg/schema"
	"github.com/goliatone/go-mdaform/pkg/testsupport"
)

func parse(t *testing.T, raw string) (pkgschema.SchemaIR, error) {
	t.Helper()
	doc := pkgschema.MustNewDocument(pkgschema.SourceFromFS("inline.xml"), []byte(raw))
	return parser.New(pkgschema.ParserOptions{}).Parse(context.Background(), doc)
}

func TestParseModulesHierarchy(t *testing.T) {
	t.Parallel()

	doc, err := testsupport.LoadDocument(testsupport.ERPMetadata)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	p := parser.New(pkgschema.ParserOptions{})

	strategy, err := p.Strategy(doc)
	if err != nil {
		t.Fatalf("strategy: %v", err)
	}
	if strategy != "modules" {
		t.Fatalf("expected modules strategy, got %q", strategy)
	}

	ir, err := p.Parse(context.Background(), doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ir.Modules) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(ir.Modules))
	}
	order := ir.Modules[0].Forms[0]
	if order.Name != "order" {
		t.Fatalf("expected first form order, got %q", order.Name)
	}

	var tags []string
	for _, f := range order.Fields {
		tags = append(tags, f.Tag)
	}
	want := []string{"TextField", "MoneyField", "ComboBox", "TextField", "TextField", "TextField"}
	if diff := cmp.Diff(want, tags); diff != "" {
		t.Fatalf("field tags mismatch (-want +got):\n%s", diff)
	}

	status := order.Fields[2]
	if diff := cmp.Diff([]string{"draft", "approved"}, status.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	price := order.Fields[1]
	if price.Validation == nil || price.Validation.Required != "1" || price.Validation.Number != "1" {
		t.Fatalf("unexpected price validation: %+v", price.Validation)
	}
	if len(order.Columns) != 5 || order.Columns[3].Name != "Unit Price" {
		t.Fatalf("unexpected columns: %+v", order.Columns)
	}
}

func TestParseLegacyBareForm(t *testing.T) {
	t.Parallel()

	doc, err := testsupport.LoadDocument(testsupport.LegacyForm)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ir, err := parser.New(pkgschema.ParserOptions{}).Parse(context.Background(), doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ir.Modules) != 1 || ir.Modules[0].Name != pkgmodel.LegacyModuleName {
		t.Fatalf("expected legacy module, got %+v", ir.Modules)
	}
	if got := ir.Modules[0].Forms[0].Name; got != "测试表单" {
		t.Fatalf("expected legacy form name, got %q", got)
	}
}

func TestParseLegacyRootForm(t *testing.T) {
	t.Parallel()

	p := parser.New(pkgschema.NewParserOptions(pkgschema.WithLegacyModule("legacy")))
	doc := pkgschema.MustNewDocument(pkgschema.SourceFromFS("root.xml"), []byte(`<Form name="solo"><FieldList><TextField name="A"/></FieldList></Form>`))
	ir, err := p.Parse(context.Background(), doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ir.Modules) != 1 || ir.Modules[0].Name != "legacy" {
		t.Fatalf("expected module legacy, got %+v", ir.Modules)
	}
	if got := ir.Modules[0].Forms[0].Fields[0].Attributes["name"]; got != "A" {
		t.Fatalf("expected field A, got %q", got)
	}
}

func TestParseWithoutModulesOrFormIsEmpty(t *testing.T) {
	t.Parallel()

	ir, err := parse(t, `<?xml version="1.0"?><FormMetadata><Other/></FormMetadata>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !ir.Empty() {
		t.Fatalf("expected empty IR, got %+v", ir)
	}
}

func TestParseMalformedDocument(t *testing.T) {
	t.Parallel()

	_, err := parse(t, `<FormMetadata><Modules>`)
	if err == nil {
		t.Fatalf("expected error for truncated document")
	}
	if !errors.Is(err, pkgmodel.ErrSchemaFormat) {
		t.Fatalf("expected schema format error, got %v", err)
	}
}

func TestParseValidationTextIsExact(t *testing.T) {
	t.Parallel()

	ir, err := parse(t, `<R><Form name="f"><FieldList>
<TextField name="a"><Validation><Required>true</Required><Number>0</Number></Validation></TextField>
</FieldList></Form></R>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	v := ir.Modules[0].Forms[0].Fields[0].Validation
	if v == nil || v.Required != "true" || v.Number != "0" {
		t.Fatalf("unexpected validation IR: %+v", v)
	}
}

func TestParseHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	doc := pkgschema.MustNewDocument(pkgschema.SourceFromFS("x.xml"), []byte(`<R/>`))
	if _, err := parser.New(pkgschema.ParserOptions{}).Parse(ctx, doc); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
