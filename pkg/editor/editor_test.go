package editor_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-mdaform/pkg/editor"
	"github.com/goliatone/go-mdaform/pkg/model"
	"github.com/goliatone/go-mdaform/pkg/testsupport"
	"github.com/goliatone/go-mdaform/pkg/visibility"
)

func TestNewDocumentLayout(t *testing.T) {
	t.Parallel()

	doc := editor.New()
	if err := doc.AddModule("hr"); err != nil {
		t.Fatalf("add module: %v", err)
	}
	if err := doc.AddForm("hr", "leave"); err != nil {
		t.Fatalf("add form: %v", err)
	}
	out, err := doc.Bytes()
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}

	want := `<?xml version="1.0" encoding="UTF-8"?>
<FormMetadata>
  <Modules>
    <Module name="hr">
      <Forms>
        <Form name="leave">
          <FieldList></FieldList>
        </Form>
      </Forms>
    </Module>
  </Modules>
</FormMetadata>
`
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestSetFieldsRoundTrip(t *testing.T) {
	t.Parallel()

	doc := editor.New()
	if err := doc.AddModule("hr"); err != nil {
		t.Fatalf("add module: %v", err)
	}
	if err := doc.AddForm("hr", "leave"); err != nil {
		t.Fatalf("add form: %v", err)
	}
	fields := []model.Field{
		{
			Name:       "Employee",
			Kind:       model.KindTextField,
			MaxLength:  40,
			Validation: &model.ValidationSpec{Required: true},
		},
		{
			Name:    "Type",
			Kind:    model.KindComboBox,
			Options: []string{"annual", "sick"},
		},
		{
			Name:       "Allowance",
			Kind:       model.KindMoneyField,
			Visibility: visibility.Mask("110"),
			Validation: &model.ValidationSpec{Numeric: true},
			Geometry:   model.Geometry{Left: 5, Top: 90, Width: 120, Height: 24},
		},
		{Name: "Mobile", Kind: model.KindTextField, Role: model.RolePhone},
	}
	if err := doc.SetFields("hr", "leave", fields); err != nil {
		t.Fatalf("set fields: %v", err)
	}
	columns := []model.DetailColumn{
		{Name: "Day", Width: 80, Type: "text"},
		{Name: "Hours", Type: "number", Role: model.RoleQuantity},
	}
	if err := doc.SetColumns("hr", "leave", columns); err != nil {
		t.Fatalf("set columns: %v", err)
	}

	out, err := doc.Bytes()
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}
	schema, err := testsupport.ParseSchema(out)
	if err != nil {
		t.Fatalf("parse edited document: %v\n%s", err, out)
	}
	form, err := schema.Form("hr", "leave")
	if err != nil {
		t.Fatalf("resolve form: %v", err)
	}

	want := []model.Field{
		{
			Name:       "Employee",
			Kind:       model.KindTextField,
			MaxLength:  40,
			Visibility: visibility.Default,
			Validation: &model.ValidationSpec{Required: true},
			Geometry:   model.DefaultGeometry,
		},
		{
			Name:       "Type",
			Kind:       model.KindComboBox,
			Options:    []string{"annual", "sick"},
			Visibility: visibility.Default,
			Geometry:   model.DefaultGeometry,
		},
		{
			Name:       "Allowance",
			Kind:       model.KindMoneyField,
			MaxLength:  10,
			Visibility: visibility.Mask("110"),
			Validation: &model.ValidationSpec{Numeric: true},
			Geometry:   model.Geometry{Left: 5, Top: 90, Width: 120, Height: 24},
		},
		{
			Name:       "Mobile",
			Kind:       model.KindTextField,
			MaxLength:  200,
			Visibility: visibility.Default,
			Role:       model.RolePhone,
			Geometry:   model.DefaultGeometry,
		},
	}
	if diff := cmp.Diff(want, form.Fields()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(columns, form.Columns()); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}
}

func TestEditExistingDocumentKeepsUntouchedNodes(t *testing.T) {
	t.Parallel()

	src, err := testsupport.LoadDocument(testsupport.ERPMetadata)
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}

	doc, err := editor.Open(src.Raw())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if diff := cmp.Diff([]string{"purchasing", "sales"}, doc.Modules()); diff != "" {
		t.Fatalf("modules mismatch (-want +got):\n%s", diff)
	}
	if err := doc.DeleteForm("purchasing", "supplier"); err != nil {
		t.Fatalf("delete form: %v", err)
	}
	if err := doc.DeleteModule("sales"); err != nil {
		t.Fatalf("delete module: %v", err)
	}

	out, err := doc.Bytes()
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}
	schema, err := testsupport.ParseSchema(out)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff([]string{"purchasing"}, schema.ModuleNames()); diff != "" {
		t.Fatalf("modules mismatch (-want +got):\n%s", diff)
	}
	before := testsupport.MustForm(t, testsupport.ERPMetadata, "purchasing", "order")
	after, err := schema.Form("purchasing", "order")
	if err != nil {
		t.Fatalf("resolve order: %v", err)
	}
	if diff := cmp.Diff(before.Fields(), after.Fields()); diff != "" {
		t.Fatalf("untouched form changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(before.Columns(), after.Columns()); diff != "" {
		t.Fatalf("untouched columns changed (-want +got):\n%s", diff)
	}
}

func TestNameRules(t *testing.T) {
	t.Parallel()

	doc := editor.New()
	if err := doc.AddModule("  "); !errors.Is(err, editor.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := doc.AddModule("hr"); err != nil {
		t.Fatalf("add module: %v", err)
	}
	if err := doc.AddModule("hr"); !errors.Is(err, editor.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	if err := doc.AddForm("missing", "f"); !errors.Is(err, editor.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := doc.AddForm("hr", "leave"); err != nil {
		t.Fatalf("add form: %v", err)
	}
	if err := doc.AddForm("hr", "leave"); !errors.Is(err, editor.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	if err := doc.DeleteForm("hr", "other"); !errors.Is(err, editor.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := doc.DeleteModule("other"); !errors.Is(err, editor.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	dup := []model.Field{
		{Name: "A", Kind: model.KindTextField},
		{Name: "A", Kind: model.KindMoneyField},
	}
	if err := doc.SetFields("hr", "leave", dup); !errors.Is(err, editor.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	if err := doc.SetFields("hr", "leave", []model.Field{{Name: "B", Kind: "Slider"}}); err == nil || !strings.Contains(err.Error(), "unknown kind") {
		t.Fatalf("expected unknown kind error, got %v", err)
	}

	forms, err := doc.Forms("hr")
	if err != nil {
		t.Fatalf("forms: %v", err)
	}
	if diff := cmp.Diff([]string{"leave"}, forms); diff != "" {
		t.Fatalf("forms mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenRejectsMalformedXML(t *testing.T) {
	t.Parallel()

	if _, err := editor.Open([]byte("<FormMetadata>")); err == nil {
		t.Fatalf("expected an error for unterminated document")
	}
}
