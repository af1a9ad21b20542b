package openapi_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-mdaform/pkg/openapi"
	"github.com/goliatone/go-mdaform/pkg/testsupport"
)

func TestGenerateDescribesEveryForm(t *testing.T) {
	t.Parallel()

	schema := testsupport.MustSchema(t, testsupport.ERPMetadata)
	doc, err := openapi.Generate(testsupport.Context(), schema, openapi.WithTitle("ERP"), openapi.WithBasePath("/v1/"))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if doc.Info.Title != "ERP" {
		t.Fatalf("unexpected title %q", doc.Info.Title)
	}

	for _, path := range []string{
		"/v1/schema",
		"/v1/purchasing/order",
		"/v1/purchasing/order/records",
		"/v1/purchasing/order/records/{id}",
		"/v1/purchasing/order/export",
		"/v1/purchasing/order/render",
		"/v1/sales/quote/records",
	} {
		if doc.Paths.Value(path) == nil {
			t.Fatalf("missing path %s", path)
		}
	}
	if doc.Paths.Value("/v1/purchasing/order/records").Post == nil {
		t.Fatalf("records path should accept POST")
	}
	if doc.Paths.Value("/v1/purchasing/supplier/records").Delete != nil {
		t.Fatalf("DELETE belongs on the record path only")
	}
}

func TestSubmissionSchemaFollowsFieldRules(t *testing.T) {
	t.Parallel()

	schema := testsupport.MustSchema(t, testsupport.ERPMetadata)
	doc, err := openapi.Generate(testsupport.Context(), schema)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	ref := doc.Components.Schemas["purchasing.orderSubmission"]
	if ref == nil || ref.Value == nil {
		t.Fatalf("missing submission schema, have %v", keys(doc.Components.Schemas))
	}
	submission := ref.Value
	if diff := cmp.Diff([]string{"Name", "Price", "details"}, submission.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}

	name := submission.Properties["Name"].Value
	if name.MaxLength == nil || *name.MaxLength != 20 {
		t.Fatalf("Name should carry maxLength 20, got %v", name.MaxLength)
	}
	if got := submission.Properties["Price"].Value.Pattern; got != openapi.NumericPattern {
		t.Fatalf("Price should carry the numeric pattern, got %q", got)
	}
	if diff := cmp.Diff([]any{"draft", "approved"}, submission.Properties["Status"].Value.Enum); diff != "" {
		t.Fatalf("Status enum mismatch (-want +got):\n%s", diff)
	}
	if got := submission.Properties["Email"].Value.Format; got != "email" {
		t.Fatalf("Email should use the email format, got %q", got)
	}

	details := submission.Properties["details"].Value
	if details.Items == nil || details.Items.Value.Properties["Unit Price"] == nil {
		t.Fatalf("details rows should list the declared columns")
	}
}

func TestGenerateHandlesNonIdentifierNames(t *testing.T) {
	t.Parallel()

	schema := testsupport.MustSchema(t, testsupport.LegacyForm)
	doc, err := openapi.Generate(testsupport.Context(), schema, openapi.WithBasePath(""))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if doc.Components.Schemas["default.____Submission"] == nil {
		t.Fatalf("expected a sanitised component name, have %v", keys(doc.Components.Schemas))
	}
	if doc.Paths.Value("/default/%E6%B5%8B%E8%AF%95%E8%A1%A8%E5%8D%95/records") == nil {
		t.Fatalf("expected an escaped form path")
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"openapi":"3.0.3"`) {
		t.Fatalf("unexpected document %s", raw)
	}
}

func TestGenerateRejectsNilSchema(t *testing.T) {
	t.Parallel()

	if _, err := openapi.Generate(testsupport.Context(), nil); err == nil {
		t.Fatalf("expected an error for a nil schema")
	}
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
