package mdaform_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	mdaform "github.com/goliatone/go-mdaform"
	"github.com/goliatone/go-mdaform/pkg/model"
	"github.com/goliatone/go-mdaform/pkg/orchestrator"
	"github.com/goliatone/go-mdaform/pkg/store"
	"github.com/goliatone/go-mdaform/pkg/testsupport"
)

func TestLoadFileSubmits(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	raw, err := fs.ReadFile(testsupport.FS(), testsupport.ERPMetadata)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	path := filepath.Join(dir, "forms.xml")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	o, err := mdaform.LoadFile(testsupport.Context(), path,
		orchestrator.WithRepository(store.NewFileStore(filepath.Join(dir, "data"))),
	)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	res, err := o.Submit(testsupport.Context(), mdaform.SubmitRequest{
		Module: "sales",
		Form:   "quote",
		Values: map[string]string{"Customer": "ACME"},
		Rows:   []model.DetailRow{{"A1", "Nut", "3", "2", ""}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.Valid() || res.Total != 6 {
		t.Fatalf("unexpected result %+v", res)
	}
	if _, err := os.Stat(filepath.Join(dir, "data", store.CollectionFileName("sales", "quote"))); err != nil {
		t.Fatalf("collection not written: %v", err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	t.Parallel()

	if _, err := mdaform.LoadFile(testsupport.Context(), filepath.Join(t.TempDir(), "absent.xml")); err == nil {
		t.Fatalf("expected error for missing schema")
	}
}

func TestEmbeddedTemplates(t *testing.T) {
	t.Parallel()

	if _, err := fs.Stat(mdaform.EmbeddedTemplates(), "form.html"); err != nil {
		t.Fatalf("form.html missing from embedded templates: %v", err)
	}
}
