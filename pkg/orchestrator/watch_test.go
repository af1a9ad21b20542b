package orchestrator_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/goliatone/go-mdaform/pkg/model"
	"github.com/goliatone/go-mdaform/pkg/orchestrator"
	"github.com/goliatone/go-mdaform/pkg/schema"
	"github.com/goliatone/go-mdaform/pkg/testsupport"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func replaceFile(t *testing.T, path string, data []byte) {
	t.Helper()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		t.Fatalf("write temp: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("rename: %v", err)
	}
}

func fixture(t *testing.T, name string) []byte {
	t.Helper()

	raw, err := fs.ReadFile(testsupport.FS(), name)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return raw
}

func TestWatchReloadsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forms.xml")
	replaceFile(t, path, fixture(t, testsupport.ERPMetadata))

	o := orchestrator.New(orchestrator.WithSource(schema.SourceFromFile(path)))
	if _, err := o.LoadSchema(testsupport.Context()); err != nil {
		t.Fatalf("load schema: %v", err)
	}

	results := make(chan error, 16)
	w, err := o.Watch(testsupport.Context(), path,
		orchestrator.WithDebounce(20*time.Millisecond),
		orchestrator.WithReloadHook(func(_ *model.Schema, err error) {
			select {
			case results <- err:
			default:
			}
		}),
	)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer func() {
		if err := w.Close(); err != nil {
			t.Fatalf("close watcher: %v", err)
		}
	}()

	waitFor := func(wantErr bool) {
		t.Helper()
		deadline := time.After(5 * time.Second)
		for {
			select {
			case err := <-results:
				if (err != nil) == wantErr {
					return
				}
			case <-deadline:
				t.Fatalf("timed out waiting for reload (wantErr=%v)", wantErr)
			}
		}
	}

	replaceFile(t, path, fixture(t, testsupport.LegacyForm))
	waitFor(false)
	if got := o.Schema().ModuleNames(); len(got) != 1 || got[0] != model.LegacyModuleName {
		t.Fatalf("expected legacy module after reload, got %v", got)
	}

	replaceFile(t, path, []byte("<FormMetadata><Modules>"))
	waitFor(true)
	if got := o.Schema().ModuleNames(); len(got) != 1 || got[0] != model.LegacyModuleName {
		t.Fatalf("failed reload must keep the previous schema, got %v", got)
	}
}

func TestWatchStopsWithContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forms.xml")
	replaceFile(t, path, fixture(t, testsupport.ERPMetadata))

	ctx, cancel := context.WithCancel(context.Background())
	o := orchestrator.New()
	w, err := o.Watch(ctx, path)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	cancel()

	select {
	case <-w.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("watcher did not stop after cancel")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
