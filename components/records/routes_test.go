package records

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRegisterRoutes_MountsUnderBasePath(t *testing.T) {
	mux := http.NewServeMux()
	pattern, err := New(newService(t), WithBasePath("v1/")).RegisterRoutes(mux)
	if err != nil {
		t.Fatalf("register routes: %v", err)
	}
	if pattern != "/v1/" {
		t.Fatalf("expected pattern /v1/, got %q", pattern)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/schema", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestRegisterRoutes_RequiresMuxAndService(t *testing.T) {
	if _, err := RegisterRoutes(nil, newService(t)); err == nil {
		t.Fatalf("expected error for nil mux")
	}
	if _, err := RegisterRoutes(http.NewServeMux(), nil); err == nil {
		t.Fatalf("expected error for nil service")
	}
}

func TestMountPath(t *testing.T) {
	if got := MountPath(); got != "/api/" {
		t.Fatalf("default mount path = %q", got)
	}
	if got := MountPath(WithBasePath("/")); got != "/" {
		t.Fatalf("root mount path = %q", got)
	}
}
