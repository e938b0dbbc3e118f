package blockapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMountPath_JoinsBasePath(t *testing.T) {
	if got := mountPath("/admin", "/fetch"); got != "/admin/fetch" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := mountPath("admin/", "fetch"); got != "/admin/fetch" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := mountPath("", ""); got != "/" {
		t.Fatalf("unexpected mount path: %q", got)
	}
}

func TestRegisterRoutes_RegistersHandlers(t *testing.T) {
	mux := http.NewServeMux()
	routes, err := RegisterRoutes(mux, "/api/blocks", newEngine(t))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if routes.Fetch != "/api/blocks/fetch" || routes.Render != "/api/blocks/render" {
		t.Fatalf("unexpected routes: %+v", routes)
	}

	req := httptest.NewRequest(http.MethodPost, routes.Render, strings.NewReader(`{"block":{"type_name":"hero"}}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	if _, err := RegisterRoutes(nil, "/", newEngine(t)); err == nil {
		t.Fatalf("expected missing mux error")
	}
}
