package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/decline/internal/config"
	"github.com/JaimeStill/decline/internal/infrastructure"
)

func newTestInfra(t *testing.T) *infrastructure.Infrastructure {
	t.Helper()

	cfg := &config.Config{
		Upstream: config.UpstreamConfig{
			BaseURL:            "http://127.0.0.1:1",
			Timeout:            "1s",
			BreakerMaxRequests: 1,
			BreakerInterval:    "1m",
			BreakerTimeout:     "1m",
			BreakerFailures:    5,
		},
	}

	infra, err := infrastructure.NewWithLogger(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("infrastructure: %v", err)
	}
	return infra
}

func TestBuildRouterNativeRoutes(t *testing.T) {
	infra := newTestInfra(t)

	router, err := buildRouter(infra)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"healthz", "/healthz", http.StatusOK, `"ok"`},
		{"readyz before startup", "/readyz", http.StatusServiceUnavailable, `"not ready"`},
		{"metrics", "/metrics", http.StatusOK, "go_goroutines"},
		{"portal stylesheet", "/assets/portal.css", http.StatusOK, ".dialog"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body missing %q", tt.wantBody)
			}
		})
	}
}

func TestReadyzAfterStartup(t *testing.T) {
	infra := newTestInfra(t)

	router, err := buildRouter(infra)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	infra.Lifecycle.WaitForStartup()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
}

func TestServerMountsPortal(t *testing.T) {
	infra := newTestInfra(t)

	cfg := &config.Config{}
	cfg.Portal = config.PortalConfig{}
	if err := cfg.Portal.Finalize(); err != nil {
		t.Fatalf("portal config: %v", err)
	}

	srv, err := newServer(cfg, infra)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/sign/tok-abc/reject/toggle", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400 for an action without a session", rec.Code)
	}
}

func TestServerPortalCORS(t *testing.T) {
	infra := newTestInfra(t)

	cfg := &config.Config{}
	cfg.Portal.CORS.Enabled = true
	cfg.Portal.CORS.Origins = []string{"https://host.example.com"}
	if err := cfg.Portal.Finalize(); err != nil {
		t.Fatalf("portal config: %v", err)
	}

	srv, err := newServer(cfg, infra)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	req := httptest.NewRequest("OPTIONS", "/sign/tok-abc/reject/submit", nil)
	req.Header.Set("Origin", "https://host.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status: got %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://host.example.com" {
		t.Errorf("allow-origin: got %q", got)
	}
}

func TestServerPortalNotFound(t *testing.T) {
	infra := newTestInfra(t)

	cfg := &config.Config{}
	if err := cfg.Portal.Finalize(); err != nil {
		t.Fatalf("portal config: %v", err)
	}

	srv, err := newServer(cfg, infra)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/sign/tok-abc/elsewhere", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type: got %q, want the portal error page", ct)
	}
}
