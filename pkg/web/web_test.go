package web_test

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/JaimeStill/decline/pkg/web"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"layouts/app.html":  {Data: []byte(`{{ define "app" }}<title>{{ .Title }}</title><main>{{ template "content" . }}</main>{{ end }}`)},
		"views/home.html":   {Data: []byte(`{{ define "content" }}{{ shout .Data }} at {{ .BasePath }}{{ end }}`)},
		"views/broken.html": {Data: []byte(`{{ define "content" }}{{ .Data.Missing.Field }}{{ end }}`)},
		"static/app.css":    {Data: []byte(`body { margin: 0; }`)},
	}
}

func newSet(t *testing.T, views ...web.ViewDef) *web.TemplateSet {
	t.Helper()
	funcs := template.FuncMap{"shout": strings.ToUpper}
	ts, err := web.NewTemplateSet(testFS(), "layouts/*.html", "views", "/sign", funcs, views)
	if err != nil {
		t.Fatalf("new template set: %v", err)
	}
	return ts
}

func TestRender(t *testing.T) {
	home := web.ViewDef{Template: "home.html", Title: "Home"}
	ts := newSet(t, home)

	rec := httptest.NewRecorder()
	if err := ts.Render(rec, http.StatusAccepted, "app", home, "hello"); err != nil {
		t.Fatalf("render: %v", err)
	}

	if rec.Code != http.StatusAccepted {
		t.Errorf("status: got %d, want 202", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<title>Home</title>") {
		t.Errorf("missing title: %s", body)
	}
	if !strings.Contains(body, "HELLO at /sign") {
		t.Errorf("missing content: %s", body)
	}
}

func TestRenderFailureWritesNothing(t *testing.T) {
	broken := web.ViewDef{Template: "broken.html", Title: "Broken"}
	ts := newSet(t, broken)

	rec := httptest.NewRecorder()
	if err := ts.Render(rec, http.StatusOK, "app", broken, "not a struct"); err == nil {
		t.Fatal("expected render error")
	}
	if rec.Body.Len() != 0 {
		t.Errorf("partial body written: %q", rec.Body.String())
	}
}

func TestRenderUnknownView(t *testing.T) {
	ts := newSet(t)

	rec := httptest.NewRecorder()
	if err := ts.Render(rec, http.StatusOK, "app", web.ViewDef{Template: "nope.html"}, nil); err == nil {
		t.Fatal("expected error for unknown view")
	}
}

func TestAssets(t *testing.T) {
	h, err := web.Assets(testFS(), "static", "/static")
	if err != nil {
		t.Fatalf("assets: %v", err)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/static/app.css", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "margin") {
		t.Errorf("body: got %q", rec.Body.String())
	}
	if rec.Header().Get("Cache-Control") == "" {
		t.Error("cache header should be set")
	}
}

func TestRouterFallback(t *testing.T) {
	r := web.NewRouter()
	r.HandleFunc("GET /{token}", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("page " + req.PathValue("token")))
	})
	r.SetFallback(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("<p>missing</p>"))
	})

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"matched", "GET", "/tok", http.StatusOK, "page tok"},
		{"unmatched", "GET", "/tok/unknown", http.StatusNotFound, "<p>missing</p>"},
		{"method mismatch", "POST", "/tok", http.StatusMethodNotAllowed, "Method Not Allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body: got %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRouterWithoutFallback(t *testing.T) {
	r := web.NewRouter()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/nowhere", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}
