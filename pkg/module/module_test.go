package module_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/decline/pkg/module"
)

func TestNewInvalidPrefixPanics(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{"empty", ""},
		{"no leading slash", "sign"},
		{"nested path", "/sign/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Error("expected panic for invalid prefix")
				}
			}()
			module.New(tt.prefix, http.NewServeMux())
		})
	}
}

func TestServePrefixStripping(t *testing.T) {
	mux := http.NewServeMux()

	var token string
	mux.HandleFunc("GET /{token}/rejected", func(w http.ResponseWriter, r *http.Request) {
		token = r.PathValue("token")
		w.WriteHeader(http.StatusOK)
	})

	m := module.New("/sign", mux)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/sign/tok-1/rejected", nil)
	m.Serve(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
	if token != "tok-1" {
		t.Errorf("token: got %s, want tok-1", token)
	}
}

func TestModuleMiddleware(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	m := module.New("/sign", mux)

	var middlewareCalled bool
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			middlewareCalled = true
			next.ServeHTTP(w, r)
		})
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/sign", nil)
	m.Serve(rec, req)

	if !middlewareCalled {
		t.Error("module middleware should have been called")
	}
}

func TestRouterDispatch(t *testing.T) {
	signMux := http.NewServeMux()
	signMux.HandleFunc("GET /{token}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("sign:" + r.PathValue("token")))
	})

	router := module.NewRouter()
	router.Mount(module.New("/sign", signMux))
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	router.Handle("GET /metrics", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("metrics"))
	}))

	tests := []struct {
		name     string
		path     string
		wantBody string
	}{
		{"portal module", "/sign/abc", "sign:abc"},
		{"trailing slash", "/sign/abc/", "sign:abc"},
		{"native handler func", "/healthz", "ok"},
		{"native handler", "/metrics", "metrics"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("GET", tt.path, nil)
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Errorf("status: got %d, want 200", rec.Code)
			}
			if body := rec.Body.String(); body != tt.wantBody {
				t.Errorf("body: got %s, want %s", body, tt.wantBody)
			}
		})
	}
}

func TestRouterDuplicateMountPanics(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/sign", http.NewServeMux()))

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for duplicate prefix")
		}
	}()
	router.Mount(module.New("/sign", http.NewServeMux()))
}

func TestServeKeepsEscapedSegments(t *testing.T) {
	mux := http.NewServeMux()

	var token string
	mux.HandleFunc("GET /{token}", func(w http.ResponseWriter, r *http.Request) {
		token = r.PathValue("token")
	})

	m := module.New("/sign", mux)

	rec := httptest.NewRecorder()
	m.Serve(rec, httptest.NewRequest("GET", "/sign/a%2Fb", nil))

	if token != "a/b" {
		t.Errorf("token: got %q, want a/b", token)
	}
}
