package web

import "net/http"

// Router is an http.ServeMux that hands requests matching no pattern to a
// fallback handler. Method mismatches keep the mux's 405 response.
type Router struct {
	mux      *http.ServeMux
	fallback http.HandlerFunc
}

func NewRouter() *Router {
	return &Router{mux: http.NewServeMux()}
}

// SetFallback sets the handler for requests the mux would answer with 404.
func (r *Router) SetFallback(handler http.HandlerFunc) {
	r.fallback = handler
}

func (r *Router) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
}

func (r *Router) HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	r.mux.HandleFunc(pattern, handler)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h, pattern := r.mux.Handler(req)
	if pattern != "" || r.fallback == nil {
		r.mux.ServeHTTP(w, req)
		return
	}

	nf := &notFoundWriter{w: w, header: make(http.Header)}
	h.ServeHTTP(nf, req)
	if nf.notFound {
		r.fallback(w, req)
	}
}

// notFoundWriter buffers headers until the status is known, swallowing a 404
// so the fallback can answer instead.
type notFoundWriter struct {
	w        http.ResponseWriter
	header   http.Header
	notFound bool
	written  bool
}

func (n *notFoundWriter) Header() http.Header {
	return n.header
}

func (n *notFoundWriter) WriteHeader(status int) {
	if n.written || n.notFound {
		return
	}
	if status == http.StatusNotFound {
		n.notFound = true
		return
	}
	n.written = true
	for k, v := range n.header {
		n.w.Header()[k] = v
	}
	n.w.WriteHeader(status)
}

func (n *notFoundWriter) Write(b []byte) (int, error) {
	if !n.written && !n.notFound {
		n.WriteHeader(http.StatusOK)
	}
	if n.notFound {
		return len(b), nil
	}
	return n.w.Write(b)
}
