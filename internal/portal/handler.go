package portal

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"

	"github.com/JaimeStill/decline/internal/config"
	"github.com/JaimeStill/decline/internal/recipient"
	"github.com/JaimeStill/decline/internal/rejection"
	"github.com/JaimeStill/decline/pkg/handlers"
	"github.com/JaimeStill/decline/pkg/routes"
	"github.com/JaimeStill/decline/pkg/web"
)

// SessionCookie names the cookie that carries the signing session ID. Each
// cookie is scoped to its token's page path so signing links never share one.
const SessionCookie = "decline_session"

const layout = "portal"

//go:embed templates static
var content embed.FS

var (
	signView     = web.ViewDef{Template: "sign.html", Title: "Review document"}
	rejectedView = web.ViewDef{Template: "rejected.html", Title: "Document rejected"}
	completeView = web.ViewDef{Template: "complete.html", Title: "Rejection recorded"}
	errorView    = web.ViewDef{Template: "error.html", Title: "Unable to continue"}
)

// Recipient is the upstream the portal rejects documents through.
type Recipient interface {
	rejection.Rejecter
	Lookup(ctx context.Context, token string) (*recipient.Envelope, error)
}

// Handler serves the signing pages and drives each session's rejection workflow.
type Handler struct {
	upstream Recipient
	sessions *Store
	views    *web.TemplateSet
	cfg      *config.PortalConfig
	metrics  *Metrics
	flight   singleflight.Group
	logger   *slog.Logger
}

// NewHandler creates a Handler. Templates are parsed here, so a broken
// template fails startup rather than a request.
func NewHandler(cfg *config.PortalConfig, upstream Recipient, reg prometheus.Registerer, logger *slog.Logger) (*Handler, error) {
	funcs := template.FuncMap{
		"kind":      func(k rejection.Kind) string { return k.String() },
		"dismissMS": func(n rejection.Notification) int64 { return n.Duration.Milliseconds() },
	}

	views, err := web.NewTemplateSet(
		content,
		"templates/layouts/*.html",
		"templates/views",
		cfg.BasePath,
		funcs,
		[]web.ViewDef{signView, rejectedView, completeView, errorView},
	)
	if err != nil {
		return nil, fmt.Errorf("parse portal templates: %w", err)
	}

	metrics := NewMetrics(reg)

	return &Handler{
		upstream: upstream,
		sessions: NewStore(cfg.SessionTTLDuration(), metrics.Sessions),
		views:    views,
		cfg:      cfg,
		metrics:  metrics,
		logger:   logger.With("handler", "portal"),
	}, nil
}

// Sessions exposes the session store for sweeping.
func (h *Handler) Sessions() *Store {
	return h.sessions
}

// Routes returns the portal routes relative to the portal base path.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/{token}",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Sign},
			{Method: "GET", Pattern: "/rejected", Handler: h.Rejected},
		},
		Children: []routes.Group{
			{
				Prefix: "/reject",
				Routes: []routes.Route{
					{Method: "POST", Pattern: "/toggle", Handler: h.Toggle},
					{Method: "POST", Pattern: "/open", Handler: h.Open},
					{Method: "POST", Pattern: "/cancel", Handler: h.Cancel},
					{Method: "POST", Pattern: "/reason", Handler: h.Reason},
					{Method: "POST", Pattern: "/submit", Handler: h.Submit},
				},
			},
		},
	}
}

// Sign renders the signing page, starting a session on first visit.
func (h *Handler) Sign(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	sess, ok := h.session(r, token)
	if !ok {
		created, err := h.startSession(r, token)
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		sess = created
		h.setCookie(w, sess)
	}

	if sess.Envelope.Rejected() {
		http.Redirect(w, r, rejection.RejectedPath(h.cfg.BasePath, token), http.StatusSeeOther)
		return
	}

	if done, reason := sess.Rejected(); done {
		if !sess.Embedded {
			http.Redirect(w, r, rejection.RejectedPath(h.cfg.BasePath, token), http.StatusSeeOther)
			return
		}
		h.render(w, http.StatusOK, completeView, h.page(sess, reason))
		return
	}

	h.render(w, http.StatusOK, signView, h.page(sess, ""))
}

// Rejected renders the confirmation page once the document is rejected.
// Without a session the upstream status decides; a pending document sends
// the visitor back to the signing page.
func (h *Handler) Rejected(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	signPage := newActions(h.cfg.BasePath, token).Page

	if sess, ok := h.session(r, token); ok {
		if done, _ := sess.Rejected(); !done && !sess.Envelope.Rejected() {
			http.Redirect(w, r, signPage, http.StatusSeeOther)
			return
		}
		h.render(w, http.StatusOK, rejectedView, h.page(sess, ""))
		return
	}

	env, err := h.upstream.Lookup(r.Context(), token)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	if !env.Rejected() {
		http.Redirect(w, r, signPage, http.StatusSeeOther)
		return
	}
	h.render(w, http.StatusOK, rejectedView, pageData{Envelope: env, Actions: newActions(h.cfg.BasePath, token)})
}

// NotFound renders the error page for paths under the portal that match no route.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, ErrNotFound)
}

// Toggle flips the dialog.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	h.drive(w, r, func(sess *Session) { sess.Controller.Toggle() })
}

// Open shows the dialog.
func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	h.drive(w, r, func(sess *Session) { sess.Controller.Open() })
}

// Cancel closes the dialog and discards the reason.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.drive(w, r, func(sess *Session) { sess.Controller.Cancel() })
}

// Reason stores the posted reason and revalidates it.
func (h *Handler) Reason(w http.ResponseWriter, r *http.Request) {
	h.drive(w, r, func(sess *Session) {
		sess.Controller.SetReason(r.PostFormValue("reason"))
	})
}

// Submit rejects the document with the posted reason. Concurrent submits for
// one session share a single upstream call.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	sess, ok := h.session(r, token)
	if !ok {
		h.renderError(w, r, ErrNoSession)
		return
	}

	if err := r.ParseForm(); err == nil && r.PostForm.Has("reason") {
		sess.Controller.SetReason(r.PostForm.Get("reason"))
	}

	// The rejection completes even if the client disconnects mid-request.
	ctx := context.WithoutCancel(r.Context())

	v, _, shared := h.flight.Do(sess.ID, func() (any, error) {
		res := sess.Controller.Submit(ctx)
		h.metrics.Rejections.WithLabelValues(res.Outcome.String()).Inc()
		return res, nil
	})
	res := v.(rejection.Result)

	if shared {
		h.logger.Debug("submit collapsed into in-flight request", "session", sess.ID)
	}

	var dest string
	if res.Outcome == rejection.OutcomeRejected {
		dest = sess.TakeRedirect()
	}

	if wantsJSON(r) {
		h.respondSubmit(w, sess, res, dest)
		return
	}

	if dest == "" {
		dest = newActions(h.cfg.BasePath, token).Page
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

type notificationJSON struct {
	Kind      string `json:"kind"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	DismissMS int64  `json:"dismiss_ms"`
}

type submitResponse struct {
	Outcome       string             `json:"outcome"`
	Redirect      string             `json:"redirect,omitempty"`
	Reason        string             `json:"reason,omitempty"`
	Error         string             `json:"error,omitempty"`
	Notifications []notificationJSON `json:"notifications,omitempty"`
}

// respondSubmit answers script-driven hosts that post with Accept: application/json.
// Notifications are handed back in the body instead of being flashed.
func (h *Handler) respondSubmit(w http.ResponseWriter, sess *Session, res rejection.Result, dest string) {
	body := submitResponse{
		Outcome:  res.Outcome.String(),
		Redirect: dest,
	}
	for _, n := range sess.TakeNotifications() {
		body.Notifications = append(body.Notifications, notificationJSON{
			Kind:      n.Kind.String(),
			Title:     n.Title,
			Message:   n.Message,
			DismissMS: n.Duration.Milliseconds(),
		})
	}

	status := http.StatusOK
	switch res.Outcome {
	case rejection.OutcomeRejected:
		if sess.Embedded {
			body.Reason = res.Reason
		}
	case rejection.OutcomeInvalid:
		status = http.StatusUnprocessableEntity
		body.Error = res.Err.Error()
	case rejection.OutcomeFailed:
		status = MapHTTPStatus(res.Err)
		body.Error = rejection.FailureMessage
	case rejection.OutcomeIgnored:
		status = http.StatusConflict
		body.Error = "rejection dialog is closed or already submitting"
	}

	handlers.RespondJSON(w, status, body)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func (h *Handler) drive(w http.ResponseWriter, r *http.Request, fn func(*Session)) {
	token := r.PathValue("token")

	sess, ok := h.session(r, token)
	if !ok {
		h.renderError(w, r, ErrNoSession)
		return
	}

	fn(sess)
	http.Redirect(w, r, newActions(h.cfg.BasePath, token).Page, http.StatusSeeOther)
}

func (h *Handler) session(r *http.Request, token string) (*Session, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil, false
	}

	sess, ok := h.sessions.Get(cookie.Value)
	if !ok || sess.Token != token {
		return nil, false
	}
	return sess, true
}

func (h *Handler) startSession(r *http.Request, token string) (*Session, error) {
	env, err := h.upstream.Lookup(r.Context(), token)
	if err != nil {
		return nil, err
	}

	query := r.URL.Query()
	sess := &Session{
		ID:       uuid.NewString(),
		Token:    token,
		Envelope: env,
		Embedded: query.Get(h.cfg.EmbedParam) == "true",
	}

	props := rejection.Props{
		DocumentID: env.DocumentID,
		Token:      token,
		OpenIntent: query.Get(h.cfg.IntentParam),
	}
	if sess.Embedded {
		props.OnRejected = sess.complete
	}

	ctrl, err := rejection.New(props, rejection.Options{
		Rejecter:             h.upstream,
		Notifier:             sess,
		Navigator:            sess,
		Logger:               h.logger,
		BasePath:             h.cfg.BasePath,
		NotificationDuration: h.cfg.NotificationDurationValue(),
	})
	if err != nil {
		return nil, err
	}
	sess.Controller = ctrl

	h.sessions.Add(sess)
	h.logger.Info("session started", "session", sess.ID, "document_id", env.DocumentID, "embedded", sess.Embedded)
	return sess, nil
}

func (h *Handler) setCookie(w http.ResponseWriter, sess *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     newActions(h.cfg.BasePath, sess.Token).Page,
		MaxAge:   int(h.cfg.SessionTTLDuration().Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) render(w http.ResponseWriter, status int, view web.ViewDef, data pageData) {
	if err := h.views.Render(w, status, layout, view, data); err != nil {
		h.logger.Error("render failed", "view", view.Template, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapHTTPStatus(err)
	if wantsJSON(r) {
		handlers.RespondError(w, h.logger, status, err)
		return
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("portal request failed", "status", status, "error", err)
	} else {
		h.logger.Warn("portal request failed", "status", status, "error", err)
	}
	h.render(w, status, errorView, pageData{Message: errorMessage(status)})
}

type actions struct {
	Page   string
	Toggle string
	Open   string
	Cancel string
	Reason string
	Submit string
}

func newActions(basePath, token string) actions {
	page := strings.TrimSuffix(basePath, "/") + "/" + url.PathEscape(token)
	return actions{
		Page:   page,
		Toggle: page + "/reject/toggle",
		Open:   page + "/reject/open",
		Cancel: page + "/reject/cancel",
		Reason: page + "/reject/reason",
		Submit: page + "/reject/submit",
	}
}

type pageData struct {
	Envelope      *recipient.Envelope
	Actions       actions
	State         rejection.State
	ReasonError   string
	Reason        string
	Notifications []rejection.Notification
	MinLength     int
	MaxLength     int
	Message       string
}

func (h *Handler) page(sess *Session, reason string) pageData {
	state := sess.Controller.State()

	var reasonErr string
	if state.Form.Touched && state.Form.Err != nil {
		reasonErr = state.Form.Err.Error()
	}

	return pageData{
		Envelope:      sess.Envelope,
		Actions:       newActions(h.cfg.BasePath, sess.Token),
		State:         state,
		ReasonError:   reasonErr,
		Reason:        reason,
		Notifications: sess.TakeNotifications(),
		MinLength:     rejection.MinReasonLength,
		MaxLength:     rejection.MaxReasonLength,
	}
}
