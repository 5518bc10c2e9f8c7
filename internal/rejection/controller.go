// Package rejection implements the recipient-side workflow for declining a
// document with a possession token: dialog visibility, reason validation,
// guarded submission, and the terminal action that follows a successful rejection.
package rejection

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Props are the immutable inputs supplied by the embedding context.
// OnRejected selects the Delegate terminal action when non-nil.
// OpenIntent is the raw inbound open signal, inspected once.
type Props struct {
	DocumentID string
	Token      string
	OnRejected Callback
	OpenIntent string
}

// Options carries the collaborators the workflow talks to.
type Options struct {
	Rejecter             Rejecter
	Notifier             Notifier
	Navigator            Navigator
	Logger               *slog.Logger
	BasePath             string
	NotificationDuration time.Duration
}

// Outcome classifies the result of a submit attempt.
type Outcome int

const (
	// OutcomeIgnored means the submit was not invocable (closed or already in flight).
	OutcomeIgnored Outcome = iota
	// OutcomeInvalid means the reason failed validation and nothing was sent.
	OutcomeInvalid
	// OutcomeRejected means the remote call succeeded and the dialog closed.
	OutcomeRejected
	// OutcomeFailed means the remote call failed and the dialog stayed open.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInvalid:
		return "invalid"
	case OutcomeRejected:
		return "rejected"
	case OutcomeFailed:
		return "failed"
	default:
		return "ignored"
	}
}

// Result describes a submit attempt. Err is informational for the host; the
// user has already been notified by the time Submit returns.
type Result struct {
	Outcome Outcome
	Reason  string
	Err     error
}

// State is a snapshot of the whole workflow for rendering.
type State struct {
	Dialog    DialogState
	Form      FormState
	CanSubmit bool
	CanCancel bool
}

// Controller coordinates the dialog, the form, the remote call, and the
// terminal action for one document and token. It is safe for concurrent use.
type Controller struct {
	mu     sync.Mutex
	dialog *Dialog
	form   *Form

	documentID string
	token      string
	action     Action

	rejecter Rejecter
	notifier Notifier
	logger   *slog.Logger
	duration time.Duration
}

// New creates a Controller. The terminal action is selected here, once.
func New(props Props, opts Options) (*Controller, error) {
	if props.DocumentID == "" {
		return nil, ErrMissingDocument
	}
	if props.Token == "" {
		return nil, ErrMissingToken
	}
	if opts.Rejecter == nil {
		return nil, ErrMissingRejecter
	}
	if props.OnRejected == nil && opts.Navigator == nil {
		return nil, ErrMissingNavigator
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	notifier := opts.Notifier
	if notifier == nil {
		notifier = NotifierFunc(func(Notification) {})
	}

	duration := opts.NotificationDuration
	if duration <= 0 {
		duration = DefaultNotificationDuration
	}

	form := NewForm()

	return &Controller{
		dialog:     NewDialog(form, props.OpenIntent),
		form:       form,
		documentID: props.DocumentID,
		token:      props.Token,
		action:     SelectAction(props.OnRejected, opts.Navigator, opts.BasePath, props.Token),
		rejecter:   opts.Rejecter,
		notifier:   notifier,
		logger:     logger.With("system", "rejection", "document_id", props.DocumentID),
		duration:   duration,
	}, nil
}

// DocumentID returns the document this controller rejects.
func (c *Controller) DocumentID() string {
	return c.documentID
}

// Action returns the terminal action selected at construction.
func (c *Controller) Action() Action {
	return c.action
}

// State returns a snapshot of the dialog and form.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	form := c.form.State()
	return State{
		Dialog:    c.dialog.State(),
		Form:      form,
		CanSubmit: c.dialog.IsOpen() && c.form.CanSubmit(),
		CanCancel: c.dialog.IsOpen() && !form.Submitting,
	}
}

// Open shows the dialog.
func (c *Controller) Open() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialog.SetOpen(true)
}

// Toggle flips the dialog visibility. Ignored while a submission is in flight.
func (c *Controller) Toggle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.form.State().Submitting {
		return false
	}
	c.dialog.Toggle()
	return true
}

// Cancel closes the dialog without contacting the remote side.
// Ignored while a submission is in flight.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.form.State().Submitting {
		return false
	}
	c.dialog.SetOpen(false)
	return true
}

// SetReason updates the reason text and returns the recomputed validation error.
// Input is ignored while the dialog is closed or a submission is in flight.
func (c *Controller) SetReason(reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dialog.IsOpen() || c.form.State().Submitting {
		return c.form.State().Err
	}
	c.form.SetReason(reason)
	return c.form.State().Err
}

// Submit sends the current reason to the remote side. It blocks for the
// duration of the remote call and the terminal action. A submit while another
// is in flight, or while the dialog is closed, returns OutcomeIgnored.
func (c *Controller) Submit(ctx context.Context) Result {
	c.mu.Lock()
	if !c.dialog.IsOpen() {
		c.mu.Unlock()
		return Result{Outcome: OutcomeIgnored}
	}
	form := c.form.State()
	if form.Submitting {
		c.mu.Unlock()
		return Result{Outcome: OutcomeIgnored}
	}
	if !form.Valid {
		c.mu.Unlock()
		return Result{Outcome: OutcomeInvalid, Err: form.Err}
	}
	c.form.begin()
	req := Request{
		DocumentID: c.documentID,
		Token:      c.token,
		Reason:     NormalizeReason(form.Reason),
	}
	c.mu.Unlock()

	if err := c.rejecter.RejectDocument(ctx, req); err != nil {
		c.mu.Lock()
		c.form.finish()
		c.mu.Unlock()

		c.notifier.Notify(Failure, FailureTitle, FailureMessage, c.duration)
		c.logger.Warn("rejection failed", "request", req, "error", err)

		return Result{
			Outcome: OutcomeFailed,
			Reason:  req.Reason,
			Err:     &SubmissionError{DocumentID: c.documentID, Err: err},
		}
	}

	c.notifier.Notify(Success, SuccessTitle, SuccessMessage, c.duration)

	c.mu.Lock()
	c.dialog.SetOpen(false)
	c.mu.Unlock()

	c.logger.Info("document rejected", "request", req)

	if err := c.action.Dispatch(ctx, req.Reason); err != nil {
		c.notifier.Notify(Failure, DispatchFailureTitle, DispatchFailureMessage, c.duration)
		c.logger.Error("terminal action failed", "error", err)

		return Result{
			Outcome: OutcomeRejected,
			Reason:  req.Reason,
			Err:     fmt.Errorf("%w: %w", ErrDispatch, err),
		}
	}

	return Result{Outcome: OutcomeRejected, Reason: req.Reason}
}
