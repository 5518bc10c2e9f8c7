// Package tui is a terminal host for the rejection workflow built on bubbletea.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JaimeStill/decline/internal/recipient"
	"github.com/JaimeStill/decline/internal/rejection"
)

// Options configures a Model.
// Delegate hands the accepted reason back to the caller instead of navigating.
// Resolve turns a navigation destination into what the user is shown.
type Options struct {
	Rejecter             rejection.Rejecter
	Envelope             *recipient.Envelope
	Token                string
	OpenIntent           string
	Delegate             bool
	BasePath             string
	NotificationDuration time.Duration
	Logger               *slog.Logger
	Resolve              func(destination string) string
}

// Outcome is what the workflow produced by the time the program exits.
type Outcome struct {
	Rejected    bool
	Destination string
	Reason      string
	Delegated   bool
}

type submittedMsg struct {
	result  rejection.Result
	notices []rejection.Notification
}

type dismissMsg struct {
	seq int
}

// Model renders the document and the rejection dialog.
type Model struct {
	ctx      context.Context
	ctrl     *rejection.Controller
	bridge   *bridge
	envelope *recipient.Envelope
	resolve  func(string) string

	input   textarea.Model
	spinner spinner.Model

	notice    *rejection.Notification
	noticeSeq int
	outcome   Outcome
	quitting  bool

	// pending is set from an accepted enter until its submittedMsg arrives,
	// covering the gap before the controller marks the form submitting.
	pending bool
}

// New creates a Model whose controller submits through opts.Rejecter.
func New(ctx context.Context, opts Options) (*Model, error) {
	if opts.Envelope == nil {
		return nil, rejection.ErrMissingDocument
	}

	b := &bridge{}

	props := rejection.Props{
		DocumentID: opts.Envelope.DocumentID,
		Token:      opts.Token,
		OpenIntent: opts.OpenIntent,
	}
	if opts.Delegate {
		props.OnRejected = b.deliver
	}

	ctrl, err := rejection.New(props, rejection.Options{
		Rejecter:             opts.Rejecter,
		Notifier:             b,
		Navigator:            b,
		Logger:               opts.Logger,
		BasePath:             opts.BasePath,
		NotificationDuration: opts.NotificationDuration,
	})
	if err != nil {
		return nil, err
	}

	resolve := opts.Resolve
	if resolve == nil {
		resolve = func(dest string) string { return dest }
	}

	ta := textarea.New()
	ta.Placeholder = "Why are you rejecting this document?"
	ta.Prompt = "│ "
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetWidth(60)
	ta.SetHeight(4)
	ta.KeyMap.InsertNewline.SetEnabled(false)

	m := &Model{
		ctx:      ctx,
		ctrl:     ctrl,
		bridge:   b,
		envelope: opts.Envelope,
		resolve:  resolve,
		input:    ta,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(errorStyle)),
	}
	if ctrl.State().Dialog == rejection.Open {
		m.input.Focus()
	}
	return m, nil
}

// Outcome returns what the workflow produced.
func (m *Model) Outcome() Outcome {
	return m.outcome
}

// State exposes the controller snapshot.
func (m *Model) State() rejection.State {
	return m.ctrl.State()
}

func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case submittedMsg:
		return m.handleSubmitted(msg)

	case dismissMsg:
		if msg.seq == m.noticeSeq {
			m.notice = nil
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	if m.busy() {
		return m, nil
	}

	state := m.ctrl.State()
	if state.Dialog == rejection.Closed {
		switch msg.String() {
		case "r":
			m.ctrl.Toggle()
			m.input.Reset()
			return m, m.input.Focus()
		case "q":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.ctrl.Cancel()
		m.input.Reset()
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		if !state.CanSubmit {
			return m, nil
		}
		m.pending = true
		return m, tea.Batch(m.submit(), m.spinner.Tick)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.ctrl.SetReason(m.input.Value())
	return m, cmd
}

func (m *Model) submit() tea.Cmd {
	ctrl, b, ctx := m.ctrl, m.bridge, m.ctx
	return func() tea.Msg {
		res := ctrl.Submit(ctx)
		return submittedMsg{result: res, notices: b.drain()}
	}
}

func (m *Model) busy() bool {
	return m.pending || m.ctrl.State().Form.Submitting
}

func (m *Model) handleSubmitted(msg submittedMsg) (tea.Model, tea.Cmd) {
	m.pending = false

	var cmds []tea.Cmd
	for _, n := range msg.notices {
		cmds = append(cmds, m.show(n))
	}

	switch msg.result.Outcome {
	case rejection.OutcomeRejected:
		m.input.Reset()
		m.input.Blur()
		m.outcome = m.bridge.outcome()
		m.outcome.Rejected = true
		if m.outcome.Destination != "" {
			m.outcome.Destination = m.resolve(m.outcome.Destination)
		}
		m.quitting = true
		cmds = append(cmds, tea.Quit)
	case rejection.OutcomeFailed:
		m.input.Focus()
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) show(n rejection.Notification) tea.Cmd {
	m.noticeSeq++
	seq := m.noticeSeq
	m.notice = &n
	return tea.Tick(n.Duration, func(time.Time) tea.Msg {
		return dismissMsg{seq: seq}
	})
}

func (m *Model) View() string {
	var sb strings.Builder

	if m.notice != nil {
		style := successNoticeStyle
		if m.notice.Kind == rejection.Failure {
			style = failureNoticeStyle
		}
		sb.WriteString(style.Render(m.notice.Title + ": " + m.notice.Message))
		sb.WriteString("\n\n")
	}

	sb.WriteString(titleStyle.Render(m.envelope.Title))
	sb.WriteString("\n")
	if m.envelope.RecipientName != "" {
		sb.WriteString(mutedStyle.Render("Prepared for " + m.envelope.RecipientName))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	if m.quitting {
		if m.outcome.Destination != "" {
			sb.WriteString(fmt.Sprintf("Confirmation: %s\n", m.outcome.Destination))
		}
		return sb.String()
	}

	state := m.ctrl.State()
	if state.Dialog == rejection.Closed {
		sb.WriteString(mutedStyle.Render("r reject • q quit"))
		sb.WriteString("\n")
		return sb.String()
	}

	var dialog strings.Builder
	dialog.WriteString(titleStyle.Render("Reject document"))
	dialog.WriteString("\n\n")
	dialog.WriteString(m.input.View())
	dialog.WriteString("\n")

	if state.Form.Touched && state.Form.Err != nil {
		dialog.WriteString(errorStyle.Render(state.Form.Err.Error()))
		dialog.WriteString("\n")
	}
	dialog.WriteString("\n")

	switch {
	case m.busy():
		dialog.WriteString(m.spinner.View() + " Rejecting…")
	case state.CanSubmit:
		dialog.WriteString(mutedStyle.Render("enter reject • esc cancel"))
	default:
		dialog.WriteString(mutedStyle.Render(fmt.Sprintf("%d–%d characters • esc cancel", rejection.MinReasonLength, rejection.MaxReasonLength)))
	}

	sb.WriteString(dialogStyle.Render(dialog.String()))
	sb.WriteString("\n")
	return sb.String()
}
