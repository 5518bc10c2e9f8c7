package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/JaimeStill/decline/internal/config"
	"github.com/JaimeStill/decline/internal/infrastructure"
	"github.com/JaimeStill/decline/internal/rejection"
	"github.com/JaimeStill/decline/internal/tui"
)

var errNotRejected = errors.New("document was not rejected")

type options struct {
	token    string
	reject   bool
	delegate bool
	logPath  string
}

func main() {
	if err := run(); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseArgs(args []string) (options, error) {
	var opts options

	fs := flag.NewFlagSet("decline", flag.ContinueOnError)
	fs.StringVar(&opts.token, "token", "", "recipient signing token")
	fs.BoolVar(&opts.reject, "reject", false, "open the rejection dialog immediately")
	fs.BoolVar(&opts.delegate, "delegate", false, "print the accepted reason as JSON instead of the confirmation URL")
	fs.StringVar(&opts.logPath, "log", "", "write logs to this file")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.token == "" {
		return opts, errors.New("-token is required")
	}
	return opts, nil
}

func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, nil)), func() { f.Close() }, nil
}

func run() error {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	logger, closeLog, err := newLogger(opts.logPath)
	if err != nil {
		return err
	}
	defer closeLog()

	infra, err := infrastructure.NewWithLogger(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := infra.Recipient.Lookup(ctx, opts.token)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if env.Rejected() {
		fmt.Printf("%s has already been rejected.\n", env.Title)
		return nil
	}

	intent := ""
	if opts.reject {
		intent = rejection.OpenIntent
	}

	model, err := tui.New(ctx, tui.Options{
		Rejecter:             infra.Recipient,
		Envelope:             env,
		Token:                opts.token,
		OpenIntent:           intent,
		Delegate:             opts.delegate,
		BasePath:             cfg.Portal.BasePath,
		NotificationDuration: cfg.Portal.NotificationDurationValue(),
		Logger:               logger,
		Resolve:              cfg.Portal.AbsoluteURL,
	})
	if err != nil {
		return err
	}

	if _, err := tea.NewProgram(model, tea.WithContext(ctx)).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run terminal ui: %w", err)
	}

	return report(os.Stdout, env.DocumentID, model.Outcome())
}

func report(w io.Writer, documentID string, out tui.Outcome) error {
	if !out.Rejected {
		return errNotRejected
	}

	if out.Delegated {
		return json.NewEncoder(w).Encode(map[string]string{
			"document_id": documentID,
			"reason":      out.Reason,
		})
	}

	_, err := fmt.Fprintf(w, "%s\n%s\n", rejection.SuccessMessage, out.Destination)
	return err
}
