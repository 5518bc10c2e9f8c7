package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/JaimeStill/decline/internal/tui"
)

func TestParseArgs(t *testing.T) {
	opts, err := parseArgs([]string{"-token", "tok-abc", "-reject", "-delegate"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opts.token != "tok-abc" || !opts.reject || !opts.delegate {
		t.Errorf("options: got %+v", opts)
	}

	if _, err := parseArgs(nil); err == nil {
		t.Error("missing token should fail")
	}
}

func TestReport(t *testing.T) {
	tests := []struct {
		name    string
		outcome tui.Outcome
		want    string
		wantErr error
	}{
		{
			name:    "redirect",
			outcome: tui.Outcome{Rejected: true, Destination: "http://localhost:8080/sign/tok/rejected"},
			want:    "http://localhost:8080/sign/tok/rejected",
		},
		{
			name:    "delegate",
			outcome: tui.Outcome{Rejected: true, Delegated: true, Reason: "Not mine"},
			want:    `{"document_id":"doc-42","reason":"Not mine"}`,
		},
		{
			name:    "not rejected",
			outcome: tui.Outcome{},
			wantErr: errNotRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := report(&buf, "doc-42", tt.outcome)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err: got %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("report: %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output: got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}
