package rejection_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/JaimeStill/decline/internal/rejection"
)

func TestValidateReason(t *testing.T) {
	tests := []struct {
		name    string
		reason  string
		wantErr error
	}{
		{"empty", "", rejection.ErrReasonTooShort},
		{"two chars", "no", rejection.ErrReasonTooShort},
		{"four chars", "nope", rejection.ErrReasonTooShort},
		{"lower bound", "wrong", nil},
		{"typical", "I disagree with the terms", nil},
		{"upper bound", strings.Repeat("a", 500), nil},
		{"over upper bound", strings.Repeat("a", 501), rejection.ErrReasonTooLong},
		{"whitespace only", "          ", rejection.ErrReasonTooShort},
		{"padded short", "   abc   ", rejection.ErrReasonTooShort},
		{"padded at bound", "  abcde  ", nil},
		{"multibyte at bound", "ééééé", nil},
		{"multibyte over bound", strings.Repeat("é", 501), rejection.ErrReasonTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rejection.ValidateReason(tt.reason)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateReason(%q) = %v, want nil", tt.reason, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateReason(%q) = %v, want %v", tt.reason, err, tt.wantErr)
			}
		})
	}
}

func TestValidationErrorKind(t *testing.T) {
	var verr *rejection.ValidationError

	err := rejection.ValidateReason("no")
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.Kind != rejection.TooShort {
		t.Errorf("kind = %s, want too_short", verr.Kind)
	}
	if verr.Length != 2 {
		t.Errorf("length = %d, want 2", verr.Length)
	}

	err = rejection.ValidateReason(strings.Repeat("x", 600))
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.Kind != rejection.TooLong {
		t.Errorf("kind = %s, want too_long", verr.Kind)
	}
}

func TestRejectedPath(t *testing.T) {
	tests := []struct {
		basePath string
		token    string
		want     string
	}{
		{"", "abc123", "/sign/abc123/rejected"},
		{"/sign", "abc123", "/sign/abc123/rejected"},
		{"/portal/", "abc123", "/portal/abc123/rejected"},
		{"/sign", "a/b c", "/sign/a%2Fb%20c/rejected"},
	}

	for _, tt := range tests {
		if got := rejection.RejectedPath(tt.basePath, tt.token); got != tt.want {
			t.Errorf("RejectedPath(%q, %q) = %q, want %q", tt.basePath, tt.token, got, tt.want)
		}
	}
}
