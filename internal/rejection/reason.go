package rejection

import (
	"strings"
	"unicode/utf8"
)

// Reason length bounds, counted in characters after trimming surrounding whitespace.
const (
	MinReasonLength = 5
	MaxReasonLength = 500
)

// NormalizeReason trims leading and trailing whitespace. The normalized form is
// what gets validated, submitted, and handed to the terminal action.
func NormalizeReason(reason string) string {
	return strings.TrimSpace(reason)
}

// ValidateReason checks the normalized reason against the length bounds.
// It returns nil or a *ValidationError.
func ValidateReason(reason string) error {
	n := utf8.RuneCountInString(NormalizeReason(reason))
	switch {
	case n < MinReasonLength:
		return &ValidationError{Kind: TooShort, Length: n}
	case n > MaxReasonLength:
		return &ValidationError{Kind: TooLong, Length: n}
	}
	return nil
}
