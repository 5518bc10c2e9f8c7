package rejection

import (
	"errors"
	"fmt"
)

// Validation and construction errors for the rejection workflow.
var (
	ErrReasonTooShort = errors.New("reason too short")
	ErrReasonTooLong  = errors.New("reason too long")
	ErrDispatch       = errors.New("terminal action failed")

	ErrMissingDocument  = errors.New("document id is required")
	ErrMissingToken     = errors.New("token is required")
	ErrMissingRejecter  = errors.New("rejecter is required")
	ErrMissingNavigator = errors.New("navigator is required when no completion callback is supplied")
)

// ValidationKind identifies which length bound a reason violated.
type ValidationKind int

const (
	TooShort ValidationKind = iota + 1
	TooLong
)

func (k ValidationKind) String() string {
	switch k {
	case TooShort:
		return "too_short"
	case TooLong:
		return "too_long"
	default:
		return "unknown"
	}
}

// ValidationError reports a reason that falls outside the accepted length bounds.
// It matches ErrReasonTooShort or ErrReasonTooLong through errors.Is.
type ValidationError struct {
	Kind   ValidationKind
	Length int
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case TooShort:
		return fmt.Sprintf("reason must be at least %d characters", MinReasonLength)
	case TooLong:
		return fmt.Sprintf("reason must be at most %d characters", MaxReasonLength)
	default:
		return "invalid reason"
	}
}

func (e *ValidationError) Unwrap() error {
	switch e.Kind {
	case TooShort:
		return ErrReasonTooShort
	case TooLong:
		return ErrReasonTooLong
	default:
		return nil
	}
}

// SubmissionError wraps any failure returned by the remote rejection call.
type SubmissionError struct {
	DocumentID string
	Err        error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("reject document %s: %v", e.DocumentID, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
