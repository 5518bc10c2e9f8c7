package recipient

import (
	"errors"
	"net/http"
)

// Errors returned by the recipient API client.
var (
	ErrTokenInvalid     = errors.New("recipient token is invalid or expired")
	ErrNotFound         = errors.New("document not found")
	ErrRejectionRefused = errors.New("rejection refused")
	ErrUpstream         = errors.New("recipient api error")
	ErrUnavailable      = errors.New("recipient api unavailable")
)

// MapHTTPStatus maps client errors to the status the portal responds with.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrTokenInvalid) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrRejectionRefused) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

func statusError(status int) error {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrTokenInvalid
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusConflict, status == http.StatusUnprocessableEntity:
		return ErrRejectionRefused
	default:
		return ErrUpstream
	}
}

// countsAsFailure reports whether err should trip the circuit breaker.
// Token and business errors are answers, not outages.
func countsAsFailure(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrTokenInvalid) &&
		!errors.Is(err, ErrNotFound) &&
		!errors.Is(err, ErrRejectionRefused)
}
