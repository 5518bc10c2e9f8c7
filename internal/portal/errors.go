package portal

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/decline/internal/recipient"
)

// ErrNoSession means a dialog action arrived without a live session for its token.
var ErrNoSession = errors.New("no active signing session")

// ErrNotFound means the path names no portal page or action.
var ErrNotFound = errors.New("portal page not found")

// MapHTTPStatus maps portal and upstream errors to the status of the error page.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNoSession):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	}
	return recipient.MapHTTPStatus(err)
}

func errorMessage(status int) string {
	switch status {
	case http.StatusForbidden:
		return "This signing link is invalid or has expired."
	case http.StatusNotFound:
		return "The requested document could not be found."
	case http.StatusConflict:
		return "This document can no longer be rejected."
	case http.StatusServiceUnavailable:
		return "The signing service is temporarily unavailable. Please try again shortly."
	case http.StatusBadRequest:
		return "Your signing session has expired. Please reopen the signing link."
	default:
		return "Something went wrong while loading this document."
	}
}
