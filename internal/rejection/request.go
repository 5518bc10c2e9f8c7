package rejection

import (
	"context"
	"log/slog"
	"unicode/utf8"
)

// Request is the payload sent to the remote rejection operation.
// DocumentID and Token come from the hosting context, never from user input.
type Request struct {
	DocumentID string
	Token      string
	Reason     string
}

// LogValue keeps the bearer token and free-text reason out of logs.
func (r Request) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("document_id", r.DocumentID),
		slog.Int("reason_length", utf8.RuneCountInString(r.Reason)),
	)
}

// Rejecter performs the authenticated remote rejection. Implementations own
// token validation and persistence of the rejected state.
type Rejecter interface {
	RejectDocument(ctx context.Context, req Request) error
}

// RejecterFunc adapts a function to the Rejecter interface.
type RejecterFunc func(ctx context.Context, req Request) error

func (f RejecterFunc) RejectDocument(ctx context.Context, req Request) error {
	return f(ctx, req)
}
