package tui

import (
	"context"
	"sync"
	"time"

	"github.com/JaimeStill/decline/internal/rejection"
)

// bridge collects what the controller reports from inside a submit command so
// the model can apply it on the Update goroutine.
type bridge struct {
	mu          sync.Mutex
	notices     []rejection.Notification
	destination string
	reason      string
	delegated   bool
}

func (b *bridge) Notify(kind rejection.Kind, title, message string, duration time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, rejection.Notification{
		Kind:     kind,
		Title:    title,
		Message:  message,
		Duration: duration,
	})
}

func (b *bridge) Navigate(_ context.Context, destination string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.destination = destination
	return nil
}

func (b *bridge) deliver(_ context.Context, reason string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reason = reason
	b.delegated = true
	return nil
}

func (b *bridge) drain() []rejection.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	notices := b.notices
	b.notices = nil
	return notices
}

func (b *bridge) outcome() Outcome {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Outcome{
		Destination: b.destination,
		Reason:      b.reason,
		Delegated:   b.delegated,
	}
}
