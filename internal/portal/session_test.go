package portal

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JaimeStill/decline/internal/rejection"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestStore(ttl time.Duration) (*Store, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewStore(ttl, prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_sessions"}))
	s.now = clock.Now
	return s, clock
}

func TestStoreExpiresIdleSessions(t *testing.T) {
	store, clock := newTestStore(10 * time.Minute)

	store.Add(&Session{ID: "a"})
	store.Add(&Session{ID: "b"})

	clock.Advance(6 * time.Minute)
	if _, ok := store.Get("a"); !ok {
		t.Fatal("session a should still be live")
	}

	clock.Advance(6 * time.Minute)
	if removed := store.Sweep(); removed != 1 {
		t.Errorf("sweep removed %d, want 1", removed)
	}
	if _, ok := store.Get("b"); ok {
		t.Error("session b should have expired")
	}
	if _, ok := store.Get("a"); !ok {
		t.Error("session a was touched and should survive")
	}
	if store.Len() != 1 {
		t.Errorf("len: got %d, want 1", store.Len())
	}
}

func TestStoreGetDropsExpired(t *testing.T) {
	store, clock := newTestStore(time.Minute)

	store.Add(&Session{ID: "a"})
	clock.Advance(2 * time.Minute)

	if _, ok := store.Get("a"); ok {
		t.Error("expired session should not be returned")
	}
	if store.Len() != 0 {
		t.Errorf("len: got %d, want 0", store.Len())
	}
}

func TestSessionFlashesOnce(t *testing.T) {
	sess := &Session{ID: "a"}
	sess.Notify(rejection.Failure, rejection.FailureTitle, rejection.FailureMessage, 5*time.Second)

	flashes := sess.TakeNotifications()
	if len(flashes) != 1 || flashes[0].Kind != rejection.Failure {
		t.Fatalf("flashes: got %+v", flashes)
	}
	if again := sess.TakeNotifications(); len(again) != 0 {
		t.Errorf("flashes should be consumed, got %+v", again)
	}
}

func TestSessionNavigateRecordsRedirect(t *testing.T) {
	sess := &Session{ID: "a"}
	if err := sess.Navigate(context.Background(), "/sign/tok/rejected"); err != nil {
		t.Fatalf("navigate: %v", err)
	}

	if done, _ := sess.Rejected(); !done {
		t.Error("navigate should mark the session rejected")
	}
	if dest := sess.TakeRedirect(); dest != "/sign/tok/rejected" {
		t.Errorf("redirect: got %s", dest)
	}
	if dest := sess.TakeRedirect(); dest != "" {
		t.Errorf("redirect should be consumed, got %s", dest)
	}
}
