package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestReapIdleSessions(t *testing.T) {
	registerTestTables(t)
	clock := newFakeClock()
	svc := newTestService(t, Options{Now: clock.Now})
	ctx := context.Background()

	stale := openPeople(t, svc, ViewRequest{}).SessionID
	clock.Advance(20 * time.Minute)
	fresh := openPeople(t, svc, ViewRequest{}).SessionID
	clock.Advance(5 * time.Minute)

	if n := svc.ReapIdleSessions(15 * time.Minute); n != 1 {
		t.Errorf("ReapIdleSessions() = %d, want 1", n)
	}
	if _, err := svc.SessionView(ctx, stale); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("stale session error = %v, want ErrSessionNotFound", err)
	}
	if _, err := svc.SessionView(ctx, fresh); err != nil {
		t.Errorf("fresh session error = %v", err)
	}

	// Using a session resets its idle time.
	clock.Advance(14 * time.Minute)
	svc.SessionView(ctx, fresh)
	clock.Advance(14 * time.Minute)
	if n := svc.ReapIdleSessions(15 * time.Minute); n != 0 {
		t.Errorf("ReapIdleSessions() after use = %d, want 0", n)
	}
}

func TestReapIdleSessions_SkipsBusySession(t *testing.T) {
	registerTestTables(t)
	clock := newFakeClock()
	svc := newTestService(t, Options{Now: clock.Now})

	id := openPeople(t, svc, ViewRequest{}).SessionID
	clock.Advance(time.Hour)

	sess, err := svc.lookup(id)
	if err != nil {
		t.Fatalf("lookup() error = %v", err)
	}
	sess.mu.Lock()
	n := svc.ReapIdleSessions(time.Minute)
	sess.mu.Unlock()

	if n != 0 || svc.SessionCount() != 1 {
		t.Errorf("reaped %d of a busy session, want 0", n)
	}
}

func TestStartSessionReaper_StopsOnCancel(t *testing.T) {
	registerTestTables(t)
	clock := newFakeClock()
	svc := newTestService(t, Options{Now: clock.Now})

	openPeople(t, svc, ViewRequest{})
	clock.Advance(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.StartSessionReaper(ctx, time.Hour, time.Minute)
		close(done)
	}()

	// The first sweep runs immediately.
	deadline := time.After(2 * time.Second)
	for svc.SessionCount() != 0 {
		select {
		case <-deadline:
			t.Fatal("reaper did not run on start")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reaper did not stop after cancel")
	}
}
