package core

// scheduler.go provides background maintenance of view sessions.
//
// The reaper runs periodically and closes sessions that have not been used
// within the idle timeout. It is long-running and context-aware for graceful
// shutdown.

import (
	"context"
	"log/slog"
	"time"
)

// StartSessionReaper closes idle sessions every interval until ctx is cancelled.
// It runs immediately on start, then every interval. Blocks; run it in a goroutine.
func (s *Service) StartSessionReaper(ctx context.Context, interval, idle time.Duration) {
	slog.Info("session reaper started",
		"interval", interval.String(),
		"idle_timeout", idle.String(),
	)

	// Run immediately on startup
	s.ReapIdleSessions(idle)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session reaper stopped")
			return
		case <-ticker.C:
			s.ReapIdleSessions(idle)
		}
	}
}

// ReapIdleSessions closes every session unused for longer than idle and
// returns how many were closed.
func (s *Service) ReapIdleSessions(idle time.Duration) int {
	start := s.now()
	cutoff := start.Add(-idle)

	s.mu.Lock()
	var reaped int
	for id, sess := range s.sessions {
		// Skip sessions busy with a request; they are in use by definition.
		if !sess.mu.TryLock() {
			continue
		}
		if sess.lastUsed.Before(cutoff) {
			delete(s.sessions, id)
			reaped++
		}
		sess.mu.Unlock()
	}
	n := len(s.sessions)
	s.mu.Unlock()

	if reaped > 0 {
		s.obs.SessionsActive(n)
		slog.Info("reaped idle sessions",
			"sessions_reaped", reaped,
			"sessions_open", n,
			"duration_ms", s.now().Sub(start).Milliseconds(),
		)
	} else {
		slog.Debug("no idle sessions", "sessions_open", n)
	}
	return reaped
}
