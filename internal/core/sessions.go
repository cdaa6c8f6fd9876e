package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/gridview/internal/view"
)

// session is one client's long-lived view of a table.
type session struct {
	id     string
	def    TableDefinition
	engine *view.Engine[Row]

	// mu serialises mutate-then-compute so each caller sees its own change.
	mu       sync.Mutex
	lastUsed time.Time
}

// SessionInfo summarises an open session.
type SessionInfo struct {
	ID       string    `json:"id"`
	Table    string    `json:"table"`
	LastUsed time.Time `json:"lastUsed"`
}

// OpenSession starts a session on table key with req applied and returns
// its first view. The session id is set on the result.
func (s *Service) OpenSession(ctx context.Context, key string, req ViewRequest) (*ViewResult, error) {
	def, err := s.Table(key)
	if err != nil {
		return nil, err
	}

	engine, err := s.newEngine(def, req)
	if err != nil {
		return nil, err
	}

	sess := &session{
		id:       uuid.New().String(),
		def:      def,
		engine:   engine,
		lastUsed: s.now(),
	}

	s.mu.Lock()
	if len(s.sessions) >= s.opts.MaxSessions {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: limit %d", ErrTooManySessions, s.opts.MaxSessions)
	}
	s.sessions[sess.id] = sess
	n := len(s.sessions)
	s.mu.Unlock()
	s.obs.SessionsActive(n)

	res, err := s.withSession(ctx, sess.id, func(*view.Engine[Row]) error { return nil })
	if err != nil {
		_ = s.CloseSession(sess.id)
		return nil, err
	}
	return res, nil
}

// SessionView recomputes the session's current view.
func (s *Service) SessionView(ctx context.Context, id string) (*ViewResult, error) {
	return s.withSession(ctx, id, func(*view.Engine[Row]) error { return nil })
}

// SortSession sorts by column, toggling the direction when column is
// already the sort column.
func (s *Service) SortSession(ctx context.Context, id, column string) (*ViewResult, error) {
	return s.withSession(ctx, id, func(e *view.Engine[Row]) error {
		return e.SetSort(column)
	})
}

// SortSessionDirection sorts by column in an explicit direction ("asc" or "desc").
func (s *Service) SortSessionDirection(ctx context.Context, id, column, dir string) (*ViewResult, error) {
	d, err := view.ParseDirection(dir)
	if err != nil {
		return nil, err
	}
	return s.withSession(ctx, id, func(e *view.Engine[Row]) error {
		return e.SetSortDirection(column, d)
	})
}

// ClearSessionSort returns the session to source order.
func (s *Service) ClearSessionSort(ctx context.Context, id string) (*ViewResult, error) {
	return s.withSession(ctx, id, func(e *view.Engine[Row]) error {
		e.ClearSort()
		return nil
	})
}

// FilterSession sets the filter text of one column. Empty text removes it.
func (s *Service) FilterSession(ctx context.Context, id, column, text string) (*ViewResult, error) {
	return s.withSession(ctx, id, func(e *view.Engine[Row]) error {
		return e.SetFilter(column, text)
	})
}

// ClearSessionFilters removes every filter of the session.
func (s *Service) ClearSessionFilters(ctx context.Context, id string) (*ViewResult, error) {
	return s.withSession(ctx, id, func(e *view.Engine[Row]) error {
		e.ClearFilters()
		return nil
	})
}

// PageSession moves to a zero-based page.
func (s *Service) PageSession(ctx context.Context, id string, index int) (*ViewResult, error) {
	return s.withSession(ctx, id, func(e *view.Engine[Row]) error {
		return e.SetPage(index)
	})
}

// PageSizeSession changes rows per page and returns to the first page.
func (s *Service) PageSizeSession(ctx context.Context, id string, size int) (*ViewResult, error) {
	if err := s.checkPageSize(size); err != nil {
		return nil, err
	}
	return s.withSession(ctx, id, func(e *view.Engine[Row]) error {
		return e.SetPageSize(size)
	})
}

// SetSessionPagination switches the session between paged and full output.
func (s *Service) SetSessionPagination(ctx context.Context, id string, enabled bool) (*ViewResult, error) {
	return s.withSession(ctx, id, func(e *view.Engine[Row]) error {
		e.SetPaginationEnabled(enabled)
		return nil
	})
}

// CloseSession discards a session.
func (s *Service) CloseSession(id string) error {
	s.mu.Lock()
	if _, ok := s.sessions[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()

	s.obs.SessionsActive(n)
	return nil
}

// SessionCount returns the number of open sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sessions lists the open sessions.
func (s *Service) Sessions() []SessionInfo {
	s.mu.RLock()
	list := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, sess)
	}
	s.mu.RUnlock()

	out := make([]SessionInfo, len(list))
	for i, sess := range list {
		sess.mu.Lock()
		out[i] = SessionInfo{ID: sess.id, Table: sess.def.Info.Key, LastUsed: sess.lastUsed}
		sess.mu.Unlock()
	}
	return out
}

// lookup returns the session with id.
func (s *Service) lookup(id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// withSession applies mutate to the session's engine and recomputes.
// A failed mutation leaves the engine unchanged and nothing is computed.
func (s *Service) withSession(ctx context.Context, id string, mutate func(*view.Engine[Row]) error) (*ViewResult, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastUsed = s.now()

	// Load before mutating so a failed load leaves the session unchanged.
	rows, err := s.records(ctx, sess.def)
	if err != nil {
		return nil, err
	}
	if err := mutate(sess.engine); err != nil {
		return nil, err
	}

	res, err := s.compute(sess.def, sess.engine, rows)
	if err != nil {
		return nil, err
	}
	res.SessionID = sess.id
	return res, nil
}
