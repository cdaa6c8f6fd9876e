package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/gridview/internal/core"
	"github.com/JonMunkholm/gridview/internal/logging"
)

// openSessionRequest is the body of POST /api/sessions.
type openSessionRequest struct {
	Table    string            `json:"table"`
	Sort     string            `json:"sort,omitempty"`
	Dir      string            `json:"dir,omitempty"`
	Filters  map[string]string `json:"filters,omitempty"`
	Page     int               `json:"page,omitempty"` // Zero-based
	PageSize int               `json:"pageSize,omitempty"`
	ShowAll  bool              `json:"showAll,omitempty"`
}

type sortRequest struct {
	Column    string `json:"column"`
	Direction string `json:"direction,omitempty"` // Empty toggles
}

type filterRequest struct {
	Text string `json:"text"`
}

type pageRequest struct {
	Index *int `json:"index"`
}

type pageSizeRequest struct {
	Size *int `json:"size"`
}

type paginationRequest struct {
	Enabled *bool `json:"enabled"`
}

// handleListSessions lists open sessions.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Sessions())
}

// handleOpenSession starts a view session and returns its first page.
func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var body openSessionRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.respondError(w, r, err)
		return
	}
	if body.Table == "" {
		s.respondError(w, r, badRequest("table is required"))
		return
	}

	res, err := s.service.OpenSession(r.Context(), body.Table, core.ViewRequest{
		Sort:     body.Sort,
		Dir:      body.Dir,
		Filters:  body.Filters,
		Page:     body.Page,
		PageSize: body.PageSize,
		ShowAll:  body.ShowAll,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.WithFields(r.Context(), "session_id", res.SessionID, "table", body.Table).Info("session opened")
	w.Header().Set("Location", "/api/sessions/"+res.SessionID)
	writeJSON(w, http.StatusCreated, res)
}

// handleSessionView returns the session's current page.
func (s *Server) handleSessionView(w http.ResponseWriter, r *http.Request) {
	s.respondView(w, r)(s.service.SessionView(r.Context(), sessionID(r)))
}

// handleSessionSort sorts by a column. Without a direction the sort toggles.
func (s *Server) handleSessionSort(w http.ResponseWriter, r *http.Request) {
	var body sortRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.respondError(w, r, err)
		return
	}

	if body.Direction == "" {
		s.respondView(w, r)(s.service.SortSession(r.Context(), sessionID(r), body.Column))
		return
	}
	s.respondView(w, r)(s.service.SortSessionDirection(r.Context(), sessionID(r), body.Column, body.Direction))
}

// handleSessionClearSort returns the session to source order.
func (s *Server) handleSessionClearSort(w http.ResponseWriter, r *http.Request) {
	s.respondView(w, r)(s.service.ClearSessionSort(r.Context(), sessionID(r)))
}

// handleSessionFilter sets one column's filter text. Empty text removes it.
func (s *Server) handleSessionFilter(w http.ResponseWriter, r *http.Request) {
	var body filterRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.respondError(w, r, err)
		return
	}
	column := chi.URLParam(r, "column")
	s.respondView(w, r)(s.service.FilterSession(r.Context(), sessionID(r), column, body.Text))
}

// handleSessionClearFilters removes every filter.
func (s *Server) handleSessionClearFilters(w http.ResponseWriter, r *http.Request) {
	s.respondView(w, r)(s.service.ClearSessionFilters(r.Context(), sessionID(r)))
}

// handleSessionPage moves to a zero-based page index.
func (s *Server) handleSessionPage(w http.ResponseWriter, r *http.Request) {
	var body pageRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.respondError(w, r, err)
		return
	}
	if body.Index == nil {
		s.respondError(w, r, badRequest("index is required"))
		return
	}
	s.respondView(w, r)(s.service.PageSession(r.Context(), sessionID(r), *body.Index))
}

// handleSessionPageSize changes rows per page.
func (s *Server) handleSessionPageSize(w http.ResponseWriter, r *http.Request) {
	var body pageSizeRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.respondError(w, r, err)
		return
	}
	if body.Size == nil {
		s.respondError(w, r, badRequest("size is required"))
		return
	}
	s.respondView(w, r)(s.service.PageSizeSession(r.Context(), sessionID(r), *body.Size))
}

// handleSessionPagination turns pagination on or off.
func (s *Server) handleSessionPagination(w http.ResponseWriter, r *http.Request) {
	var body paginationRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.respondError(w, r, err)
		return
	}
	if body.Enabled == nil {
		s.respondError(w, r, badRequest("enabled is required"))
		return
	}
	s.respondView(w, r)(s.service.SetSessionPagination(r.Context(), sessionID(r), *body.Enabled))
}

// handleSessionExport streams the session's sorted, filtered rows as CSV.
func (s *Server) handleSessionExport(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	out := newCSVExport(w, "session_"+id)
	n, err := s.service.ExportSession(r.Context(), id, out.Write)
	s.finishExport(w, r, out, n, err, "session_id", id)
}

// handleCloseSession discards a session.
func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	if err := s.service.CloseSession(id); err != nil {
		s.respondError(w, r, err)
		return
	}
	logging.WithFields(r.Context(), "session_id", id).Info("session closed")
	w.WriteHeader(http.StatusNoContent)
}

// respondView returns a function writing a service result or its error.
func (s *Server) respondView(w http.ResponseWriter, r *http.Request) func(*core.ViewResult, error) {
	return func(res *core.ViewResult, err error) {
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func sessionID(r *http.Request) string {
	return chi.URLParam(r, "sessionID")
}
