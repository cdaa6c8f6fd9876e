package web

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/gridview/internal/core"
	"github.com/JonMunkholm/gridview/internal/logging"
	"github.com/JonMunkholm/gridview/internal/web/templates"
)

// handleDashboard renders the main dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	byGroup := s.service.ListTablesByGroup()

	var groups []templates.TableGroup
	for _, name := range core.Groups() {
		groups = append(groups, templates.TableGroup{Name: name, Tables: byGroup[name]})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Dashboard(groups).Render(r.Context(), w); err != nil {
		slog.Error("render dashboard", "error", err)
	}
}

// handleListTables returns all tables organized by group.
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.ListTablesByGroup())
}

// handleTableView renders the table data view page.
// HTMX requests get only the table fragment.
func (s *Server) handleTableView(w http.ResponseWriter, r *http.Request) {
	tableKey := chi.URLParam(r, "tableKey")

	def, err := s.service.Table(tableKey)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	req, err := parseViewRequest(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.service.QueryView(r.Context(), tableKey, req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	data := templates.TableData{
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Result: res,
		Cells:  def.FormatRows(res.Rows),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	component := templates.TableView(data)
	if isHTMX(r) {
		component = templates.TablePartial(data)
	}
	if err := component.Render(r.Context(), w); err != nil {
		slog.Error("render table", "table", tableKey, "error", err)
	}
}

// handleQueryView returns one stateless view of a table as JSON.
func (s *Server) handleQueryView(w http.ResponseWriter, r *http.Request) {
	req, err := parseViewRequest(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.service.QueryView(r.Context(), chi.URLParam(r, "tableKey"), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleExportData streams every row matching the query's sort and
// filters as CSV. Pagination parameters are ignored.
func (s *Server) handleExportData(w http.ResponseWriter, r *http.Request) {
	tableKey := chi.URLParam(r, "tableKey")

	req, err := parseViewRequest(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	out := newCSVExport(w, tableKey)
	n, err := s.service.ExportView(r.Context(), tableKey, req, out.Write)
	s.finishExport(w, r, out, n, err, "table", tableKey)
}

// finishExport flushes an export and reports its outcome. Once output has
// started the status line is gone, so failures are only logged.
func (s *Server) finishExport(w http.ResponseWriter, r *http.Request, out *csvExport, rows int, err error, args ...any) {
	logger := logging.WithFields(r.Context(), args...)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}

	if err == nil {
		logger.Info("export complete", "rows", rows)
		return
	}
	if !out.Started() {
		s.respondError(w, r, err)
		return
	}
	logger.Error("export aborted", "rows", rows, "error", err)
}

// handleRefreshTable drops cached rows so the next view reloads them.
func (s *Server) handleRefreshTable(w http.ResponseWriter, r *http.Request) {
	tableKey := chi.URLParam(r, "tableKey")
	if err := s.service.RefreshTable(tableKey); err != nil {
		s.respondError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Info("table cache invalidated", "table", tableKey)
	w.WriteHeader(http.StatusNoContent)
}

// handleExportStatus returns the current state of the export limiter.
// Used for monitoring and to check if the system can accept more exports.
func (s *Server) handleExportStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.ExportStatus())
}

// healthResponse is the body of GET /healthz.
type healthResponse struct {
	Status   string                   `json:"status"`
	Tables   int                      `json:"tables"`
	Sessions int                      `json:"sessions"`
	Exports  core.ExportLimiterStatus `json:"exports"`
}

// handleHealth reports liveness plus basic load figures.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Tables:   core.TableCount(),
		Sessions: s.service.SessionCount(),
		Exports:  s.service.ExportStatus(),
	})
}
