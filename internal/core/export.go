package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/gridview/internal/view"
)

// exportCheckInterval is how many rows are written between context checks.
const exportCheckInterval = 1000

// ExportFunc receives one record at a time: the header labels first, then
// every row formatted with FormatCell. It matches (*csv.Writer).Write.
type ExportFunc func(record []string) error

// ExportView streams every row of a table that matches req, sorted as
// req asks and ignoring pagination. It returns the number of data rows written.
func (s *Service) ExportView(ctx context.Context, key string, req ViewRequest, fn ExportFunc) (int, error) {
	def, err := s.Table(key)
	if err != nil {
		return 0, err
	}

	req.ShowAll = true
	req.Page = 0
	req.PageSize = 0
	engine, err := s.newEngine(def, req)
	if err != nil {
		return 0, err
	}
	return s.export(ctx, def, engine, fn)
}

// ExportSession streams every row matching the session's sort and filters.
// The session itself is not modified.
func (s *Service) ExportSession(ctx context.Context, id string, fn ExportFunc) (int, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return 0, err
	}

	sess.mu.Lock()
	state := sess.engine.State()
	sess.lastUsed = s.now()
	sess.mu.Unlock()

	req := ViewRequest{Filters: map[string]string(state.Filters), ShowAll: true}
	if state.Sort.Active() {
		req.Sort = state.Sort.ColumnID
		req.Dir = state.Sort.Direction.String()
	}

	engine, err := s.newEngine(sess.def, req)
	if err != nil {
		return 0, err
	}
	return s.export(ctx, sess.def, engine, fn)
}

// ExportStatus reports how many export slots are in use.
func (s *Service) ExportStatus() ExportLimiterStatus { return s.exports.Status() }

// WaitForExports blocks until running exports finish or ctx is done.
func (s *Service) WaitForExports(ctx context.Context) error { return s.exports.WaitForDrain(ctx) }

func (s *Service) export(ctx context.Context, def TableDefinition, engine *view.Engine[Row], fn ExportFunc) (int, error) {
	if err := s.exports.Acquire(ctx); err != nil {
		return 0, err
	}
	defer s.exports.Release()

	rows, err := s.records(ctx, def)
	if err != nil {
		return 0, err
	}

	v, err := engine.Compute(rows)
	if err != nil {
		return 0, err
	}

	header := make([]string, len(def.Fields))
	for i, col := range def.Columns() {
		header[i] = col.Label
	}
	if err := fn(header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(def.Fields))
	for n, row := range v.Items {
		if n%exportCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return n, err
			}
		}
		for i, spec := range def.Fields {
			record[i] = FormatCell(row[spec.Name], spec)
		}
		if err := fn(record); err != nil {
			return n, fmt.Errorf("write row %d: %w", n+1, err)
		}
	}
	return len(v.Items), nil
}
