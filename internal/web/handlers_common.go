package web

// handlers_common.go contains shared utilities and helper functions used across handlers.

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/gridview/internal/core"
	"github.com/JonMunkholm/gridview/internal/view"
)

// maxBodySize caps JSON request bodies.
const maxBodySize = 64 * 1024

// flushInterval is how many CSV rows are buffered between flushes.
const flushInterval = 1000

// intParam parses an integer query parameter. ok is false when it is absent.
func intParam(q url.Values, name string) (n int, ok bool, err error) {
	val := strings.TrimSpace(q.Get(name))
	if val == "" {
		return 0, false, nil
	}
	n, err = strconv.Atoi(val)
	if err != nil {
		return 0, true, badRequest("%s must be a whole number, got %q", name, val)
	}
	return n, true, nil
}

// parseViewRequest reads the view state from query parameters:
// sort, dir, filter[column], page (1-based), size and all.
func parseViewRequest(r *http.Request) (core.ViewRequest, error) {
	q := r.URL.Query()
	req := core.ViewRequest{
		Sort: strings.TrimSpace(q.Get("sort")),
		Dir:  strings.TrimSpace(q.Get("dir")),
	}

	page, ok, err := intParam(q, "page")
	if err != nil {
		return req, err
	}
	if ok {
		// A zero page becomes index -1 and is rejected by the engine.
		req.Page = page - 1
	}

	size, ok, err := intParam(q, "size")
	if err != nil {
		return req, err
	}
	if ok && size <= 0 {
		return req, &view.PaginationError{Value: size, Err: view.ErrInvalidPageSize}
	}
	req.PageSize = size

	if v := q.Get("all"); v != "" {
		all, err := strconv.ParseBool(v)
		if err != nil {
			return req, badRequest("all must be true or false, got %q", v)
		}
		req.ShowAll = all
	}

	req.Filters = parseFilters(q)
	return req, nil
}

// parseFilters extracts filter[column]=text parameters. Empty text is
// ignored; of repeated parameters the last wins.
func parseFilters(q url.Values) map[string]string {
	filters := make(map[string]string)
	for key, values := range q {
		if !strings.HasPrefix(key, "filter[") || !strings.HasSuffix(key, "]") {
			continue
		}
		col := key[len("filter[") : len(key)-1]
		if col == "" || len(values) == 0 {
			continue
		}
		if text := values[len(values)-1]; text != "" {
			filters[col] = text
		}
	}
	return filters
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return badRequest("request body is empty")
		}
		return badRequest("malformed JSON body: %v", err)
	}
	return nil
}

// csvExport streams records as a CSV download. Headers are written with
// the first record, so a failure before any output can still be reported
// with a proper status code.
type csvExport struct {
	w        http.ResponseWriter
	filename string
	csv      *csv.Writer
	rows     int
}

func newCSVExport(w http.ResponseWriter, name string) *csvExport {
	timestamp := time.Now().Format("20060102_150405")
	return &csvExport{w: w, filename: fmt.Sprintf("%s_%s.csv", name, timestamp)}
}

// Write implements core.ExportFunc.
func (e *csvExport) Write(record []string) error {
	if e.csv == nil {
		e.w.Header().Set("Content-Type", "text/csv")
		e.w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, e.filename))
		e.csv = csv.NewWriter(e.w)
	}
	if err := e.csv.Write(record); err != nil {
		return err
	}

	e.rows++
	if e.rows%flushInterval == 0 {
		e.csv.Flush()
		if err := e.csv.Error(); err != nil {
			return err
		}
		if f, ok := e.w.(http.Flusher); ok {
			f.Flush()
		}
	}
	return nil
}

// Started reports whether any output has been written.
func (e *csvExport) Started() bool { return e.csv != nil }

// Close flushes buffered rows.
func (e *csvExport) Close() error {
	if e.csv == nil {
		return nil
	}
	e.csv.Flush()
	return e.csv.Error()
}
