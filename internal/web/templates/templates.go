// Package templates renders the HTML pages of the web UI as templ components.
//
// The *_templ.go files are generated from the .templ sources by
// `templ generate`; edit the sources, not the generated code.
package templates

//go:generate templ generate

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/JonMunkholm/gridview/internal/core"
)

// TableGroup is one section of the dashboard.
type TableGroup struct {
	Name   string
	Tables []core.TableInfo
}

// TableData is one rendered page of a table.
type TableData struct {
	Path   string     // Page URL without query: "/table/dealers"
	Query  url.Values // Current query, used to build links
	Result *core.ViewResult
	Cells  [][]string // Display text per row, in column order
}

// hiddenInput carries query state through the filter form.
type hiddenInput struct {
	Name  string
	Value string
}

// link returns path with q plus the given key/value overrides. An empty
// value removes the key.
func link(path string, q url.Values, kv ...string) string {
	next := url.Values{}
	for k, v := range q {
		next[k] = append([]string(nil), v...)
	}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			next.Del(kv[i])
			continue
		}
		next.Set(kv[i], kv[i+1])
	}
	if len(next) == 0 {
		return path
	}
	return path + "?" + next.Encode()
}

func tableLink(key string) string { return "/table/" + url.PathEscape(key) }

// pageLink links to the 0-based page index. The query parameter is 1-based.
func pageLink(data TableData, index int) string {
	return link(data.Path, data.Query, "page", strconv.Itoa(index+1))
}

func sizeLink(data TableData, size int) string {
	return link(data.Path, data.Query, "size", strconv.Itoa(size), "page", "")
}

// sortLink sorts by col, flipping the direction when col is already
// sorted ascending.
func sortLink(data TableData, col core.ColumnInfo) string {
	dir := "asc"
	if data.Result.Sort.Column == col.ID && data.Result.Sort.Dir == "asc" {
		dir = "desc"
	}
	return link(data.Path, data.Query, "sort", col.ID, "dir", dir, "page", "")
}

func sortMarker(res *core.ViewResult, col core.ColumnInfo) string {
	if res.Sort.Column != col.ID {
		return ""
	}
	if res.Sort.Dir == "asc" {
		return " ▲"
	}
	return " ▼"
}

func filterableColumns(res *core.ViewResult) []core.ColumnInfo {
	var cols []core.ColumnInfo
	for _, col := range res.Columns {
		if col.Filterable {
			cols = append(cols, col)
		}
	}
	return cols
}

// preservedState returns the view settings the filter form must resubmit.
func preservedState(q url.Values) []hiddenInput {
	var out []hiddenInput
	for _, key := range []string{"sort", "dir", "size", "all"} {
		if v := q.Get(key); v != "" {
			out = append(out, hiddenInput{Name: key, Value: v})
		}
	}
	return out
}

func clearFiltersLink(data TableData) string {
	next := url.Values{}
	for k, v := range data.Query {
		if strings.HasPrefix(k, "filter[") {
			continue
		}
		next[k] = v
	}
	return link(data.Path, next, "page", "")
}
