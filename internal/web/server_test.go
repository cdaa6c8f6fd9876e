package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/gridview/internal/config"
	"github.com/JonMunkholm/gridview/internal/core"
	"github.com/JonMunkholm/gridview/internal/metrics"
)

// =============================================================================
// Fixtures
// =============================================================================

var peopleFields = []core.FieldSpec{
	{Name: "name", Label: "Name", Type: core.FieldText, Sortable: true, Filterable: true},
	{Name: "age", Label: "Age", Type: core.FieldNumeric, Sortable: true, Filterable: true},
	{Name: "notes", Label: "Notes", Type: core.FieldText},
}

func peopleRows() []core.Row {
	return []core.Row{
		{"name": "ann", "age": 30, "notes": ""},
		{"name": "bob", "age": 25, "notes": ""},
		{"name": "cy", "age": 41, "notes": ""},
		{"name": "dee", "age": 25, "notes": ""},
		{"name": "eve", "age": 35, "notes": ""},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{RequestTimeout: 5 * time.Second},
		Security: config.SecurityConfig{EnableCSP: true},
		Metrics:  config.MetricsConfig{Enabled: true},
	}
}

// newTestServer registers the "people" table and returns a server over it.
func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	core.Clear()
	t.Cleanup(core.Clear)
	core.Register(core.TableDefinition{
		Info:   core.TableInfo{Key: "people", Group: "Test", Label: "People"},
		Fields: peopleFields,
		Source: core.NewStaticSource(peopleRows()...),
	})

	m := metrics.New(nil)
	svc, err := core.NewService(core.Options{MaxSessions: 2, Observer: m})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return NewServer(svc, cfg, m)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

// viewBody is the subset of a view response the tests inspect.
type viewBody struct {
	SessionID string           `json:"sessionId"`
	Rows      []map[string]any `json:"rows"`
	Total     int              `json:"total"`
	Page      int              `json:"page"`
	PageSize  int              `json:"pageSize"`
	PageCount int              `json:"pageCount"`
	Paginated bool             `json:"paginated"`
	Sort      core.SortSpec    `json:"sort"`
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) viewBody {
	t.Helper()
	var v viewBody
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode view: %v\n%s", err, rec.Body.String())
	}
	return v
}

func names(v viewBody) string {
	out := make([]string, len(v.Rows))
	for i, row := range v.Rows {
		out[i], _ = row["name"].(string)
	}
	return strings.Join(out, ",")
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var e ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode error: %v\n%s", err, rec.Body.String())
	}
	return e.Code
}

// =============================================================================
// Stateless views
// =============================================================================

func TestQueryView(t *testing.T) {
	s := newTestServer(t, testConfig())

	tests := []struct {
		name      string
		query     string
		wantNames string
		wantTotal int
		wantPages int
	}{
		{"source order", "", "ann,bob,cy,dee,eve", 5, 1},
		{"sorted desc second page", "?sort=age&dir=desc&size=2&page=2", "ann,bob", 5, 3},
		{"stable ties", "?sort=age&size=2", "bob,dee", 5, 3},
		{"case-insensitive filter", "?filter[name]=E", "dee,eve", 2, 1},
		{"numeric filter", "?filter[age]=25", "bob,dee", 2, 1},
		{"past the end is empty", "?size=2&page=9", "", 5, 3},
		{"show all", "?size=2&all=true", "ann,bob,cy,dee,eve", 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, "/api/tables/people/view"+tt.query, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			v := decodeView(t, rec)
			if got := names(v); got != tt.wantNames {
				t.Errorf("rows = %q, want %q", got, tt.wantNames)
			}
			if v.Total != tt.wantTotal || v.PageCount != tt.wantPages {
				t.Errorf("total/pages = %d/%d, want %d/%d", v.Total, v.PageCount, tt.wantTotal, tt.wantPages)
			}
		})
	}
}

func TestQueryView_Errors(t *testing.T) {
	s := newTestServer(t, testConfig())

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantCode   string
	}{
		{"unknown table", "/api/tables/missing/view", http.StatusNotFound, "TBL001"},
		{"unsortable column", "/api/tables/people/view?sort=notes", http.StatusBadRequest, "SORT001"},
		{"unknown direction", "/api/tables/people/view?sort=age&dir=up", http.StatusBadRequest, "SORT002"},
		{"unfilterable column", "/api/tables/people/view?filter[notes]=x", http.StatusBadRequest, "FILT001"},
		{"zero page size", "/api/tables/people/view?size=0", http.StatusBadRequest, "PAGE001"},
		{"page size above max", "/api/tables/people/view?size=500", http.StatusBadRequest, "PAGE001"},
		{"page zero", "/api/tables/people/view?page=0", http.StatusBadRequest, "PAGE002"},
		{"non-numeric page", "/api/tables/people/view?page=two", http.StatusBadRequest, "REQ003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, tt.path, "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if got := errorCode(t, rec); got != tt.wantCode {
				t.Errorf("code = %s, want %s", got, tt.wantCode)
			}
		})
	}
}

func TestListTables(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(t, s, http.MethodGet, "/api/tables", "")
	var groups map[string][]core.TableInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &groups); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(groups["Test"]) != 1 || groups["Test"][0].Key != "people" {
		t.Errorf("groups = %+v", groups)
	}
}

// =============================================================================
// Export and refresh
// =============================================================================

func TestExportData(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(t, s, http.MethodGet, "/api/tables/people/export?sort=age&dir=desc&filter[name]=e&size=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "people_") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	want := "Name,Age,Notes\neve,35,\ndee,25,\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("csv = %q, want %q", got, want)
	}
}

func TestExportData_ErrorBeforeOutput(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(t, s, http.MethodGet, "/api/tables/people/export?sort=notes", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestRefreshTable(t *testing.T) {
	s := newTestServer(t, testConfig())

	if rec := do(t, s, http.MethodPost, "/api/tables/people/refresh", ""); rec.Code != http.StatusNoContent {
		t.Errorf("refresh status = %d, want 204", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/tables/missing/refresh", ""); rec.Code != http.StatusNotFound {
		t.Errorf("refresh unknown status = %d, want 404", rec.Code)
	}
}

// =============================================================================
// Sessions
// =============================================================================

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(t, s, http.MethodPost, "/api/sessions", `{"table":"people","pageSize":2}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("open status = %d: %s", rec.Code, rec.Body.String())
	}
	opened := decodeView(t, rec)
	if opened.SessionID == "" {
		t.Fatal("missing session id")
	}
	if loc := rec.Header().Get("Location"); loc != "/api/sessions/"+opened.SessionID {
		t.Errorf("Location = %q", loc)
	}
	base := "/api/sessions/" + opened.SessionID

	steps := []struct {
		name      string
		method    string
		path      string
		body      string
		wantNames string
		wantPage  int
	}{
		{"sort toggles on", http.MethodPost, "/sort", `{"column":"age"}`, "bob,dee", 0},
		{"last page", http.MethodPut, "/page", `{"index":2}`, "cy", 2},
		{"filter clamps page", http.MethodPut, "/filters/name", `{"text":"e"}`, "dee,eve", 0},
		{"explicit direction", http.MethodPost, "/sort", `{"column":"age","direction":"desc"}`, "eve,dee", 0},
		{"clear filters", http.MethodDelete, "/filters", "", "cy,eve", 0},
		{"clear sort", http.MethodDelete, "/sort", "", "ann,bob", 0},
		{"page size", http.MethodPut, "/page-size", `{"size":10}`, "ann,bob,cy,dee,eve", 0},
		{"current view", http.MethodGet, "", "", "ann,bob,cy,dee,eve", 0},
	}
	for _, step := range steps {
		rec := do(t, s, step.method, base+step.path, step.body)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d: %s", step.name, rec.Code, rec.Body.String())
		}
		v := decodeView(t, rec)
		if got := names(v); got != step.wantNames || v.Page != step.wantPage {
			t.Errorf("%s: rows %q page %d, want %q page %d", step.name, got, v.Page, step.wantNames, step.wantPage)
		}
	}

	rec = do(t, s, http.MethodPut, base+"/pagination", `{"enabled":false}`)
	if v := decodeView(t, rec); v.Paginated || len(v.Rows) != 5 {
		t.Errorf("pagination off: paginated=%v rows=%d", v.Paginated, len(v.Rows))
	}

	rec = do(t, s, http.MethodGet, base+"/export", "")
	if rec.Code != http.StatusOK || strings.Count(rec.Body.String(), "\n") != 6 {
		t.Errorf("export status %d body %q", rec.Code, rec.Body.String())
	}

	if rec := do(t, s, http.MethodDelete, base, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("close status = %d", rec.Code)
	}
	rec = do(t, s, http.MethodGet, base, "")
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "SES001" {
		t.Errorf("closed session: status %d body %s", rec.Code, rec.Body.String())
	}
}

func TestSession_InvalidMutationKeepsState(t *testing.T) {
	s := newTestServer(t, testConfig())

	opened := decodeView(t, do(t, s, http.MethodPost, "/api/sessions", `{"table":"people","sort":"name","dir":"desc"}`))
	base := "/api/sessions/" + opened.SessionID

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode string
	}{
		{"unsortable", http.MethodPost, "/sort", `{"column":"notes"}`, "SORT001"},
		{"unfilterable", http.MethodPut, "/filters/notes", `{"text":"x"}`, "FILT001"},
		{"negative page", http.MethodPut, "/page", `{"index":-1}`, "PAGE002"},
		{"zero size", http.MethodPut, "/page-size", `{"size":0}`, "PAGE001"},
		{"missing index", http.MethodPut, "/page", `{}`, "REQ003"},
		{"unknown field", http.MethodPut, "/pagination", `{"on":true}`, "REQ003"},
		{"empty body", http.MethodPost, "/sort", "", "REQ003"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, base+tt.path, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
			if got := errorCode(t, rec); got != tt.wantCode {
				t.Errorf("code = %s, want %s", got, tt.wantCode)
			}
		})
	}

	v := decodeView(t, do(t, s, http.MethodGet, base, ""))
	if v.Sort.Column != "name" || v.Sort.Dir != "desc" || names(v) != "eve,dee,cy,bob,ann" {
		t.Errorf("state changed: sort %+v rows %q", v.Sort, names(v))
	}
}

func TestSession_Limits(t *testing.T) {
	s := newTestServer(t, testConfig())

	for range 2 {
		if rec := do(t, s, http.MethodPost, "/api/sessions", `{"table":"people"}`); rec.Code != http.StatusCreated {
			t.Fatalf("open status = %d", rec.Code)
		}
	}
	rec := do(t, s, http.MethodPost, "/api/sessions", `{"table":"people"}`)
	if rec.Code != http.StatusServiceUnavailable || errorCode(t, rec) != "SES002" {
		t.Errorf("third session: status %d body %s", rec.Code, rec.Body.String())
	}

	var list []core.SessionInfo
	json.Unmarshal(do(t, s, http.MethodGet, "/api/sessions", "").Body.Bytes(), &list)
	if len(list) != 2 {
		t.Errorf("listed %d sessions, want 2", len(list))
	}

	if rec := do(t, s, http.MethodPost, "/api/sessions", `{"table":"missing"}`); rec.Code != http.StatusNotFound {
		t.Errorf("unknown table status = %d, want 404", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/sessions", `{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing table status = %d, want 400", rec.Code)
	}
}

// =============================================================================
// Pages
// =============================================================================

func TestTableView_HTML(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(t, s, http.MethodGet, "/table/people?sort=name&dir=desc", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"<!doctype html>", "People", "page 1 of 1 · 5 rows", "<td class=\"left\">eve</td>"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Index(body, ">eve<") > strings.Index(body, ">ann<") {
		t.Error("rows not sorted descending by name")
	}
}

func TestTableView_Partial(t *testing.T) {
	s := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/table/people?filter[name]=zzz", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	body := rec.Body.String()
	if strings.Contains(body, "<!doctype html>") {
		t.Error("HTMX request should render a fragment")
	}
	if !strings.Contains(body, "No data available") {
		t.Errorf("empty view should say No data available: %s", body)
	}
}

func TestTableView_Errors(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(t, s, http.MethodGet, "/table/missing", "")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "TBL001") {
		t.Errorf("unknown table: status %d body %q", rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/table/people?sort=notes", nil)
	req.Header.Set("HX-Request", "true")
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), `class="alert"`) {
		t.Errorf("htmx error: status %d body %q", rec.Code, rec.Body.String())
	}
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(t, s, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `href="/table/people"`) {
		t.Errorf("dashboard: status %d", rec.Code)
	}
}

// =============================================================================
// Middleware wiring
// =============================================================================

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(t, s, http.MethodGet, "/healthz", "")
	var health healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Status != "ok" || health.Tables != 1 {
		t.Errorf("health = %+v", health)
	}

	do(t, s, http.MethodGet, "/api/tables/people/view", "")
	body := do(t, s, http.MethodGet, "/metrics", "").Body.String()
	for _, want := range []string{"gridview_http_requests_total", "gridview_views_computed_total", "gridview_cache_lookups_total"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(t, s, http.MethodGet, "/healthz", "")
	for _, h := range []string{"X-Content-Type-Options", "X-Frame-Options", "Content-Security-Policy", "Referrer-Policy"} {
		if rec.Header().Get(h) == "" {
			t.Errorf("missing header %s", h)
		}
	}
}

func TestAPIKeyRequired(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"secret"}
	s := newTestServer(t, cfg)

	if rec := do(t, s, http.MethodGet, "/api/tables", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("without key status = %d, want 401", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/tables", nil)
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("with key status = %d, want 200", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 60, Burst: 2, ExportLimit: 1}
	s := newTestServer(t, cfg)

	for i := range 2 {
		if rec := do(t, s, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i+1, rec.Code)
		}
	}
	if rec := do(t, s, http.MethodGet, "/healthz", ""); rec.Code != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", rec.Code)
	}
}
