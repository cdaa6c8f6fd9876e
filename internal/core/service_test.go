package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/gridview/internal/view"
)

// ============================================================================
// Fixtures
// ============================================================================

// peopleRows returns n rows named p00, p01, ... with ages counting down
// from 20+n so that age order reverses name order.
func peopleRows(n int) []Row {
	rows := make([]Row, n)
	for i := range n {
		rows[i] = Row{
			"name":    fmt.Sprintf("p%02d", i),
			"age":     20 + n - i,
			"balance": float64(i) * 100.5,
			"notes":   "",
		}
	}
	return rows
}

var peopleFields = []FieldSpec{
	{Name: "name", Label: "Name", Type: FieldText, Sortable: true, Filterable: true},
	{Name: "age", Label: "Age", Type: FieldNumeric, Sortable: true, Filterable: true},
	{Name: "balance", Label: "Balance", Type: FieldNumeric, Sortable: true, Render: Currency},
	{Name: "notes", Label: "Notes", Type: FieldText},
}

// registerTestTables registers "people" (12 rows) plus "offline" whose
// source always fails, and returns the people source for load counting.
func registerTestTables(t *testing.T) *countingSource {
	t.Helper()
	Clear()
	t.Cleanup(Clear)

	people := &countingSource{rows: peopleRows(12)}
	Register(TableDefinition{
		Info:   TableInfo{Key: "people", Group: "Test", Label: "People"},
		Fields: peopleFields,
		Source: people,
	})
	Register(TableDefinition{
		Info:   TableInfo{Key: "offline", Group: "Test", Label: "Offline"},
		Fields: peopleFields,
		Source: &PostgresSource{Table: "offline", Fields: peopleFields},
	})
	return people
}

// recordingObserver counts service events.
type recordingObserver struct {
	mu       sync.Mutex
	computed int
	loaded   int
	loadErrs int
	hits     int
	misses   int
	active   int
}

func (o *recordingObserver) ViewComputed(string, time.Duration, int) {
	o.mu.Lock()
	o.computed++
	o.mu.Unlock()
}

func (o *recordingObserver) TableLoaded(_ string, _ time.Duration, err error) {
	o.mu.Lock()
	o.loaded++
	if err != nil {
		o.loadErrs++
	}
	o.mu.Unlock()
}

func (o *recordingObserver) CacheLookup(_ string, hit bool) {
	o.mu.Lock()
	if hit {
		o.hits++
	} else {
		o.misses++
	}
	o.mu.Unlock()
}

func (o *recordingObserver) SessionsActive(n int) {
	o.mu.Lock()
	o.active = n
	o.mu.Unlock()
}

func newTestService(t *testing.T, opts Options) *Service {
	t.Helper()
	svc, err := NewService(opts)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func rowNames(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i], _ = r["name"].(string)
	}
	return out
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ============================================================================
// NewService
// ============================================================================

func TestNewService_Defaults(t *testing.T) {
	svc := newTestService(t, Options{})

	if svc.DefaultPageSize() != view.DefaultPageSize {
		t.Errorf("DefaultPageSize() = %d, want %d", svc.DefaultPageSize(), view.DefaultPageSize)
	}
	sizes := svc.PageSizeOptions()
	if len(sizes) != 3 || sizes[0] != 5 || sizes[2] != 25 {
		t.Errorf("PageSizeOptions() = %v, want [5 10 25]", sizes)
	}

	sizes[0] = 999
	if svc.PageSizeOptions()[0] != 5 {
		t.Error("PageSizeOptions() exposed internal slice")
	}
}

func TestNewService_MaxPageSizeTrimsDefaults(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []int
	}{
		{name: "max between defaults", opts: Options{MaxPageSize: 20}, want: []int{5, 10}},
		{name: "max below every default option", opts: Options{DefaultPageSize: 2, MaxPageSize: 4}, want: []int{2}},
		{name: "explicit options kept", opts: Options{MaxPageSize: 20, PageSizeOptions: []int{20, 3}}, want: []int{3, 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, tt.opts)
			if got := svc.PageSizeOptions(); !slices.Equal(got, tt.want) {
				t.Errorf("PageSizeOptions() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewService_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{name: "negative default", opts: Options{DefaultPageSize: -1}},
		{name: "default above max", opts: Options{DefaultPageSize: 50, MaxPageSize: 20}},
		{name: "option above max", opts: Options{PageSizeOptions: []int{10, 500}}},
		{name: "zero option", opts: Options{PageSizeOptions: []int{0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewService(tt.opts)
			if !errors.Is(err, view.ErrInvalidPageSize) {
				t.Errorf("NewService() error = %v, want ErrInvalidPageSize", err)
			}
		})
	}
}

// ============================================================================
// Tables
// ============================================================================

func TestService_ListTables(t *testing.T) {
	registerTestTables(t)
	svc := newTestService(t, Options{})

	tables := svc.ListTables()
	if len(tables) != 2 || tables[0].Key != "offline" || tables[1].Key != "people" {
		t.Errorf("ListTables() = %v", tables)
	}

	groups := svc.ListTablesByGroup()
	if len(groups["Test"]) != 2 {
		t.Errorf("ListTablesByGroup()[Test] = %v", groups["Test"])
	}

	if _, err := svc.Table("nope"); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("Table(nope) error = %v, want ErrTableNotFound", err)
	}
}

// ============================================================================
// QueryView
// ============================================================================

func TestService_QueryView(t *testing.T) {
	registerTestTables(t)
	svc := newTestService(t, Options{})
	ctx := context.Background()

	tests := []struct {
		name      string
		req       ViewRequest
		wantNames []string
		wantTotal int
		wantPage  int
		wantPages int
	}{
		{
			name:      "defaults",
			req:       ViewRequest{},
			wantNames: []string{"p00", "p01", "p02", "p03", "p04"},
			wantTotal: 12,
			wantPages: 3,
		},
		{
			name:      "sorted by age ascending",
			req:       ViewRequest{Sort: "age", PageSize: 3},
			wantNames: []string{"p11", "p10", "p09"},
			wantTotal: 12,
			wantPages: 4,
		},
		{
			name:      "sorted descending second page",
			req:       ViewRequest{Sort: "name", Dir: "desc", PageSize: 5, Page: 1},
			wantNames: []string{"p06", "p05", "p04", "p03", "p02"},
			wantTotal: 12,
			wantPage:  1,
			wantPages: 3,
		},
		{
			name:      "filtered",
			req:       ViewRequest{Filters: map[string]string{"name": "P1"}},
			wantNames: []string{"p10", "p11"},
			wantTotal: 2,
			wantPages: 1,
		},
		{
			name:      "filter on numeric column",
			req:       ViewRequest{Filters: map[string]string{"age": "3"}},
			wantNames: []string{"p00", "p01", "p02", "p09"},
			wantTotal: 4,
			wantPages: 1,
		},
		{
			name:      "empty filter text ignored",
			req:       ViewRequest{Filters: map[string]string{"name": ""}, PageSize: 10},
			wantNames: []string{"p00", "p01", "p02", "p03", "p04", "p05", "p06", "p07", "p08", "p09"},
			wantTotal: 12,
			wantPages: 2,
		},
		{
			name:      "no matches",
			req:       ViewRequest{Filters: map[string]string{"name": "zzz"}},
			wantNames: []string{},
			wantTotal: 0,
			wantPages: 0,
		},
		{
			name:      "page past the end is empty",
			req:       ViewRequest{Page: 7},
			wantNames: []string{},
			wantTotal: 12,
			wantPage:  7,
			wantPages: 3,
		},
		{
			name:      "show all",
			req:       ViewRequest{ShowAll: true, Filters: map[string]string{"name": "p0"}},
			wantNames: []string{"p00", "p01", "p02", "p03", "p04", "p05", "p06", "p07", "p08", "p09"},
			wantTotal: 10,
			wantPages: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.QueryView(ctx, "people", tt.req)
			if err != nil {
				t.Fatalf("QueryView() error = %v", err)
			}
			if got := rowNames(res.Rows); !equalNames(got, tt.wantNames) {
				t.Errorf("rows = %v, want %v", got, tt.wantNames)
			}
			if res.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", res.Total, tt.wantTotal)
			}
			if res.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", res.Page, tt.wantPage)
			}
			if res.PageCount != tt.wantPages {
				t.Errorf("PageCount = %d, want %d", res.PageCount, tt.wantPages)
			}
			if res.SessionID != "" {
				t.Errorf("SessionID = %q, want empty for stateless view", res.SessionID)
			}
		})
	}
}

func TestService_QueryView_Invalid(t *testing.T) {
	registerTestTables(t)
	svc := newTestService(t, Options{MaxPageSize: 50})
	ctx := context.Background()

	tests := []struct {
		name    string
		key     string
		req     ViewRequest
		wantErr error
	}{
		{name: "unknown table", key: "nope", wantErr: ErrTableNotFound},
		{name: "unknown sort column", key: "people", req: ViewRequest{Sort: "height"}, wantErr: view.ErrInvalidSortColumn},
		{name: "unsortable column", key: "people", req: ViewRequest{Sort: "notes"}, wantErr: view.ErrInvalidSortColumn},
		{name: "bad direction", key: "people", req: ViewRequest{Sort: "name", Dir: "up"}, wantErr: view.ErrInvalidSortDirection},
		{name: "unfilterable column", key: "people", req: ViewRequest{Filters: map[string]string{"balance": "1"}}, wantErr: view.ErrInvalidFilterColumn},
		{name: "empty text on unknown column", key: "people", req: ViewRequest{Filters: map[string]string{"x": ""}}, wantErr: view.ErrInvalidFilterColumn},
		{name: "negative page size", key: "people", req: ViewRequest{PageSize: -5}, wantErr: view.ErrInvalidPageSize},
		{name: "page size above max", key: "people", req: ViewRequest{PageSize: 51}, wantErr: view.ErrInvalidPageSize},
		{name: "negative page", key: "people", req: ViewRequest{Page: -1}, wantErr: view.ErrInvalidPageIndex},
		{name: "source unavailable", key: "offline", wantErr: ErrSourceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.QueryView(ctx, tt.key, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("QueryView() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_QueryView_ResultShape(t *testing.T) {
	registerTestTables(t)
	svc := newTestService(t, Options{})

	res, err := svc.QueryView(context.Background(), "people", ViewRequest{Sort: "balance", Dir: "DESC", PageSize: 7})
	if err != nil {
		t.Fatalf("QueryView() error = %v", err)
	}

	if res.Sort != (SortSpec{Column: "balance", Dir: "desc"}) {
		t.Errorf("Sort = %+v, want balance desc", res.Sort)
	}
	if len(res.Columns) != 4 {
		t.Fatalf("Columns = %d, want 4", len(res.Columns))
	}
	if col, _ := res.Column("age"); col.Align != view.AlignRight || !col.Sortable {
		t.Errorf("age column = %+v, want sortable right-aligned", col)
	}
	if col, _ := res.Column("notes"); col.Sortable || col.Filterable {
		t.Errorf("notes column = %+v, want neither sortable nor filterable", col)
	}
	// An off-list page size is offered alongside the configured ones.
	want := []int{5, 7, 10, 25}
	if len(res.PageSizes) != len(want) {
		t.Fatalf("PageSizes = %v, want %v", res.PageSizes, want)
	}
	for i := range want {
		if res.PageSizes[i] != want[i] {
			t.Errorf("PageSizes = %v, want %v", res.PageSizes, want)
			break
		}
	}
	if !res.HasNext() || res.HasPrev() {
		t.Errorf("HasNext=%v HasPrev=%v on first of two pages", res.HasNext(), res.HasPrev())
	}
	if res.FirstRow() != 1 || res.LastRow() != 7 {
		t.Errorf("rows %d-%d, want 1-7", res.FirstRow(), res.LastRow())
	}
}

func TestService_QueryView_Caching(t *testing.T) {
	people := registerTestTables(t)
	obs := &recordingObserver{}
	svc := newTestService(t, Options{CacheTTL: time.Hour, Observer: obs})
	ctx := context.Background()

	for range 3 {
		if _, err := svc.QueryView(ctx, "people", ViewRequest{}); err != nil {
			t.Fatalf("QueryView() error = %v", err)
		}
	}
	if got := people.loads.Load(); got != 1 {
		t.Errorf("loads = %d, want 1", got)
	}

	if err := svc.RefreshTable("people"); err != nil {
		t.Fatalf("RefreshTable() error = %v", err)
	}
	svc.QueryView(ctx, "people", ViewRequest{})
	if got := people.loads.Load(); got != 2 {
		t.Errorf("loads after refresh = %d, want 2", got)
	}

	svc.RefreshAll()
	svc.QueryView(ctx, "people", ViewRequest{})
	if got := people.loads.Load(); got != 3 {
		t.Errorf("loads after refresh all = %d, want 3", got)
	}

	obs.mu.Lock()
	defer obs.mu.Unlock()
	if obs.computed != 5 || obs.loaded != 3 || obs.hits != 2 || obs.misses != 3 {
		t.Errorf("observer = %+v", obs)
	}

	if err := svc.RefreshTable("nope"); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("RefreshTable(nope) error = %v, want ErrTableNotFound", err)
	}
}

func TestService_QueryView_CachedRowsUnchanged(t *testing.T) {
	registerTestTables(t)
	svc := newTestService(t, Options{CacheTTL: time.Hour})
	ctx := context.Background()

	if _, err := svc.QueryView(ctx, "people", ViewRequest{Sort: "age"}); err != nil {
		t.Fatalf("QueryView() error = %v", err)
	}

	res, err := svc.QueryView(ctx, "people", ViewRequest{})
	if err != nil {
		t.Fatalf("QueryView() error = %v", err)
	}
	if got := rowNames(res.Rows); got[0] != "p00" {
		t.Errorf("unsorted view after sorted view starts with %s, want source order", got[0])
	}
}
