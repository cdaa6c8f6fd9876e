package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/JonMunkholm/gridview/internal/core"
)

// =============================================================================
// Fixtures
// =============================================================================

func newTestService(t *testing.T) *core.Service {
	t.Helper()
	core.Clear()
	t.Cleanup(core.Clear)
	core.Register(core.TableDefinition{
		Info: core.TableInfo{Key: "people", Group: "Test", Label: "People"},
		Fields: []core.FieldSpec{
			{Name: "name", Label: "Name", Type: core.FieldText, Sortable: true, Filterable: true},
			{Name: "age", Label: "Age", Type: core.FieldNumeric, Sortable: true, Filterable: true},
			{Name: "notes", Label: "Notes", Type: core.FieldText},
		},
		Source: core.NewStaticSource(
			core.Row{"name": "ann", "age": 30, "notes": ""},
			core.Row{"name": "bob", "age": 25, "notes": ""},
			core.Row{"name": "cy", "age": 41, "notes": ""},
			core.Row{"name": "dee", "age": 25, "notes": ""},
			core.Row{"name": "eve", "age": 35, "notes": ""},
		),
	})

	svc, err := core.NewService(core.Options{DefaultPageSize: 2, PageSizeOptions: []int{2, 5}})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// press sends k and runs the session command it returns, if any.
func press(t *testing.T, b *Browser, k tea.KeyMsg) {
	t.Helper()
	_, cmd := b.Update(k)
	if cmd == nil {
		return
	}
	out := cmd()
	msg, ok := out.(viewMsg)
	if !ok {
		t.Fatalf("key %q returned %T, want a view update", k.String(), out)
	}
	b.Update(msg)
}

func rowNames(res *core.ViewResult) string {
	out := make([]string, len(res.Rows))
	for i, row := range res.Rows {
		out[i], _ = row["name"].(string)
	}
	return strings.Join(out, ",")
}

func newTestBrowser(t *testing.T) (*Browser, *core.Service) {
	t.Helper()
	svc := newTestService(t)
	b, err := NewBrowser(context.Background(), svc, "people", core.ViewRequest{})
	if err != nil {
		t.Fatalf("NewBrowser() error = %v", err)
	}
	return b, svc
}

// =============================================================================
// PrintView
// =============================================================================

func TestPrintView(t *testing.T) {
	svc := newTestService(t)
	def, _ := svc.Table("people")

	res, err := svc.QueryView(context.Background(), "people", core.ViewRequest{Sort: "age", Dir: "desc", Filters: map[string]string{"name": "E"}})
	if err != nil {
		t.Fatalf("QueryView() error = %v", err)
	}

	var buf bytes.Buffer
	if err := PrintView(&buf, def, res); err != nil {
		t.Fatalf("PrintView() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{"People", "Name", "Age ▼", "eve", "dee", `filters: name~"E"`, "page 1 of 1 · 2 rows"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "eve") > strings.Index(out, "dee") {
		t.Errorf("rows not in sort order:\n%s", out)
	}
	if strings.Contains(out, EmptyText) {
		t.Errorf("non-empty view printed %q", EmptyText)
	}
}

func TestPrintView_Empty(t *testing.T) {
	svc := newTestService(t)
	def, _ := svc.Table("people")

	res, err := svc.QueryView(context.Background(), "people", core.ViewRequest{Filters: map[string]string{"name": "zzz"}})
	if err != nil {
		t.Fatalf("QueryView() error = %v", err)
	}

	var buf bytes.Buffer
	if err := PrintView(&buf, def, res); err != nil {
		t.Fatalf("PrintView() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, EmptyText) || !strings.Contains(out, "page 1 of 1 · 0 rows") {
		t.Errorf("empty view output:\n%s", out)
	}
}

func TestLipglossAlign(t *testing.T) {
	tests := []struct {
		in   string
		want lipgloss.Position
	}{
		{"left", lipgloss.Left},
		{"right", lipgloss.Right},
		{"center", lipgloss.Center},
		{"", lipgloss.Left},
	}
	for _, tt := range tests {
		if got := lipglossAlign(tt.in); got != tt.want {
			t.Errorf("lipglossAlign(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// =============================================================================
// Browser
// =============================================================================

func TestBrowser_Sort(t *testing.T) {
	b, _ := newTestBrowser(t)

	press(t, b, runes("s"))
	if got := rowNames(b.Result()); got != "ann,bob" {
		t.Errorf("after sort asc rows = %s, want ann,bob", got)
	}

	press(t, b, runes("s"))
	if got := b.Result().Sort; got.Column != "name" || got.Dir != "desc" {
		t.Errorf("after second sort Sort = %+v, want name desc", got)
	}
	if got := rowNames(b.Result()); got != "eve,dee" {
		t.Errorf("after sort desc rows = %s, want eve,dee", got)
	}
}

func TestBrowser_ColumnSelection(t *testing.T) {
	b, _ := newTestBrowser(t)

	press(t, b, runes("l"))
	press(t, b, runes("s"))
	if got := b.Result().Sort.Column; got != "age" {
		t.Fatalf("Sort.Column = %q, want age", got)
	}
	if got := rowNames(b.Result()); got != "bob,dee" {
		t.Errorf("rows = %s, want bob,dee (stable on equal ages)", got)
	}

	press(t, b, tea.KeyMsg{Type: tea.KeyRight})
	press(t, b, tea.KeyMsg{Type: tea.KeyRight})
	if b.col != 2 {
		t.Errorf("col = %d, want clamped to 2", b.col)
	}
	press(t, b, runes("h"))
	press(t, b, runes("h"))
	press(t, b, runes("h"))
	if b.col != 0 {
		t.Errorf("col = %d, want clamped to 0", b.col)
	}
}

func TestBrowser_UnsortableColumnKeepsState(t *testing.T) {
	b, _ := newTestBrowser(t)
	press(t, b, runes("s"))

	press(t, b, runes("l"))
	press(t, b, runes("l"))
	press(t, b, runes("s"))

	if b.Err() == nil {
		t.Fatal("sorting notes: want error")
	}
	if got := b.Result().Sort.Column; got != "name" {
		t.Errorf("Sort.Column = %q, want name unchanged", got)
	}
	if !strings.Contains(b.View(), "This column cannot be sorted") {
		t.Errorf("view does not show the error:\n%s", b.View())
	}
}

func TestBrowser_Paging(t *testing.T) {
	b, _ := newTestBrowser(t)

	press(t, b, runes("n"))
	press(t, b, runes("n"))
	if got := b.Result().Page; got != 2 {
		t.Fatalf("Page = %d, want 2", got)
	}
	if _, cmd := b.Update(runes("n")); cmd != nil {
		t.Error("next on last page returned a command")
	}

	press(t, b, runes("p"))
	if got := b.Result().Page; got != 1 {
		t.Errorf("Page = %d, want 1", got)
	}

	press(t, b, runes("+"))
	if got := b.Result(); got.PageSize != 5 || got.Page != 0 {
		t.Errorf("after + PageSize=%d Page=%d, want 5 and 0", got.PageSize, got.Page)
	}
	press(t, b, runes("+"))
	if got := b.Result().PageSize; got != 2 {
		t.Errorf("after wrap PageSize = %d, want 2", got)
	}
	press(t, b, runes("-"))
	if got := b.Result().PageSize; got != 5 {
		t.Errorf("after - PageSize = %d, want 5", got)
	}
}

func TestBrowser_ShowAll(t *testing.T) {
	b, _ := newTestBrowser(t)

	press(t, b, runes("a"))
	res := b.Result()
	if res.Paginated || len(res.Rows) != 5 || res.PageCount != 1 {
		t.Errorf("show all: Paginated=%v rows=%d PageCount=%d", res.Paginated, len(res.Rows), res.PageCount)
	}
	if _, cmd := b.Update(runes("n")); cmd != nil {
		t.Error("next without pagination returned a command")
	}

	press(t, b, runes("a"))
	if !b.Result().Paginated || len(b.Result().Rows) != 2 {
		t.Errorf("paginate again: Paginated=%v rows=%d", b.Result().Paginated, len(b.Result().Rows))
	}
}

func TestBrowser_Filter(t *testing.T) {
	b, _ := newTestBrowser(t)

	b.Update(runes("/"))
	if !b.editing {
		t.Fatal("/ did not start editing")
	}
	b.Update(runes("E"))
	press(t, b, tea.KeyMsg{Type: tea.KeyEnter})

	if b.editing {
		t.Error("enter did not stop editing")
	}
	if got := b.Result(); got.Total != 2 || rowNames(got) != "dee,eve" {
		t.Errorf("filtered Total=%d rows=%s, want 2 dee,eve", got.Total, rowNames(got))
	}
	if !strings.Contains(b.View(), `filters: name~"E"`) {
		t.Errorf("view does not show the filter:\n%s", b.View())
	}

	press(t, b, tea.KeyMsg{Type: tea.KeyEsc})
	if got := b.Result(); got.Total != 5 || len(got.Filters) != 0 {
		t.Errorf("after esc Total=%d Filters=%v, want 5 and none", got.Total, got.Filters)
	}
}

func TestBrowser_FilterCancel(t *testing.T) {
	b, _ := newTestBrowser(t)

	b.Update(runes("/"))
	b.Update(runes("x"))
	if _, cmd := b.Update(tea.KeyMsg{Type: tea.KeyEsc}); cmd != nil {
		t.Error("cancel returned a command")
	}
	if b.editing || b.Result().Total != 5 {
		t.Errorf("after cancel editing=%v Total=%d", b.editing, b.Result().Total)
	}

	// Keys typed while editing go to the input, not the bindings.
	b.Update(runes("/"))
	b.Update(runes("q"))
	if !b.editing || b.filter.Value() != "q" {
		t.Errorf("q while editing: editing=%v value=%q", b.editing, b.filter.Value())
	}
}

func TestBrowser_Quit(t *testing.T) {
	b, _ := newTestBrowser(t)

	_, cmd := b.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestBrowser_View(t *testing.T) {
	b, _ := newTestBrowser(t)
	out := b.View()
	for _, want := range []string{"People", "[Name]", "ann", "page 1 of 3 · 5 rows", "quit"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestBrowser_Close(t *testing.T) {
	b, svc := newTestBrowser(t)
	if svc.SessionCount() != 1 {
		t.Fatalf("SessionCount() = %d, want 1", svc.SessionCount())
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if svc.SessionCount() != 0 {
		t.Errorf("SessionCount() = %d after Close, want 0", svc.SessionCount())
	}
	if err := b.Close(); !errors.Is(err, core.ErrSessionNotFound) {
		t.Errorf("second Close() error = %v, want ErrSessionNotFound", err)
	}
}

func TestNewBrowser_UnknownTable(t *testing.T) {
	svc := newTestService(t)
	if _, err := NewBrowser(context.Background(), svc, "missing", core.ViewRequest{}); !errors.Is(err, core.ErrTableNotFound) {
		t.Errorf("NewBrowser() error = %v, want ErrTableNotFound", err)
	}
}

// =============================================================================
// Picker
// =============================================================================

func TestPicker(t *testing.T) {
	svc := newTestService(t)
	p := NewPicker(svc)

	if !strings.Contains(p.View(), "> Test ->") {
		t.Fatalf("root view:\n%s", p.View())
	}

	p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if p.menu.Title != "Test" {
		t.Fatalf("menu = %q after enter, want Test", p.menu.Title)
	}

	// Back returns to the root from the item and from esc.
	p.Update(runes("j"))
	p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if p.menu.Title != "Tables" {
		t.Errorf("menu = %q after Back, want Tables", p.menu.Title)
	}
	p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if p.menu.Title != "Tables" {
		t.Errorf("menu = %q after esc, want Tables", p.menu.Title)
	}

	p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if p.Chosen() != "people" {
		t.Errorf("Chosen() = %q, want people", p.Chosen())
	}
	if cmd == nil {
		t.Fatal("picking a table returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("picking a table did not quit")
	}
}

func TestPicker_Refresh(t *testing.T) {
	svc := newTestService(t)
	p := NewPicker(svc)

	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("refresh returned no command")
	}
	p.Update(cmd())
	if !strings.Contains(p.View(), "cached rows discarded") {
		t.Errorf("view missing status:\n%s", p.View())
	}
	if p.Chosen() != "" {
		t.Errorf("Chosen() = %q, want none", p.Chosen())
	}
}
