package tui

import (
	"context"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/JonMunkholm/gridview/internal/core"
)

const maxColumnWidth = 40

// viewMsg carries the outcome of a session operation back into Update.
type viewMsg struct {
	res *core.ViewResult
	err error
}

type keyMap struct {
	Left     key.Binding
	Right    key.Binding
	Sort     key.Binding
	Filter   key.Binding
	Clear    key.Binding
	Next     key.Binding
	Prev     key.Binding
	Bigger   key.Binding
	Smaller  key.Binding
	ShowAll  key.Binding
	Apply    key.Binding
	Cancel   key.Binding
	Quit     key.Binding
	editMode bool
}

func newKeyMap() keyMap {
	return keyMap{
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "column")),
		Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "column")),
		Sort:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Filter:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Clear:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear filters")),
		Next:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next page")),
		Prev:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prev page")),
		Bigger:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "page size")),
		Smaller: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "page size")),
		ShowAll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "show all")),
		Apply:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	if k.editMode {
		return []key.Binding{k.Apply, k.Cancel}
	}
	return []key.Binding{k.Left, k.Right, k.Sort, k.Filter, k.Clear, k.Prev, k.Next, k.Bigger, k.ShowAll, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Sort},
		{k.Filter, k.Clear, k.Apply, k.Cancel},
		{k.Prev, k.Next, k.Bigger, k.Smaller, k.ShowAll},
		{k.Quit},
	}
}

// Browser is an interactive table view backed by a service session.
type Browser struct {
	svc *core.Service
	ctx context.Context
	def core.TableDefinition
	res *core.ViewResult
	id  string

	col     int // Selected column
	editing bool
	err     error

	table  table.Model
	filter textinput.Model
	help   help.Model
	keys   keyMap
}

// NewBrowser opens a session on tableKey with req applied.
func NewBrowser(ctx context.Context, svc *core.Service, tableKey string, req core.ViewRequest) (*Browser, error) {
	def, err := svc.Table(tableKey)
	if err != nil {
		return nil, err
	}
	res, err := svc.OpenSession(ctx, tableKey, req)
	if err != nil {
		return nil, err
	}

	filter := textinput.New()
	filter.CharLimit = 200

	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true)
	styles.Selected = Styles.Selected

	b := &Browser{
		svc:    svc,
		ctx:    ctx,
		def:    def,
		id:     res.SessionID,
		table:  table.New(table.WithFocused(true), table.WithHeight(max(res.PageSize, 5)), table.WithStyles(styles)),
		filter: filter,
		help:   help.New(),
		keys:   newKeyMap(),
	}
	if res.Sort.Column != "" {
		b.col = max(slices.IndexFunc(res.Columns, func(c core.ColumnInfo) bool { return c.ID == res.Sort.Column }), 0)
	}
	b.apply(res)
	return b, nil
}

// Close discards the browser's session.
func (b *Browser) Close() error {
	return b.svc.CloseSession(b.id)
}

// Result returns the view currently displayed.
func (b *Browser) Result() *core.ViewResult { return b.res }

// Err returns the error of the last failed operation, if any.
func (b *Browser) Err() error { return b.err }

// Init implements tea.Model.
func (b *Browser) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case viewMsg:
		b.err = msg.err
		if msg.err == nil {
			b.apply(msg.res)
		}
		return b, nil

	case tea.WindowSizeMsg:
		b.help.Width = msg.Width
		b.table.SetHeight(max(msg.Height-8, 3))
		return b, nil

	case tea.KeyMsg:
		if b.editing {
			return b.updateFilter(msg)
		}
		return b.updateKeys(msg)
	}
	return b, nil
}

func (b *Browser) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	col := b.selected()
	switch {
	case key.Matches(msg, b.keys.Quit):
		return b, tea.Quit
	case key.Matches(msg, b.keys.Left):
		b.selectColumn(b.col - 1)
	case key.Matches(msg, b.keys.Right):
		b.selectColumn(b.col + 1)
	case key.Matches(msg, b.keys.Sort):
		return b, b.run(func(ctx context.Context) (*core.ViewResult, error) {
			return b.svc.SortSession(ctx, b.id, col.ID)
		})
	case key.Matches(msg, b.keys.Filter):
		b.editing = true
		b.keys.editMode = true
		b.filter.Prompt = col.Label + " ~ "
		b.filter.SetValue(b.res.Filters[col.ID])
		b.filter.CursorEnd()
		return b, b.filter.Focus()
	case key.Matches(msg, b.keys.Clear):
		return b, b.run(func(ctx context.Context) (*core.ViewResult, error) {
			return b.svc.ClearSessionFilters(ctx, b.id)
		})
	case key.Matches(msg, b.keys.Next):
		if b.res.HasNext() {
			return b, b.page(b.res.Page + 1)
		}
	case key.Matches(msg, b.keys.Prev):
		if b.res.HasPrev() {
			return b, b.page(b.res.Page - 1)
		}
	case key.Matches(msg, b.keys.Bigger):
		return b, b.cyclePageSize(1)
	case key.Matches(msg, b.keys.Smaller):
		return b, b.cyclePageSize(-1)
	case key.Matches(msg, b.keys.ShowAll):
		enabled := !b.res.Paginated
		return b, b.run(func(ctx context.Context) (*core.ViewResult, error) {
			return b.svc.SetSessionPagination(ctx, b.id, enabled)
		})
	default:
		var cmd tea.Cmd
		b.table, cmd = b.table.Update(msg)
		return b, cmd
	}
	return b, nil
}

func (b *Browser) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, b.keys.Apply):
		col, text := b.selected().ID, b.filter.Value()
		b.stopEditing()
		return b, b.run(func(ctx context.Context) (*core.ViewResult, error) {
			return b.svc.FilterSession(ctx, b.id, col, text)
		})
	case key.Matches(msg, b.keys.Cancel):
		b.stopEditing()
		return b, nil
	case msg.Type == tea.KeyCtrlC:
		return b, tea.Quit
	}
	var cmd tea.Cmd
	b.filter, cmd = b.filter.Update(msg)
	return b, cmd
}

func (b *Browser) stopEditing() {
	b.editing = false
	b.keys.editMode = false
	b.filter.Blur()
}

// run executes op against the session as a command.
func (b *Browser) run(op func(ctx context.Context) (*core.ViewResult, error)) tea.Cmd {
	ctx := b.ctx
	return func() tea.Msg {
		res, err := op(ctx)
		return viewMsg{res: res, err: err}
	}
}

func (b *Browser) page(index int) tea.Cmd {
	return b.run(func(ctx context.Context) (*core.ViewResult, error) {
		return b.svc.PageSession(ctx, b.id, index)
	})
}

// cyclePageSize steps through the selectable page sizes, wrapping at either end.
func (b *Browser) cyclePageSize(step int) tea.Cmd {
	sizes := b.res.PageSizes
	if len(sizes) == 0 {
		return nil
	}
	i := slices.Index(sizes, b.res.PageSize)
	if i < 0 {
		i = 0
	} else {
		i = (i + step + len(sizes)) % len(sizes)
	}
	size := sizes[i]
	return b.run(func(ctx context.Context) (*core.ViewResult, error) {
		return b.svc.PageSizeSession(ctx, b.id, size)
	})
}

func (b *Browser) selected() core.ColumnInfo {
	if b.col >= 0 && b.col < len(b.res.Columns) {
		return b.res.Columns[b.col]
	}
	return core.ColumnInfo{}
}

func (b *Browser) selectColumn(i int) {
	b.col = max(min(i, len(b.res.Columns)-1), 0)
	b.table.SetColumns(b.columns(b.def.FormatRows(b.res.Rows)))
}

// apply replaces the displayed view with res.
func (b *Browser) apply(res *core.ViewResult) {
	b.res = res
	cells := b.def.FormatRows(res.Rows)
	rows := make([]table.Row, len(cells))
	for i, c := range cells {
		rows[i] = table.Row(c)
	}
	b.table.SetRows(nil)
	b.table.SetColumns(b.columns(cells))
	b.table.SetRows(rows)
	b.table.SetCursor(0)
}

// columns sizes each column to its widest visible cell.
func (b *Browser) columns(cells [][]string) []table.Column {
	cols := make([]table.Column, len(b.res.Columns))
	for i, c := range b.res.Columns {
		title := headerLabel(b.res, c)
		if i == b.col {
			title = "[" + title + "]"
		}
		width := max(lipgloss.Width(title), c.MinWidth)
		for _, row := range cells {
			width = max(width, lipgloss.Width(row[i]))
		}
		cols[i] = table.Column{Title: title, Width: min(width, maxColumnWidth)}
	}
	return cols
}

// View implements tea.Model.
func (b *Browser) View() string {
	var s strings.Builder
	s.WriteString(Styles.Title.Render(b.res.Table.Label))
	s.WriteString("\n")
	s.WriteString(b.table.View())
	s.WriteString("\n")
	if len(b.res.Rows) == 0 {
		s.WriteString(Styles.Empty.Render(EmptyText))
		s.WriteString("\n")
	}
	if b.editing {
		s.WriteString(b.filter.View())
		s.WriteString("\n")
	} else if len(b.res.Filters) > 0 {
		s.WriteString(Styles.Footer.Render("filters: " + formatFilters(b.res.Filters)))
		s.WriteString("\n")
	}
	s.WriteString(Styles.Footer.Render(b.res.Summary()))
	s.WriteString("\n")
	if b.err != nil {
		s.WriteString(Styles.Error.Render(core.MapError(b.err).Message))
		s.WriteString("\n")
	}
	s.WriteString(b.help.View(b.keys))
	s.WriteString("\n")
	return s.String()
}
