package tui

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/JonMunkholm/gridview/internal/core"
)

// EmptyText is shown in place of rows when a view has none.
const EmptyText = "No data available"

// headerLabel returns the column label with its sort marker.
func headerLabel(res *core.ViewResult, col core.ColumnInfo) string {
	if res.Sort.Column != col.ID {
		return col.Label
	}
	if res.Sort.Dir == "desc" {
		return col.Label + " ▼"
	}
	return col.Label + " ▲"
}

// PrintView writes res as a bordered table followed by the footer line.
func PrintView(w io.Writer, def core.TableDefinition, res *core.ViewResult) error {
	headers := make([]string, len(res.Columns))
	for i, col := range res.Columns {
		headers[i] = headerLabel(res, col)
	}
	cells := def.FormatRows(res.Rows)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(Styles.Border).
		Headers(headers...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := Styles.Cell
			if row == table.HeaderRow {
				style = Styles.Header
			}
			if col < len(res.Columns) {
				style = style.Align(lipglossAlign(string(res.Columns[col].Align)))
			}
			return style
		})

	var b strings.Builder
	b.WriteString(Styles.Title.Render(res.Table.Label))
	b.WriteString("\n")
	b.WriteString(t.String())
	b.WriteString("\n")
	if len(cells) == 0 {
		b.WriteString(Styles.Empty.Render(EmptyText))
		b.WriteString("\n")
	}
	if len(res.Filters) > 0 {
		b.WriteString(Styles.Footer.Render("filters: " + formatFilters(res.Filters)))
		b.WriteString("\n")
	}
	b.WriteString(Styles.Footer.Render(res.Summary()))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// formatFilters renders filters as col~text pairs in column order.
func formatFilters(filters map[string]string) string {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s~%q", k, filters[k])
	}
	return strings.Join(parts, " ")
}
