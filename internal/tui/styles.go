package tui

import "github.com/charmbracelet/lipgloss"

// Theme colors used throughout the terminal UI
const (
	ColorAccent    = "86"  // Titles, sort markers
	ColorHighlight = "205" // Selected column
	ColorDanger    = "196" // Errors
	ColorMuted     = "241" // Footer, hints
)

// Styles contains shared style definitions.
var Styles = struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Cell     lipgloss.Style
	Selected lipgloss.Style
	Footer   lipgloss.Style
	Empty    lipgloss.Style
	Error    lipgloss.Style
	Border   lipgloss.Style
}{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccent)),
	Header: lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1),
	Cell: lipgloss.NewStyle().
		Padding(0, 1),
	Selected: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHighlight)).
		Bold(true),
	Footer: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)),
	Empty: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)).
		Italic(true),
	Error: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorDanger)),
	Border: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)),
}

// lipglossAlign converts a column alignment name.
func lipglossAlign(align string) lipgloss.Position {
	switch align {
	case "right":
		return lipgloss.Right
	case "center":
		return lipgloss.Center
	default:
		return lipgloss.Left
	}
}
