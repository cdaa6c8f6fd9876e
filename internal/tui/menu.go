package tui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JonMunkholm/gridview/internal/core"
)

/* ----------------------------------------
	MENU TREE
---------------------------------------- */

// MenuItem is one line of a menu. It opens Submenu, runs Action, or
// picks Table, in that order of precedence.
type MenuItem struct {
	Label   string
	Submenu *Menu
	Action  func() tea.Cmd
	Table   string
}

// Menu is a titled list of items. Parent is nil for the root.
type Menu struct {
	Title  string
	Items  []MenuItem
	Parent *Menu
}

// statusMsg replaces the picker's status line.
type statusMsg string

func linkParents(menu *Menu, parent *Menu) {
	menu.Parent = parent

	for i := range menu.Items {
		item := &menu.Items[i]

		if item.Label == "Back" {
			item.Submenu = parent
			continue
		}

		if item.Submenu != nil {
			linkParents(item.Submenu, menu)
		}
	}
}

// buildMenuTree groups the service's tables under one submenu per group.
func buildMenuTree(svc *core.Service) *Menu {
	groups := svc.ListTablesByGroup()
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	slices.Sort(names)

	root := &Menu{Title: "Tables"}
	for _, name := range names {
		sub := &Menu{Title: name}
		for _, t := range groups[name] {
			sub.Items = append(sub.Items, MenuItem{Label: t.Label, Table: t.Key})
		}
		sub.Items = append(sub.Items, MenuItem{Label: "Back"})
		root.Items = append(root.Items, MenuItem{Label: name + " ->", Submenu: sub})
	}
	root.Items = append(root.Items, MenuItem{Label: "Refresh all tables", Action: func() tea.Cmd {
		return func() tea.Msg {
			svc.RefreshAll()
			return statusMsg("cached rows discarded")
		}
	}})

	linkParents(root, nil)
	return root
}

/* ----------------------------------------
	PICKER
---------------------------------------- */

type pickerKeys struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Back  key.Binding
	Quit  key.Binding
}

// Picker is a menu for choosing a table to browse.
type Picker struct {
	menu   *Menu
	cursor int
	status string
	chosen string
	keys   pickerKeys
}

// NewPicker builds a picker over the service's tables.
func NewPicker(svc *core.Service) *Picker {
	return &Picker{
		menu: buildMenuTree(svc),
		keys: pickerKeys{
			Up:    key.NewBinding(key.WithKeys("up", "k")),
			Down:  key.NewBinding(key.WithKeys("down", "j")),
			Enter: key.NewBinding(key.WithKeys("enter")),
			Back:  key.NewBinding(key.WithKeys("esc", "backspace")),
			Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c")),
		},
	}
}

// Chosen returns the key of the picked table, or "" if none was picked.
func (p *Picker) Chosen() string { return p.chosen }

// Init implements tea.Model.
func (p *Picker) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (p *Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statusMsg:
		p.status = string(msg)
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Quit):
			return p, tea.Quit
		case key.Matches(msg, p.keys.Up):
			p.cursor = max(p.cursor-1, 0)
		case key.Matches(msg, p.keys.Down):
			p.cursor = min(p.cursor+1, len(p.menu.Items)-1)
		case key.Matches(msg, p.keys.Back):
			if p.menu.Parent != nil {
				p.open(p.menu.Parent)
			}
		case key.Matches(msg, p.keys.Enter):
			return p, p.choose()
		}
	}
	return p, nil
}

func (p *Picker) choose() tea.Cmd {
	if len(p.menu.Items) == 0 {
		return nil
	}
	item := p.menu.Items[p.cursor]
	switch {
	case item.Submenu != nil:
		p.open(item.Submenu)
	case item.Action != nil:
		return item.Action()
	case item.Table != "":
		p.chosen = item.Table
		return tea.Quit
	}
	return nil
}

func (p *Picker) open(m *Menu) {
	p.menu = m
	p.cursor = 0
	p.status = ""
}

// View implements tea.Model.
func (p *Picker) View() string {
	var s strings.Builder
	s.WriteString(Styles.Title.Render(p.menu.Title))
	s.WriteString("\n\n")
	for i, item := range p.menu.Items {
		if i == p.cursor {
			s.WriteString(Styles.Selected.Render("> " + item.Label))
		} else {
			s.WriteString("  " + item.Label)
		}
		s.WriteString("\n")
	}
	if p.status != "" {
		s.WriteString("\n")
		s.WriteString(Styles.Footer.Render(p.status))
		s.WriteString("\n")
	}
	s.WriteString("\n")
	s.WriteString(Styles.Footer.Render("↑/↓ move · enter select · esc back · q quit"))
	s.WriteString("\n")
	return s.String()
}
