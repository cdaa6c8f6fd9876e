// Package tui renders table views in a terminal.
//
// PrintView writes one page as a static table. Browser is a bubbletea
// model that keeps a view session open and lets the user sort, filter and
// page through it with the keyboard. Picker is a menu of the registered
// tables grouped by source.
package tui
