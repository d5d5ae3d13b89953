// Package style provides the palette and small lipgloss helpers shared by the CLI and the TUI.
package style

import "github.com/charmbracelet/lipgloss"

// Palette. ANSI indices so terminals apply their own theme.
var (
	Accent    = lipgloss.Color("13")
	Highlight = lipgloss.Color("5")
	Good      = lipgloss.Color("2")
	Bad       = lipgloss.Color("1")
	Warn      = lipgloss.Color("3")
	Muted     = lipgloss.Color("#808080")
	Live      = lipgloss.Color("#ff3b30")
)

// New returns an empty lipgloss.Style.
func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

// Fg returns a rendering function that applies the foreground color c.
func Fg(c lipgloss.Color) func(string) string {
	return func(s string) string { return New().Foreground(c).Render(s) }
}

var (
	Faint  = func(s string) string { return New().Faint(true).Render(s) }
	Bold   = func(s string) string { return New().Bold(true).Render(s) }
	Italic = func(s string) string { return New().Italic(true).Render(s) }
)
