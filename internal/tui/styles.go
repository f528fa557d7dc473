// Package tui is the VitaShop profile terminal interface.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vitashop/vitashop/internal/config"
	"github.com/vitashop/vitashop/internal/tui/components"
)

// Palette is the set of colors a scheme defines.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Error      lipgloss.Color
	Warning    lipgloss.Color
	Success    lipgloss.Color
}

var palettes = map[config.ColorScheme]Palette{
	config.ColorSchemeGreenPhosphor: {
		Primary: "#00FF00", Secondary: "#00AA00", Accent: "#66FF66", Foreground: "#00FF00",
		Muted: "#006600", Error: "#FF4444", Warning: "#FFAA00", Success: "#00FF00",
	},
	config.ColorSchemeAmber: {
		Primary: "#FFAA00", Secondary: "#AA7700", Accent: "#FFCC66", Foreground: "#FFAA00",
		Muted: "#664400", Error: "#FF4444", Warning: "#FFFF00", Success: "#FFAA00",
	},
	config.ColorSchemeWhite: {
		Primary: "#FFFFFF", Secondary: "#AAAAAA", Accent: "#FFFFFF", Foreground: "#FFFFFF",
		Muted: "#666666", Error: "#FF4444", Warning: "#FFAA00", Success: "#00FF00",
	},
}

// Theme contains all style definitions for the TUI.
type Theme struct {
	Palette Palette

	Base      lipgloss.Style
	Primary   lipgloss.Style
	Secondary lipgloss.Style
	Accent    lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Success   lipgloss.Style
	Muted     lipgloss.Style

	Header    lipgloss.Style
	Footer    lipgloss.Style
	Title     lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Box       lipgloss.Style
	Focused   lipgloss.Style
	Alert     lipgloss.Style
	AlertCrit lipgloss.Style

	FormLabel lipgloss.Style
	FormError lipgloss.Style

	StatusDivider lipgloss.Style
}

// NewTheme builds the theme for a color scheme. Unknown schemes get green
// phosphor.
func NewTheme(scheme config.ColorScheme) *Theme {
	p, ok := palettes[scheme]
	if !ok {
		p = palettes[config.ColorSchemeGreenPhosphor]
	}

	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	return &Theme{
		Palette: p,

		Base:      fg(p.Foreground),
		Primary:   fg(p.Primary),
		Secondary: fg(p.Secondary),
		Accent:    fg(p.Accent),
		Error:     fg(p.Error),
		Warning:   fg(p.Warning),
		Success:   fg(p.Success),
		Muted:     fg(p.Muted),

		Header: fg(p.Primary).Bold(true).Padding(0, 1),
		Footer: fg(p.Secondary).Padding(0, 1),
		Title:  fg(p.Accent).Bold(true).Padding(0, 1),
		Label:  fg(p.Secondary),
		Value:  fg(p.Primary),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Secondary).
			Padding(0, 1),
		Focused:   fg(p.Accent).Bold(true),
		Alert:     fg(p.Primary).Bold(true),
		AlertCrit: fg(p.Error).Bold(true),

		FormLabel: fg(p.Secondary).Width(24),
		FormError: fg(p.Error),

		StatusDivider: fg(p.Muted).SetString(" │ "),
	}
}

// Line characters for drawing
const (
	BoxHorizontal       = "─"
	BoxDoubleHorizontal = "═"
)

// DrawHorizontalLine draws a horizontal line.
func (t *Theme) DrawHorizontalLine(width int) string {
	return t.Secondary.Render(strings.Repeat(BoxHorizontal, max(width, 0)))
}

// DrawDoubleLine draws a double horizontal line.
func (t *Theme) DrawDoubleLine(width int) string {
	return t.Primary.Render(strings.Repeat(BoxDoubleHorizontal, max(width, 0)))
}

// Components returns the widget styles for this theme.
func (t *Theme) Components() components.Styles {
	return components.Styles{
		Label: t.FormLabel,
		Value: t.Value,
		Focus: t.Focused,
		Muted: t.Muted,
		Error: t.FormError,
		Title: t.Title,
		Help:  t.Label,
	}
}
