package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted      = ac("240", "243")
	colorAccent     = ac("27", "62")
	colorAccentFg   = ac("255", "235")
	colorSelectedBg = ac("#e9e9e9", "#262626")
	colorSelectedFg = ac("235", "255")
	colorBorder     = ac("250", "243")
	colorError      = ac("160", "203")
)

type styles struct {
	title     lipgloss.Style
	pane      lipgloss.Style
	paneFocus lipgloss.Style
	paneTitle lipgloss.Style
	row       lipgloss.Style
	selected  lipgloss.Style
	muted     lipgloss.Style
	ghost     lipgloss.Style
	badge     lipgloss.Style
	status    lipgloss.Style
	errStatus lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true),
		pane:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorBorder).Padding(0, 1),
		paneFocus: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(0, 1),
		paneTitle: lipgloss.NewStyle().Foreground(colorMuted).Bold(true),
		row:       lipgloss.NewStyle(),
		selected:  lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(colorMuted),
		ghost:     lipgloss.NewStyle().Foreground(colorAccent).Bold(true),
		badge:     lipgloss.NewStyle().Foreground(colorAccentFg).Background(colorAccent).Padding(0, 1),
		status:    lipgloss.NewStyle().Foreground(colorMuted),
		errStatus: lipgloss.NewStyle().Foreground(colorError),
	}
}

// disableColor switches lipgloss to plain output for --no-color / NO_COLOR.
func disableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
