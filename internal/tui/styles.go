package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.Color("205")
	colorAccent  = lipgloss.Color("212")
	colorMuted   = lipgloss.Color("241")
	colorText    = lipgloss.Color("252")
	colorDanger  = lipgloss.Color("#F44336")
	colorOK      = lipgloss.Color("#4CAF50")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(18)

	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("57")).
			Foreground(lipgloss.Color("255"))

	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	textStyle  = lipgloss.NewStyle().Foreground(colorText)
	errorStyle = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(colorOK)
	keyStyle   = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(colorMuted)
)

// Rating distribution colors, keyed by catalog rating title.
var ratingColors = map[string]lipgloss.Color{
	"exceptional": lipgloss.Color("#4CAF50"),
	"recommended": lipgloss.Color("#FFC107"),
	"meh":         lipgloss.Color("#FF9800"),
	"skip":        lipgloss.Color("#F44336"),
}

const defaultRatingColor = lipgloss.Color("#2196F3")

func ratingColor(title string) lipgloss.Color {
	if c, ok := ratingColors[strings.ToLower(title)]; ok {
		return c
	}
	return defaultRatingColor
}

// ratingBar renders percent (0-100) as a bar of at most width cells.
func ratingBar(title string, percent float64, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100 * float64(width))
	if percent > 0 && filled == 0 {
		filled = 1
	}
	bar := lipgloss.NewStyle().Foreground(ratingColor(title)).Render(strings.Repeat("█", filled))
	return bar + mutedStyle.Render(strings.Repeat("░", width-filled))
}

// truncate shortens s to max runes, adding "..." when cut.
func truncate(s string, max int) string {
	r := []rune(s)
	if max < 4 || len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
