package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ryanm101/gameshelf/internal/catalog"
	"github.com/ryanm101/gameshelf/internal/db"
)

func (m Model) updateLibrary(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.libCursor > 0 {
			m.libCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.libCursor < len(m.rated)-1 {
			m.libCursor++
		}
	case key.Matches(msg, keys.Open):
		if m.libCursor < len(m.rated) {
			return m.openDetail(summary(m.rated[m.libCursor]), screenLibrary)
		}
	case key.Matches(msg, keys.Refresh):
		m.library.Load(m.deps.Session.User())
	case key.Matches(msg, keys.Back):
		m.screen = screenList
	}
	return m, nil
}

// summary turns a rated game back into the catalog form the detail screen
// shows until the full record arrives.
func summary(v db.UserGameView) catalog.Game {
	return catalog.Game{
		ID:              v.GameID,
		Name:            v.Name,
		Released:        v.Released,
		BackgroundImage: v.BackgroundImage,
		Rating:          v.GameRating,
	}
}

func (m Model) viewLibrary() string {
	var content string
	switch {
	case m.libLoading && len(m.rated) == 0:
		content = "\n  " + m.spinner.View() + " Loading..."
	case len(m.rated) == 0:
		content = "\n  You have not rated any games yet."
	default:
		nameWidth := m.width - 30
		if nameWidth < 20 {
			nameWidth = 20
		}
		for i, g := range m.rated {
			line := fmt.Sprintf("%-*s you %.0f/5 · ★ %.2f", nameWidth, truncate(g.Name, nameWidth), g.UserRating, g.GameRating)
			if i == m.libCursor {
				content += selectedStyle.Render("> "+line) + "\n"
				if g.Genres != "" {
					content += "    " + mutedStyle.Render(g.Genres) + "\n"
				}
			} else {
				content += "  " + textStyle.Render(line) + "\n"
			}
		}
	}

	lines := []string{
		titleStyle.Render(fmt.Sprintf("⭐ My games (%d)", len(m.rated))),
		boxStyle.Width(m.width - 4).Render(content),
	}
	if m.libErr != "" {
		lines = append(lines, errorStyle.Render(m.libErr))
	}
	lines = append(lines, m.help.View(m.screenKeys()))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
