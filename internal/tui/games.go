package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ryanm101/gameshelf/internal/catalog"
	"github.com/ryanm101/gameshelf/internal/db"
	"github.com/ryanm101/gameshelf/internal/viewstate"
)

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	games := m.page.Games
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(games)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Open):
		if m.cursor < len(games) {
			return m.openDetail(games[m.cursor], screenList)
		}
	case key.Matches(msg, keys.NextPage):
		m.list.NextPage()
	case key.Matches(msg, keys.PrevPage):
		m.list.PrevPage()
	case key.Matches(msg, keys.Refresh):
		m.list.Search(m.page.Query, m.page.Page)
	case key.Matches(msg, keys.Search):
		m.searching = true
		m.search.SetValue(m.page.Query)
		return m, m.search.Focus()
	case key.Matches(msg, keys.Library):
		m.screen = screenLibrary
		m.library.Load(m.deps.Session.User())
	case key.Matches(msg, keys.Logout):
		m.auth.Logout()
		m = m.resetLibrary()
		return m.toLogin("Logged out."), nil
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		m.cursor = 0
		m.list.Search(strings.TrimSpace(m.search.Value()), 1)
		return m, nil
	case "esc":
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// openDetail hands g to a fresh detail holder, shows it at once and loads
// the full record. The previous detail holder is closed.
func (m Model) openDetail(g catalog.Game, from screen) (tea.Model, tea.Cmd) {
	if m.detail != nil {
		m.detail.Close()
	}
	h := viewstate.NewGameDetail(m.deps.Runtime, m.deps.Games)
	observeOp(m.bridge, opDetail, h.State, h.Err)
	observe(m.bridge, h.Game, func(g *catalog.Game) tea.Msg { return detailMsg{from: h, game: g} })

	m.detail = h
	m.game = &g
	m.detailErr = ""
	m.rateStatus = ""
	m.rateErr = ""
	m.detailFrom = from
	m.screen = screenDetail

	h.Show(g)
	h.Load(g.ID)
	return m, nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		if m.detail != nil {
			m.detail.Close()
			m.detail = nil
		}
		m.game = nil
		m.screen = m.detailFrom
	case key.Matches(msg, keys.Refresh):
		if m.game != nil && m.detail != nil {
			m.detail.Load(m.game.ID)
		}
	case key.Matches(msg, keys.Rate):
		if m.game == nil {
			return m, nil
		}
		n, _ := strconv.Atoi(msg.String())
		m.rateErr = ""
		m.rateStatus = "Saving rating..."
		m.library.Rate(m.deps.Session.User(), m.game.ID, float64(n))
	}
	return m, nil
}

// userRating returns the session user's rating of id, if any.
func (m Model) userRating(id int64) (float64, bool) {
	for _, g := range m.rated {
		if g.GameID == id {
			return g.UserRating, true
		}
	}
	return 0, false
}

// View renders the current screen.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.viewHelp()
	}

	switch m.screen {
	case screenLogin, screenRegister:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.viewForm())
	case screenDetail:
		return m.viewDetail()
	case screenLibrary:
		return m.viewLibrary()
	default:
		return m.viewList()
	}
}

func (m Model) listHeight() int {
	h := m.height - 10
	if h < 5 {
		h = 5
	}
	return h
}

func (m Model) viewList() string {
	title := fmt.Sprintf("🎮 Games · page %d", m.page.Page)
	if m.page.Query != "" {
		title = fmt.Sprintf("🔎 %q · page %d", m.page.Query, m.page.Page)
	}

	var content string
	switch {
	case m.listLoading && len(m.page.Games) == 0:
		content = "\n  " + m.spinner.View() + " Loading..."
	case len(m.page.Games) == 0:
		content = "\n  No games found."
	default:
		maxShow := m.listHeight()
		start := 0
		if m.cursor >= maxShow {
			start = m.cursor - maxShow + 1
		}
		end := start + maxShow
		if end > len(m.page.Games) {
			end = len(m.page.Games)
		}
		nameWidth := m.width - 20
		if nameWidth < 20 {
			nameWidth = 20
		}
		for i := start; i < end; i++ {
			g := m.page.Games[i]
			line := fmt.Sprintf("%-*s ★ %.2f", nameWidth, truncate(g.Name, nameWidth), g.Rating)
			if i == m.cursor {
				content += selectedStyle.Render("> "+line) + "\n"
				if genres := db.JoinGenres(g.GenreNames()); genres != "" {
					content += "    " + mutedStyle.Render(genres) + "\n"
				}
			} else {
				content += "  " + textStyle.Render(line) + "\n"
			}
		}
	}

	status := fmt.Sprintf(" %s", m.deps.Session.Email())
	if m.listLoading && len(m.page.Games) > 0 {
		status += " | " + m.spinner.View() + " loading"
	}
	if m.page.HasNext {
		status += " | more →"
	}

	lines := []string{
		titleStyle.Render(title),
		boxStyle.Width(m.width - 4).Render(content),
	}
	if m.searching {
		lines = append(lines, "Search: "+m.search.View())
	}
	if m.listErr != "" {
		lines = append(lines, errorStyle.Render(m.listErr))
	}
	lines = append(lines, statusStyle.Width(m.width).Render(status), m.help.View(m.screenKeys()))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) viewDetail() string {
	if m.game == nil {
		lines := []string{titleStyle.Render("Game details")}
		if m.detailErr != "" {
			lines = append(lines, errorStyle.Render(m.detailErr))
		} else {
			lines = append(lines, m.spinner.View()+" Loading...")
		}
		lines = append(lines, m.help.View(m.screenKeys()))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	g := m.game
	field := func(label, value string) string {
		if value == "" {
			value = "n/a"
		}
		return labelStyle.Render(label) + textStyle.Render(value)
	}

	lines := []string{
		titleStyle.Render("🎮 " + g.Name),
		field("Released", g.Released),
		field("Genres", db.JoinGenres(g.GenreNames())),
		field("Developer", g.Developer()),
		field("Rating", fmt.Sprintf("%.2f / 5", g.Rating)),
	}
	if r, ok := m.userRating(g.ID); ok {
		lines = append(lines, field("Your rating", fmt.Sprintf("%.0f / 5", r)))
	}

	lines = append(lines, "")
	switch {
	case m.detailLoading && len(g.Ratings) == 0:
		lines = append(lines, m.spinner.View()+" Loading ratings...")
	case len(g.Ratings) > 0:
		barWidth := m.width - 40
		if barWidth < 10 {
			barWidth = 10
		}
		if barWidth > 50 {
			barWidth = 50
		}
		for _, r := range g.Ratings {
			lines = append(lines, fmt.Sprintf("%-12s %s %5.1f%% (%d)",
				r.Title, ratingBar(r.Title, r.Percent, barWidth), r.Percent, r.Count))
		}
	}

	if m.detailErr != "" {
		lines = append(lines, errorStyle.Render(m.detailErr))
	}
	if m.rateErr != "" {
		lines = append(lines, errorStyle.Render(m.rateErr))
	} else if m.rateStatus != "" {
		lines = append(lines, okStyle.Render(m.rateStatus))
	}

	lines = append(lines, m.help.View(m.screenKeys()))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) viewHelp() string {
	var rows []string
	rows = append(rows, titleStyle.Render("⌨️  Keyboard Shortcuts"))
	for _, b := range m.screenKeys() {
		h := b.Help()
		rows = append(rows, keyStyle.Render(fmt.Sprintf("  %-10s", h.Key))+"  "+textStyle.Render(h.Desc))
	}
	rows = append(rows, "", mutedStyle.Render("Press any key to close"))

	box := boxStyle.
		BorderForeground(colorPrimary).
		Padding(1, 2).
		Width(50).
		Render(strings.Join(rows, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
