package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ryanm101/gameshelf/internal/auth"
)

var (
	loginLabels    = []string{"Email", "Password"}
	registerLabels = []string{"Username", "Email", "Password", "Confirm password"}
)

func newInput(placeholder string, secret bool) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 128
	ti.Width = 32
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return ti
}

func (m Model) toLogin(notice string) Model {
	m.screen = screenLogin
	m.inputs = []textinput.Model{
		newInput("ana@example.com", false),
		newInput("password", true),
	}
	m.formErr = ""
	m.notice = notice
	return m.focusInput(0)
}

func (m Model) toRegister() Model {
	m.screen = screenRegister
	m.inputs = []textinput.Model{
		newInput("ana", false),
		newInput("ana@example.com", false),
		newInput("password", true),
		newInput("password again", true),
	}
	m.formErr = ""
	m.notice = ""
	return m.focusInput(0)
}

func (m Model) focusInput(i int) Model {
	if len(m.inputs) == 0 {
		return m
	}
	i = (i + len(m.inputs)) % len(m.inputs)
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	m.focus = i
	return m
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.NextField):
		return m.focusInput(m.focus + 1), nil
	case key.Matches(msg, keys.PrevField):
		return m.focusInput(m.focus - 1), nil
	case key.Matches(msg, keys.Register) && m.screen == screenLogin:
		return m.toRegister(), textinput.Blink
	case key.Matches(msg, keys.Back):
		if m.screen == screenRegister {
			return m.toLogin(""), textinput.Blink
		}
		return m, tea.Quit
	case key.Matches(msg, keys.Submit):
		if m.busy {
			return m, nil
		}
		m.notice = ""
		if m.screen == screenLogin {
			m.auth.Login(auth.LoginForm{
				Email:    strings.TrimSpace(m.inputs[0].Value()),
				Password: m.inputs[1].Value(),
			})
		} else {
			m.auth.Register(auth.RegistrationForm{
				Username: strings.TrimSpace(m.inputs[0].Value()),
				Email:    strings.TrimSpace(m.inputs[1].Value()),
				Password: m.inputs[2].Value(),
				Confirm:  m.inputs[3].Value(),
			})
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) viewForm() string {
	title, labels := "Log in", loginLabels
	if m.screen == screenRegister {
		title, labels = "Create account", registerLabels
	}

	var lines []string
	lines = append(lines, titleStyle.Render("🎮 gameshelf · "+title))
	for i, in := range m.inputs {
		lines = append(lines, labelStyle.Render(labels[i])+in.View())
	}
	lines = append(lines, "")

	switch {
	case m.busy:
		lines = append(lines, m.spinner.View()+" Working...")
	case m.formErr != "":
		lines = append(lines, errorStyle.Render(m.formErr))
	case m.notice != "":
		lines = append(lines, okStyle.Render(m.notice))
	default:
		lines = append(lines, "")
	}

	lines = append(lines, m.help.View(m.screenKeys()))
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
