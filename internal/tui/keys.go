package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Open     key.Binding
	Back     key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Search   key.Binding
	Library  key.Binding
	Refresh  key.Binding
	Logout   key.Binding
	Rate     key.Binding
	Help     key.Binding
	Quit     key.Binding

	NextField key.Binding
	PrevField key.Binding
	Submit    key.Binding
	Register  key.Binding
	ForceQuit key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
	Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
	Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	NextPage: key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n/→", "next page")),
	PrevPage: key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p/←", "prev page")),
	Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Library:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "my games")),
	Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Logout:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log out")),
	Rate:     key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "rate")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:     key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),

	NextField: key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
	PrevField: key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
	Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
	Register:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "create account")),
	ForceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
}

// bindings adapts a flat binding list to help.KeyMap.
type bindings []key.Binding

func (b bindings) ShortHelp() []key.Binding  { return b }
func (b bindings) FullHelp() [][]key.Binding { return [][]key.Binding{b} }

func (m Model) screenKeys() bindings {
	switch m.screen {
	case screenLogin:
		return bindings{keys.NextField, keys.Submit, keys.Register, keys.ForceQuit}
	case screenRegister:
		return bindings{keys.NextField, keys.Submit, keys.Back, keys.ForceQuit}
	case screenDetail:
		return bindings{keys.Rate, keys.Refresh, keys.Back, keys.Help, keys.Quit}
	case screenLibrary:
		return bindings{keys.Up, keys.Down, keys.Open, keys.Refresh, keys.Back, keys.Help, keys.Quit}
	default:
		return bindings{keys.Up, keys.Down, keys.Open, keys.NextPage, keys.PrevPage, keys.Search,
			keys.Library, keys.Logout, keys.Help, keys.Quit}
	}
}
