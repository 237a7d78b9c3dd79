// Package tui is the interactive terminal front end: login, registration,
// the catalog list, game details and the user's rated games.
package tui

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ryanm101/gameshelf/internal/catalog"
	"github.com/ryanm101/gameshelf/internal/db"
	"github.com/ryanm101/gameshelf/internal/logging"
	"github.com/ryanm101/gameshelf/internal/session"
	"github.com/ryanm101/gameshelf/internal/viewstate"
)

// GameService is what the screens need from the games repository.
type GameService interface {
	viewstate.GameSource
	viewstate.GameRater
}

// Deps are the collaborators of the terminal UI.
type Deps struct {
	Runtime *viewstate.Runtime
	Games   GameService
	Users   viewstate.UserStore
	Session *session.Session
}

type screen int

const (
	screenLogin screen = iota
	screenRegister
	screenList
	screenDetail
	screenLibrary
)

// bridge forwards holder changes to the running program. It is shared by
// every copy of the Model.
type bridge struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

func (b *bridge) Send(msg tea.Msg) {
	b.mu.RLock()
	send := b.send
	b.mu.RUnlock()
	if send != nil {
		send(msg)
	}
}

func (b *bridge) attach(send func(tea.Msg)) {
	b.mu.Lock()
	b.send = send
	b.mu.Unlock()
}

// Model is the root bubbletea model.
type Model struct {
	deps   Deps
	bridge *bridge

	screen   screen
	width    int
	height   int
	showHelp bool
	help     help.Model
	spinner  spinner.Model

	auth    *viewstate.Auth
	list    *viewstate.GameList
	library *viewstate.Library
	detail  *viewstate.GameDetail

	// login and register forms
	inputs  []textinput.Model
	focus   int
	formErr string
	notice  string
	busy    bool

	// game list
	page        viewstate.ListPage
	listLoading bool
	listErr     string
	cursor      int
	searching   bool
	search      textinput.Model

	// game detail
	game          *catalog.Game
	detailLoading bool
	detailErr     string
	rateStatus    string
	rateErr       string
	detailFrom    screen

	// my games
	rated      []db.UserGameView
	libCursor  int
	libLoading bool
	libErr     string
}

// Messages published by holder observers.
type (
	stateMsg struct {
		op    string
		state viewstate.LoadState
	}
	errMsg struct {
		op   string
		text string
	}
	listMsg       viewstate.ListPage
	libraryMsg    struct {
		from  *viewstate.Library
		games []db.UserGameView
	}
	loggedInMsg   int64
	registeredMsg int64
	detailMsg     struct {
		from *viewstate.GameDetail
		game *catalog.Game
	}
)

const (
	opAuth    = "auth"
	opList    = "list"
	opDetail  = "detail"
	opLibrary = "library"
	opRating  = "rating"
)

// New builds the root model and subscribes it to the long-lived holders.
func New(deps Deps) Model {
	search := textinput.New()
	search.Placeholder = "Search games"
	search.CharLimit = 64
	search.Width = 40

	m := Model{
		deps:    deps,
		bridge:  &bridge{},
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		auth:    viewstate.NewAuth(deps.Runtime, deps.Users, deps.Session),
		list:    viewstate.NewGameList(deps.Runtime, deps.Games),
		library: viewstate.NewLibrary(deps.Runtime, deps.Users, deps.Games),
		search:  search,
	}
	m.bindHolders()

	if deps.Session.LoggedIn() {
		m.screen = screenList
	} else {
		m = m.toLogin("")
	}
	return m
}

func observe[T any](b *bridge, o *viewstate.Observable[T], wrap func(T) tea.Msg) func() {
	return o.Observe(func(v T) { b.Send(wrap(v)) })
}

func observeOp(b *bridge, op string, state *viewstate.Observable[viewstate.LoadState], text *viewstate.Observable[string]) []func() {
	return []func(){
		observe(b, state, func(s viewstate.LoadState) tea.Msg { return stateMsg{op: op, state: s} }),
		observe(b, text, func(s string) tea.Msg { return errMsg{op: op, text: s} }),
	}
}

func (m Model) bindHolders() {
	b := m.bridge
	observeOp(b, opAuth, m.auth.State, m.auth.Err)
	observe(b, m.auth.UserID, func(id int64) tea.Msg { return loggedInMsg(id) })
	observe(b, m.auth.Registered, func(id int64) tea.Msg { return registeredMsg(id) })

	observeOp(b, opList, m.list.State, m.list.Err)
	observe(b, m.list.List, func(p viewstate.ListPage) tea.Msg { return listMsg(p) })

	bindLibrary(b, m.library)
}

func bindLibrary(b *bridge, h *viewstate.Library) {
	observeOp(b, opLibrary, h.State, h.Err)
	observeOp(b, opRating, h.Rating.State, h.Rating.Err)
	observe(b, h.Games, func(g []db.UserGameView) tea.Msg { return libraryMsg{from: h, games: g} })
}

// resetLibrary closes the library holder, dropping whatever it still has in
// flight, and binds a fresh one.
func (m Model) resetLibrary() Model {
	m.library.Close()
	m.library = viewstate.NewLibrary(m.deps.Runtime, m.deps.Users, m.deps.Games)
	bindLibrary(m.bridge, m.library)
	m.rated = nil
	m.libCursor = 0
	m.libLoading = false
	m.libErr = ""
	return m
}

// Init starts the spinner and, for a restored session, the first loads.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.screen == screenList {
		m.list.Load(1)
		m.library.Load(m.deps.Session.User())
	} else {
		cmds = append(cmds, textinput.Blink)
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case stateMsg:
		return m.onState(msg), nil

	case errMsg:
		return m.onError(msg), nil

	case listMsg:
		m.page = viewstate.ListPage(msg)
		if m.cursor >= len(m.page.Games) {
			m.cursor = 0
		}
		return m, nil

	case detailMsg:
		if msg.from == m.detail {
			m.game = msg.game
		}
		return m, nil

	case libraryMsg:
		if msg.from != m.library {
			return m, nil
		}
		m.rated = msg.games
		if m.libCursor >= len(m.rated) {
			m.libCursor = 0
		}
		return m, nil

	case loggedInMsg:
		if int64(msg) == db.NoUser {
			return m, nil
		}
		logging.Info("logged in", "user_id", int64(msg), "session", m.deps.Session.ID())
		m.screen = screenList
		m.inputs = nil
		m.notice = ""
		if len(m.page.Games) == 0 {
			m.list.Load(1)
		}
		m.library.Load(int64(msg))
		return m, nil

	case registeredMsg:
		if int64(msg) == db.NoUser || m.screen != screenRegister {
			return m, nil
		}
		email := m.inputs[1].Value()
		m = m.toLogin("Account created. Log in to continue.")
		m.inputs[0].SetValue(email)
		m = m.focusInput(1)
		return m, nil

	case tea.KeyMsg:
		return m.onKey(msg)
	}

	return m, nil
}

func (m Model) onState(msg stateMsg) Model {
	loading := msg.state == viewstate.Loading
	switch msg.op {
	case opAuth:
		m.busy = loading
	case opList:
		m.listLoading = loading
	case opDetail:
		m.detailLoading = loading
	case opLibrary:
		m.libLoading = loading
	case opRating:
		if loading {
			m.rateStatus = "Saving rating..."
		} else if m.rateErr == "" && m.rateStatus != "" {
			m.rateStatus = "Rating saved."
		}
	}
	return m
}

func (m Model) onError(msg errMsg) Model {
	switch msg.op {
	case opAuth:
		m.formErr = msg.text
	case opList:
		m.listErr = msg.text
	case opDetail:
		m.detailErr = msg.text
	case opLibrary:
		m.libErr = msg.text
	case opRating:
		m.rateErr = msg.text
		if msg.text != "" {
			m.rateStatus = ""
		}
	}
	return m
}

func (m Model) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.screen {
	case screenLogin, screenRegister:
		return m.updateForm(msg)
	}

	if m.searching {
		return m.updateSearch(msg)
	}

	if msg.String() == "?" {
		m.showHelp = !m.showHelp
		return m, nil
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if msg.String() == "q" {
		return m, tea.Quit
	}

	switch m.screen {
	case screenDetail:
		return m.updateDetail(msg)
	case screenLibrary:
		return m.updateLibrary(msg)
	default:
		return m.updateList(msg)
	}
}

// Close cancels in-flight loads of every holder.
func (m Model) Close() {
	m.auth.Close()
	m.list.Close()
	m.library.Close()
	if m.detail != nil {
		m.detail.Close()
	}
}

// Run shows the UI until the user quits or ctx is done.
func Run(ctx context.Context, deps Deps, opts ...tea.ProgramOption) error {
	m := New(deps)
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(m, opts...)
	m.bridge.attach(p.Send)

	final, err := p.Run()
	m.bridge.attach(nil)
	if fm, ok := final.(Model); ok {
		fm.Close()
	} else {
		m.Close()
	}
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
