package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/pet-arcade/internal/core"
	"github.com/vovakirdan/pet-arcade/internal/registry"
	"github.com/vovakirdan/pet-arcade/internal/session"
)

// BalanceSource reports a user's server-side balance. The backend service
// and the HTTP client both implement it.
type BalanceSource interface {
	Balance(ctx context.Context, userID string) (int64, error)
}

// Deps are the collaborators shared by every arcade session.
type Deps struct {
	Service session.Service
	Scores  ScoreSource // nil hides the scoreboard
	Logger  *log.Logger
}

type arcadeMode int

const (
	modeMenu arcadeMode = iota
	modeGame
	modeScores
)

type balanceMsg struct {
	value int64
	seen  uint64 // balance version when the fetch was issued
	err   error
}

// ArcadeModel manages the full arcade flow for one user:
// menu -> game -> menu, with the scoreboard one key away.
type ArcadeModel struct {
	deps    Deps
	userID  string
	runtime core.RuntimeConfig
	balance *session.Balance
	mode    arcadeMode
	menu    MenuModel
	game    Model
	scores  ScoreboardModel
}

// NewArcadeModel creates the arcade for userID.
func NewArcadeModel(deps Deps, userID string, rc core.RuntimeConfig) ArcadeModel {
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard)
	}
	balance := session.NewBalance(0)
	return ArcadeModel{
		deps:    deps,
		userID:  userID,
		runtime: rc,
		balance: balance,
		menu:    NewMenuModel(userID, balance, deps.Scores != nil, rc.ScreenW, rc.ScreenH),
	}
}

// Init fetches the user's balance.
func (m ArcadeModel) Init() tea.Cmd {
	return m.fetchBalance()
}

// fetchBalance asks the service for the user's balance. The answer is
// dropped if a local credit lands while the fetch is in flight.
func (m ArcadeModel) fetchBalance() tea.Cmd {
	src, ok := m.deps.Service.(BalanceSource)
	if !ok {
		return nil
	}
	userID := m.userID
	seen := m.balance.Version()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), serviceTimeout)
		defer cancel()
		v, err := src.Balance(ctx, userID)
		return balanceMsg{value: v, seen: seen, err: err}
	}
}

// Update routes messages to the active screen.
func (m ArcadeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.runtime.ScreenW = msg.Width
		m.runtime.ScreenH = msg.Height
		m.menu, _ = updateAs[MenuModel](m.menu, msg)

	case balanceMsg:
		if msg.err != nil {
			m.deps.Logger.Warn("could not fetch balance", "user", m.userID, "err", msg.err)
		} else if !m.balance.Sync(msg.value, msg.seen) {
			m.deps.Logger.Debug("dropped stale balance", "user", m.userID, "value", msg.value)
		}
		return m, nil

	case submitResultMsg:
		// answers may belong to a game that was already left
		applySubmission(msg)
		if msg.err != nil {
			return m, nil
		}
		return m, m.fetchBalance()
	}

	switch m.mode {
	case modeGame:
		return m.updateGame(msg)
	case modeScores:
		return m.updateScores(msg)
	default:
		return m.updateMenu(msg)
	}
}

func (m ArcadeModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(tea.WindowSizeMsg); ok {
		return m, nil
	}

	var cmd tea.Cmd
	m.menu, cmd = updateAs[MenuModel](m.menu, msg)

	switch {
	case m.menu.IsQuitting():
		return m, tea.Quit

	case m.menu.WantsScoreboard():
		m.menu = m.menu.Reset()
		m.scores = NewScoreboardModel(m.deps.Scores, m.runtime.ScreenW, m.runtime.ScreenH, false)
		m.mode = modeScores
		return m, nil

	case m.menu.Selected() != nil:
		kind := m.menu.Selected().Kind
		m.menu = m.menu.Reset()
		return m.startGame(kind)
	}

	return m, cmd
}

func (m ArcadeModel) startGame(kind core.GameKind) (tea.Model, tea.Cmd) {
	game, err := registry.Create(string(kind))
	if err != nil {
		m.deps.Logger.Error("cannot create game", "kind", kind, "err", err)
		return m, nil
	}

	ctrl := session.NewController(session.Options{
		Kind:    kind,
		UserID:  m.userID,
		Game:    game,
		Service: m.deps.Service,
		Balance: m.balance,
		Runtime: m.runtime,
		Logger:  m.deps.Logger,
	})
	m.game = NewModel(ctrl, m.deps.Service, m.runtime, false)
	m.game.screen.Resize(m.runtime.ScreenW, m.runtime.ScreenH-1)
	m.mode = modeGame
	return m, m.game.Init()
}

func (m ArcadeModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.game, cmd = updateAs[Model](m.game, msg)
	if m.game.Done() {
		m.mode = modeMenu
	}
	return m, cmd
}

func (m ArcadeModel) updateScores(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.scores, cmd = updateAs[ScoreboardModel](m.scores, msg)

	switch {
	case m.scores.IsQuitting():
		return m, tea.Quit
	case m.scores.IsGoingBack():
		m.mode = modeMenu
		return m, nil
	}
	return m, cmd
}

// View renders the active screen.
func (m ArcadeModel) View() string {
	switch m.mode {
	case modeGame:
		return m.game.View()
	case modeScores:
		return m.scores.View()
	default:
		return m.menu.View()
	}
}

// Balance returns the user's local balance.
func (m ArcadeModel) Balance() *session.Balance {
	return m.balance
}

// updateAs runs a child model's Update and keeps its concrete type.
func updateAs[T tea.Model](child T, msg tea.Msg) (T, tea.Cmd) {
	next, cmd := child.Update(msg)
	if typed, ok := next.(T); ok {
		return typed, cmd
	}
	return child, cmd
}

// RunArcade runs the arcade in the local terminal.
func RunArcade(deps Deps, userID string, rc core.RuntimeConfig) error {
	p := tea.NewProgram(NewArcadeModel(deps, userID, rc), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
