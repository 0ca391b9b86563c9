package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/pet-arcade/internal/core"
	"github.com/vovakirdan/pet-arcade/internal/registry"
	"github.com/vovakirdan/pet-arcade/internal/session"
)

// MenuItem represents a selectable game in the menu.
type MenuItem struct {
	Kind  core.GameKind
	Title string
	Gold  int // gold per point from the game's tuning
}

// MenuModel is the Bubble Tea model for the game picker menu.
type MenuModel struct {
	items          []MenuItem
	cursor         int
	width          int
	height         int
	userID         string
	balance        *session.Balance
	scoresEnabled  bool
	quitting       bool
	selected       *MenuItem // Set when user selects a game
	openScoreboard bool      // True if user pressed Tab for scoreboard
}

// NewMenuModel creates a menu over the registered minigames.
func NewMenuModel(userID string, balance *session.Balance, scoresEnabled bool, width, height int) MenuModel {
	items := make([]MenuItem, 0, len(core.Kinds))
	for _, kind := range core.Kinds {
		if !registry.Exists(string(kind)) {
			continue
		}
		title := string(kind)
		if g, err := registry.Create(string(kind)); err == nil {
			title = g.Title()
		}
		items = append(items, MenuItem{Kind: kind, Title: title, Gold: session.TunedGoldPerPoint(kind, "")})
	}

	return MenuModel{
		items:         items,
		width:         width,
		height:        height,
		userID:        userID,
		balance:       balance,
		scoresEnabled: scoresEnabled,
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
		}

	case MenuActionScoreboard:
		m.openScoreboard = m.scoresEnabled
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("  P E T   A R C A D E  "), m.width))
	b.WriteString("\n\n")

	sub := fmt.Sprintf("%s  |  Gold %d", m.userID, m.balance.Value())
	b.WriteString(centerText(statusStyle.Render(sub), m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%-12s %d gold/pt", cursor, item.Title, item.Gold)
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Enter: Play  |  Q: Quit"
	if m.scoresEnabled {
		controls = "Up/Down: Navigate  |  Enter: Play  |  Tab: Scores  |  Q: Quit"
	}
	b.WriteString(centerText(statusStyle.Render(controls), m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsScoreboard returns true if user requested scoreboard.
func (m MenuModel) WantsScoreboard() bool {
	return m.openScoreboard
}

// Reset clears the previous selection so the menu can be shown again.
func (m MenuModel) Reset() MenuModel {
	m.selected = nil
	m.openScoreboard = false
	m.quitting = false
	return m
}
