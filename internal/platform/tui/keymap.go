package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/pet-arcade/internal/core"
)

// DefaultHoldTimeout is how long a held control stays down after its last
// key event. Terminals send no key-up events, only auto-repeat, so the
// timeout has to outlast the repeat delay.
const DefaultHoldTimeout = 500 * time.Millisecond

// KeyMapper translates Bubble Tea key messages to game actions for one kind.
// This centralizes key bindings and makes them testable.
type KeyMapper struct {
	kind core.GameKind
}

// NewKeyMapper creates a key mapper with the bindings for kind.
func NewKeyMapper(kind core.GameKind) KeyMapper {
	return KeyMapper{kind: kind}
}

// MapKey translates a key message to an action.
// Returns the action (may be ActionNone) and whether it's a quit request.
func (km KeyMapper) MapKey(msg tea.KeyMsg) (action core.Action, isQuit bool) {
	switch msg.String() {
	case "ctrl+c", "q":
		return core.ActionQuit, true
	case "p":
		return core.ActionPause, false
	case "esc":
		return core.ActionBack, false
	case "enter":
		return core.ActionConfirm, false
	case "r":
		return core.ActionRestart, false
	}

	switch km.kind {
	case core.KindBlocks:
		switch msg.String() {
		case "left", "a":
			return core.ActionLeft, false
		case "right", "d":
			return core.ActionRight, false
		case "up", "w", "x":
			return core.ActionRotate, false
		case "down", "s":
			return core.ActionSoftDrop, false
		case " ":
			return core.ActionHardDrop, false
		}

	case core.KindDodge:
		switch msg.String() {
		case "left", "a":
			return core.ActionLeft, false
		case "right", "d":
			return core.ActionRight, false
		case " ", "down", "s":
			return core.ActionRelease, false
		}

	default:
		switch msg.String() {
		case "up", "w":
			return core.ActionUp, false
		case "down", "s":
			return core.ActionDown, false
		case "left", "a":
			return core.ActionLeft, false
		case "right", "d":
			return core.ActionRight, false
		}
	}

	return core.ActionNone, false
}

// Holds reports whether action starts a held control for this kind.
func (km KeyMapper) Holds(action core.Action) bool {
	switch km.kind {
	case core.KindBlocks:
		return action == core.ActionSoftDrop
	case core.KindDodge:
		return action == core.ActionLeft || action == core.ActionRight
	default:
		return false
	}
}

// HoldTracker turns auto-repeated key presses into a held control that is
// released when the repeats stop.
type HoldTracker struct {
	timeout time.Duration
	held    core.Action
	last    time.Time
}

// NewHoldTracker creates a tracker. A non-positive timeout uses DefaultHoldTimeout.
func NewHoldTracker(timeout time.Duration) HoldTracker {
	if timeout <= 0 {
		timeout = DefaultHoldTimeout
	}
	return HoldTracker{timeout: timeout}
}

// Press records a key event for a held action. It returns true when the
// press starts a new hold and should be forwarded to the engine.
func (h *HoldTracker) Press(action core.Action, now time.Time) bool {
	fresh := h.held != action
	h.held = action
	h.last = now
	return fresh
}

// Release drops the current hold.
func (h *HoldTracker) Release() {
	h.held = core.ActionNone
}

// Expired reports whether a hold timed out at now, releasing it if so.
func (h *HoldTracker) Expired(now time.Time) bool {
	if h.held == core.ActionNone || now.Sub(h.last) < h.timeout {
		return false
	}
	h.held = core.ActionNone
	return true
}

// Held returns the held action, ActionNone if nothing is held.
func (h *HoldTracker) Held() core.Action {
	return h.held
}

// ResultKeyMap holds the bindings shown on the result and notice screens.
type ResultKeyMap struct {
	Restart key.Binding
	Retry   key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ResultKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Restart, k.Retry, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ResultKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// DefaultResultKeyMap returns default key bindings.
func DefaultResultKeyMap() ResultKeyMap {
	return ResultKeyMap{
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "play again"),
		),
		Retry: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "retry"),
			key.WithDisabled(),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "exit"),
		),
	}
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionScoreboard
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return MenuActionQuit
	case "w", "up", "k":
		return MenuActionUp
	case "s", "down", "j":
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "tab":
		return MenuActionScoreboard
	}
	return MenuActionNone
}
