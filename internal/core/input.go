package core

import (
	"fmt"
	"sort"
)

// Action represents a semantic game intent, abstracted from physical key presses.
// Engines only ever see actions, never keys.
type Action int

const (
	ActionNone     Action = iota
	ActionUp              // snake: turn up
	ActionDown            // snake: turn down
	ActionLeft            // move or turn left; dodge: start holding left
	ActionRight           // move or turn right; dodge: start holding right
	ActionRotate          // blocks: rotate clockwise
	ActionSoftDrop        // blocks: start soft drop
	ActionHardDrop        // blocks: drop and lock immediately
	ActionRelease         // a held control was let go (soft drop, dodge direction)
	ActionPause           // toggle pause
	ActionConfirm         // confirm selection in menus
	ActionBack            // leave the current screen
	ActionRestart         // play again from the result screen
	ActionQuit            // exit the session
)

var actionNames = map[Action]string{
	ActionNone:     "none",
	ActionUp:       "up",
	ActionDown:     "down",
	ActionLeft:     "left",
	ActionRight:    "right",
	ActionRotate:   "rotate",
	ActionSoftDrop: "soft_drop",
	ActionHardDrop: "hard_drop",
	ActionRelease:  "release",
	ActionPause:    "pause",
	ActionConfirm:  "confirm",
	ActionBack:     "back",
	ActionRestart:  "restart",
	ActionQuit:     "quit",
}

// String returns the action's stable name.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// ParseAction looks up an action by its String name.
func ParseAction(name string) (Action, error) {
	for a, n := range actionNames {
		if n == name {
			return a, nil
		}
	}
	return ActionNone, fmt.Errorf("core: unknown action %q", name)
}

// MarshalText implements encoding.TextMarshaler so recorded inputs stay readable.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// InputFrame holds the intents collected between two Advance calls.
type InputFrame struct {
	// Actions maps action types to whether they were triggered this frame.
	Actions map[Action]bool
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]bool),
	}
}

// FrameOf builds a frame with the given actions set.
func FrameOf(actions ...Action) InputFrame {
	f := NewInputFrame()
	for _, a := range actions {
		f.Set(a)
	}
	return f
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	if f.Actions == nil {
		return false
	}
	return f.Actions[a]
}

// Empty reports whether no action was triggered.
func (f InputFrame) Empty() bool {
	for _, v := range f.Actions {
		if v {
			return false
		}
	}
	return true
}

// List returns the triggered actions in ascending order.
func (f InputFrame) List() []Action {
	out := make([]Action, 0, len(f.Actions))
	for a, v := range f.Actions {
		if v {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	clear(f.Actions)
}

// Clone creates a copy of this input frame.
func (f InputFrame) Clone() InputFrame {
	clone := NewInputFrame()
	for k, v := range f.Actions {
		clone.Actions[k] = v
	}
	return clone
}
