package core

// RuntimeConfig contains configuration passed to games at initialization.
type RuntimeConfig struct {
	ScreenW    int    // Screen width in characters
	ScreenH    int    // Screen height in characters
	TickRate   int    // Host frames per second (default 30)
	Seed       int64  // RNG seed for deterministic gameplay
	ConfigPath string // Optional YAML override for the game's tuning
	Preset     string // Difficulty preset name; empty keeps the file's values
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 30,
		Seed:     0, // 0 means use current time in platform layer
	}
}

// GameState represents the current state of a game.
type GameState struct {
	Score    int  // Current score
	Started  bool // Start has been called since the last Reset
	GameOver bool // Whether the game has ended
	Paused   bool // Whether the game is paused
}

// Running reports whether the simulation is live and not paused.
func (s GameState) Running() bool {
	return s.Started && !s.GameOver && !s.Paused
}

// StepResult is returned by Game.Advance.
type StepResult struct {
	State GameState
	Ticks int // scheduler callbacks run during the step
}
