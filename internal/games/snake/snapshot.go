package snake

import "github.com/vovakirdan/pet-arcade/internal/core"

// GameStateType represents the current game state.
type GameStateType string

const (
	StateReady    GameStateType = "ready"
	StatePlaying  GameStateType = "playing"
	StatePaused   GameStateType = "paused"
	StateGameOver GameStateType = "game_over"
	StateWin      GameStateType = "win"
)

// Snapshot captures the complete game state for determinism testing and replay.
type Snapshot struct {
	Score    int
	Segments []core.Point
	Dir      Direction
	Food     core.Point
	Elapsed  int64 // scheduler clock in milliseconds
	State    GameStateType
}

// Snapshot returns the current game snapshot for determinism verification.
func (g *Game) Snapshot() Snapshot {
	state := StatePlaying
	switch {
	case g.won:
		state = StateWin
	case g.gameOver:
		state = StateGameOver
	case g.paused:
		state = StatePaused
	case !g.started:
		state = StateReady
	}

	return Snapshot{
		Score:    g.score,
		Segments: append([]core.Point(nil), g.snake...),
		Dir:      g.direction,
		Food:     g.food,
		Elapsed:  g.sched.Now().Milliseconds(),
		State:    state,
	}
}
