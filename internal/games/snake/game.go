// Package snake implements the snake minigame.
package snake

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/vovakirdan/pet-arcade/internal/config"
	"github.com/vovakirdan/pet-arcade/internal/core"
	"github.com/vovakirdan/pet-arcade/internal/registry"
)

// Direction represents the snake's movement direction.
type Direction int

const (
	DirRight Direction = iota
	DirDown
	DirLeft
	DirUp
)

// Delta returns the one-cell offset for d.
func (d Direction) Delta() core.Point {
	switch d {
	case DirUp:
		return core.Point{Y: -1}
	case DirDown:
		return core.Point{Y: 1}
	case DirLeft:
		return core.Point{X: -1}
	default:
		return core.Point{X: 1}
	}
}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "unknown"
	}
}

// isOpposite checks if two directions are opposite.
func isOpposite(d1, d2 Direction) bool {
	return (d1 == DirUp && d2 == DirDown) ||
		(d1 == DirDown && d2 == DirUp) ||
		(d1 == DirLeft && d2 == DirRight) ||
		(d1 == DirRight && d2 == DirLeft)
}

// Game implements the Snake game.
type Game struct {
	fixed  *config.SnakeConfig
	cfg    config.SnakeConfig
	rng    *rand.Rand
	sched  *core.Scheduler
	mover  *core.Timer
	bounds core.Rect
	score  int

	// Snake state
	snake     []core.Point // Head at index 0
	direction Direction
	nextDir   Direction // Buffered direction for next move
	food      core.Point

	// Game state flags
	started  bool
	gameOver bool
	won      bool // board filled, no cell left for food
	paused   bool
	rep      core.Reporter
}

// New creates a snake game that loads its tuning on Reset.
func New() *Game {
	return &Game{}
}

// NewWithConfig creates a game that always uses cfg.
func NewWithConfig(cfg config.SnakeConfig) *Game {
	return &Game{fixed: &cfg}
}

func init() {
	registry.Register(string(core.KindSnake), func() registry.Game {
		return New()
	})
}

// ID returns the game identifier.
func (g *Game) ID() string {
	return string(core.KindSnake)
}

// Title returns the display name.
func (g *Game) Title() string {
	return "Snake"
}

// Config returns the tuning in effect for the current run.
func (g *Game) Config() config.SnakeConfig {
	return g.cfg
}

// GoldPerPoint returns the currency earned per point in the current run.
func (g *Game) GoldPerPoint() int {
	return g.cfg.Reward.GoldPerPoint
}

func (g *Game) loadConfig(rc core.RuntimeConfig) config.SnakeConfig {
	if g.fixed != nil {
		return *g.fixed
	}
	cfg, err := config.LoadSnake(rc.ConfigPath)
	if err != nil {
		cfg = config.DefaultSnakeConfig()
	}
	if rc.Preset != "" {
		if p, ok := config.ParsePreset(rc.Preset); ok {
			config.ApplySnakePreset(&cfg, p)
		}
	}
	return cfg
}

// Reset initializes a new run with a single-segment snake heading right.
func (g *Game) Reset(rc core.RuntimeConfig, cb core.Callbacks) {
	g.Close()

	g.cfg = g.loadConfig(rc)
	g.rng = rand.New(rand.NewSource(rc.Seed))
	g.sched = core.NewScheduler()
	g.mover = nil
	g.bounds = core.NewRect(0, 0, g.cfg.Grid.Width, g.cfg.Grid.Height)
	g.score = 0
	g.started = false
	g.gameOver = false
	g.won = false
	g.paused = false
	g.rep = core.NewReporter(cb)

	start := core.Point{X: g.cfg.Grid.StartX, Y: g.cfg.Grid.StartY}
	g.snake = []core.Point{start}
	g.direction = DirRight
	g.nextDir = DirRight
	g.spawnFood()
}

// Start begins movement.
func (g *Game) Start() {
	if g.sched == nil || g.started || g.gameOver {
		return
	}
	g.started = true
	g.mover = g.sched.Every(g.cfg.Timing.Move, g.moveSnake)
}

// Close releases the movement timer.
func (g *Game) Close() {
	if g.sched != nil {
		g.sched.Close()
	}
}

// spawnFood places food on a random cell not covered by the snake.
// A snake that covers the whole grid ends the run.
func (g *Game) spawnFood() {
	if len(g.snake) >= g.bounds.W*g.bounds.H {
		g.won = true
		g.end()
		return
	}
	for {
		p := core.Point{X: g.rng.Intn(g.bounds.W), Y: g.rng.Intn(g.bounds.H)}
		if !g.isSnakeAt(p) {
			g.food = p
			return
		}
	}
}

// isSnakeAt checks if any segment occupies the given point.
func (g *Game) isSnakeAt(p core.Point) bool {
	for _, seg := range g.snake {
		if seg == p {
			return true
		}
	}
	return false
}

// Advance buffers direction input, then moves the snake for every tick in dt.
func (g *Game) Advance(dt time.Duration, in core.InputFrame) core.StepResult {
	if !g.started || g.gameOver {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionPause) {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	g.processInput(in)
	ticks := g.sched.Advance(dt)
	return core.StepResult{State: g.State(), Ticks: ticks}
}

// processInput handles direction changes.
func (g *Game) processInput(in core.InputFrame) {
	newDir := g.nextDir

	switch {
	case in.Has(core.ActionUp):
		newDir = DirUp
	case in.Has(core.ActionDown):
		newDir = DirDown
	case in.Has(core.ActionLeft):
		newDir = DirLeft
	case in.Has(core.ActionRight):
		newDir = DirRight
	}

	// Prevent instant reversal
	if !isOpposite(newDir, g.direction) {
		g.nextDir = newDir
	}
}

// moveSnake moves the snake one cell in the buffered direction.
func (g *Game) moveSnake() {
	g.direction = g.nextDir
	newHead := g.snake[0].Add(g.direction.Delta())

	if !g.bounds.Contains(newHead.X, newHead.Y) || g.isSnakeAt(newHead) {
		g.end()
		return
	}

	g.snake = append([]core.Point{newHead}, g.snake...)

	if newHead == g.food {
		g.score += g.cfg.Scoring.PointsPerFood
		g.rep.Score(g.score)
		g.spawnFood()
		return
	}

	g.snake = g.snake[:len(g.snake)-1]
}

func (g *Game) end() {
	g.gameOver = true
	g.sched.Close()
	g.rep.End(g.score)
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:    g.score,
		Started:  g.started,
		GameOver: g.gameOver,
		Paused:   g.paused,
	}
}

// Render draws the game to the screen. Each grid cell is two columns wide.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	if g.snake == nil {
		return
	}

	frame := core.NewRect((dst.Width()-(g.bounds.W*2+2))/2, 1, g.bounds.W*2+2, g.bounds.H+2)
	if frame.X < 0 {
		frame.X = 0
	}

	dst.DrawTextColor(frame.X, 0, fmt.Sprintf("Snake  Score: %d  Length: %d", g.score, len(g.snake)), core.ColorBrightWhite)
	dst.DrawBox(frame, core.ColorGray)

	cell := func(p core.Point, s string, c core.Color) {
		x := frame.X + 1 + p.X*2
		y := frame.Y + 1 + p.Y
		dst.DrawTextColor(x, y, s, c)
	}

	if !g.won {
		cell(g.food, "()", core.ColorBrightRed)
	}
	for i := len(g.snake) - 1; i >= 0; i-- {
		if i == 0 {
			cell(g.snake[i], "██", core.ColorBrightGreen)
		} else {
			cell(g.snake[i], "▓▓", core.ColorGreen)
		}
	}

	switch {
	case g.won:
		dst.DrawOverlay("Board filled!", fmt.Sprintf("Final Score: %d", g.score))
	case g.gameOver:
		dst.DrawOverlay("Game Over", fmt.Sprintf("Final Score: %d", g.score))
	case g.paused:
		dst.DrawOverlay("Paused", "Press P to continue")
	case !g.started:
		dst.DrawOverlay("Snake", "Get ready")
	}
}
