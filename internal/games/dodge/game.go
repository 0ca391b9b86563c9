// Package dodge implements the falling-obstacle dodge minigame.
// The player slides along the bottom of the board and avoids obstacles that
// fall faster and more often as time passes.
package dodge

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/vovakirdan/pet-arcade/internal/config"
	"github.com/vovakirdan/pet-arcade/internal/core"
	"github.com/vovakirdan/pet-arcade/internal/registry"
)

// Visual characters for rendering
const (
	PlayerChar   = '█'
	ObstacleChar = '▓'
)

// Game implements the dodge game logic.
type Game struct {
	fixed      *config.DodgeConfig
	cfg        config.DodgeConfig
	difficulty *config.DifficultyManager
	obstacles  *ObstacleManager
	sched      *core.Scheduler

	playerX int
	playerY int
	held    int // -1 left, +1 right, 0 none

	elapsed int // whole seconds survived
	tier    int
	score   int

	started  bool
	gameOver bool
	paused   bool
	rep      core.Reporter
}

// New creates a dodge game that loads its tuning on Reset.
func New() *Game {
	return &Game{}
}

// NewWithConfig creates a game that always uses cfg.
func NewWithConfig(cfg config.DodgeConfig) *Game {
	return &Game{fixed: &cfg}
}

func init() {
	registry.Register(string(core.KindDodge), func() registry.Game {
		return New()
	})
}

// ID returns the unique identifier for this game.
func (g *Game) ID() string {
	return string(core.KindDodge)
}

// Title returns the display name for this game.
func (g *Game) Title() string {
	return "Dodge"
}

// Config returns the tuning in effect for the current run.
func (g *Game) Config() config.DodgeConfig {
	return g.cfg
}

// GoldPerPoint returns the currency earned per point in the current run.
func (g *Game) GoldPerPoint() int {
	return g.cfg.Reward.GoldPerPoint
}

func (g *Game) loadConfig(rc core.RuntimeConfig) config.DodgeConfig {
	if g.fixed != nil {
		return *g.fixed
	}
	cfg, err := config.LoadDodge(rc.ConfigPath)
	if err != nil {
		cfg = config.DefaultDodgeConfig()
	}
	if rc.Preset != "" {
		if p, ok := config.ParsePreset(rc.Preset); ok {
			config.ApplyDodgePreset(&cfg, p)
		}
	}
	return cfg
}

// Reset initializes or restarts the game.
func (g *Game) Reset(rc core.RuntimeConfig, cb core.Callbacks) {
	g.Close()

	g.cfg = g.loadConfig(rc)
	g.difficulty = config.NewDifficultyManager(g.cfg.Difficulty)
	g.obstacles = NewObstacleManager(rand.New(rand.NewSource(rc.Seed)), &g.cfg)
	g.sched = core.NewScheduler()

	g.playerX = (g.cfg.Board.Width - g.cfg.Player.Width) / 2
	g.playerY = g.cfg.Board.Height - g.cfg.Player.BottomMargin - g.cfg.Player.Height
	g.held = 0
	g.elapsed = 0
	g.tier = g.difficulty.Tier(0)
	g.score = 0
	g.started = false
	g.gameOver = false
	g.paused = false
	g.rep = core.NewReporter(cb)
}

// Start acquires the game tick, the held-move repeat and the one-second clock.
func (g *Game) Start() {
	if g.sched == nil || g.started || g.gameOver {
		return
	}
	g.started = true
	g.sched.Every(g.cfg.Timing.Tick, g.tick)
	g.sched.Every(g.cfg.Timing.Repeat, g.repeat)
	g.sched.Every(g.cfg.Timing.Clock, g.clock)
}

// Close releases every timer.
func (g *Game) Close() {
	if g.sched != nil {
		g.sched.Close()
	}
}

// Advance applies movement intents and runs the timers for dt.
// A Left or Right press moves one step at once and keeps moving on the
// repeat timer until Release.
func (g *Game) Advance(dt time.Duration, in core.InputFrame) core.StepResult {
	if !g.started || g.gameOver {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionPause) {
		g.paused = !g.paused
		g.held = 0
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionRelease) {
		g.held = 0
	}
	switch {
	case in.Has(core.ActionLeft):
		g.held = -1
		g.step()
	case in.Has(core.ActionRight):
		g.held = 1
		g.step()
	}
	g.checkHit()
	if g.gameOver {
		return core.StepResult{State: g.State()}
	}

	ticks := g.sched.Advance(dt)
	return core.StepResult{State: g.State(), Ticks: ticks}
}

// step moves the player one step in the held direction, clamped to the board.
func (g *Game) step() {
	if g.held == 0 {
		return
	}
	maxX := g.cfg.Board.Width - g.cfg.Player.Width
	g.playerX = core.Clamp(g.playerX+g.held*g.cfg.Player.Step, 0, maxX)
}

func (g *Game) repeat() {
	g.step()
	g.checkHit()
}

// tick advances obstacles, counts the ones that left, tests the rest against
// the player and rolls a new spawn.
func (g *Game) tick() {
	if g.obstacles.Fall() > 0 {
		g.updateScore()
	}
	g.checkHit()
	if g.gameOver {
		return
	}
	g.obstacles.MaybeSpawn(g.tier)
}

func (g *Game) clock() {
	g.elapsed++
	g.tier = g.difficulty.Tier(g.elapsed)
	g.updateScore()
}

func (g *Game) updateScore() {
	g.score = Score(g.obstacles.Dodged(), g.elapsed)
	g.rep.Score(g.score)
}

// Score is the final score for a run: obstacles dodged plus whole seconds survived.
func Score(dodged, elapsedSeconds int) int {
	return dodged + elapsedSeconds
}

// PlayerRect returns the player's collision rectangle.
func (g *Game) PlayerRect() core.Rect {
	return core.NewRect(g.playerX, g.playerY, g.cfg.Player.Width, g.cfg.Player.Height)
}

func (g *Game) checkHit() {
	if g.gameOver || !g.obstacles.Hit(g.PlayerRect()) {
		return
	}
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

// Render draws the board scaled down by the configured cell size.
// Each board cell is two terminal columns wide.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	if g.obstacles == nil {
		return
	}

	cs := max(1, g.cfg.Board.CellSize)
	cols := g.cfg.Board.Width / cs
	rows := g.cfg.Board.Height / cs
	frame := core.NewRect((dst.Width()-(cols*2+2))/2, 1, cols*2+2, rows+2)
	if frame.X < 0 {
		frame.X = 0
	}

	dst.DrawTextColor(frame.X, 0,
		fmt.Sprintf("Dodge  Score: %d  Time: %ds  Tier: %d", g.score, g.elapsed, g.tier), core.ColorBrightWhite)
	dst.DrawBox(frame, core.ColorGray)

	fill := func(r core.Rect, ch rune, c core.Color) {
		x0 := core.Clamp(r.X/cs, 0, cols)
		x1 := core.Clamp((r.Right()+cs-1)/cs, 0, cols)
		y0 := core.Clamp(floorDiv(r.Y, cs), 0, rows)
		y1 := core.Clamp(floorDiv(r.Bottom()+cs-1, cs), 0, rows)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				dst.SetColor(frame.X+1+x*2, frame.Y+1+y, ch, c)
				dst.SetColor(frame.X+2+x*2, frame.Y+1+y, ch, c)
			}
		}
	}

	for _, o := range g.obstacles.Obstacles() {
		fill(o.Rect(), ObstacleChar, core.ColorOrange)
	}
	fill(g.PlayerRect(), PlayerChar, core.ColorBrightCyan)

	switch {
	case g.gameOver:
		dst.DrawOverlay("Hit!", fmt.Sprintf("Final Score: %d", g.score))
	case g.paused:
		dst.DrawOverlay("Paused", "Press P to continue")
	case !g.started:
		dst.DrawOverlay("Dodge", "Get ready")
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// Snapshot captures state for determinism checks.
type Snapshot struct {
	PlayerX   int
	Elapsed   int
	Tier      int
	Dodged    int
	Score     int
	Obstacles []Obstacle
	GameOver  bool
}

// Snapshot returns the current game snapshot.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		PlayerX:   g.playerX,
		Elapsed:   g.elapsed,
		Tier:      g.tier,
		Dodged:    g.obstacles.Dodged(),
		Score:     g.score,
		Obstacles: append([]Obstacle(nil), g.obstacles.Obstacles()...),
		GameOver:  g.gameOver,
	}
}
