// Package blocks implements the falling-block puzzle minigame.
package blocks

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/vovakirdan/pet-arcade/internal/config"
	"github.com/vovakirdan/pet-arcade/internal/core"
	"github.com/vovakirdan/pet-arcade/internal/registry"
)

// Game implements the falling-block puzzle.
type Game struct {
	fixed *config.BlocksConfig // set by NewWithConfig, bypasses file loading
	cfg   config.BlocksConfig
	rng   *rand.Rand
	sched *core.Scheduler

	gravity  *core.Timer
	board    *Board
	active   Piece
	queue    *Queue
	score    int
	lines    int
	level    int
	drop     time.Duration // gravity interval for the current level
	softDrop bool

	started  bool
	gameOver bool
	paused   bool
	rep      core.Reporter
}

// New creates a falling-block game that loads its tuning on Reset.
func New() *Game {
	return &Game{}
}

// NewWithConfig creates a game that always uses cfg.
func NewWithConfig(cfg config.BlocksConfig) *Game {
	return &Game{fixed: &cfg}
}

func init() {
	registry.Register(string(core.KindBlocks), func() registry.Game {
		return New()
	})
}

// ID returns the game identifier.
func (g *Game) ID() string {
	return string(core.KindBlocks)
}

// Title returns the display name.
func (g *Game) Title() string {
	return "Block Drop"
}

// Config returns the tuning in effect for the current run.
func (g *Game) Config() config.BlocksConfig {
	return g.cfg
}

// GoldPerPoint returns the currency earned per point in the current run.
func (g *Game) GoldPerPoint() int {
	return g.cfg.Reward.GoldPerPoint
}

func (g *Game) loadConfig(rc core.RuntimeConfig) config.BlocksConfig {
	if g.fixed != nil {
		return *g.fixed
	}
	cfg, err := config.LoadBlocks(rc.ConfigPath)
	if err != nil {
		cfg = config.DefaultBlocksConfig()
	}
	if rc.Preset != "" {
		if p, ok := config.ParsePreset(rc.Preset); ok {
			config.ApplyBlocksPreset(&cfg, p)
		}
	}
	return cfg
}

// Reset prepares a fresh board. Any previous run's timers are released.
func (g *Game) Reset(rc core.RuntimeConfig, cb core.Callbacks) {
	g.Close()

	g.cfg = g.loadConfig(rc)
	g.rng = rand.New(rand.NewSource(rc.Seed))
	g.sched = core.NewScheduler()
	g.gravity = nil
	g.board = NewBoard(g.cfg.Board.Width, g.cfg.Board.Height)
	g.queue = NewQueue(g.rng, g.cfg.Board.Lookahead)
	g.active = Spawn(g.queue.Next(), g.cfg.Board.Width)
	g.score = 0
	g.lines = 0
	g.level = 1
	g.drop = g.cfg.Timing.InitialDrop
	g.softDrop = false
	g.started = false
	g.gameOver = false
	g.paused = false
	g.rep = core.NewReporter(cb)
}

// Start begins gravity.
func (g *Game) Start() {
	if g.sched == nil || g.started || g.gameOver {
		return
	}
	g.started = true
	g.gravity = g.sched.Every(g.interval(), g.gravityTick)
}

// Close releases the gravity timer.
func (g *Game) Close() {
	if g.sched != nil {
		g.sched.Close()
	}
}

// Advance applies intents, then runs gravity for dt.
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
	if g.gameOver {
		return core.StepResult{State: g.State()}
	}

	ticks := g.sched.Advance(dt)
	return core.StepResult{State: g.State(), Ticks: ticks}
}

// processInput applies discrete intents. A move or rotation that would
// collide is ignored.
func (g *Game) processInput(in core.InputFrame) {
	if in.Has(core.ActionLeft) {
		g.tryMove(g.active.Moved(-1, 0))
	}
	if in.Has(core.ActionRight) {
		g.tryMove(g.active.Moved(1, 0))
	}
	if in.Has(core.ActionRotate) || in.Has(core.ActionUp) {
		g.tryMove(g.active.Rotated())
	}
	if in.Has(core.ActionRelease) {
		g.setSoftDrop(false)
	}
	if in.Has(core.ActionSoftDrop) {
		g.setSoftDrop(true)
	}
	if in.Has(core.ActionHardDrop) {
		g.hardDrop()
	}
}

func (g *Game) tryMove(p Piece) bool {
	if !Fits(g.board, p) {
		return false
	}
	g.active = p
	return true
}

func (g *Game) setSoftDrop(on bool) {
	if g.softDrop == on {
		return
	}
	g.softDrop = on
	g.gravity.SetPeriod(g.interval())
}

// interval is the effective gravity period.
func (g *Game) interval() time.Duration {
	if g.softDrop {
		return SoftDropInterval(g.drop, g.cfg.Timing)
	}
	return g.drop
}

func (g *Game) gravityTick() {
	if !g.tryMove(g.active.Moved(0, 1)) {
		g.lockActive()
	}
}

func (g *Game) hardDrop() {
	g.active = g.active.Moved(0, DropDistance(g.board, g.active))
	g.lockActive()
	if !g.gameOver {
		g.gravity.Reset()
	}
}

// lockActive places the active piece, clears lines, updates level and
// spawns the next piece. A conflicting lock or a blocked spawn ends the run.
func (g *Game) lockActive() {
	if err := Lock(g.board, g.active); err != nil {
		g.end()
		return
	}

	if cleared := ClearLines(g.board); cleared > 0 {
		g.lines += cleared
		g.score += LineScore(cleared, g.cfg.Scoring.PointsPerLine)
		if level := LevelFor(g.lines, g.cfg.Scoring.LinesPerLevel); level > g.level {
			g.level = level
			if g.cfg.Difficulty.Enabled {
				g.drop = DropInterval(level, g.cfg.Timing)
				g.gravity.SetPeriod(g.interval())
			}
		}
		g.rep.Score(g.score)
	}

	next := Spawn(g.queue.Next(), g.cfg.Board.Width)
	if !Fits(g.board, next) {
		g.end()
		return
	}
	g.active = next
}

// end stops every timer and reports the full score.
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

// Snapshot captures state for determinism checks.
type Snapshot struct {
	Score    int
	Lines    int
	Level    int
	Drop     time.Duration
	Active   PieceType
	ActiveAt core.Point
	Next     []PieceType
	Board    string
	GameOver bool
}

// Snapshot returns the current game snapshot.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		Score:    g.score,
		Lines:    g.lines,
		Level:    g.level,
		Drop:     g.drop,
		Active:   g.active.Type,
		ActiveAt: g.active.Pos,
		Next:     g.queue.Peek(),
		Board:    FormatBoard(g.board),
		GameOver: g.gameOver,
	}
}

// Render draws the game to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	if g.board == nil {
		return
	}

	bw, bh := g.board.Width(), g.board.Height()
	frame := core.NewRect((dst.Width()-(bw*2+2+14))/2, 1, bw*2+2, bh+2)
	if frame.X < 0 {
		frame.X = 0
	}

	dst.DrawTextColor(frame.X, 0, fmt.Sprintf("Block Drop  Score: %d", g.score), core.ColorBrightWhite)
	dst.DrawBox(frame, core.ColorGray)

	cell := func(p core.Point, r rune, c core.Color) {
		x := frame.X + 1 + p.X*2
		y := frame.Y + 1 + p.Y
		dst.SetColor(x, y, r, c)
		dst.SetColor(x+1, y, r, c)
	}

	for y := range bh {
		for x := range bw {
			p := core.Point{X: x, Y: y}
			if t := g.board.At(p); t != Empty {
				cell(p, '█', t.Color())
			} else {
				cell(p, ' ', core.ColorDefault)
				dst.SetColor(frame.X+1+x*2, frame.Y+1+y, '·', core.ColorGray)
			}
		}
	}

	if !g.gameOver {
		ghost := g.active.Moved(0, DropDistance(g.board, g.active))
		for _, c := range ghost.Cells() {
			if c.Y >= 0 {
				cell(c, '░', core.ColorGray)
			}
		}
		for _, c := range g.active.Cells() {
			if c.Y >= 0 {
				cell(c, '█', g.active.Type.Color())
			}
		}
	}

	g.renderPanel(dst, frame.Right()+2, frame.Y)

	switch {
	case g.gameOver:
		dst.DrawOverlay("Board full!", fmt.Sprintf("Final Score: %d", g.score))
	case g.paused:
		dst.DrawOverlay("Paused", "Press P to continue")
	case !g.started:
		dst.DrawOverlay("Block Drop", "Get ready")
	}
}

func (g *Game) renderPanel(dst *core.Screen, x, y int) {
	dst.DrawText(x, y, "NEXT")
	row := y + 1
	for _, t := range g.queue.Peek() {
		for _, c := range ShapeOf(t).Cells(core.Point{}) {
			dst.SetColor(x+c.X*2, row+c.Y, '█', t.Color())
			dst.SetColor(x+c.X*2+1, row+c.Y, '█', t.Color())
		}
		row += ShapeOf(t).Height() + 1
	}

	row++
	dst.DrawText(x, row, fmt.Sprintf("Lines %d", g.lines))
	dst.DrawText(x, row+1, fmt.Sprintf("Level %d", g.level))
	if g.softDrop {
		dst.DrawTextColor(x, row+2, "SOFT", core.ColorYellow)
	}
}
