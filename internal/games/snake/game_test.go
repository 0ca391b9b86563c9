package snake

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/vovakirdan/pet-arcade/internal/config"
	"github.com/vovakirdan/pet-arcade/internal/core"
)

const move = 200 * time.Millisecond

type recorder struct {
	scores []int
	ends   []int
}

func (r *recorder) callbacks() core.Callbacks {
	return core.Callbacks{
		OnScoreUpdate: func(s int) { r.scores = append(r.scores, s) },
		OnGameEnd:     func(s int) { r.ends = append(r.ends, s) },
	}
}

func newStarted(seed int64, rec *recorder) *Game {
	g := NewWithConfig(config.DefaultSnakeConfig())
	g.Reset(core.RuntimeConfig{Seed: seed, ScreenW: 80, ScreenH: 24}, rec.callbacks())
	g.Start()
	return g
}

func TestTuningFileAndPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snake.yaml")
	yaml := "timing:\n  move: 160ms\nreward:\n  gold_per_point: 4\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		preset string
		move   time.Duration
	}{
		{"", 160 * time.Millisecond},
		{"normal", 160 * time.Millisecond},
		{"hard", 120 * time.Millisecond},
		{"easy", 200 * time.Millisecond},
		{"bogus", 160 * time.Millisecond},
	}
	for _, tc := range tests {
		t.Run("preset="+tc.preset, func(t *testing.T) {
			g := New()
			g.Reset(core.RuntimeConfig{ConfigPath: path, Preset: tc.preset, ScreenW: 80, ScreenH: 24}, core.Callbacks{})
			if got := g.Config().Timing.Move; got != tc.move {
				t.Errorf("move = %v, want %v", got, tc.move)
			}
			if g.GoldPerPoint() != 4 {
				t.Errorf("gold per point = %d, want 4", g.GoldPerPoint())
			}
		})
	}
}

func TestInitialState(t *testing.T) {
	g := newStarted(1, &recorder{})

	if want := []core.Point{{X: 7, Y: 10}}; !reflect.DeepEqual(g.snake, want) {
		t.Errorf("snake = %v, want %v", g.snake, want)
	}
	if g.direction != DirRight {
		t.Errorf("direction = %v, want right", g.direction)
	}
	if g.isSnakeAt(g.food) {
		t.Errorf("food %v spawned on the snake", g.food)
	}
}

func TestEatFoodScenario(t *testing.T) {
	rec := &recorder{}
	g := newStarted(1, rec)
	g.food = core.Point{X: 8, Y: 10}

	g.Advance(move, core.NewInputFrame())

	if g.snake[0] != (core.Point{X: 8, Y: 10}) {
		t.Errorf("head = %v, want (8,10)", g.snake[0])
	}
	if g.score != 10 {
		t.Errorf("score = %d, want 10", g.score)
	}
	if len(g.snake) != 2 {
		t.Errorf("length = %d, want 2", len(g.snake))
	}
	if g.isSnakeAt(g.food) {
		t.Errorf("new food %v is on the snake", g.food)
	}
	if !reflect.DeepEqual(rec.scores, []int{10}) {
		t.Errorf("score updates = %v", rec.scores)
	}
}

func TestGrowthLaw(t *testing.T) {
	g := newStarted(5, &recorder{})
	g.snake = []core.Point{{X: 5, Y: 5}, {X: 4, Y: 5}, {X: 3, Y: 5}}
	g.food = core.Point{X: 0, Y: 0}

	before := len(g.snake)
	g.Advance(move, core.NewInputFrame())
	if len(g.snake) != before {
		t.Errorf("non-eating move changed length %d -> %d", before, len(g.snake))
	}
	if g.snake[len(g.snake)-1] != (core.Point{X: 4, Y: 5}) {
		t.Errorf("tail = %v, want old second-to-last segment", g.snake[len(g.snake)-1])
	}

	g.food = core.Point{X: 7, Y: 5}
	g.Advance(move, core.NewInputFrame())
	if len(g.snake) != before+1 {
		t.Errorf("eating move length = %d, want %d", len(g.snake), before+1)
	}
}

func TestNoImmediateReversal(t *testing.T) {
	g := newStarted(42, &recorder{})

	g.Advance(0, core.FrameOf(core.ActionLeft))
	if g.nextDir == DirLeft {
		t.Error("should not allow immediate reversal from right to left")
	}

	g.Advance(0, core.FrameOf(core.ActionDown))
	if g.nextDir != DirDown {
		t.Errorf("nextDir = %v, want down", g.nextDir)
	}
	g.Advance(move, core.NewInputFrame())
	if g.direction != DirDown {
		t.Errorf("direction = %v, want down after the move", g.direction)
	}
}

func TestWallCollisionEndsOnce(t *testing.T) {
	rec := &recorder{}
	g := newStarted(1, rec)
	g.food = core.Point{X: 0, Y: 0}

	// 7 moves reach x=14, the 8th leaves the grid
	g.Advance(7*move, core.NewInputFrame())
	if g.gameOver {
		t.Fatalf("ended early at head %v", g.snake[0])
	}
	g.Advance(move, core.NewInputFrame())
	if !g.gameOver {
		t.Fatal("expected game over at the right wall")
	}

	g.Advance(10*move, core.NewInputFrame())
	g.Close()
	if !reflect.DeepEqual(rec.ends, []int{0}) {
		t.Errorf("end callbacks = %v, want [0]", rec.ends)
	}
	if g.sched.Active() != 0 {
		t.Error("timer still active after game over")
	}
}

func TestSelfCollisionAgainstAnySegment(t *testing.T) {
	tests := []struct {
		name  string
		snake []core.Point
		dir   Direction
	}{
		// head turns into the middle of the body
		{"body", []core.Point{{X: 5, Y: 5}, {X: 5, Y: 6}, {X: 6, Y: 6}, {X: 6, Y: 5}, {X: 6, Y: 4}}, DirRight},
		// the tail counts even though it would move away this tick
		{"tail", []core.Point{{X: 5, Y: 5}, {X: 5, Y: 6}, {X: 6, Y: 6}, {X: 6, Y: 5}}, DirRight},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := &recorder{}
			g := newStarted(1, rec)
			g.snake = tc.snake
			g.direction = tc.dir
			g.nextDir = tc.dir
			g.food = core.Point{X: 0, Y: 0}

			g.Advance(move, core.NewInputFrame())
			if !g.gameOver {
				t.Fatal("expected self collision")
			}
			if len(rec.ends) != 1 {
				t.Errorf("OnGameEnd fired %d times", len(rec.ends))
			}
		})
	}
}

func TestFoodSpawnValidity(t *testing.T) {
	g := newStarted(999, &recorder{})
	g.snake = nil
	for x := range 15 {
		for y := range 20 {
			g.snake = append(g.snake, core.Point{X: x, Y: y})
		}
	}

	for range 50 {
		g.spawnFood()
		if g.isSnakeAt(g.food) {
			t.Fatalf("food spawned on snake at %v", g.food)
		}
		if g.food.Y != 20 {
			t.Fatalf("food %v outside the only free row", g.food)
		}
	}
}

func TestFullBoardEndsRun(t *testing.T) {
	rec := &recorder{}
	g := newStarted(1, rec)
	g.snake = nil
	for x := range 15 {
		for y := range 21 {
			g.snake = append(g.snake, core.Point{X: x, Y: y})
		}
	}

	g.spawnFood()
	if !g.gameOver || !g.won {
		t.Error("a full board should end the run")
	}
	if len(rec.ends) != 1 {
		t.Errorf("OnGameEnd fired %d times", len(rec.ends))
	}
}

func TestDeterminism(t *testing.T) {
	g1 := newStarted(12345, &recorder{})
	g2 := newStarted(12345, &recorder{})

	for i := range 100 {
		in := core.NewInputFrame()
		switch i {
		case 3:
			in.Set(core.ActionDown)
		case 6:
			in.Set(core.ActionLeft)
		case 9:
			in.Set(core.ActionUp)
		}
		g1.Advance(50*time.Millisecond, in)
		g2.Advance(50*time.Millisecond, in)
	}

	if s1, s2 := g1.Snapshot(), g2.Snapshot(); !reflect.DeepEqual(s1, s2) {
		t.Errorf("snapshots differ:\n%+v\n%+v", s1, s2)
	}
}

func TestPauseStopsMovement(t *testing.T) {
	g := newStarted(1, &recorder{})
	g.food = core.Point{X: 0, Y: 0}

	g.Advance(0, core.FrameOf(core.ActionPause))
	g.Advance(time.Second, core.NewInputFrame())
	if g.snake[0] != (core.Point{X: 7, Y: 10}) {
		t.Errorf("snake moved while paused: %v", g.snake[0])
	}
	if g.Snapshot().State != StatePaused {
		t.Errorf("state = %s, want paused", g.Snapshot().State)
	}
}
