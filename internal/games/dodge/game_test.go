package dodge

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/vovakirdan/pet-arcade/internal/config"
	"github.com/vovakirdan/pet-arcade/internal/core"
)

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

// quietConfig never spawns on its own so tests can place obstacles.
func quietConfig() config.DodgeConfig {
	cfg := config.DefaultDodgeConfig()
	cfg.Obstacles.BaseSpawnChance = 0
	cfg.Obstacles.SpawnChancePerTier = 0
	return cfg
}

func newStarted(cfg config.DodgeConfig, seed int64, rec *recorder) *Game {
	g := NewWithConfig(cfg)
	g.Reset(core.RuntimeConfig{Seed: seed, ScreenW: 80, ScreenH: 24}, rec.callbacks())
	g.Start()
	return g
}

func TestPlayerClampedAtLeftEdge(t *testing.T) {
	g := newStarted(quietConfig(), 1, &recorder{})
	g.playerX = 0

	g.Advance(0, core.FrameOf(core.ActionLeft))
	if g.playerX != 0 {
		t.Errorf("playerX = %d, want 0", g.playerX)
	}
}

func TestPlayerClampedAtRightEdge(t *testing.T) {
	g := newStarted(quietConfig(), 1, &recorder{})
	maxX := g.cfg.Board.Width - g.cfg.Player.Width

	g.Advance(0, core.FrameOf(core.ActionRight))
	g.Advance(5*time.Second, core.NewInputFrame())
	if g.playerX != maxX {
		t.Errorf("playerX = %d, want %d", g.playerX, maxX)
	}
}

func TestHeldDirectionRepeats(t *testing.T) {
	g := newStarted(quietConfig(), 1, &recorder{})
	x := g.playerX
	step := g.cfg.Player.Step

	g.Advance(0, core.FrameOf(core.ActionLeft))
	if g.playerX != x-step {
		t.Fatalf("press moved to %d, want %d", g.playerX, x-step)
	}

	g.Advance(60*time.Millisecond, core.NewInputFrame())
	if g.playerX != x-2*step {
		t.Errorf("repeat moved to %d, want %d", g.playerX, x-2*step)
	}

	g.Advance(0, core.FrameOf(core.ActionRelease))
	g.Advance(time.Second, core.NewInputFrame())
	if g.playerX != x-2*step {
		t.Errorf("player kept moving after release: %d", g.playerX)
	}
}

func TestDodgedCountedOnce(t *testing.T) {
	cfg := quietConfig()
	om := NewObstacleManager(rand.New(rand.NewSource(1)), &cfg)
	om.obstacles = append(om.obstacles,
		Obstacle{ID: 1, X: 0, Y: cfg.Board.Height - 2, W: 10, H: 10, Speed: 3},
		Obstacle{ID: 2, X: 50, Y: 0, W: 10, H: 10, Speed: 3},
	)

	if n := om.Fall(); n != 1 {
		t.Fatalf("Fall removed %d, want 1", n)
	}
	om.Fall()
	if om.Dodged() != 1 {
		t.Errorf("Dodged = %d, want 1", om.Dodged())
	}
	if len(om.Obstacles()) != 1 || om.Obstacles()[0].ID != 2 {
		t.Errorf("remaining = %+v", om.Obstacles())
	}
}

func TestHit(t *testing.T) {
	cfg := quietConfig()
	om := NewObstacleManager(rand.New(rand.NewSource(1)), &cfg)
	om.obstacles = []Obstacle{{X: 100, Y: 100, W: 10, H: 10}}

	tests := []struct {
		name string
		r    core.Rect
		want bool
	}{
		{"overlap", core.NewRect(95, 95, 10, 10), true},
		{"inside", core.NewRect(102, 102, 2, 2), true},
		{"left of", core.NewRect(80, 100, 20, 10), false},
		{"below", core.NewRect(100, 110, 10, 10), false},
		{"x overlap only", core.NewRect(100, 50, 10, 10), false},
		{"y overlap only", core.NewRect(0, 100, 10, 10), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := om.Hit(tc.r); got != tc.want {
				t.Errorf("Hit(%+v) = %v, want %v", tc.r, got, tc.want)
			}
		})
	}
}

func TestCollisionEndsOnce(t *testing.T) {
	rec := &recorder{}
	g := newStarted(quietConfig(), 1, rec)
	p := g.PlayerRect()
	g.obstacles.obstacles = append(g.obstacles.obstacles,
		Obstacle{ID: 1, X: p.X, Y: p.Y - 15, W: 10, H: 10, Speed: 3})

	g.Advance(50*time.Millisecond, core.NewInputFrame())
	if g.gameOver {
		t.Fatal("ended before overlap")
	}
	g.Advance(time.Second, core.NewInputFrame())
	if !g.gameOver {
		t.Fatal("expected overlap to end the run")
	}

	g.Advance(time.Second, core.FrameOf(core.ActionLeft))
	g.Close()
	if len(rec.ends) != 1 {
		t.Errorf("OnGameEnd fired %d times", len(rec.ends))
	}
	if g.sched.Active() != 0 {
		t.Error("timers still active after game over")
	}
}

func TestMovingIntoObstacleEnds(t *testing.T) {
	rec := &recorder{}
	g := newStarted(quietConfig(), 1, rec)
	p := g.PlayerRect()
	g.obstacles.obstacles = append(g.obstacles.obstacles,
		Obstacle{ID: 1, X: p.Right(), Y: p.Y, W: 10, H: 10, Speed: 0})

	g.Advance(0, core.FrameOf(core.ActionRight))
	if !g.gameOver {
		t.Error("stepping into an obstacle should end the run")
	}
}

func TestClockAndScore(t *testing.T) {
	rec := &recorder{}
	g := newStarted(quietConfig(), 1, rec)

	g.Advance(time.Second, core.NewInputFrame())
	if g.elapsed != 1 || g.score != 1 {
		t.Errorf("elapsed = %d score = %d, want 1/1", g.elapsed, g.score)
	}

	g.obstacles.obstacles = append(g.obstacles.obstacles,
		Obstacle{ID: 9, X: 0, Y: g.cfg.Board.Height - 1, W: 10, H: 10, Speed: 3})
	g.Advance(50*time.Millisecond, core.NewInputFrame())
	if g.score != 2 {
		t.Errorf("score = %d, want dodged + seconds = 2", g.score)
	}

	g.Advance(9*time.Second, core.NewInputFrame())
	if g.tier != 1 {
		t.Errorf("tier = %d after 10s, want 1", g.tier)
	}
	for i := 1; i < len(rec.scores); i++ {
		if rec.scores[i] <= rec.scores[i-1] {
			t.Fatalf("scores not increasing: %v", rec.scores)
		}
	}
}

func TestDifficultyScaling(t *testing.T) {
	cfg := config.DefaultDodgeConfig()
	om := NewObstacleManager(rand.New(rand.NewSource(1)), &cfg)

	if got := om.SpawnChance(0); got != 0.08 {
		t.Errorf("SpawnChance(0) = %v", got)
	}
	if got := om.SpawnChance(100); got != cfg.Obstacles.MaxSpawnChance {
		t.Errorf("SpawnChance(100) = %v, want cap", got)
	}
	if om.FallSpeed(3) <= om.FallSpeed(0) {
		t.Error("fall speed should grow with tier")
	}
}

func TestScore(t *testing.T) {
	if got := Score(4, 11); got != 15 {
		t.Errorf("Score = %d, want 15", got)
	}
}

func TestDeterminism(t *testing.T) {
	cfg := config.DefaultDodgeConfig()
	g1 := newStarted(cfg, 777, &recorder{})
	g2 := newStarted(cfg, 777, &recorder{})

	for i := range 300 {
		in := core.NewInputFrame()
		switch i % 40 {
		case 0:
			in.Set(core.ActionLeft)
		case 10, 30:
			in.Set(core.ActionRelease)
		case 20:
			in.Set(core.ActionRight)
		}
		g1.Advance(33*time.Millisecond, in)
		g2.Advance(33*time.Millisecond, in)
	}

	if s1, s2 := g1.Snapshot(), g2.Snapshot(); !reflect.DeepEqual(s1, s2) {
		t.Errorf("snapshots differ:\n%+v\n%+v", s1, s2)
	}
}

func TestRender(t *testing.T) {
	g := newStarted(config.DefaultDodgeConfig(), 1, &recorder{})
	g.Advance(2*time.Second, core.NewInputFrame())
	scr := core.NewScreen(80, 24)
	g.Render(scr)
	if scr.String() == "" {
		t.Error("render produced nothing")
	}
}
