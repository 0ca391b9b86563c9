package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/pet-arcade/internal/core"
	"github.com/vovakirdan/pet-arcade/internal/games/snake"
)

// stubGame records lifecycle calls and lets tests end the run by hand.
type stubGame struct {
	cb      core.Callbacks
	resets  int
	starts  int
	closes  int
	seed    int64
	started bool
	ended   bool
	score   int
	gold    int // multiplier from the engine's tuning, 0 for none
}

func (g *stubGame) ID() string    { return "stub" }
func (g *stubGame) Title() string { return "Stub" }

func (g *stubGame) Reset(rc core.RuntimeConfig, cb core.Callbacks) {
	g.resets++
	g.cb = cb
	g.seed = rc.Seed
	g.started = false
	g.ended = false
	g.score = 0
}

func (g *stubGame) Start() {
	g.starts++
	g.started = true
}

func (g *stubGame) Advance(time.Duration, core.InputFrame) core.StepResult {
	return core.StepResult{State: g.State()}
}

func (g *stubGame) Render(*core.Screen) {}

func (g *stubGame) State() core.GameState {
	return core.GameState{Score: g.score, Started: g.started, GameOver: g.ended}
}

func (g *stubGame) Close() { g.closes++ }

func (g *stubGame) GoldPerPoint() int { return g.gold }

func (g *stubGame) scoreTo(s int) {
	g.score = s
	g.cb.OnScoreUpdate(s)
}

func (g *stubGame) end(s int) {
	g.ended = true
	g.cb.OnGameEnd(s)
}

// fakeService answers from canned values.
type fakeService struct {
	allowed   bool
	remaining int
	startErr  error
	submitErr error
	noIDs     bool // answer like a service without session ids
	nextID    int
	starts    int
	submits   []SubmitRequest
}

func (s *fakeService) StartSession(_ context.Context, req StartRequest) (StartResponse, error) {
	s.starts++
	if s.startErr != nil {
		return StartResponse{}, s.startErr
	}
	s.nextID++
	resp := StartResponse{
		Allowed:        s.allowed,
		RemainingPlays: s.remaining,
		SessionID:      string(rune('a' + s.nextID - 1)),
		Token:          "tok",
	}
	if s.noIDs {
		resp.SessionID = ""
	}
	return resp, nil
}

func (s *fakeService) SubmitResult(_ context.Context, req SubmitRequest) (SubmitResponse, error) {
	if s.submitErr != nil {
		return SubmitResponse{}, s.submitErr
	}
	s.submits = append(s.submits, req)
	return SubmitResponse{Acknowledged: true}, nil
}

// fakeClock advances by step on every read.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	t := c.t
	c.t = c.t.Add(c.step)
	return t
}

type fixture struct {
	game    *stubGame
	svc     *fakeService
	ctrl    *Controller
	closed  int
	balance *Balance
}

func newFixture(kind core.GameKind, gold int) *fixture {
	f := &fixture{
		game:    &stubGame{},
		svc:     &fakeService{allowed: true, remaining: 4},
		balance: NewBalance(100),
	}
	clock := &fakeClock{t: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC), step: 12900 * time.Millisecond}
	f.ctrl = NewController(Options{
		Kind:         kind,
		UserID:       "u1",
		Game:         f.game,
		Service:      f.svc,
		Balance:      f.balance,
		GoldPerPoint: gold,
		Now:          clock.now,
		Seed:         func() int64 { return 42 },
		OnClose:      func() { f.closed++ },
	})
	return f
}

func TestRewardScenario(t *testing.T) {
	f := newFixture(core.KindDodge, 2)
	ctx := context.Background()

	if err := f.ctrl.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}
	f.game.end(15)

	if err := f.ctrl.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(f.svc.submits) != 1 {
		t.Fatalf("submits = %d, want 1", len(f.svc.submits))
	}
	got := f.svc.submits[0]
	if got.Money != 30 || got.Score != 15 {
		t.Errorf("submitted score=%d money=%d, want 15/30", got.Score, got.Money)
	}
	if got.TimeSpent != 12 {
		t.Errorf("TimeSpent = %d, want 12 (floored)", got.TimeSpent)
	}
	if f.balance.Value() != 130 {
		t.Errorf("balance = %d, want 130", f.balance.Value())
	}

	// a duplicate acknowledgement must not credit twice
	if err := f.ctrl.ApplySubmission(got, SubmitResponse{Acknowledged: true}, nil); err != nil {
		t.Fatalf("ApplySubmission: %v", err)
	}
	if f.balance.Value() != 130 {
		t.Errorf("balance after duplicate = %d, want 130", f.balance.Value())
	}
	if !f.ctrl.Result().Submitted {
		t.Error("result should be marked submitted")
	}
}

func TestCreditsEachPlayWithoutSessionIDs(t *testing.T) {
	f := newFixture(core.KindDodge, 2)
	f.svc.noIDs = true
	ctx := context.Background()

	if err := f.ctrl.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}
	f.game.end(15)
	if err := f.ctrl.Submit(ctx); err != nil {
		t.Fatalf("first Submit: %v", err)
	}

	if err := f.ctrl.Restart(ctx); err != nil {
		t.Fatalf("Restart: %v", err)
	}
	f.game.end(15)
	if err := f.ctrl.Submit(ctx); err != nil {
		t.Fatalf("second Submit: %v", err)
	}

	if f.balance.Value() != 160 {
		t.Errorf("balance = %d, want 160", f.balance.Value())
	}
	if !f.ctrl.Result().Submitted {
		t.Error("second result should be marked submitted")
	}

	// two controllers on one balance keep their plays apart too
	other := newFixture(core.KindDodge, 2)
	other.svc.noIDs = true
	other.ctrl.opts.Balance = f.balance
	_ = other.ctrl.Open(ctx)
	other.game.end(5)
	_ = other.ctrl.Submit(ctx)
	if f.balance.Value() != 170 {
		t.Errorf("shared balance = %d, want 170", f.balance.Value())
	}
}

func TestOpenStartsEngineWithFreshSeed(t *testing.T) {
	f := newFixture(core.KindSnake, 0)
	if err := f.ctrl.Open(context.Background()); err != nil {
		t.Fatal(err)
	}
	if f.game.resets != 1 || f.game.starts != 1 || f.game.seed != 42 {
		t.Errorf("resets=%d starts=%d seed=%d", f.game.resets, f.game.starts, f.game.seed)
	}
	if f.ctrl.Phase() != PhaseRunning {
		t.Errorf("phase = %s", f.ctrl.Phase())
	}
	if s := f.ctrl.Session(); s.State != StateRunning || s.StartedAt.IsZero() || s.ID == "" {
		t.Errorf("session = %+v", s)
	}
	if f.ctrl.GoldPerPoint() != 1 {
		t.Errorf("default gold per point = %d, want 1", f.ctrl.GoldPerPoint())
	}
	if e := f.ctrl.Entitlement(); !e.CanPlay || e.RemainingPlays != 4 {
		t.Errorf("entitlement = %+v", e)
	}
}

func TestEngineTuningSetsReward(t *testing.T) {
	f := newFixture(core.KindSnake, 0)
	f.game.gold = 3
	ctx := context.Background()

	if err := f.ctrl.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if f.ctrl.GoldPerPoint() != 3 {
		t.Errorf("gold per point = %d, want 3 from the engine", f.ctrl.GoldPerPoint())
	}
	f.game.end(10)
	if r := f.ctrl.Result(); r.Money != 30 {
		t.Errorf("money = %d, want 30", r.Money)
	}

	// an explicit multiplier wins over the engine's
	g := newFixture(core.KindSnake, 4)
	g.game.gold = 3
	_ = g.ctrl.Open(ctx)
	g.game.end(10)
	if r := g.ctrl.Result(); r.Money != 40 {
		t.Errorf("money = %d, want 40", r.Money)
	}
}

func TestDeniedNeverStartsEngine(t *testing.T) {
	f := newFixture(core.KindBlocks, 1)
	f.svc.allowed = false

	err := f.ctrl.Open(context.Background())
	if !errors.Is(err, ErrEntitlementDenied) {
		t.Fatalf("Open error = %v, want ErrEntitlementDenied", err)
	}
	if f.game.starts != 0 {
		t.Error("engine started despite denial")
	}
	if f.closed != 1 {
		t.Errorf("close callback called %d times", f.closed)
	}
	if n, ok := f.ctrl.Notice(); !ok || n.Level != NoticeBlocking {
		t.Errorf("notice = %+v, %v", n, ok)
	}
	if f.ctrl.Phase() != PhaseClosed {
		t.Errorf("phase = %s, want closed", f.ctrl.Phase())
	}
}

func TestServiceFailureStaysIdle(t *testing.T) {
	f := newFixture(core.KindBlocks, 1)
	f.svc.startErr = errors.New("connection refused")

	err := f.ctrl.Open(context.Background())
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("Open error = %v", err)
	}
	if f.ctrl.Phase() != PhaseIdle {
		t.Errorf("phase = %s, want idle", f.ctrl.Phase())
	}
	if n, ok := f.ctrl.Notice(); !ok || n.Level != NoticeTransient {
		t.Errorf("notice = %+v, %v", n, ok)
	}
	if f.closed != 0 || f.game.starts != 0 {
		t.Error("failure should neither close nor start")
	}

	// the user retries
	f.svc.startErr = nil
	if err := f.ctrl.Open(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if f.ctrl.Phase() != PhaseRunning {
		t.Errorf("phase after retry = %s", f.ctrl.Phase())
	}
}

func TestSubmitFailureKeepsResult(t *testing.T) {
	f := newFixture(core.KindSnake, 1)
	ctx := context.Background()
	_ = f.ctrl.Open(ctx)
	f.game.end(40)
	f.svc.submitErr = errors.New("timeout")

	if err := f.ctrl.Submit(ctx); !errors.Is(err, ErrSubmitFailed) {
		t.Fatalf("Submit error = %v", err)
	}
	if f.balance.Value() != 100 {
		t.Errorf("balance = %d, failed submit must not credit", f.balance.Value())
	}
	r := f.ctrl.Result()
	if r.Score != 40 || !r.Failed || r.Submitted {
		t.Errorf("result = %+v", r)
	}
	if f.ctrl.Phase() != PhaseResult {
		t.Errorf("phase = %s", f.ctrl.Phase())
	}
	// no automatic retry
	if err := f.ctrl.Submit(ctx); err != nil {
		t.Errorf("second Submit = %v, want nothing pending", err)
	}
}

func TestRestartRequeriesEntitlement(t *testing.T) {
	f := newFixture(core.KindSnake, 1)
	ctx := context.Background()
	_ = f.ctrl.Open(ctx)
	f.game.end(10)
	_ = f.ctrl.Submit(ctx)

	if err := f.ctrl.Restart(ctx); err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if f.svc.starts != 2 {
		t.Errorf("service queried %d times, want 2", f.svc.starts)
	}
	if f.game.resets != 2 {
		t.Errorf("engine reset %d times, want 2", f.game.resets)
	}
	if s := f.ctrl.Session(); s.Score != 0 || s.State != StateRunning {
		t.Errorf("restarted session = %+v", s)
	}
}

func TestRestartDeniedExits(t *testing.T) {
	f := newFixture(core.KindSnake, 1)
	ctx := context.Background()
	_ = f.ctrl.Open(ctx)
	f.game.end(10)
	f.svc.allowed = false

	if err := f.ctrl.Restart(ctx); !errors.Is(err, ErrEntitlementDenied) {
		t.Fatalf("Restart error = %v", err)
	}
	if f.closed != 1 {
		t.Errorf("close callback = %d", f.closed)
	}
	if f.game.resets != 1 {
		t.Error("engine was reset despite denial")
	}
}

func TestRestartOnlyFromResult(t *testing.T) {
	f := newFixture(core.KindSnake, 1)
	if err := f.ctrl.Restart(context.Background()); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("Restart from idle = %v", err)
	}
}

func TestStaleSubmissionLeavesCurrentSession(t *testing.T) {
	f := newFixture(core.KindDodge, 2)
	ctx := context.Background()
	_ = f.ctrl.Open(ctx)
	f.game.end(5)

	old, ok := f.ctrl.PendingSubmission()
	if !ok {
		t.Fatal("no pending submission")
	}
	if _, again := f.ctrl.PendingSubmission(); again {
		t.Error("pending submission handed out twice")
	}

	oldCallbacks := f.game.cb

	// user restarts before the old submission returns
	if err := f.ctrl.Restart(ctx); err != nil {
		t.Fatal(err)
	}
	f.game.scoreTo(3)

	if err := f.ctrl.ApplySubmission(old, SubmitResponse{Acknowledged: true}, nil); err != nil {
		t.Fatal(err)
	}
	if f.balance.Value() != 110 {
		t.Errorf("balance = %d, want 110", f.balance.Value())
	}
	if f.ctrl.Phase() != PhaseRunning || f.ctrl.Session().ID == old.SessionID {
		t.Error("stale submission disturbed the running session")
	}
	if f.ctrl.LiveScore() != 3 {
		t.Errorf("live score = %d", f.ctrl.LiveScore())
	}

	// a late end callback from the old run is ignored too
	oldCallbacks.OnGameEnd(99)
	if f.ctrl.Phase() != PhaseRunning {
		t.Error("an old run's end callback ended the current session")
	}
}

func TestExitReleasesEngine(t *testing.T) {
	f := newFixture(core.KindBlocks, 1)
	_ = f.ctrl.Open(context.Background())
	f.ctrl.Exit()

	if f.game.closes == 0 {
		t.Error("engine not closed on exit")
	}
	if f.closed != 1 {
		t.Errorf("close callback = %d", f.closed)
	}
	if s := f.ctrl.Session(); s.ID != "" || s.State != StateNotStarted {
		t.Errorf("session not reset: %+v", s)
	}
	f.ctrl.Exit()
	if f.closed != 1 {
		t.Error("close callback fired twice")
	}
}

func TestScoreForwarded(t *testing.T) {
	var seen []int
	f := newFixture(core.KindBlocks, 1)
	f.ctrl.opts.OnScore = func(s int) { seen = append(seen, s) }
	_ = f.ctrl.Open(context.Background())

	f.game.scoreTo(50)
	f.game.scoreTo(100)
	if len(seen) != 2 || seen[1] != 100 || f.ctrl.LiveScore() != 100 {
		t.Errorf("seen = %v live = %d", seen, f.ctrl.LiveScore())
	}
}

func TestRealEngineRewardFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snake.yaml")
	if err := os.WriteFile(path, []byte("reward:\n  gold_per_point: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	rc := core.DefaultConfig()
	rc.ConfigPath = path
	ctrl := NewController(Options{
		Kind:    core.KindSnake,
		UserID:  "u1",
		Game:    snake.New(),
		Service: &fakeService{allowed: true, remaining: 1},
		Runtime: rc,
		Seed:    func() int64 { return 7 },
	})
	if err := ctrl.Open(context.Background()); err != nil {
		t.Fatal(err)
	}
	if ctrl.GoldPerPoint() != 5 {
		t.Fatalf("gold per point = %d, want 5 from the tuning file", ctrl.GoldPerPoint())
	}
	for range 20 {
		ctrl.Advance(200*time.Millisecond, core.NewInputFrame())
	}
	if r := ctrl.Result(); r.Money != r.Score*5 {
		t.Errorf("money = %d for score %d", r.Money, r.Score)
	}
}

func TestWithRealEngine(t *testing.T) {
	svc := &fakeService{allowed: true, remaining: 1}
	bal := NewBalance(0)
	g := snake.New()
	ctrl := NewController(Options{
		Kind:    core.KindSnake,
		UserID:  "u1",
		Game:    g,
		Service: svc,
		Balance: bal,
		Seed:    func() int64 { return 7 },
	})
	ctx := context.Background()
	if err := ctrl.Open(ctx); err != nil {
		t.Fatal(err)
	}

	// heading right from the start cell the snake leaves the grid within 8 moves
	for range 20 {
		ctrl.Advance(200*time.Millisecond, core.NewInputFrame())
	}
	if ctrl.Phase() != PhaseResult {
		t.Fatalf("phase = %s, want result", ctrl.Phase())
	}
	if err := ctrl.Submit(ctx); err != nil {
		t.Fatal(err)
	}
	r := ctrl.Result()
	if r.Money != Reward(r.Score, 1) {
		t.Errorf("money = %d for score %d", r.Money, r.Score)
	}
	if bal.Value() != int64(r.Money) {
		t.Errorf("balance = %d, want %d", bal.Value(), r.Money)
	}
}
