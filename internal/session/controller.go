package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/pet-arcade/internal/core"
	"github.com/vovakirdan/pet-arcade/internal/registry"
)

// Errors returned across the controller boundary. Transport errors are
// logged and never returned as-is.
var (
	ErrEntitlementDenied  = errors.New("session: no plays left for this game today")
	ErrServiceUnavailable = errors.New("session: game service unavailable")
	ErrSubmitFailed       = errors.New("session: result submission failed")
	ErrWrongPhase         = errors.New("session: operation not allowed in current phase")
)

// runSeq numbers plays across all controllers sharing a process, so that
// balance credits stay distinct when the service omits session ids.
var runSeq atomic.Uint64

// Phase is the controller's position in the play lifecycle.
type Phase int

const (
	PhaseIdle     Phase = iota // waiting to start
	PhaseChecking              // entitlement query in flight
	PhaseRunning
	PhaseResult // session ended, result on display
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseChecking:
		return "checking"
	case PhaseRunning:
		return "running"
	case PhaseResult:
		return "result"
	default:
		return "closed"
	}
}

// NoticeLevel says how a notice should be presented.
type NoticeLevel int

const (
	// NoticeTransient is informational; the user may retry.
	NoticeTransient NoticeLevel = iota
	// NoticeBlocking precedes leaving the game.
	NoticeBlocking
)

// Notice is a user-facing message produced by the controller.
type Notice struct {
	Level   NoticeLevel
	Message string
}

// Result is what the result screen shows for an ended session.
type Result struct {
	SessionID string
	Score     int
	Money     int
	TimeSpent int
	Submitted bool
	Failed    bool
}

// Options configures a Controller.
type Options struct {
	Kind         core.GameKind
	UserID       string
	Game         registry.Game
	Service      Service
	Balance      *Balance
	GoldPerPoint int                // 0 uses the engine's tuning, then DefaultGoldPerPoint(Kind)
	Runtime      core.RuntimeConfig // Seed is replaced per session
	Logger       *log.Logger
	Now          func() time.Time
	Seed         func() int64
	OnScore      func(score int) // live score display
	OnClose      func()
}

// Controller drives one game kind through entitlement, play and reporting.
// It is not safe for concurrent use: the host calls it from its event loop
// and runs only the Service calls elsewhere.
type Controller struct {
	opts   Options
	logger *log.Logger

	phase     Phase
	prev      Phase // phase to return to when a start query fails
	session   GameSession
	run       string
	token     string
	ent       Entitlement
	live      int
	notice    *Notice
	pending   *SubmitRequest
	inFlight  bool
	gold      int
	result    Result
	closeSent bool
}

// NewController creates a controller in the idle phase.
func NewController(opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Seed == nil {
		opts.Seed = func() int64 { return opts.Now().UnixNano() }
	}
	if opts.Balance == nil {
		opts.Balance = NewBalance(0)
	}
	c := &Controller{
		opts:   opts,
		logger: opts.Logger.With("kind", opts.Kind),
		ent:    Entitlement{CanPlay: true},
	}
	c.gold = c.rewardRate()
	return c
}

// rewardRate picks the multiplier: an explicit option wins over the
// engine's loaded tuning, which wins over the built-in default.
func (c *Controller) rewardRate() int {
	if c.opts.GoldPerPoint > 0 {
		return c.opts.GoldPerPoint
	}
	if src, ok := c.opts.Game.(RewardSource); ok {
		if g := src.GoldPerPoint(); g > 0 {
			return g
		}
	}
	return DefaultGoldPerPoint(c.opts.Kind)
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase { return c.phase }

// Session returns a copy of the current session.
func (c *Controller) Session() GameSession { return c.session }

// Entitlement returns the last known entitlement.
func (c *Controller) Entitlement() Entitlement { return c.ent }

// LiveScore returns the latest score reported by the running game.
func (c *Controller) LiveScore() int { return c.live }

// Result returns the result of the last ended session.
func (c *Controller) Result() Result { return c.result }

// Balance returns the shared balance.
func (c *Controller) Balance() *Balance { return c.opts.Balance }

// Game returns the wrapped engine.
func (c *Controller) Game() registry.Game { return c.opts.Game }

// GoldPerPoint returns the reward multiplier of the current session.
func (c *Controller) GoldPerPoint() int { return c.gold }

// Notice returns the pending notice, if any.
func (c *Controller) Notice() (Notice, bool) {
	if c.notice == nil {
		return Notice{}, false
	}
	return *c.notice, true
}

// ClearNotice dismisses the pending notice.
func (c *Controller) ClearNotice() { c.notice = nil }

func (c *Controller) setNotice(level NoticeLevel, msg string) {
	c.notice = &Notice{Level: level, Message: msg}
}

// RequestStart begins a start or restart. The caller sends the returned
// request to the Service and hands the outcome to ApplyStart.
func (c *Controller) RequestStart() (StartRequest, error) {
	if c.phase != PhaseIdle && c.phase != PhaseResult {
		return StartRequest{}, ErrWrongPhase
	}
	c.prev = c.phase
	c.phase = PhaseChecking
	c.notice = nil
	return StartRequest{Kind: c.opts.Kind, UserID: c.opts.UserID}, nil
}

// ApplyStart consumes the Service's answer to RequestStart. A denial exits
// the controller; a failure returns to the previous phase with a notice.
func (c *Controller) ApplyStart(resp StartResponse, err error) error {
	if c.phase != PhaseChecking {
		return ErrWrongPhase
	}

	if err != nil {
		c.logger.Warn("entitlement query failed", "err", err)
		c.phase = c.prev
		c.setNotice(NoticeTransient, "Could not reach the game service. Try again.")
		return ErrServiceUnavailable
	}

	c.ent = Entitlement{CanPlay: resp.Allowed, RemainingPlays: resp.RemainingPlays}
	if !resp.Allowed {
		c.logger.Info("play denied", "user", c.opts.UserID)
		c.Exit()
		c.setNotice(NoticeBlocking, "No plays left for this game today.")
		return ErrEntitlementDenied
	}

	c.begin(resp)
	return nil
}

// begin resets the engine and starts a new session.
func (c *Controller) begin(resp StartResponse) {
	sid := resp.SessionID
	run := fmt.Sprintf("%d/%s", runSeq.Add(1), sid)
	c.run = run
	c.session = GameSession{
		ID:        sid,
		Kind:      c.opts.Kind,
		UserID:    c.opts.UserID,
		StartedAt: c.opts.Now(),
		State:     StateRunning,
	}
	c.token = resp.Token
	c.live = 0
	c.result = Result{}
	c.pending = nil
	c.inFlight = false

	rc := c.opts.Runtime
	rc.Seed = c.opts.Seed()
	c.opts.Game.Reset(rc, core.Callbacks{
		OnScoreUpdate: func(score int) { c.onScore(run, score) },
		OnGameEnd:     func(score int) { c.finish(run, score) },
	})
	c.opts.Game.Start()
	c.gold = c.rewardRate()
	c.phase = PhaseRunning

	c.logger.Debug("session started", "session", sid, "run", run, "seed", rc.Seed,
		"gold_per_point", c.gold, "remaining", resp.RemainingPlays)
}

func (c *Controller) onScore(run string, score int) {
	if run != c.run || c.phase != PhaseRunning {
		return
	}
	if score > c.session.Score {
		c.session.Score = score
	}
	c.live = score
	if c.opts.OnScore != nil {
		c.opts.OnScore(score)
	}
}

// finish records the end of play run and queues its result.
func (c *Controller) finish(run string, score int) {
	if run != c.run || c.phase != PhaseRunning {
		return
	}

	sid := c.session.ID
	completed := c.opts.Now()
	started := c.session.StartedAt
	if started.IsZero() {
		started = completed
	}
	money := Reward(score, c.gold)
	spent := TimeSpent(started, completed)

	c.session.CompletedAt = completed
	c.session.Score = score
	c.session.State = StateEnded
	c.live = score
	c.result = Result{SessionID: sid, Score: score, Money: money, TimeSpent: spent}
	c.pending = &SubmitRequest{
		Run:         run,
		SessionID:   sid,
		Token:       c.token,
		Kind:        c.opts.Kind,
		UserID:      c.opts.UserID,
		Score:       score,
		Money:       money,
		TimeSpent:   spent,
		StartedAt:   started,
		CompletedAt: completed,
	}
	c.phase = PhaseResult

	c.logger.Info("session ended", "session", sid, "score", score, "money", money, "seconds", spent)
}

// Advance forwards a frame to the running engine.
func (c *Controller) Advance(dt time.Duration, in core.InputFrame) core.StepResult {
	if c.phase != PhaseRunning {
		return core.StepResult{State: c.opts.Game.State()}
	}
	return c.opts.Game.Advance(dt, in)
}

// Render draws the wrapped engine.
func (c *Controller) Render(dst *core.Screen) {
	c.opts.Game.Render(dst)
}

// PendingSubmission hands out the result of the ended session for
// submission. Each result is handed out once.
func (c *Controller) PendingSubmission() (SubmitRequest, bool) {
	if c.pending == nil || c.inFlight {
		return SubmitRequest{}, false
	}
	c.inFlight = true
	return *c.pending, true
}

// ApplySubmission consumes the Service's answer for req. The earned money is
// credited to the balance at most once per play. A late answer for an
// older play credits the balance but leaves the current session alone.
func (c *Controller) ApplySubmission(req SubmitRequest, resp SubmitResponse, err error) error {
	current := c.pending != nil && req.Run == c.pending.Run
	if current {
		c.pending = nil
		c.inFlight = false
	}

	if err == nil && !resp.Acknowledged {
		err = errors.New("not acknowledged")
	}
	if err != nil {
		c.logger.Warn("result submission failed", "session", req.SessionID, "err", err)
		if current {
			c.result.Failed = true
			c.setNotice(NoticeTransient, "Your score could not be saved.")
		}
		return ErrSubmitFailed
	}

	if c.opts.Balance.Credit(req.Run, req.Money) {
		c.logger.Debug("balance credited", "session", req.SessionID, "run", req.Run, "money", req.Money)
	}
	if current {
		c.result.Submitted = true
	}
	return nil
}

// Open queries entitlement and starts a session.
func (c *Controller) Open(ctx context.Context) error {
	req, err := c.RequestStart()
	if err != nil {
		return err
	}
	resp, err := c.opts.Service.StartSession(ctx, req)
	return c.ApplyStart(resp, err)
}

// Restart re-queries entitlement and starts a fresh session.
func (c *Controller) Restart(ctx context.Context) error {
	if c.phase != PhaseResult {
		return fmt.Errorf("restart from %s: %w", c.phase, ErrWrongPhase)
	}
	return c.Open(ctx)
}

// Submit sends the pending result, if any.
func (c *Controller) Submit(ctx context.Context) error {
	req, ok := c.PendingSubmission()
	if !ok {
		return nil
	}
	resp, err := c.opts.Service.SubmitResult(ctx, req)
	return c.ApplySubmission(req, resp, err)
}

// Exit releases the engine, clears session state and calls OnClose once.
func (c *Controller) Exit() {
	if c.opts.Game != nil {
		c.opts.Game.Close()
	}
	c.session = GameSession{}
	c.run = ""
	c.token = ""
	c.live = 0
	c.pending = nil
	c.inFlight = false
	c.phase = PhaseClosed

	if !c.closeSent {
		c.closeSent = true
		if c.opts.OnClose != nil {
			c.opts.OnClose()
		}
	}
}
