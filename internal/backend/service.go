// Package backend implements the session service on top of storage: it
// enforces the daily play quota, accepts each session's result once and
// keeps wallet balances.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/pet-arcade/internal/config"
	"github.com/vovakirdan/pet-arcade/internal/session"
	"github.com/vovakirdan/pet-arcade/internal/storage"
)

var (
	ErrUnknownKind      = errors.New("backend: unknown game kind")
	ErrMissingUser      = errors.New("backend: user id required")
	ErrUnknownSession   = errors.New("backend: unknown session")
	ErrAlreadySubmitted = errors.New("backend: result already submitted")
	ErrSessionMismatch  = errors.New("backend: session belongs to another user or game")
	ErrInvalidResult    = errors.New("backend: invalid result")
)

// Store is the persistence the service needs. *storage.Store implements it.
type Store interface {
	CreateSessionWithinQuota(ctx context.Context, rec storage.SessionRecord, since time.Time, limit int) (int, error)
	Session(ctx context.Context, id string) (storage.SessionRecord, error)
	CompleteSession(ctx context.Context, c storage.Completion) (int64, error)
	Balance(ctx context.Context, userID string) (int64, error)
}

// Service is an in-process session.Service.
type Service struct {
	store      Store
	dailyPlays int
	loc        *time.Location
	logger     *log.Logger
	now        func() time.Time
	newID      func() string
}

var _ session.Service = (*Service)(nil)

// Option customizes a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDs replaces the session id generator.
func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// New creates a Service. A non-positive DailyPlays means unlimited plays.
func New(store Store, cfg config.BackendConfig, opts ...Option) *Service {
	s := &Service{
		store:      store,
		dailyPlays: cfg.DailyPlays,
		loc:        cfg.Location(),
		logger:     log.New(io.Discard),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DayStart returns local midnight of the day containing t.
func DayStart(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// StartSession checks the quota and opens a session when a play is left.
// The check and the insert are one storage transaction.
func (s *Service) StartSession(ctx context.Context, req session.StartRequest) (session.StartResponse, error) {
	if !req.Kind.Valid() {
		return session.StartResponse{}, fmt.Errorf("%w: %q", ErrUnknownKind, req.Kind)
	}
	if req.UserID == "" {
		return session.StartResponse{}, ErrMissingUser
	}

	now := s.now()
	id := s.newID()
	remaining, err := s.store.CreateSessionWithinQuota(ctx, storage.SessionRecord{
		ID:        id,
		UserID:    req.UserID,
		Kind:      string(req.Kind),
		StartedAt: now,
	}, DayStart(now, s.loc), s.dailyPlays)
	if errors.Is(err, storage.ErrQuotaExhausted) {
		s.logger.Info("quota exhausted", "user", req.UserID, "kind", req.Kind)
		return session.StartResponse{Allowed: false}, nil
	}
	if err != nil {
		return session.StartResponse{}, fmt.Errorf("backend: open session: %w", err)
	}

	s.logger.Debug("session opened", "session", id, "user", req.UserID, "kind", req.Kind, "remaining", remaining)
	return session.StartResponse{Allowed: true, RemainingPlays: remaining, SessionID: id}, nil
}

// SubmitResult records the result of an open session and credits the
// user's wallet with its money.
func (s *Service) SubmitResult(ctx context.Context, req session.SubmitRequest) (session.SubmitResponse, error) {
	if req.Score < 0 || req.Money < 0 || req.TimeSpent < 0 {
		return session.SubmitResponse{}, ErrInvalidResult
	}

	rec, err := s.store.Session(ctx, req.SessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return session.SubmitResponse{}, ErrUnknownSession
	}
	if err != nil {
		return session.SubmitResponse{}, fmt.Errorf("backend: load session: %w", err)
	}
	if rec.UserID != req.UserID || rec.Kind != string(req.Kind) {
		return session.SubmitResponse{}, ErrSessionMismatch
	}
	if rec.Completed() {
		return session.SubmitResponse{}, ErrAlreadySubmitted
	}

	completed := req.CompletedAt
	if completed.IsZero() {
		completed = s.now()
	}

	balance, err := s.store.CompleteSession(ctx, storage.Completion{
		SessionID:   req.SessionID,
		UserID:      req.UserID,
		Score:       req.Score,
		Money:       req.Money,
		TimeSpent:   req.TimeSpent,
		CompletedAt: completed,
	})
	switch {
	case errors.Is(err, storage.ErrAlreadyCompleted):
		return session.SubmitResponse{}, ErrAlreadySubmitted
	case errors.Is(err, storage.ErrNotFound):
		return session.SubmitResponse{}, ErrUnknownSession
	case err != nil:
		return session.SubmitResponse{}, fmt.Errorf("backend: complete session: %w", err)
	}

	s.logger.Info("result accepted", "session", req.SessionID, "user", req.UserID,
		"score", req.Score, "money", req.Money, "balance", balance)
	return session.SubmitResponse{Acknowledged: true, Balance: &balance}, nil
}

// Balance returns the user's wallet balance.
func (s *Service) Balance(ctx context.Context, userID string) (int64, error) {
	b, err := s.store.Balance(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("backend: balance: %w", err)
	}
	return b, nil
}
