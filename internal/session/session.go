// Package session wraps a minigame engine in its play session: entitlement
// checks, elapsed-time accounting, reward computation and result reporting.
package session

import (
	"context"
	"time"

	"github.com/vovakirdan/pet-arcade/internal/core"
)

// State is the lifecycle state of a GameSession.
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateEnded:
		return "ended"
	default:
		return "not_started"
	}
}

// GameSession is one play of one game kind.
type GameSession struct {
	ID          string
	Kind        core.GameKind
	UserID      string
	StartedAt   time.Time
	CompletedAt time.Time // zero while running
	Score       int
	State       State
}

// Entitlement is the last known play allowance for a kind. It is a cached
// hint and is re-fetched before every start.
type Entitlement struct {
	CanPlay        bool
	RemainingPlays int
}

// StartRequest asks the service to open a session.
type StartRequest struct {
	Kind   core.GameKind
	UserID string
}

// StartResponse is the service's answer to StartRequest.
type StartResponse struct {
	Allowed        bool
	RemainingPlays int
	SessionID      string
	Token          string // opaque, echoed back on submit
}

// SubmitRequest is the result record of an ended session.
type SubmitRequest struct {
	// Run identifies the play locally, even when the service hands out no
	// session id. It is not sent to the service.
	Run         string
	SessionID   string
	Token       string
	Kind        core.GameKind
	UserID      string
	Score       int
	Money       int
	TimeSpent   int // whole seconds
	StartedAt   time.Time
	CompletedAt time.Time
}

// SubmitResponse is the service's answer to SubmitRequest.
type SubmitResponse struct {
	Acknowledged bool
	Balance      *int64 // server balance after the credit, if reported
}

// Service is the external collaborator that owns quotas and balances.
type Service interface {
	StartSession(ctx context.Context, req StartRequest) (StartResponse, error)
	SubmitResult(ctx context.Context, req SubmitRequest) (SubmitResponse, error)
}
