// Package api carries the session service over HTTP: a JSON server in front
// of the backend and a client that implements session.Service.
package api

import (
	"time"
)

// Header names used by the minigame endpoints.
const (
	HeaderUserID        = "user-id"
	HeaderAuthorization = "Authorization"
)

// envelope wraps every response body.
type envelope[T any] struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

type startData struct {
	CanPlay        bool   `json:"canPlay"`
	RemainingPlays int    `json:"remainingPlays"`
	GameID         int    `json:"gameId"`
	SessionID      string `json:"sessionId,omitempty"`
	Token          string `json:"token,omitempty"`
}

// resultBody is the submit request body. Numeric fields may be null.
type resultBody struct {
	SessionID   string  `json:"sessionId"`
	Score       *int    `json:"score"`
	Money       *int    `json:"money"`
	TimeSpent   *int    `json:"timeSpent"`
	StartedAt   string  `json:"startedAt"`
	CompletedAt *string `json:"completedAt"`
}

type minigameResult struct {
	StartedAt   string  `json:"startedAt"`
	CompletedAt *string `json:"completedAt"`
	Score       int     `json:"score"`
	TimeSpent   int     `json:"timeSpent"`
	Money       int     `json:"money"`
	GameID      int     `json:"gameId"`
}

type resultData struct {
	MinigameResult minigameResult `json:"minigameResult"`
	Balance        *int64         `json:"balance,omitempty"`
}

type balanceData struct {
	Balance int64 `json:"balance"`
}

func formatWireTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseWireTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

func intOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
