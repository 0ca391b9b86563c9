package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/pet-arcade/internal/backend"
	"github.com/vovakirdan/pet-arcade/internal/config"
	"github.com/vovakirdan/pet-arcade/internal/core"
	"github.com/vovakirdan/pet-arcade/internal/session"
	"github.com/vovakirdan/pet-arcade/internal/storage"
)

func TestTokenRoundTrip(t *testing.T) {
	ti := NewTokenIssuer("secret", time.Hour)

	raw, err := ti.Issue("s1", "alice", core.KindSnake)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}
	claims, err := ti.Verify(raw)
	if err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
	if claims.SessionID != "s1" || claims.UserID != "alice" || claims.Kind != "snake" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestTokenRejects(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	ti := NewTokenIssuer("secret", time.Minute)
	ti.now = func() time.Time { return base }
	raw, _ := ti.Issue("s1", "alice", core.KindDodge)

	other := NewTokenIssuer("other-secret", time.Minute)
	other.now = ti.now
	if _, err := other.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong secret: err = %v", err)
	}

	if _, err := ti.Verify(raw[:len(raw)-2] + "xx"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("tampered: err = %v", err)
	}

	ti.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := ti.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired: err = %v", err)
	}
}

type fixture struct {
	srv    *httptest.Server
	client *Client
	tokens *TokenIssuer
}

func newFixture(t *testing.T, daily int) *fixture {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	svc := backend.New(store, config.BackendConfig{DailyPlays: daily})
	tokens := NewTokenIssuer("test-secret", time.Hour)
	srv := httptest.NewServer(NewServer(svc, tokens, nil))
	t.Cleanup(srv.Close)

	return &fixture{srv: srv, client: NewClient(srv.URL, srv.Client()), tokens: tokens}
}

func TestClientServerRoundTrip(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	start, err := f.client.StartSession(ctx, session.StartRequest{Kind: core.KindDodge, UserID: "alice"})
	if err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}
	if !start.Allowed || start.RemainingPlays != 1 || start.SessionID == "" || start.Token == "" {
		t.Fatalf("start = %+v", start)
	}

	began := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	resp, err := f.client.SubmitResult(ctx, session.SubmitRequest{
		SessionID:   start.SessionID,
		Token:       start.Token,
		Kind:        core.KindDodge,
		UserID:      "alice",
		Score:       15,
		Money:       30,
		TimeSpent:   12,
		StartedAt:   began,
		CompletedAt: began.Add(12 * time.Second),
	})
	if err != nil {
		t.Fatalf("SubmitResult() failed: %v", err)
	}
	if !resp.Acknowledged || resp.Balance == nil || *resp.Balance != 30 {
		t.Errorf("submit = %+v", resp)
	}

	bal, err := f.client.Balance(ctx, "alice")
	if err != nil || bal != 30 {
		t.Errorf("Balance = %d, %v", bal, err)
	}
}

func TestSubmitTwiceConflicts(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()

	start, _ := f.client.StartSession(ctx, session.StartRequest{Kind: core.KindSnake, UserID: "bob"})
	req := session.SubmitRequest{SessionID: start.SessionID, Token: start.Token, Kind: core.KindSnake, UserID: "bob", Score: 20, Money: 20}
	if _, err := f.client.SubmitResult(ctx, req); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	_, err := f.client.SubmitResult(ctx, req)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusConflict {
		t.Errorf("second submit err = %v, want 409", err)
	}
}

func TestDeniedStartHasNoToken(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	req := session.StartRequest{Kind: core.KindBlocks, UserID: "carol"}

	if _, err := f.client.StartSession(ctx, req); err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}
	denied, err := f.client.StartSession(ctx, req)
	if err != nil {
		t.Fatalf("denied start should not be an error: %v", err)
	}
	if denied.Allowed || denied.Token != "" || denied.RemainingPlays != 0 {
		t.Errorf("denied = %+v", denied)
	}
}

func TestResultAuthorization(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()

	start, _ := f.client.StartSession(ctx, session.StartRequest{Kind: core.KindSnake, UserID: "alice"})
	stolen, _ := f.tokens.Issue(start.SessionID, "mallory", core.KindSnake)

	tests := []struct {
		name   string
		token  string
		user   string
		gameID string
		want   int
	}{
		{"missing token", "", "alice", "3", http.StatusUnauthorized},
		{"garbage token", "abc.def.ghi", "alice", "3", http.StatusUnauthorized},
		{"token of another user", stolen, "alice", "3", http.StatusForbidden},
		{"wrong game", start.Token, "alice", "1", http.StatusForbidden},
		{"unknown game", start.Token, "alice", "9", http.StatusNotFound},
		{"missing user", start.Token, "", "3", http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body := `{"sessionId":"` + start.SessionID + `","score":1,"money":1,"timeSpent":1,"startedAt":"","completedAt":null}`
			req, _ := http.NewRequest(http.MethodPost, f.srv.URL+"/minigames/"+tc.gameID+"/result", strings.NewReader(body))
			if tc.user != "" {
				req.Header.Set(HeaderUserID, tc.user)
			}
			if tc.token != "" {
				req.Header.Set(HeaderAuthorization, "Bearer "+tc.token)
			}
			resp, err := f.srv.Client().Do(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tc.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tc.want)
			}
		})
	}
}

func TestNullResultFields(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	start, _ := f.client.StartSession(ctx, session.StartRequest{Kind: core.KindSnake, UserID: "dave"})

	body := `{"score":null,"money":null,"timeSpent":null,"startedAt":"2026-01-01T00:00:00Z","completedAt":null}`
	req, _ := http.NewRequest(http.MethodPost, f.srv.URL+"/minigames/3/result", strings.NewReader(body))
	req.Header.Set(HeaderUserID, "dave")
	req.Header.Set(HeaderAuthorization, "Bearer "+start.Token)

	resp, err := f.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200 (session id taken from token)", resp.StatusCode)
	}
}

func TestControllerOverHTTP(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	game := &scriptedGame{}
	ctrl := session.NewController(session.Options{
		Kind:    core.KindBlocks,
		UserID:  "erin",
		Game:    game,
		Service: f.client,
	})

	if err := ctrl.Open(ctx); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	game.cb.OnGameEnd(40)
	if err := ctrl.Submit(ctx); err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if !ctrl.Result().Submitted || ctrl.Balance().Value() != 40 {
		t.Errorf("result = %+v, balance = %d", ctrl.Result(), ctrl.Balance().Value())
	}

	if err := ctrl.Restart(ctx); !errors.Is(err, session.ErrEntitlementDenied) {
		t.Errorf("restart err = %v, want denied", err)
	}
}

func TestServiceDownIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	ctrl := session.NewController(session.Options{
		Kind:    core.KindSnake,
		UserID:  "frank",
		Game:    &scriptedGame{},
		Service: NewClient(srv.URL, nil),
	})
	if err := ctrl.Open(context.Background()); !errors.Is(err, session.ErrServiceUnavailable) {
		t.Errorf("err = %v, want ErrServiceUnavailable", err)
	}
	if ctrl.Phase() != session.PhaseIdle {
		t.Errorf("phase = %s, want idle", ctrl.Phase())
	}
}

type scriptedGame struct {
	cb core.Callbacks
}

func (g *scriptedGame) ID() string                                    { return "blocks" }
func (g *scriptedGame) Title() string                                 { return "Block Drop" }
func (g *scriptedGame) Reset(_ core.RuntimeConfig, cb core.Callbacks) { g.cb = cb }
func (g *scriptedGame) Start()                                        {}
func (g *scriptedGame) Render(*core.Screen)                           {}
func (g *scriptedGame) State() core.GameState                         { return core.GameState{} }
func (g *scriptedGame) Close()                                        {}

func (g *scriptedGame) Advance(time.Duration, core.InputFrame) core.StepResult {
	return core.StepResult{}
}
