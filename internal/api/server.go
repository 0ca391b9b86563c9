package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/pet-arcade/internal/backend"
	"github.com/vovakirdan/pet-arcade/internal/core"
	"github.com/vovakirdan/pet-arcade/internal/session"
)

const maxBodyBytes = 1 << 16

// Backend is what the server exposes over HTTP. *backend.Service implements it.
type Backend interface {
	session.Service
	Balance(ctx context.Context, userID string) (int64, error)
}

// Server serves the minigame endpoints.
type Server struct {
	backend Backend
	tokens  *TokenIssuer
	logger  *log.Logger
	mux     *http.ServeMux
}

// NewServer wires the routes.
func NewServer(b Backend, tokens *TokenIssuer, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{backend: b, tokens: tokens, logger: logger, mux: http.NewServeMux()}

	s.mux.HandleFunc("POST /minigames/{gameId}/start", s.handleStart)
	s.mux.HandleFunc("POST /minigames/{gameId}/result", s.handleResult)
	s.mux.HandleFunc("GET /users/{userId}/balance", s.handleBalance)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, envelope[any]{Status: http.StatusOK, Message: "ok"})
	})
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "took", time.Since(start))
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.kindParam(w, r)
	if !ok {
		return
	}
	userID := r.Header.Get(HeaderUserID)
	if userID == "" {
		s.respondWithError(w, http.StatusBadRequest, "user-id header required", nil)
		return
	}

	resp, err := s.backend.StartSession(r.Context(), session.StartRequest{Kind: kind, UserID: userID})
	if err != nil {
		s.respondWithError(w, statusFor(err), "could not start minigame", err)
		return
	}

	data := startData{
		CanPlay:        resp.Allowed,
		RemainingPlays: resp.RemainingPlays,
		GameID:         kind.Number(),
		SessionID:      resp.SessionID,
	}
	msg := "no plays left today"
	if resp.Allowed {
		msg = "minigame started"
		data.Token, err = s.tokens.Issue(resp.SessionID, userID, kind)
		if err != nil {
			s.respondWithError(w, http.StatusInternalServerError, "could not issue token", err)
			return
		}
	}

	writeJSON(w, http.StatusOK, envelope[startData]{Status: http.StatusOK, Message: msg, Data: data})
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.kindParam(w, r)
	if !ok {
		return
	}
	userID := r.Header.Get(HeaderUserID)
	if userID == "" {
		s.respondWithError(w, http.StatusBadRequest, "user-id header required", nil)
		return
	}

	raw, found := strings.CutPrefix(r.Header.Get(HeaderAuthorization), "Bearer ")
	if !found || raw == "" {
		s.respondWithError(w, http.StatusUnauthorized, "session token required", nil)
		return
	}
	claims, err := s.tokens.Verify(raw)
	if err != nil {
		s.respondWithError(w, http.StatusUnauthorized, "invalid session token", err)
		return
	}

	var body resultBody
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&body); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "malformed result body", err)
		return
	}
	if body.SessionID == "" {
		body.SessionID = claims.SessionID
	}
	if claims.UserID != userID || claims.Kind != string(kind) || claims.SessionID != body.SessionID {
		s.respondWithError(w, http.StatusForbidden, "token does not match this session", nil)
		return
	}

	started, err := parseWireTime(body.StartedAt)
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, "malformed startedAt", err)
		return
	}
	var completed time.Time
	if body.CompletedAt != nil {
		if completed, err = parseWireTime(*body.CompletedAt); err != nil {
			s.respondWithError(w, http.StatusBadRequest, "malformed completedAt", err)
			return
		}
	}

	req := session.SubmitRequest{
		SessionID:   body.SessionID,
		Kind:        kind,
		UserID:      userID,
		Score:       intOrZero(body.Score),
		Money:       intOrZero(body.Money),
		TimeSpent:   intOrZero(body.TimeSpent),
		StartedAt:   started,
		CompletedAt: completed,
	}
	resp, err := s.backend.SubmitResult(r.Context(), req)
	if err != nil {
		s.respondWithError(w, statusFor(err), "could not save result", err)
		return
	}

	var completedOut *string
	if body.CompletedAt != nil {
		c := formatWireTime(completed)
		completedOut = &c
	}
	data := resultData{
		MinigameResult: minigameResult{
			StartedAt:   formatWireTime(started),
			CompletedAt: completedOut,
			Score:       req.Score,
			TimeSpent:   req.TimeSpent,
			Money:       req.Money,
			GameID:      kind.Number(),
		},
		Balance: resp.Balance,
	}
	writeJSON(w, http.StatusOK, envelope[resultData]{Status: http.StatusOK, Message: "result saved", Data: data})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	balance, err := s.backend.Balance(r.Context(), userID)
	if err != nil {
		s.respondWithError(w, http.StatusInternalServerError, "could not read balance", err)
		return
	}
	writeJSON(w, http.StatusOK, envelope[balanceData]{Status: http.StatusOK, Message: "ok", Data: balanceData{Balance: balance}})
}

func (s *Server) kindParam(w http.ResponseWriter, r *http.Request) (core.GameKind, bool) {
	n, err := strconv.Atoi(r.PathValue("gameId"))
	if err != nil {
		s.respondWithError(w, http.StatusNotFound, "unknown game", nil)
		return "", false
	}
	kind, err := core.KindFromNumber(n)
	if err != nil {
		s.respondWithError(w, http.StatusNotFound, "unknown game", nil)
		return "", false
	}
	return kind, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, backend.ErrUnknownKind), errors.Is(err, backend.ErrMissingUser),
		errors.Is(err, backend.ErrInvalidResult):
		return http.StatusBadRequest
	case errors.Is(err, backend.ErrSessionMismatch):
		return http.StatusForbidden
	case errors.Is(err, backend.ErrUnknownSession):
		return http.StatusNotFound
	case errors.Is(err, backend.ErrAlreadySubmitted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondWithError logs err, if any, and writes the error envelope.
func (s *Server) respondWithError(w http.ResponseWriter, status int, msg string, err error) {
	if err != nil {
		if status >= http.StatusInternalServerError {
			s.logger.Error(msg, "err", err)
		} else {
			s.logger.Warn(msg, "err", err)
		}
	}
	writeJSON(w, status, envelope[any]{Status: status, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
