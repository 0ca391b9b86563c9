package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vovakirdan/pet-arcade/internal/session"
)

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: server returned %d", e.Code)
	}
	return fmt.Sprintf("api: server returned %d: %s", e.Code, e.Message)
}

// Client talks to a minigame server. It implements session.Service.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ session.Service = (*Client)(nil)

// NewClient creates a client for baseURL. A nil httpClient uses a client
// with a ten second timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// StartSession asks the server for a play.
func (c *Client) StartSession(ctx context.Context, req session.StartRequest) (session.StartResponse, error) {
	path := "/minigames/" + strconv.Itoa(req.Kind.Number()) + "/start"

	var out envelope[startData]
	if err := c.do(ctx, http.MethodPost, path, req.UserID, "", struct{}{}, &out); err != nil {
		return session.StartResponse{}, err
	}
	return session.StartResponse{
		Allowed:        out.Data.CanPlay,
		RemainingPlays: out.Data.RemainingPlays,
		SessionID:      out.Data.SessionID,
		Token:          out.Data.Token,
	}, nil
}

// SubmitResult sends the result of an ended session.
func (c *Client) SubmitResult(ctx context.Context, req session.SubmitRequest) (session.SubmitResponse, error) {
	path := "/minigames/" + strconv.Itoa(req.Kind.Number()) + "/result"

	score, money, spent := req.Score, req.Money, req.TimeSpent
	body := resultBody{
		SessionID: req.SessionID,
		Score:     &score,
		Money:     &money,
		TimeSpent: &spent,
		StartedAt: formatWireTime(req.StartedAt),
	}
	if !req.CompletedAt.IsZero() {
		completed := formatWireTime(req.CompletedAt)
		body.CompletedAt = &completed
	}

	var out envelope[resultData]
	if err := c.do(ctx, http.MethodPost, path, req.UserID, req.Token, body, &out); err != nil {
		return session.SubmitResponse{}, err
	}
	return session.SubmitResponse{Acknowledged: true, Balance: out.Data.Balance}, nil
}

// Balance fetches the user's wallet balance.
func (c *Client) Balance(ctx context.Context, userID string) (int64, error) {
	var out envelope[balanceData]
	if err := c.do(ctx, http.MethodGet, "/users/"+userID+"/balance", userID, "", nil, &out); err != nil {
		return 0, err
	}
	return out.Data.Balance, nil
}

func (c *Client) do(ctx context.Context, method, path, userID, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	req.Header.Set(HeaderUserID, userID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(HeaderAuthorization, "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("api: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e envelope[any]
		_ = json.Unmarshal(data, &e)
		return &StatusError{Code: resp.StatusCode, Message: e.Message}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}
