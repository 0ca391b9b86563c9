package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vovakirdan/pet-arcade/internal/core"
)

// ErrInvalidToken is returned for tokens that fail signature, expiry or
// claim checks.
var ErrInvalidToken = errors.New("api: invalid session token")

const tokenIssuer = "petarcade"

// SessionClaims bind a token to one session of one user and kind.
type SessionClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
	UserID    string `json:"uid"`
	Kind      string `json:"kind"`
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates an issuer. A non-positive ttl means two hours.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for the session.
func (ti *TokenIssuer) Issue(sessionID, userID string, kind core.GameKind) (string, error) {
	now := ti.now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
		},
		SessionID: sessionID,
		UserID:    userID,
		Kind:      string(kind),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("api: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and checks its signature, expiry and issuer.
func (ti *TokenIssuer) Verify(raw string) (SessionClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ti.now),
	)

	claims := &SessionClaims{}
	parsed, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return ti.secret, nil
	})
	if err != nil || !parsed.Valid {
		return SessionClaims{}, ErrInvalidToken
	}
	if claims.SessionID == "" || claims.UserID == "" {
		return SessionClaims{}, ErrInvalidToken
	}
	return *claims, nil
}
