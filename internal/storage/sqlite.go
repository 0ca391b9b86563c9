// Package storage persists minigame sessions, play quotas and wallets.
// SQLite (pure Go, no CGO) is the default; PostgreSQL and MySQL are supported
// through the same Store via a Dialect.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var (
	// ErrNotFound means no session has the requested id.
	ErrNotFound = errors.New("storage: session not found")
	// ErrAlreadyCompleted means a session's result was already recorded.
	ErrAlreadyCompleted = errors.New("storage: session already completed")
	// ErrQuotaExhausted means the user has no plays left in the window.
	ErrQuotaExhausted = errors.New("storage: play quota exhausted")
)

// Store manages the database connection.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// SessionRecord is a stored minigame session.
type SessionRecord struct {
	ID          string
	UserID      string
	Kind        string
	StartedAt   time.Time
	CompletedAt time.Time // zero until completed
	Score       int
	Money       int
	TimeSpent   int
}

// Completed reports whether a result has been recorded.
func (r SessionRecord) Completed() bool {
	return !r.CompletedAt.IsZero()
}

// Completion is the result written into a session.
type Completion struct {
	SessionID   string
	UserID      string
	Score       int
	Money       int
	TimeSpent   int
	CompletedAt time.Time
}

// ScoreEntry represents a single high score record.
type ScoreEntry struct {
	SessionID   string
	UserID      string
	Kind        string
	Score       int
	CompletedAt time.Time
}

// GameStats contains aggregated statistics for a game kind.
type GameStats struct {
	Kind       string
	GamesCount int
	HighScore  int
	AvgScore   float64
	TotalMoney int64
	LastPlayed time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	return OpenDriver("sqlite", dbPath)
}

// OpenDriver connects with the named driver and DSN and runs migrations.
func OpenDriver(driver, dsn string) (*Store, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	if err := dialect.ConfigureConnection(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot configure connection: %w", err)
	}

	store := &Store{db: db, dialect: dialect}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	for _, stmt := range s.dialect.Schema() {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Dialect returns the store's SQL dialect.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) q(query string) string {
	return s.dialect.RewriteQuery(query)
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) insertSession(ctx context.Context, db dbtx, rec SessionRecord) error {
	_, err := db.ExecContext(ctx, s.q(
		`INSERT INTO minigame_sessions (id, user_id, game_kind, started_at) VALUES (?, ?, ?, ?)`),
		rec.ID, rec.UserID, rec.Kind, formatTime(rec.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot create session: %w", err)
	}
	return nil
}

func (s *Store) countPlays(ctx context.Context, db dbtx, userID, kind string, since time.Time) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, s.q(
		`SELECT COUNT(*) FROM minigame_sessions WHERE user_id = ? AND game_kind = ? AND started_at >= ?`),
		userID, kind, formatTime(since),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot count plays: %w", err)
	}
	return n, nil
}

// CreateSession records a newly started session.
func (s *Store) CreateSession(ctx context.Context, rec SessionRecord) error {
	return s.insertSession(ctx, s.db, rec)
}

// CountPlaysSince counts sessions the user started for kind at or after since.
func (s *Store) CountPlaysSince(ctx context.Context, userID, kind string, since time.Time) (int, error) {
	return s.countPlays(ctx, s.db, userID, kind, since)
}

// CreateSessionWithinQuota records a new session only if the user started
// fewer than limit sessions of the same kind at or after since. The count and
// the insert run in one transaction that holds the user's wallet row lock.
// It returns the plays left after this one, or -1 when limit <= 0.
func (s *Store) CreateSessionWithinQuota(ctx context.Context, rec SessionRecord, since time.Time, limit int) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	remaining := -1
	if limit > 0 {
		_, err = tx.ExecContext(ctx, s.q(s.dialect.InsertIfMissing("wallets", "user_id", "balance", "updated_at")),
			rec.UserID, 0, formatTime(rec.StartedAt))
		if err != nil {
			return 0, fmt.Errorf("storage: cannot create wallet: %w", err)
		}
		var balance int64
		err = tx.QueryRowContext(ctx, s.q(`SELECT balance FROM wallets WHERE user_id = ?`+s.dialect.ForUpdate()),
			rec.UserID).Scan(&balance)
		if err != nil {
			return 0, fmt.Errorf("storage: cannot lock wallet: %w", err)
		}

		used, err := s.countPlays(ctx, tx, rec.UserID, rec.Kind, since)
		if err != nil {
			return 0, err
		}
		if used >= limit {
			return 0, ErrQuotaExhausted
		}
		remaining = limit - used - 1
	}

	if err := s.insertSession(ctx, tx, rec); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit: %w", err)
	}
	return remaining, nil
}

const sessionColumns = `id, user_id, game_kind, started_at, completed_at, score, money, time_spent`

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (SessionRecord, error) {
	var rec SessionRecord
	var started string
	var completed sql.NullString
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.Kind, &started, &completed,
		&rec.Score, &rec.Money, &rec.TimeSpent); err != nil {
		return SessionRecord{}, err
	}
	rec.StartedAt = parseTime(started)
	if completed.Valid {
		rec.CompletedAt = parseTime(completed.String)
	}
	return rec, nil
}

// Session retrieves a session by id.
func (s *Store) Session(ctx context.Context, id string) (SessionRecord, error) {
	row := s.db.QueryRowContext(ctx, s.q(
		`SELECT `+sessionColumns+` FROM minigame_sessions WHERE id = ?`), id)
	rec, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionRecord{}, ErrNotFound
	}
	if err != nil {
		return SessionRecord{}, fmt.Errorf("storage: cannot query session: %w", err)
	}
	return rec, nil
}

// CompleteSession writes a session's result and credits the user's wallet in
// one transaction. It returns the wallet balance after the credit.
// A session can be completed only once.
func (s *Store) CompleteSession(ctx context.Context, c Completion) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx, s.q(
		`UPDATE minigame_sessions
		 SET completed_at = ?, score = ?, money = ?, time_spent = ?
		 WHERE id = ? AND completed_at IS NULL`),
		formatTime(c.CompletedAt), c.Score, c.Money, c.TimeSpent, c.SessionID,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot complete session: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return 0, fmt.Errorf("storage: cannot complete session: %w", err)
	} else if n == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, s.q(`SELECT COUNT(*) FROM minigame_sessions WHERE id = ?`), c.SessionID).Scan(&exists)
		if err != nil {
			return 0, fmt.Errorf("storage: cannot complete session: %w", err)
		}
		if exists == 0 {
			return 0, ErrNotFound
		}
		return 0, ErrAlreadyCompleted
	}

	now := formatTime(c.CompletedAt)
	res, err = tx.ExecContext(ctx, s.q(
		`UPDATE wallets SET balance = balance + ?, updated_at = ? WHERE user_id = ?`),
		c.Money, now, c.UserID,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot credit wallet: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_, err = tx.ExecContext(ctx, s.q(
			`INSERT INTO wallets (user_id, balance, updated_at) VALUES (?, ?, ?)`),
			c.UserID, c.Money, now,
		)
		if err != nil {
			return 0, fmt.Errorf("storage: cannot create wallet: %w", err)
		}
	}

	var balance int64
	if err := tx.QueryRowContext(ctx, s.q(`SELECT balance FROM wallets WHERE user_id = ?`), c.UserID).Scan(&balance); err != nil {
		return 0, fmt.Errorf("storage: cannot read wallet: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit: %w", err)
	}
	return balance, nil
}

// Balance returns the user's wallet balance, 0 if the user has none.
func (s *Store) Balance(ctx context.Context, userID string) (int64, error) {
	var balance int64
	err := s.db.QueryRowContext(ctx, s.q(`SELECT balance FROM wallets WHERE user_id = ?`), userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query balance: %w", err)
	}
	return balance, nil
}

// TopScores retrieves the top N completed sessions for the given kind.
// Results are ordered by score descending, earlier results first on ties.
func (s *Store) TopScores(ctx context.Context, kind string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT id, user_id, game_kind, score, completed_at
		 FROM minigame_sessions
		 WHERE game_kind = ? AND completed_at IS NOT NULL
		 ORDER BY score DESC, completed_at ASC
		 LIMIT ?`),
		kind, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var completed string
		if err := rows.Scan(&e.SessionID, &e.UserID, &e.Kind, &e.Score, &completed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CompletedAt = parseTime(completed)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// History returns the user's most recent sessions, newest first.
func (s *Store) History(ctx context.Context, userID string, limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT `+sessionColumns+`
		 FROM minigame_sessions
		 WHERE user_id = ?
		 ORDER BY started_at DESC
		 LIMIT ?`),
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query history: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return records, nil
}

// Stats retrieves aggregated statistics over the completed sessions of kind.
func (s *Store) Stats(ctx context.Context, kind string) (GameStats, error) {
	stats := GameStats{Kind: kind}
	var last sql.NullString

	err := s.db.QueryRowContext(ctx, s.q(
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0), COALESCE(SUM(money), 0), MAX(completed_at)
		 FROM minigame_sessions
		 WHERE game_kind = ? AND completed_at IS NOT NULL`),
		kind,
	).Scan(&stats.GamesCount, &stats.HighScore, &stats.AvgScore, &stats.TotalMoney, &last)
	if err != nil {
		return GameStats{}, fmt.Errorf("storage: cannot get game stats: %w", err)
	}
	if last.Valid {
		stats.LastPlayed = parseTime(last.String)
	}

	return stats, nil
}
