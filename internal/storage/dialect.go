package storage

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	_ "modernc.org/sqlite"             // Pure Go SQLite driver
)

// Dialect hides the differences between the supported SQL databases.
type Dialect interface {
	// Name is the configuration name ("sqlite", "postgres", "mysql").
	Name() string
	// DriverName returns the database/sql driver name.
	DriverName() string
	// RewriteQuery converts ? placeholders if the driver needs another syntax.
	RewriteQuery(query string) string
	// ConfigureConnection applies pool and session settings.
	ConfigureConnection(db *sql.DB) error
	// Schema returns the statements that create the tables, one per entry.
	Schema() []string
	// InsertIfMissing returns an INSERT that skips rows whose key already exists.
	InsertIfMissing(table string, columns ...string) string
	// ForUpdate is appended to a SELECT to lock the rows it reads.
	ForUpdate() string
}

// DialectFor returns the dialect for a configured driver name.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3", "":
		return sqliteDialect{}, nil
	case "postgres", "postgresql":
		return postgresDialect{}, nil
	case "mysql":
		return mysqlDialect{}, nil
	default:
		return nil, fmt.Errorf("storage: unsupported database driver %q", driver)
	}
}

var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, ...
func rewritePlaceholdersToNumbered(query string) string {
	n := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(string) string {
		n++
		return "$" + strconv.Itoa(n)
	})
}

func insertColumns(table string, columns []string) string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return table + " (" + strings.Join(columns, ", ") + ") VALUES (" + marks + ")"
}

func configurePool(db *sql.DB) {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(time.Minute)
}

// Timestamps are stored as fixed-width UTC text so that string order is time
// order on every backend.
const timeLayout = "2006-01-02T15:04:05.000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string                     { return "sqlite" }
func (sqliteDialect) DriverName() string               { return "sqlite" }
func (sqliteDialect) RewriteQuery(query string) string { return query }

func (sqliteDialect) InsertIfMissing(table string, columns ...string) string {
	return "INSERT OR IGNORE INTO " + insertColumns(table, columns)
}

// The single connection already serializes transactions.
func (sqliteDialect) ForUpdate() string { return "" }

func (sqliteDialect) ConfigureConnection(db *sql.DB) error {
	// a single writer avoids SQLITE_BUSY under concurrent HTTP handlers
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return err
	}
	_, err := db.Exec("PRAGMA busy_timeout=5000;")
	return err
}

func (sqliteDialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS minigame_sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			game_kind TEXT NOT NULL,
			started_at TEXT NOT NULL,
			completed_at TEXT,
			score INTEGER NOT NULL DEFAULT 0,
			money INTEGER NOT NULL DEFAULT 0,
			time_spent INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_quota ON minigame_sessions(user_id, game_kind, started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_top ON minigame_sessions(game_kind, score DESC)`,
		`CREATE TABLE IF NOT EXISTS wallets (
			user_id TEXT PRIMARY KEY,
			balance INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT NOT NULL
		)`,
	}
}

type postgresDialect struct{}

func (postgresDialect) Name() string       { return "postgres" }
func (postgresDialect) DriverName() string { return "postgres" }

func (postgresDialect) RewriteQuery(query string) string {
	return rewritePlaceholdersToNumbered(query)
}

func (postgresDialect) InsertIfMissing(table string, columns ...string) string {
	return "INSERT INTO " + insertColumns(table, columns) + " ON CONFLICT DO NOTHING"
}

func (postgresDialect) ForUpdate() string { return " FOR UPDATE" }

func (postgresDialect) ConfigureConnection(db *sql.DB) error {
	configurePool(db)
	return nil
}

func (postgresDialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS minigame_sessions (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(128) NOT NULL,
			game_kind VARCHAR(16) NOT NULL,
			started_at VARCHAR(32) NOT NULL,
			completed_at VARCHAR(32),
			score INTEGER NOT NULL DEFAULT 0,
			money INTEGER NOT NULL DEFAULT 0,
			time_spent INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_quota ON minigame_sessions(user_id, game_kind, started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_top ON minigame_sessions(game_kind, score DESC)`,
		`CREATE TABLE IF NOT EXISTS wallets (
			user_id VARCHAR(128) PRIMARY KEY,
			balance BIGINT NOT NULL DEFAULT 0,
			updated_at VARCHAR(32) NOT NULL
		)`,
	}
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string                     { return "mysql" }
func (mysqlDialect) DriverName() string               { return "mysql" }
func (mysqlDialect) RewriteQuery(query string) string { return query }

// INSERT IGNORE would take a shared lock on the duplicate row; the no-op
// update takes the exclusive lock a following FOR UPDATE needs anyway.
func (mysqlDialect) InsertIfMissing(table string, columns ...string) string {
	return "INSERT INTO " + insertColumns(table, columns) +
		" ON DUPLICATE KEY UPDATE " + columns[0] + " = " + columns[0]
}

func (mysqlDialect) ForUpdate() string { return " FOR UPDATE" }

func (mysqlDialect) ConfigureConnection(db *sql.DB) error {
	configurePool(db)
	return nil
}

// MySQL has no CREATE INDEX IF NOT EXISTS, so indexes live in the table body.
func (mysqlDialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS minigame_sessions (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(128) NOT NULL,
			game_kind VARCHAR(16) NOT NULL,
			started_at VARCHAR(32) NOT NULL,
			completed_at VARCHAR(32),
			score INT NOT NULL DEFAULT 0,
			money INT NOT NULL DEFAULT 0,
			time_spent INT NOT NULL DEFAULT 0,
			INDEX idx_sessions_quota (user_id, game_kind, started_at),
			INDEX idx_sessions_top (game_kind, score)
		)`,
		`CREATE TABLE IF NOT EXISTS wallets (
			user_id VARCHAR(128) PRIMARY KEY,
			balance BIGINT NOT NULL DEFAULT 0,
			updated_at VARCHAR(32) NOT NULL
		)`,
	}
}
