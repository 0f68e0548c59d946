// Package store persists users, alerts, portfolio state and trade signals
// in a single SQLite database. The store enforces referential ownership
// (deletes must match both id and owner) but no business rules; quota
// decisions live in the policy package.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/mohamedkhairy/pricepulse/internal/config"
	"github.com/mohamedkhairy/pricepulse/pkg/logger"
)

// Store wraps the SQLite database with typed CRUD operations
type Store struct {
	db *sqlx.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id     INTEGER PRIMARY KEY,
	plan        TEXT NOT NULL DEFAULT 'free',
	alerts_used INTEGER NOT NULL DEFAULT 0,
	last_reset  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS alerts (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id      INTEGER NOT NULL,
	symbol       TEXT NOT NULL,
	condition    TEXT NOT NULL,
	target_price REAL NOT NULL,
	repeat       INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS percent_alerts (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id           INTEGER NOT NULL,
	symbol            TEXT NOT NULL,
	base_price        REAL NOT NULL,
	threshold_percent REAL NOT NULL,
	repeat            INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS volume_alerts (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    INTEGER NOT NULL,
	symbol     TEXT NOT NULL,
	multiplier REAL NOT NULL,
	repeat     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS risk_alerts (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    INTEGER NOT NULL,
	symbol     TEXT NOT NULL,
	stop_price REAL NOT NULL,
	take_price REAL NOT NULL,
	repeat     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS custom_alerts (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id             INTEGER NOT NULL,
	symbol              TEXT NOT NULL,
	price_condition     TEXT NOT NULL,
	price_value         REAL NOT NULL,
	indicator_condition TEXT NOT NULL,
	indicator_value     REAL NOT NULL DEFAULT 0,
	repeat              INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS portfolio (
	user_id  INTEGER NOT NULL,
	symbol   TEXT NOT NULL,
	quantity REAL NOT NULL,
	PRIMARY KEY (user_id, symbol)
);

CREATE TABLE IF NOT EXISTS portfolio_limits (
	user_id       INTEGER PRIMARY KEY,
	loss_limit    REAL,
	profit_target REAL
);

CREATE TABLE IF NOT EXISTS trade_signals (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id     INTEGER NOT NULL,
	symbol      TEXT NOT NULL,
	direction   TEXT NOT NULL,
	entry_price REAL NOT NULL,
	stop_loss   REAL,
	take_profit REAL,
	created_at  TIMESTAMP NOT NULL,
	approved    INTEGER NOT NULL DEFAULT 0
);
`

// Open opens (or creates) the SQLite database and applies the schema
func Open(cfg config.DatabaseConfig) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL",
		cfg.Path, cfg.BusyTimeout.Milliseconds())

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite handles one writer at a time; a small pool avoids lock churn
	db.SetMaxOpenConns(cfg.MaxOpenConns)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Info("SQLite store initialized",
		logger.String("path", cfg.Path),
	)

	return &Store{db: db}, nil
}

// OpenMemory opens an in-memory store, used by tests
func OpenMemory() (*Store, error) {
	return Open(config.DatabaseConfig{
		Path:         ":memory:",
		BusyTimeout:  time.Second,
		MaxOpenConns: 1,
	})
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// resetSequence clears the AUTOINCREMENT counter for a table when it has
// become empty. Cosmetic only: keeps alert ids small in user-facing lists.
func (s *Store) resetSequence(ctx context.Context, table string) {
	var count int
	if err := s.db.GetContext(ctx, &count, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)); err != nil {
		return
	}
	if count == 0 {
		_, _ = s.db.ExecContext(ctx, "DELETE FROM sqlite_sequence WHERE name = ?", table)
	}
}
