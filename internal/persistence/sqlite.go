package persistence

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS support_tickets (
	ticket_id TEXT PRIMARY KEY,
	customer_name TEXT NOT NULL,
	description TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'Open',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS ticket_notes (
	id TEXT PRIMARY KEY,
	ticket_id TEXT NOT NULL REFERENCES support_tickets(ticket_id),
	author TEXT NOT NULL,
	body TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS ticket_action_flags (
	ticket_id TEXT NOT NULL REFERENCES support_tickets(ticket_id),
	flag TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (ticket_id, flag)
);

CREATE TABLE IF NOT EXISTS app_logs (
	ts DATETIME DEFAULT CURRENT_TIMESTAMP,
	level TEXT,
	component TEXT,
	event TEXT,
	details TEXT
);

CREATE INDEX IF NOT EXISTS idx_tickets_customer ON support_tickets(customer_name, status);
`

// NewSQLite opens (creating if needed) the embedded database and bootstraps the schema.
func NewSQLite(path string, logger *zap.Logger) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// WAL keeps concurrent readers cheap while one writer mutates a ticket.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("opened sqlite database", zap.String("path", path))
	return db, nil
}
