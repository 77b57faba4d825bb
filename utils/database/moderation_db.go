package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Init opens the moderation database and ensures all tables exist.
func Init(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to moderation database: %w", err)
	}

	schemas := []string{
		`CREATE TABLE IF NOT EXISTS pending_actions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			due_at DATETIME NOT NULL,
			action_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS escalation_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			guild_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			authorizer_id TEXT NOT NULL,
			authorizer_name TEXT NOT NULL,
			user_name TEXT NOT NULL DEFAULT '',
			display_name TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			actions_json TEXT NOT NULL DEFAULT '[]',
			level_delta INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_escalation_entries_pair
			ON escalation_entries (guild_id, user_id, timestamp);`,
		`CREATE TABLE IF NOT EXISTS pending_deescalations (
			guild_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			due_at DATETIME NOT NULL,
			amount INTEGER NOT NULL DEFAULT -1,
			entry_id INTEGER NOT NULL,
			PRIMARY KEY (guild_id, user_id)
		);`,
	}

	for _, schema := range schemas {
		if _, err := db.Exec(schema); err != nil {
			return nil, fmt.Errorf("failed to create moderation tables: %w", err)
		}
	}

	// sqlite allows one writer; a single pooled connection avoids
	// SQLITE_BUSY under the scheduler's concurrent workers
	db.SetMaxOpenConns(1)

	return db, nil
}
