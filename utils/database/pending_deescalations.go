package database

import (
	"fmt"
	"time"

	"guardian-bot/model"

	"github.com/jmoiron/sqlx"
)

// UpsertPendingDeescalation inserts or replaces the automatic deescalation
// schedule for a (guild, user) pair. A pair has at most one row; landing on a
// new rung overwrites the previous due time.
func UpsertPendingDeescalation(tx *sqlx.Tx, row model.PendingDeescalation) error {
	query := `INSERT INTO pending_deescalations (guild_id, user_id, due_at, amount, entry_id)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (guild_id, user_id) DO UPDATE SET
			due_at = excluded.due_at,
			amount = excluded.amount,
			entry_id = excluded.entry_id`

	_, err := tx.Exec(query, row.GuildID, row.UserID, row.DueAt.UTC(), row.Amount, row.EntryID)
	if err != nil {
		return fmt.Errorf("failed to upsert pending deescalation for user %s in guild %s: %w", row.UserID, row.GuildID, err)
	}
	return nil
}

// DeletePendingDeescalation removes the schedule for a (guild, user) pair.
// Deleting a pair with no row is not an error.
func DeletePendingDeescalation(tx *sqlx.Tx, guildID, userID string) error {
	_, err := tx.Exec(`DELETE FROM pending_deescalations WHERE guild_id = ? AND user_id = ?`, guildID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete pending deescalation for user %s in guild %s: %w", userID, guildID, err)
	}
	return nil
}

// GetDuePendingDeescalations retrieves all deescalations with due_at <= now.
func GetDuePendingDeescalations(db *sqlx.DB, now time.Time) ([]model.PendingDeescalation, error) {
	var rows []model.PendingDeescalation
	err := db.Select(&rows,
		`SELECT * FROM pending_deescalations WHERE due_at <= ? ORDER BY due_at`, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to get due pending deescalations: %w", err)
	}
	return rows, nil
}

// GetPendingDeescalation returns the schedule for one pair, or nil when none
// exists.
func GetPendingDeescalation(db *sqlx.DB, guildID, userID string) (*model.PendingDeescalation, error) {
	var rows []model.PendingDeescalation
	err := db.Select(&rows,
		`SELECT * FROM pending_deescalations WHERE guild_id = ? AND user_id = ?`, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending deescalation for user %s in guild %s: %w", userID, guildID, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
