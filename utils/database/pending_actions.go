package database

import (
	"encoding/json"
	"fmt"
	"time"

	"guardian-bot/model"

	"github.com/jmoiron/sqlx"
)

// AddPendingAction persists an action to execute at dueAt and returns the new
// row id. The action is serialized as a JSON blob.
func AddPendingAction(db *sqlx.DB, action model.Action, dueAt time.Time) (int64, error) {
	blob, err := json.Marshal(action)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize pending action: %w", err)
	}

	result, err := db.Exec(
		`INSERT INTO pending_actions (due_at, action_json) VALUES (?, ?)`,
		dueAt.UTC(), string(blob),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert pending action: %w", err)
	}
	return result.LastInsertId()
}

// GetDuePendingActions retrieves all pending actions with due_at <= now,
// oldest first.
func GetDuePendingActions(db *sqlx.DB, now time.Time) ([]model.PendingAction, error) {
	var rows []model.PendingAction
	err := db.Select(&rows,
		`SELECT * FROM pending_actions WHERE due_at <= ? ORDER BY due_at`, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to get due pending actions: %w", err)
	}
	return rows, nil
}

// DeletePendingAction removes a pending action row by id.
func DeletePendingAction(db *sqlx.DB, id int64) error {
	result, err := db.Exec(`DELETE FROM pending_actions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pending action %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for pending action %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no pending action found with id %d", id)
	}
	return nil
}

// DecodePendingAction deserializes the stored action blob.
func DecodePendingAction(row model.PendingAction) (model.Action, error) {
	var action model.Action
	if err := json.Unmarshal([]byte(row.ActionJSON), &action); err != nil {
		return model.Action{}, fmt.Errorf("failed to parse action blob for row %d: %w", row.ID, err)
	}
	return action, nil
}
