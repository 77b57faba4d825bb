package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// CountPendingActions returns the total number of queued pending actions.
func CountPendingActions(db *sqlx.DB) (int, error) {
	var count int
	if err := db.Get(&count, `SELECT COUNT(*) FROM pending_actions`); err != nil {
		return 0, fmt.Errorf("failed to count pending actions: %w", err)
	}
	return count, nil
}

// CountPendingDeescalations returns the number of scheduled deescalations.
func CountPendingDeescalations(db *sqlx.DB) (int, error) {
	var count int
	if err := db.Get(&count, `SELECT COUNT(*) FROM pending_deescalations`); err != nil {
		return 0, fmt.Errorf("failed to count pending deescalations: %w", err)
	}
	return count, nil
}
