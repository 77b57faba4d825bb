package database

import (
	"fmt"

	"guardian-bot/model"

	"github.com/jmoiron/sqlx"
)

// AddEscalationEntry inserts a history entry inside the given transaction and
// returns the new entry's id.
func AddEscalationEntry(tx *sqlx.Tx, entry model.EscalationEntry) (int64, error) {
	query := `INSERT INTO escalation_entries
		(guild_id, user_id, authorizer_id, authorizer_name, user_name, display_name, timestamp, actions_json, level_delta)
		VALUES (:guild_id, :user_id, :authorizer_id, :authorizer_name, :user_name, :display_name, :timestamp, :actions_json, :level_delta)`

	result, err := tx.NamedExec(query, entry)
	if err != nil {
		return 0, fmt.Errorf("failed to insert escalation entry: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get escalation entry id: %w", err)
	}
	return id, nil
}

// GetEscalationEntries retrieves the full history for a (guild, user) pair in
// timestamp order.
func GetEscalationEntries(db *sqlx.DB, guildID, userID string) ([]model.EscalationEntry, error) {
	var entries []model.EscalationEntry
	err := db.Select(&entries,
		`SELECT * FROM escalation_entries WHERE guild_id = ? AND user_id = ? ORDER BY timestamp, id`,
		guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get escalation entries for user %s in guild %s: %w", userID, guildID, err)
	}
	return entries, nil
}
