package model

import "time"

// PendingAction is a durable, time-triggered action awaiting execution.
// The scheduler deletes the row once the action succeeds or fails terminally.
type PendingAction struct {
	ID         int64     `db:"id"`
	DueAt      time.Time `db:"due_at"`
	ActionJSON string    `db:"action_json"`
}

// PendingDeescalation schedules an automatic one-level deescalation for a
// (guild, user) pair. At most one row exists per pair; re-escalating
// overwrites it.
type PendingDeescalation struct {
	GuildID string    `db:"guild_id"`
	UserID  string    `db:"user_id"`
	DueAt   time.Time `db:"due_at"`
	Amount  int       `db:"amount"` // always -1
	EntryID int64     `db:"entry_id"`
}
