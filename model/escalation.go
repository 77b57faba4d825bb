package model

import "time"

// EscalationEntry is one row of the append-only escalation history for a
// (guild, user) pair. ActionsTaken is stored as a JSON blob in the
// escalation_entries table.
type EscalationEntry struct {
	ID             int64  `db:"id"`
	GuildID        string `db:"guild_id"`
	UserID         string `db:"user_id"`
	AuthorizerID   string `db:"authorizer_id"`
	AuthorizerName string `db:"authorizer_name"`
	UserName       string `db:"user_name"`
	DisplayName    string `db:"display_name"`
	Timestamp      int64  `db:"timestamp"` // unix seconds
	ActionsJSON    string `db:"actions_json"`
	LevelDelta     int    `db:"level_delta"`
}

// Rung is one tier of a guild's escalation ladder. Action templates carry no
// targeting fields; those are filled in when the rung fires.
// DeescalationPeriod of 0 means the rung never auto-deescalates.
type Rung struct {
	DisplayName        string   `json:"display_name" mapstructure:"display_name"`
	Actions            []Action `json:"actions" mapstructure:"actions"`
	DeescalationPeriod int64    `json:"deescalation_period,omitempty" mapstructure:"deescalation_period"` // seconds
}

// Escalation is the result of applying a level delta: where the user landed
// and what was done to get there.
type Escalation struct {
	Level    int
	Entry    EscalationEntry
	Rung     *Rung
	NextRung *Rung
	Expiry   time.Time // zero when the landing rung has no deescalation period
}

// CurrentLevel folds the history's level deltas in order, clamping the
// running value to a floor of -1 after every step. -1 means the user is
// below the ladder and no rung is active.
func CurrentLevel(entries []EscalationEntry) int {
	level := -1
	for _, e := range entries {
		level += e.LevelDelta
		if level < -1 {
			level = -1
		}
	}
	return level
}
