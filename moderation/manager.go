package moderation

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"guardian-bot/model"
	"guardian-bot/utils"
	"guardian-bot/utils/database"

	"github.com/jmoiron/sqlx"
)

// AutoDeescalateReason is recorded on entries written by the deescalation
// scheduler.
const AutoDeescalateReason = "Automatic Deescalation"

// deescalateLabel is the display name recorded when a delta moves a user
// down the ladder instead of onto a named rung.
const deescalateLabel = "Deescalate"

// maxEscalateDepth bounds chained Escalate rung templates, so a ladder whose
// rungs escalate into each other cannot recurse forever.
const maxEscalateDepth = 10

// ConfigSource supplies per-guild ladder configuration and the moderation
// log channel. Implemented by *model.Config.
type ConfigSource interface {
	GuildLadder(guildID string) []model.Rung
	ModLogChannel(guildID string) string
}

// execMode controls whether the landing rung's actions run.
type execMode int

const (
	execAlways execMode = iota
	execNever
	// execIfOnLadder runs the rung's actions only when the landing level
	// still has a rung; dropping below the ladder just records the change.
	execIfOnLadder
)

// Manager applies escalation-level deltas: it resolves the target rung, runs
// or records its actions, appends a history entry, and maintains the
// automatic deescalation schedule. All mutations for one call share a single
// transaction, and calls for the same (guild, user) pair are serialized.
type Manager struct {
	db       *sqlx.DB
	executor *Executor
	discord  Discord
	cfg      ConfigSource
	locks    *utils.KeyedMutex
	now      func() time.Time
}

// NewManager creates an escalation manager and wires itself into the
// executor so Escalate actions can delegate back in.
func NewManager(db *sqlx.DB, executor *Executor, discord Discord, cfg ConfigSource) *Manager {
	m := &Manager{
		db:       db,
		executor: executor,
		discord:  discord,
		cfg:      cfg,
		locks:    utils.NewKeyedMutex(),
		now:      time.Now,
	}
	executor.SetEscalator(m)
	return m
}

// Escalate moves the user one level up the ladder and fires the landing
// rung's actions.
func (m *Manager) Escalate(guildID, userID string, auth Authorizer, reason string) (*model.Escalation, error) {
	return m.applyDelta(guildID, userID, auth, reason, 1, execAlways)
}

// Deescalate moves the user one level down. The landing rung's actions only
// re-fire when the user is still on the ladder afterwards; dropping to -1 is
// record-only.
func (m *Manager) Deescalate(guildID, userID string, auth Authorizer, reason string) (*model.Escalation, error) {
	return m.applyDelta(guildID, userID, auth, reason, -1, execIfOnLadder)
}

// Apply applies an arbitrary signed delta. Positive deltas always execute
// the landing rung; negative ones follow the Deescalate rule.
func (m *Manager) Apply(guildID, userID string, auth Authorizer, reason string, diff int) (*model.Escalation, error) {
	if diff >= 0 {
		return m.applyDelta(guildID, userID, auth, reason, diff, execAlways)
	}
	return m.applyDelta(guildID, userID, auth, reason, diff, execIfOnLadder)
}

// ApplyDelta is the fully explicit form: execute=false records the level
// change without running any rung action.
func (m *Manager) ApplyDelta(guildID, userID string, auth Authorizer, reason string, diff int, execute bool) (*model.Escalation, error) {
	mode := execNever
	if execute {
		mode = execAlways
	}
	return m.applyDelta(guildID, userID, auth, reason, diff, mode)
}

func (m *Manager) applyDelta(guildID, userID string, auth Authorizer, reason string, diff int, mode execMode) (*model.Escalation, error) {
	unlock := m.locks.Lock(guildID + "/" + userID)
	defer unlock()
	return m.applyDeltaLocked(guildID, userID, auth, reason, diff, mode, 0, 0)
}

// applyDeltaLocked does the work of applyDelta with the pair lock already
// held. carry is the sum of level deltas applied by enclosing frames of a
// chained escalation whose entries are not yet written; depth counts those
// frames.
func (m *Manager) applyDeltaLocked(guildID, userID string, auth Authorizer, reason string, diff int, mode execMode, carry, depth int) (*model.Escalation, error) {
	if depth > maxEscalateDepth {
		return nil, fmt.Errorf("escalation chain exceeds %d levels for user %s in guild %s", maxEscalateDepth, userID, guildID)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, ErrNoReason
	}
	ladder := m.cfg.GuildLadder(guildID)
	if len(ladder) == 0 {
		return nil, ErrNoLadder
	}

	entries, err := database.GetEscalationEntries(m.db, guildID, userID)
	if err != nil {
		return nil, err
	}
	newLevel := model.CurrentLevel(entries) + carry + diff
	if newLevel < -1 {
		newLevel = -1
	}
	rung := rungAt(ladder, newLevel)

	execute := mode == execAlways || (mode == execIfOnLadder && newLevel >= 0)

	var taken []model.Action
	chained := false
	if execute && rung != nil {
		for i, tmpl := range rung.Actions {
			action := tmpl.Instantiate(guildID, userID, reason)
			var actErr error
			if action.Kind == model.ActionEscalate {
				// run inline: going through the executor would re-enter
				// Apply and block on this pair's held lock
				chained = true
				actErr = m.runChainedEscalate(action, auth, carry+diff, depth+1)
			} else {
				actErr = m.executor.Execute(action)
			}
			if actErr != nil {
				// the first i actions already took effect; callers must
				// treat this as "state unknown", not "state unchanged"
				return nil, fmt.Errorf("rung %q action %d of %d failed: %w", rung.DisplayName, i+1, len(rung.Actions), actErr)
			}
			taken = append(taken, action)
		}
	} else {
		placeholder, err := model.NewEscalate(guildID, userID, reason, diff, 0)
		if err != nil {
			return nil, err
		}
		taken = []model.Action{placeholder}
	}

	displayName := deescalateLabel
	if diff >= 0 && rung != nil {
		displayName = rung.DisplayName
	}

	// a chained escalate appended its own entries, so the schedule and the
	// reported level must reflect where the user actually ended up
	landingLevel := newLevel
	landing := rung
	if chained {
		entries, err = database.GetEscalationEntries(m.db, guildID, userID)
		if err != nil {
			return nil, err
		}
		landingLevel = model.CurrentLevel(entries) + carry + diff
		if landingLevel < -1 {
			landingLevel = -1
		}
		landing = rungAt(ladder, landingLevel)
	}

	actionsJSON, err := json.Marshal(taken)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize actions taken: %w", err)
	}

	now := m.now()
	entry := model.EscalationEntry{
		GuildID:        guildID,
		UserID:         userID,
		AuthorizerID:   auth.ID,
		AuthorizerName: auth.Name,
		UserName:       m.memberName(guildID, userID),
		DisplayName:    displayName,
		Timestamp:      now.Unix(),
		ActionsJSON:    string(actionsJSON),
		LevelDelta:     diff,
	}

	var expiry time.Time
	tx, err := m.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin escalation transaction: %w", err)
	}
	entry.ID, err = database.AddEscalationEntry(tx, entry)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if landing != nil && landing.DeescalationPeriod > 0 {
		expiry = now.Add(time.Duration(landing.DeescalationPeriod) * time.Second)
		err = database.UpsertPendingDeescalation(tx, model.PendingDeescalation{
			GuildID: guildID,
			UserID:  userID,
			DueAt:   expiry,
			Amount:  -1,
			EntryID: entry.ID,
		})
	} else {
		// covers both dropping below the ladder and landing on a rung with
		// no period: a stale schedule from an earlier rung must not fire
		err = database.DeletePendingDeescalation(tx, guildID, userID)
	}
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit escalation for user %s in guild %s: %w", userID, guildID, err)
	}

	result := &model.Escalation{
		Level:  landingLevel,
		Entry:  entry,
		Rung:   landing,
		Expiry: expiry,
	}
	if landingLevel+1 <= len(ladder)-1 {
		result.NextRung = &ladder[landingLevel+1]
	}

	m.postModLog(guildID, auth, result, reason)

	return result, nil
}

// runChainedEscalate applies an Escalate rung template for the pair whose
// lock the caller already holds. A timed escalate schedules its inverse the
// same way the executor does for standalone ones.
func (m *Manager) runChainedEscalate(action model.Action, auth Authorizer, carry, depth int) error {
	if err := action.Validate(); err != nil {
		return err
	}
	mode := execAlways
	if action.Amount < 0 {
		mode = execIfOnLadder
	}
	if _, err := m.applyDeltaLocked(action.GuildID, action.UserID, auth, action.Reason, action.Amount, mode, carry, depth); err != nil {
		return err
	}
	if action.Duration > 0 {
		inverse, err := action.Invert()
		if err != nil {
			return fmt.Errorf("escalation applied but has no inverse to schedule: %w", err)
		}
		if _, err := database.AddPendingAction(m.db, inverse, action.Expiry(m.now())); err != nil {
			return fmt.Errorf("escalation applied but scheduling its reversal failed: %w", err)
		}
	}
	return nil
}

// rungAt resolves the rung for a level. Levels past the end of the ladder
// clamp to the last rung; below the ladder there is none.
func rungAt(ladder []model.Rung, level int) *model.Rung {
	if level < 0 {
		return nil
	}
	idx := level
	if idx > len(ladder)-1 {
		idx = len(ladder) - 1
	}
	return &ladder[idx]
}

// memberName fetches the user's display name for the history entry. Best
// effort: an unknown or departed member is recorded with an empty name.
func (m *Manager) memberName(guildID, userID string) string {
	member, err := m.discord.GuildMember(guildID, userID)
	if err != nil || member.User == nil {
		return ""
	}
	if member.Nick != "" {
		return member.Nick
	}
	return member.User.Username
}
