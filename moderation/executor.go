package moderation

import (
	"fmt"
	"time"

	"guardian-bot/model"
	"guardian-bot/utils/database"

	"github.com/jmoiron/sqlx"
)

// Authorizer identifies who ordered a moderation action.
type Authorizer struct {
	ID   string
	Name string
}

// Escalator is the slice of the escalation manager the executor needs to
// run Escalate actions. Wired after construction to break the cycle between
// the two.
type Escalator interface {
	Apply(guildID, userID string, auth Authorizer, reason string, diff int) (*model.Escalation, error)
}

// Executor applies one moderation action's side effect through the Discord
// API. For actions carrying a duration it persists the inverse as a pending
// action due after that duration.
type Executor struct {
	discord   Discord
	db        *sqlx.DB
	self      Authorizer
	escalator Escalator
	now       func() time.Time
}

// NewExecutor creates an executor. self is the bot's own identity, used as
// the authorizer when an Escalate action delegates into the ladder.
func NewExecutor(discord Discord, db *sqlx.DB, self Authorizer) *Executor {
	return &Executor{
		discord: discord,
		db:      db,
		self:    self,
		now:     time.Now,
	}
}

// SetEscalator wires in the escalation manager. Must be called before any
// Escalate action is executed.
func (e *Executor) SetEscalator(esc Escalator) {
	e.escalator = esc
}

// Execute applies the action's side effect exactly once. If the action
// carries a duration, the inverse is persisted afterwards; a failure there is
// surfaced but the already-applied effect is not rolled back.
func (e *Executor) Execute(action model.Action) error {
	if err := action.Validate(); err != nil {
		return err
	}
	if err := e.apply(action); err != nil {
		return err
	}
	if action.Duration > 0 {
		inverse, err := action.Invert()
		if err != nil {
			return fmt.Errorf("action applied but has no inverse to schedule: %w", err)
		}
		if _, err := database.AddPendingAction(e.db, inverse, action.Expiry(e.now())); err != nil {
			return fmt.Errorf("action applied but scheduling its reversal failed: %w", err)
		}
	}
	return nil
}

func (e *Executor) apply(action model.Action) error {
	switch action.Kind {
	case model.ActionKick:
		return e.discord.GuildMemberDeleteWithReason(action.GuildID, action.UserID, action.Reason)
	case model.ActionBan:
		return e.applyBan(action)
	case model.ActionMute:
		mute, err := e.resolveFlag(action, func(m memberFlags) bool { return m.mute })
		if err != nil {
			return err
		}
		return e.discord.GuildMemberMute(action.GuildID, action.UserID, mute)
	case model.ActionDeafen:
		deaf, err := e.resolveFlag(action, func(m memberFlags) bool { return m.deaf })
		if err != nil {
			return err
		}
		return e.discord.GuildMemberDeafen(action.GuildID, action.UserID, deaf)
	case model.ActionChangeRole:
		return e.applyRoles(action)
	case model.ActionEscalate:
		if e.escalator == nil {
			return fmt.Errorf("escalate action for user %s but no escalation manager wired", action.UserID)
		}
		_, err := e.escalator.Apply(action.GuildID, action.UserID, e.self, action.Reason, action.Amount)
		return err
	case model.ActionDirectMessage:
		channel, err := e.discord.UserChannelCreate(action.UserID)
		if err != nil {
			return fmt.Errorf("failed to open DM channel with user %s: %w", action.UserID, err)
		}
		_, err = e.discord.ChannelMessageSend(channel.ID, action.Content)
		return err
	case model.ActionSendMessage:
		_, err := e.discord.ChannelMessageSend(action.ChannelID, action.Content)
		return err
	case model.ActionDeleteMessages:
		if len(action.MessageIDs) == 1 {
			return e.discord.ChannelMessageDelete(action.ChannelID, action.MessageIDs[0])
		}
		return e.discord.ChannelMessagesBulkDelete(action.ChannelID, action.MessageIDs)
	default:
		return fmt.Errorf("unknown action kind %q", action.Kind)
	}
}

func (e *Executor) applyBan(action model.Action) error {
	switch action.BanMode {
	case model.BanModeBan:
		return e.discord.GuildBanCreateWithReason(action.GuildID, action.UserID, action.Reason, action.DeleteMessageDays)
	case model.BanModeUnban:
		return e.discord.GuildBanDelete(action.GuildID, action.UserID)
	case model.BanModeSoftban:
		// ban to purge recent messages, then lift it immediately
		if err := e.discord.GuildBanCreateWithReason(action.GuildID, action.UserID, action.Reason, action.DeleteMessageDays); err != nil {
			return err
		}
		return e.discord.GuildBanDelete(action.GuildID, action.UserID)
	default:
		return fmt.Errorf("unknown ban mode %q", action.BanMode)
	}
}

type memberFlags struct {
	mute bool
	deaf bool
}

// resolveFlag turns the action's status into the boolean to send. Toggle
// needs the member's current state from the API first.
func (e *Executor) resolveFlag(action model.Action, current func(memberFlags) bool) (bool, error) {
	switch action.Status {
	case model.StatusApply:
		return true, nil
	case model.StatusUnapply:
		return false, nil
	case model.StatusToggle:
		member, err := e.discord.GuildMember(action.GuildID, action.UserID)
		if err != nil {
			return false, fmt.Errorf("failed to read member state for toggle: %w", err)
		}
		return !current(memberFlags{mute: member.Mute, deaf: member.Deaf}), nil
	default:
		return false, fmt.Errorf("unknown status %q", action.Status)
	}
}

func (e *Executor) applyRoles(action model.Action) error {
	switch action.Status {
	case model.StatusApply:
		for _, roleID := range action.RoleIDs {
			if err := e.discord.GuildMemberRoleAdd(action.GuildID, action.UserID, roleID); err != nil {
				return fmt.Errorf("failed to add role %s to user %s: %w", roleID, action.UserID, err)
			}
		}
		return nil
	case model.StatusUnapply:
		for _, roleID := range action.RoleIDs {
			if err := e.discord.GuildMemberRoleRemove(action.GuildID, action.UserID, roleID); err != nil {
				return fmt.Errorf("failed to remove role %s from user %s: %w", roleID, action.UserID, err)
			}
		}
		return nil
	case model.StatusToggle:
		member, err := e.discord.GuildMember(action.GuildID, action.UserID)
		if err != nil {
			return fmt.Errorf("failed to read member roles for toggle: %w", err)
		}
		held := make(map[string]bool, len(member.Roles))
		for _, roleID := range member.Roles {
			held[roleID] = true
		}
		for _, roleID := range action.RoleIDs {
			if held[roleID] {
				err = e.discord.GuildMemberRoleRemove(action.GuildID, action.UserID, roleID)
			} else {
				err = e.discord.GuildMemberRoleAdd(action.GuildID, action.UserID, roleID)
			}
			if err != nil {
				return fmt.Errorf("failed to toggle role %s for user %s: %w", roleID, action.UserID, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown status %q", action.Status)
	}
}
