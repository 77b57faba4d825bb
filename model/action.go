package model

import (
	"errors"
	"fmt"
	"time"
)

// ActionKind identifies the moderation command an Action carries.
type ActionKind string

const (
	ActionKick           ActionKind = "kick"
	ActionBan            ActionKind = "ban"
	ActionMute           ActionKind = "mute"
	ActionDeafen         ActionKind = "deafen"
	ActionChangeRole     ActionKind = "change_role"
	ActionEscalate       ActionKind = "escalate"
	ActionDirectMessage  ActionKind = "direct_message"
	ActionSendMessage    ActionKind = "send_message"
	ActionDeleteMessages ActionKind = "delete_messages"
)

// BanMode selects the ban variant for ActionBan.
type BanMode string

const (
	BanModeBan     BanMode = "ban"
	BanModeUnban   BanMode = "unban"
	BanModeSoftban BanMode = "softban"
)

// ToggleStatus controls how a state-flag action (mute, deafen, role) is applied.
type ToggleStatus string

const (
	StatusApply   ToggleStatus = "apply"
	StatusUnapply ToggleStatus = "unapply"
	StatusToggle  ToggleStatus = "toggle"
)

var (
	// ErrIllegalDuration is returned when a duration is set on an action kind
	// that has no inverse to schedule.
	ErrIllegalDuration = errors.New("duration is not allowed for this action kind")
	// ErrNoInverse is returned by Invert for action kinds that cannot be reversed.
	ErrNoInverse = errors.New("action kind has no inverse")
	// ErrMissingTarget is returned when guild or user targeting is absent.
	ErrMissingTarget = errors.New("action requires guild_id and user_id")
)

// Action is an immutable moderation command. The Kind field selects which of
// the payload fields are meaningful; unused ones stay at their zero value so
// the whole value serializes to a compact JSON blob for the pending_actions
// table.
type Action struct {
	GuildID  string     `json:"guild_id" mapstructure:"guild_id"`
	UserID   string     `json:"user_id" mapstructure:"user_id"`
	Reason   string     `json:"reason,omitempty" mapstructure:"reason"`
	Duration int64      `json:"duration,omitempty" mapstructure:"duration"` // seconds; 0 means no auto-reversal
	Kind     ActionKind `json:"kind" mapstructure:"kind"`

	BanMode           BanMode      `json:"ban_mode,omitempty" mapstructure:"ban_mode"`
	DeleteMessageDays int          `json:"delete_message_days,omitempty" mapstructure:"delete_message_days"`
	Status            ToggleStatus `json:"status,omitempty" mapstructure:"status"`
	RoleIDs           []string     `json:"role_ids,omitempty" mapstructure:"role_ids"`
	Amount            int          `json:"amount,omitempty" mapstructure:"amount"`
	ChannelID         string       `json:"channel_id,omitempty" mapstructure:"channel_id"`
	Content           string       `json:"content,omitempty" mapstructure:"content"`
	MessageIDs        []string     `json:"message_ids,omitempty" mapstructure:"message_ids"`
}

// Validate checks the invariants every stored or executed Action must hold.
// A duration is only legal on kinds that define an inverse, and a softban can
// never carry one because it has no inverse at all.
func (a Action) Validate() error {
	if a.GuildID == "" || a.UserID == "" {
		return ErrMissingTarget
	}
	if a.Duration < 0 {
		return fmt.Errorf("%w: negative duration %d", ErrIllegalDuration, a.Duration)
	}
	if a.Duration == 0 {
		return nil
	}
	switch a.Kind {
	case ActionBan:
		if a.BanMode == BanModeSoftban {
			return fmt.Errorf("%w: softban", ErrIllegalDuration)
		}
		return nil
	case ActionMute, ActionDeafen, ActionChangeRole, ActionEscalate:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrIllegalDuration, a.Kind)
	}
}

// Expiry returns the absolute time the action's inverse becomes due, relative
// to now. Only meaningful when Duration is set.
func (a Action) Expiry(now time.Time) time.Time {
	return now.Add(time.Duration(a.Duration) * time.Second)
}

// Invert computes the compensating action that undoes this one. The inverse
// keeps the targeting fields and reason but never carries a duration, so a
// reversal cannot schedule another reversal.
//
// Toggle inverts to Toggle; that only restores the original state when the
// action took effect a net-odd number of times, which holds for the scheduled
// apply-then-reverse pairs this is used for.
func (a Action) Invert() (Action, error) {
	inv := a
	inv.Duration = 0
	switch a.Kind {
	case ActionBan:
		switch a.BanMode {
		case BanModeBan:
			inv.BanMode = BanModeUnban
			inv.DeleteMessageDays = 0
		case BanModeUnban:
			inv.BanMode = BanModeBan
		default:
			return Action{}, fmt.Errorf("%w: softban", ErrNoInverse)
		}
	case ActionMute, ActionDeafen, ActionChangeRole:
		switch a.Status {
		case StatusApply:
			inv.Status = StatusUnapply
		case StatusUnapply:
			inv.Status = StatusApply
		case StatusToggle:
			// stays Toggle
		default:
			return Action{}, fmt.Errorf("%w: %s with status %q", ErrNoInverse, a.Kind, a.Status)
		}
	case ActionEscalate:
		inv.Amount = -a.Amount
	default:
		return Action{}, fmt.Errorf("%w: %s", ErrNoInverse, a.Kind)
	}
	return inv, nil
}

// NewKick builds an immediate kick action.
func NewKick(guildID, userID, reason string) (Action, error) {
	a := Action{GuildID: guildID, UserID: userID, Reason: reason, Kind: ActionKick}
	return a, a.Validate()
}

// NewBan builds a ban action. duration (seconds) is only legal for
// BanModeBan and BanModeUnban; deleteMessageDays bounds the purge window.
func NewBan(guildID, userID, reason string, mode BanMode, deleteMessageDays int, duration int64) (Action, error) {
	a := Action{
		GuildID: guildID, UserID: userID, Reason: reason,
		Kind: ActionBan, BanMode: mode, DeleteMessageDays: deleteMessageDays,
		Duration: duration,
	}
	return a, a.Validate()
}

// NewMute builds a server-mute action.
func NewMute(guildID, userID, reason string, status ToggleStatus, duration int64) (Action, error) {
	a := Action{GuildID: guildID, UserID: userID, Reason: reason, Kind: ActionMute, Status: status, Duration: duration}
	return a, a.Validate()
}

// NewDeafen builds a server-deafen action.
func NewDeafen(guildID, userID, reason string, status ToggleStatus, duration int64) (Action, error) {
	a := Action{GuildID: guildID, UserID: userID, Reason: reason, Kind: ActionDeafen, Status: status, Duration: duration}
	return a, a.Validate()
}

// NewChangeRole builds a role add/remove/toggle action over roleIDs.
func NewChangeRole(guildID, userID, reason string, status ToggleStatus, roleIDs []string, duration int64) (Action, error) {
	a := Action{
		GuildID: guildID, UserID: userID, Reason: reason,
		Kind: ActionChangeRole, Status: status, RoleIDs: roleIDs, Duration: duration,
	}
	return a, a.Validate()
}

// NewEscalate builds an escalation-level delta action.
func NewEscalate(guildID, userID, reason string, amount int, duration int64) (Action, error) {
	a := Action{GuildID: guildID, UserID: userID, Reason: reason, Kind: ActionEscalate, Amount: amount, Duration: duration}
	return a, a.Validate()
}

// NewDirectMessage builds a one-shot DM notification.
func NewDirectMessage(guildID, userID, content string) (Action, error) {
	a := Action{GuildID: guildID, UserID: userID, Kind: ActionDirectMessage, Content: content}
	return a, a.Validate()
}

// NewSendMessage builds a one-shot channel message.
func NewSendMessage(guildID, userID, channelID, content string) (Action, error) {
	a := Action{GuildID: guildID, UserID: userID, Kind: ActionSendMessage, ChannelID: channelID, Content: content}
	return a, a.Validate()
}

// NewDeleteMessages builds a bulk message deletion.
func NewDeleteMessages(guildID, userID, channelID string, messageIDs []string) (Action, error) {
	a := Action{GuildID: guildID, UserID: userID, Kind: ActionDeleteMessages, ChannelID: channelID, MessageIDs: messageIDs}
	return a, a.Validate()
}

// Instantiate fills a ladder action template with its runtime targeting
// fields. Templates in guild config carry only the kind payload.
func (a Action) Instantiate(guildID, userID, reason string) Action {
	a.GuildID = guildID
	a.UserID = userID
	a.Reason = reason
	return a
}
