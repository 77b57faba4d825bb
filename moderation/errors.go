package moderation

import (
	"errors"

	"github.com/bwmarrin/discordgo"
)

var (
	// ErrNoReason is returned when an escalation is requested without a reason.
	ErrNoReason = errors.New("a reason is required")
	// ErrNoLadder is returned when the guild has no escalation ladder configured.
	ErrNoLadder = errors.New("no escalation ladder configured for this guild")
)

// IsClientError reports whether err is a 4xx response from the Discord API:
// a failure attributable to the request itself (missing permission, unknown
// member, etc.) that retrying cannot fix. The scheduler drops pending work
// on these instead of retrying forever.
func IsClientError(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Response == nil {
		return false
	}
	code := restErr.Response.StatusCode
	return code >= 400 && code < 500
}
