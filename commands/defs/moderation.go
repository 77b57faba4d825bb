package defs

import "github.com/bwmarrin/discordgo"

var Escalate = &discordgo.ApplicationCommand{
	Name:        "escalate",
	Description: "Move a user one level up the escalation ladder",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "User to escalate",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Reason for the escalation",
			Required:    true,
		},
	},
}

var Deescalate = &discordgo.ApplicationCommand{
	Name:        "deescalate",
	Description: "Move a user one level down the escalation ladder",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "User to deescalate",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Reason for the deescalation",
			Required:    true,
		},
	},
}

var Mute = &discordgo.ApplicationCommand{
	Name:        "mute",
	Description: "Server-mute a user, optionally for a limited time",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "User to mute",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Reason for the mute",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "duration",
			Description: "Auto-unmute after this long (e.g. 30m, 12h, 7d)",
			Required:    false,
		},
	},
}

var Ban = &discordgo.ApplicationCommand{
	Name:        "ban",
	Description: "Ban a user, optionally for a limited time",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "User to ban",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Reason for the ban",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "duration",
			Description: "Auto-unban after this long (e.g. 12h, 7d)",
			Required:    false,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "purge_days",
			Description: "Delete the user's messages from the last N days (0-7)",
			Required:    false,
		},
	},
}

var Kick = &discordgo.ApplicationCommand{
	Name:        "kick",
	Description: "Kick a user from the server",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "User to kick",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Reason for the kick",
			Required:    true,
		},
	},
}

var History = &discordgo.ApplicationCommand{
	Name:        "history",
	Description: "Show a user's escalation history and current level",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "User to look up",
			Required:    true,
		},
	},
}
