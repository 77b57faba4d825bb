package defs

import "github.com/bwmarrin/discordgo"

var Status = &discordgo.ApplicationCommand{
	Name:        "status",
	Description: "Show bot and host status",
}
