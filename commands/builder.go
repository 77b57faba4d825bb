package commands

import (
	"guardian-bot/commands/defs"
	"guardian-bot/model"

	"github.com/bwmarrin/discordgo"
)

// GenerateCommands builds the slash command set for one guild. Ladder
// commands are only offered where a ladder is configured.
func GenerateCommands(serverCfg *model.ServerConfig) []*discordgo.ApplicationCommand {
	cmds := []*discordgo.ApplicationCommand{
		defs.Mute,
		defs.Ban,
		defs.Kick,
		defs.History,
		defs.Status,
	}
	if len(serverCfg.Ladder) > 0 {
		cmds = append(cmds, defs.Escalate, defs.Deescalate)
	}
	return cmds
}
