package handlers

import (
	"log"

	"guardian-bot/bot"
	"guardian-bot/handlers/moderate"
	"guardian-bot/utils"

	"github.com/bwmarrin/discordgo"
)

func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

// guarded wraps a handler with the guild admin-role check. Every moderation
// command requires it.
func guarded(b *bot.Bot, h func(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot)) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		serverConfig, ok := b.GetConfig().GuildConfig(i.GuildID)
		if !ok {
			log.Printf("Could not find server config for guild: %s", i.GuildID)
			return
		}
		if i.Member == nil || !utils.IsModerator(i.Member.Roles, serverConfig.AdminRoleIDs) {
			utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
			return
		}
		h(s, i, b)
	}
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"escalate":   guarded(b, moderate.HandleEscalate),
		"deescalate": guarded(b, moderate.HandleDeescalate),
		"mute":       guarded(b, moderate.HandleMute),
		"ban":        guarded(b, moderate.HandleBan),
		"kick":       guarded(b, moderate.HandleKick),
		"history":    guarded(b, moderate.HandleHistory),
		"status": guarded(b, func(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
			SystemInfoHandler(s, i, b)
		}),
	}
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
			h(s, i)
		}
	})
}
