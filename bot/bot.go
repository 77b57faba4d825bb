package bot

import (
	"log"
	"sync/atomic"

	"guardian-bot/commands"
	"guardian-bot/model"
	"guardian-bot/moderation"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

type Bot struct {
	Session            *discordgo.Session
	DB                 *sqlx.DB
	Executor           *moderation.Executor
	Manager            *moderation.Manager
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	RegisteredCommands []*discordgo.ApplicationCommand
	config             atomic.Value // *model.Config
	scheduler          *Scheduler
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func New(cfg *model.Config, db *sqlx.DB) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers | discordgo.IntentGuildModeration

	self := moderation.Authorizer{ID: cfg.AppID, Name: "Guardian"}
	executor := moderation.NewExecutor(dg, db, self)
	manager := moderation.NewManager(db, executor, dg, cfg)

	b := &Bot{
		Session:  dg,
		DB:       db,
		Executor: executor,
		Manager:  manager,
	}
	b.config.Store(cfg)
	b.scheduler = NewScheduler(db, executor, manager, self, cfg.LogWebhookURL)
	return b, nil
}

func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	b.scheduler.Stop()
	b.Session.Close()
}

// RefreshCommands re-registers the slash commands for one guild.
func (b *Bot) RefreshCommands(guildID string) {
	serverCfg, ok := b.GetConfig().GuildConfig(guildID)
	if !ok {
		log.Printf("Could not find server config for guild: %s", guildID)
		return
	}

	cmds := commands.GenerateCommands(&serverCfg)
	log.Printf("Registering %d commands for guild %s...", len(cmds), serverCfg.GuildID)
	registeredCmds, err := b.Session.ApplicationCommandBulkOverwrite(b.GetConfig().AppID, serverCfg.GuildID, cmds)
	if err != nil {
		log.Printf("cannot update commands for guild '%s': %v", serverCfg.GuildID, err)
		return
	}
	b.RegisteredCommands = append(b.RegisteredCommands, registeredCmds...)
}
