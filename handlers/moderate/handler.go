package moderate

import (
	"errors"
	"fmt"
	"log"
	"time"

	"guardian-bot/bot"
	"guardian-bot/model"
	"guardian-bot/moderation"
	"guardian-bot/utils"

	"github.com/bwmarrin/discordgo"
)

type commandOptions struct {
	TargetUser *discordgo.User
	Reason     string
	Duration   time.Duration
	PurgeDays  int
}

func parseOptions(s *discordgo.Session, i *discordgo.InteractionCreate) (commandOptions, error) {
	var opts commandOptions
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "user":
			opts.TargetUser = opt.UserValue(s)
		case "reason":
			opts.Reason = opt.StringValue()
		case "duration":
			d, err := utils.ParseDuration(opt.StringValue())
			if err != nil {
				return opts, fmt.Errorf("invalid duration %q", opt.StringValue())
			}
			opts.Duration = d
		case "purge_days":
			opts.PurgeDays = int(opt.IntValue())
		}
	}
	if opts.TargetUser == nil {
		return opts, errors.New("missing target user")
	}
	return opts, nil
}

func authorizer(i *discordgo.InteractionCreate) moderation.Authorizer {
	if i.Member == nil || i.Member.User == nil {
		return moderation.Authorizer{}
	}
	return moderation.Authorizer{ID: i.Member.User.ID, Name: i.Member.User.Username}
}

// escalationErrorMessage maps manager errors to operator-facing text.
func escalationErrorMessage(err error) string {
	switch {
	case errors.Is(err, moderation.ErrNoReason):
		return "A reason is required."
	case errors.Is(err, moderation.ErrNoLadder):
		return "This server has no escalation ladder configured."
	default:
		return fmt.Sprintf("Escalation failed, user state may be partially changed: %v", err)
	}
}

func HandleEscalate(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}
	opts, err := parseOptions(s, i)
	if err != nil {
		utils.SendFollowUpError(s, i.Interaction, err.Error())
		return
	}

	esc, err := b.Manager.Escalate(i.GuildID, opts.TargetUser.ID, authorizer(i), opts.Reason)
	if err != nil {
		log.Printf("Escalation of user %s in guild %s failed: %v", opts.TargetUser.ID, i.GuildID, err)
		utils.SendFollowUpError(s, i.Interaction, escalationErrorMessage(err))
		return
	}
	utils.SendFollowUpEmbed(s, i.Interaction, escalationEmbed(opts.TargetUser, esc))
}

func HandleDeescalate(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}
	opts, err := parseOptions(s, i)
	if err != nil {
		utils.SendFollowUpError(s, i.Interaction, err.Error())
		return
	}

	esc, err := b.Manager.Deescalate(i.GuildID, opts.TargetUser.ID, authorizer(i), opts.Reason)
	if err != nil {
		log.Printf("Deescalation of user %s in guild %s failed: %v", opts.TargetUser.ID, i.GuildID, err)
		utils.SendFollowUpError(s, i.Interaction, escalationErrorMessage(err))
		return
	}
	utils.SendFollowUpEmbed(s, i.Interaction, escalationEmbed(opts.TargetUser, esc))
}

func HandleMute(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	runDirect(s, i, b, func(opts commandOptions) (model.Action, error) {
		return model.NewMute(i.GuildID, opts.TargetUser.ID, opts.Reason, model.StatusApply, int64(opts.Duration.Seconds()))
	}, "Muted")
}

func HandleBan(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	runDirect(s, i, b, func(opts commandOptions) (model.Action, error) {
		return model.NewBan(i.GuildID, opts.TargetUser.ID, opts.Reason, model.BanModeBan, opts.PurgeDays, int64(opts.Duration.Seconds()))
	}, "Banned")
}

func HandleKick(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	runDirect(s, i, b, func(opts commandOptions) (model.Action, error) {
		return model.NewKick(i.GuildID, opts.TargetUser.ID, opts.Reason)
	}, "Kicked")
}

// runDirect is the shared path for commands that execute a single action
// outside the ladder: build, execute, report.
func runDirect(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, build func(commandOptions) (model.Action, error), verb string) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}
	opts, err := parseOptions(s, i)
	if err != nil {
		utils.SendFollowUpError(s, i.Interaction, err.Error())
		return
	}

	action, err := build(opts)
	if err != nil {
		utils.SendFollowUpError(s, i.Interaction, fmt.Sprintf("Invalid action: %v", err))
		return
	}
	if err := b.Executor.Execute(action); err != nil {
		log.Printf("%s action for user %s in guild %s failed: %v", action.Kind, opts.TargetUser.ID, i.GuildID, err)
		utils.SendFollowUpError(s, i.Interaction, fmt.Sprintf("Action failed: %v", err))
		return
	}
	utils.SendFollowUpEmbed(s, i.Interaction, actionEmbed(opts.TargetUser, action, verb))
}
