package moderate

import (
	"fmt"
	"log"
	"time"

	"guardian-bot/bot"
	"guardian-bot/model"
	"guardian-bot/utils"
	"guardian-bot/utils/database"

	"github.com/bwmarrin/discordgo"
)

func timeNow() time.Time { return time.Now() }

func HandleHistory(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}
	opts, err := parseOptions(s, i)
	if err != nil {
		utils.SendFollowUpError(s, i.Interaction, err.Error())
		return
	}

	entries, err := database.GetEscalationEntries(b.DB, i.GuildID, opts.TargetUser.ID)
	if err != nil {
		log.Printf("Error fetching escalation history: %v", err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to fetch escalation history.")
		return
	}

	expiry := ""
	pending, err := database.GetPendingDeescalation(b.DB, i.GuildID, opts.TargetUser.ID)
	if err != nil {
		log.Printf("Error fetching pending deescalation: %v", err)
	} else if pending != nil {
		expiry = fmt.Sprintf("<t:%d:R>", pending.DueAt.Unix())
	}

	level := model.CurrentLevel(entries)
	utils.SendFollowUpEmbed(s, i.Interaction, historyEmbed(opts.TargetUser, level, entries, expiry))
}
