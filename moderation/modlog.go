package moderation

import (
	"fmt"
	"log"
	"time"

	"guardian-bot/model"

	"github.com/bwmarrin/discordgo"
)

// postModLog posts an escalation summary to the guild's moderation log
// channel. Best effort: a failed post never rolls back the escalation.
func (m *Manager) postModLog(guildID string, auth Authorizer, esc *model.Escalation, reason string) {
	channelID := m.cfg.ModLogChannel(guildID)
	if channelID == "" {
		return
	}

	rungName := deescalateLabel
	color := 0x57F287 // green
	if esc.Rung != nil && esc.Entry.LevelDelta >= 0 {
		rungName = esc.Rung.DisplayName
		color = 0xED4245 // red
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "User", Value: fmt.Sprintf("<@%s>", esc.Entry.UserID), Inline: true},
		{Name: "Authorized by", Value: fmt.Sprintf("<@%s>", auth.ID), Inline: true},
		{Name: "Level", Value: fmt.Sprintf("%d", esc.Level), Inline: true},
		{Name: "Reason", Value: reason},
	}
	if !esc.Expiry.IsZero() {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Deescalates",
			Value: fmt.Sprintf("<t:%d:R>", esc.Expiry.Unix()),
		})
	}

	embed := &discordgo.MessageEmbed{
		Title:     rungName,
		Color:     color,
		Fields:    fields,
		Timestamp: time.Unix(esc.Entry.Timestamp, 0).Format(time.RFC3339),
	}

	if _, err := m.discord.ChannelMessageSendEmbed(channelID, embed); err != nil {
		log.Printf("Failed to post mod log for guild %s: %v", guildID, err)
	}
}
