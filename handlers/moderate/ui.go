package moderate

import (
	"fmt"

	"guardian-bot/model"

	"github.com/bwmarrin/discordgo"
)

func escalationEmbed(user *discordgo.User, esc *model.Escalation) *discordgo.MessageEmbed {
	title := "Deescalated"
	color := 0x57F287 // green
	if esc.Rung != nil && esc.Entry.LevelDelta >= 0 {
		title = esc.Rung.DisplayName
		color = 0xED4245 // red
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "User", Value: fmt.Sprintf("<@%s>", user.ID), Inline: true},
		{Name: "Level", Value: fmt.Sprintf("%d", esc.Level), Inline: true},
	}
	if esc.NextRung != nil {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Next rung", Value: esc.NextRung.DisplayName, Inline: true,
		})
	}
	if !esc.Expiry.IsZero() {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Deescalates", Value: fmt.Sprintf("<t:%d:R>", esc.Expiry.Unix()),
		})
	}

	return &discordgo.MessageEmbed{Title: title, Color: color, Fields: fields}
}

func actionEmbed(user *discordgo.User, action model.Action, verb string) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "User", Value: fmt.Sprintf("<@%s>", user.ID), Inline: true},
		{Name: "Reason", Value: action.Reason, Inline: true},
	}
	if action.Duration > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Reverts", Value: fmt.Sprintf("<t:%d:R>", action.Expiry(timeNow()).Unix()),
		})
	}
	return &discordgo.MessageEmbed{
		Title:  fmt.Sprintf("%s %s", verb, user.Username),
		Color:  0xED4245,
		Fields: fields,
	}
}

func historyEmbed(user *discordgo.User, level int, entries []model.EscalationEntry, expiry string) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "Current level", Value: fmt.Sprintf("%d", level), Inline: true},
	}
	if expiry != "" {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Auto-deescalation", Value: expiry, Inline: true,
		})
	}

	shown := entries
	if len(shown) > 10 {
		shown = shown[len(shown)-10:]
	}
	for _, e := range shown {
		sign := "+"
		if e.LevelDelta < 0 {
			sign = ""
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%s (%s%d)", e.DisplayName, sign, e.LevelDelta),
			Value: fmt.Sprintf("by %s at <t:%d:f>", e.AuthorizerName, e.Timestamp),
		})
	}

	return &discordgo.MessageEmbed{
		Title:  fmt.Sprintf("Escalation history for %s", user.Username),
		Color:  0x5865F2,
		Fields: fields,
	}
}
