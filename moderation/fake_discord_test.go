package moderation

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// fakeDiscord records every API call and fails the methods listed in errs.
type fakeDiscord struct {
	mu     sync.Mutex
	calls  []string
	errs   map[string]error
	member *discordgo.Member
}

func newFakeDiscord() *fakeDiscord {
	return &fakeDiscord{
		errs: make(map[string]error),
		member: &discordgo.Member{
			User: &discordgo.User{ID: "u1", Username: "target"},
		},
	}
}

func (f *fakeDiscord) record(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeDiscord) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeDiscord) GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error) {
	f.record("GuildMember %s %s", guildID, userID)
	if err := f.errs["GuildMember"]; err != nil {
		return nil, err
	}
	return f.member, nil
}

func (f *fakeDiscord) GuildMemberDeleteWithReason(guildID, userID, reason string, options ...discordgo.RequestOption) error {
	f.record("Kick %s %s", guildID, userID)
	return f.errs["Kick"]
}

func (f *fakeDiscord) GuildBanCreateWithReason(guildID, userID, reason string, days int, options ...discordgo.RequestOption) error {
	f.record("BanCreate %s %s days=%d", guildID, userID, days)
	return f.errs["BanCreate"]
}

func (f *fakeDiscord) GuildBanDelete(guildID, userID string, options ...discordgo.RequestOption) error {
	f.record("BanDelete %s %s", guildID, userID)
	return f.errs["BanDelete"]
}

func (f *fakeDiscord) GuildMemberMute(guildID, userID string, mute bool, options ...discordgo.RequestOption) error {
	f.record("Mute %s %s %v", guildID, userID, mute)
	return f.errs["Mute"]
}

func (f *fakeDiscord) GuildMemberDeafen(guildID, userID string, deaf bool, options ...discordgo.RequestOption) error {
	f.record("Deafen %s %s %v", guildID, userID, deaf)
	return f.errs["Deafen"]
}

func (f *fakeDiscord) GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error {
	f.record("RoleAdd %s %s %s", guildID, userID, roleID)
	return f.errs["RoleAdd"]
}

func (f *fakeDiscord) GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error {
	f.record("RoleRemove %s %s %s", guildID, userID, roleID)
	return f.errs["RoleRemove"]
}

func (f *fakeDiscord) UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.record("UserChannelCreate %s", recipientID)
	if err := f.errs["UserChannelCreate"]; err != nil {
		return nil, err
	}
	return &discordgo.Channel{ID: "dm-" + recipientID}, nil
}

func (f *fakeDiscord) ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.record("MessageSend %s %s", channelID, content)
	if err := f.errs["MessageSend"]; err != nil {
		return nil, err
	}
	return &discordgo.Message{ID: "m1"}, nil
}

func (f *fakeDiscord) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.record("EmbedSend %s %s", channelID, embed.Title)
	if err := f.errs["EmbedSend"]; err != nil {
		return nil, err
	}
	return &discordgo.Message{ID: "m2"}, nil
}

func (f *fakeDiscord) ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error {
	f.record("MessageDelete %s %s", channelID, messageID)
	return f.errs["MessageDelete"]
}

func (f *fakeDiscord) ChannelMessagesBulkDelete(channelID string, messages []string, options ...discordgo.RequestOption) error {
	f.record("BulkDelete %s n=%d", channelID, len(messages))
	return f.errs["BulkDelete"]
}
