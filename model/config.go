package model

// ServerConfig is the per-guild configuration, including the escalation
// ladder. Loaded from the guild config file by config.Load.
type ServerConfig struct {
	Name            string   `json:"name" mapstructure:"name"`
	GuildID         string   `json:"guild_id" mapstructure:"guild_id"`
	Enable          bool     `json:"enable" mapstructure:"enable"`
	AdminRoleIDs    []string `json:"admin_role_ids" mapstructure:"admin_role_ids"`
	ModLogChannelID string   `json:"mod_log_channel_id" mapstructure:"mod_log_channel_id"`
	Ladder          []Rung   `json:"ladder" mapstructure:"ladder"`
}

// Config holds the application configuration.
type Config struct {
	BotToken      string
	AppID         string
	LogWebhookURL string
	DBPath        string
	ServerConfigs map[string]ServerConfig
}

// GuildConfig returns the configuration for one guild.
func (c *Config) GuildConfig(guildID string) (ServerConfig, bool) {
	sc, ok := c.ServerConfigs[guildID]
	return sc, ok
}

// GuildLadder returns the escalation ladder configured for a guild, or nil
// when the guild is unknown or has no ladder.
func (c *Config) GuildLadder(guildID string) []Rung {
	return c.ServerConfigs[guildID].Ladder
}

// ModLogChannel returns the guild's moderation log channel id, or "" when
// logging is not configured.
func (c *Config) ModLogChannel(guildID string) string {
	return c.ServerConfigs[guildID].ModLogChannelID
}
