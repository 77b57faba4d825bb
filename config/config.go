package config

import (
	"fmt"
	"log"
	"os"

	"guardian-bot/model"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load loads the configuration from environment variables and the guild
// config file.
func Load() (*model.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		log.Fatal("Error: BOT_TOKEN environment variable not set")
	}

	appID := os.Getenv("APP_ID")
	if appID == "" {
		log.Fatal("Error: APP_ID environment variable not set")
	}

	webhookURL := os.Getenv("LOG_WEBHOOK_URL")
	if webhookURL == "" {
		log.Println("Warning: LOG_WEBHOOK_URL not set, ops logging will be disabled")
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "data/moderation.db"
	}

	guildConfigPath := os.Getenv("GUILD_CONFIG_PATH")
	if guildConfigPath == "" {
		guildConfigPath = "data/guild_config.json"
	}

	cfg := &model.Config{
		BotToken:      token,
		AppID:         appID,
		LogWebhookURL: webhookURL,
		DBPath:        dbPath,
		ServerConfigs: make(map[string]model.ServerConfig),
	}

	if err := loadGuildConfigs(guildConfigPath, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadGuildConfigs reads the per-guild server configs (admin roles, mod log
// channel, escalation ladder) from the JSON config file.
func loadGuildConfigs(path string, cfg *model.Config) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("Warning: Guild config file not found at %s, skipping.", path)
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read guild config %s: %w", path, err)
	}
	if err := v.UnmarshalKey("servers", &cfg.ServerConfigs); err != nil {
		return fmt.Errorf("failed to parse guild config %s: %w", path, err)
	}

	for guildID, sc := range cfg.ServerConfigs {
		if sc.GuildID == "" {
			sc.GuildID = guildID
			cfg.ServerConfigs[guildID] = sc
		}
	}

	return nil
}
