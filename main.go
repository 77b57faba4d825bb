package main

import (
	"log"
	"os"
	"path/filepath"

	"guardian-bot/bot"
	"guardian-bot/config"
	"guardian-bot/handlers"
	"guardian-bot/utils/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	db, err := database.Init(cfg.DBPath)
	if err != nil {
		log.Fatalf("Error initializing moderation database: %v", err)
	}
	defer db.Close()

	b, err := bot.New(cfg, db)
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}

	handlers.Register(b)

	defer b.Close()
	b.Run()
}
