package main

import (
	"github.com/joho/godotenv"

	"twilio-gateway/internal/app"
	"twilio-gateway/internal/config"
	"twilio-gateway/pkg/logger"
)

func main() {
	// A .env file is optional; deployed environments set real env vars
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}
	logger.SetDebug(cfg.Debug)

	application := app.NewApp(cfg)

	logger.Info("Twilio gateway starting...")

	if err := application.Run(); err != nil {
		logger.Fatal("Server error: %v", err)
	}
}
