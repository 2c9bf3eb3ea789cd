package main

import (
	app "influencer-match-engine/internal/app/server"
	"influencer-match-engine/internal/config"
)

func main() {
	cfg := config.Load()
	config.SetupLogging(cfg.Server.LogLevel)
	app.Run(cfg)
}
