package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"drawstats/internal/app"
	"drawstats/internal/config"
)

func main() {
	// .env carries optional API keys; missing file is fine
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG")
	if cfgPath == "" {
		cfgPath = "cmd/scraper/config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed load config, error=%v", err)
	}

	if err = app.Run(cfg); err != nil {
		log.Fatalf("App run is failed, error=%v", err)
	}
}
