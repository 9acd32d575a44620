package main

import (
	"log"

	"github.com/joho/godotenv"

	"insightflow/adapters/api"
	"insightflow/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	registry := api.NewRegistry(cfg.Engine, cfg.Server.MaxConcurrentBuilds)
	server := api.NewServer(registry, cfg.Server)

	if err := server.ListenAndServe(); err != nil {
		log.Fatal("Server failed:", err)
	}
}
