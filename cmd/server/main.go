package main

import (
	"fmt"
	"log"
	"time"

	"number-heroes/internal/assoc"
	"number-heroes/internal/cards"
	"number-heroes/internal/config"
	"number-heroes/internal/db"
	"number-heroes/internal/game"
	"number-heroes/internal/llm"
	"number-heroes/internal/progress"
	"number-heroes/internal/server"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	conn, err := db.Open(cfg)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	llmClient := llm.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	store := assoc.NewStore(conn)
	generator := assoc.NewGenerator(store, llmClient, cfg.GenerateAttempts)
	scanner := assoc.NewScanner(store, generator, cfg.ScanPassCap, time.Duration(cfg.RegenDelayMillis)*time.Millisecond)
	gamesSvc := game.NewService(game.NewStore(conn), store)
	cardsSvc := cards.NewService(conn)
	progressStore := progress.NewStore(conn, cfg.PoolSize)

	srv := server.New(cfg, store, generator, scanner, gamesSvc, cardsSvc, progressStore, llmClient)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("number-heroes server listening on %s", addr)
	if err := srv.Router().Run(addr); err != nil {
		log.Fatal(err)
	}
}
