package main

import (
	"context"
	"flag"
	"log"
	"time"

	"number-heroes/internal/assoc"
	"number-heroes/internal/config"
	"number-heroes/internal/db"
	"number-heroes/internal/llm"
)

func main() {
	count := flag.Int("count", 30, "maximum number of associations to generate")
	flag.Parse()

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

	store := assoc.NewStore(conn)
	llmClient := llm.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	generator := assoc.NewGenerator(store, llmClient, cfg.GenerateAttempts)

	delay := func() {
		time.Sleep(time.Duration(cfg.RegenDelayMillis) * time.Millisecond)
	}
	generated, failures, err := generator.GenerateMissing(context.Background(), *count, delay)
	if err != nil {
		log.Fatalf("seed failed: %v", err)
	}
	for number, genErr := range failures {
		log.Printf("seed skipped number=%d: %v", number, genErr)
	}
	log.Printf("seed complete generated=%d failed=%d", len(generated), len(failures))
}
