package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"number-heroes/internal/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	down := flag.Bool("down", false, "roll back instead of applying")
	steps := flag.Int("steps", 0, "limit to this many migrations (0 = all)")
	source := flag.String("source", "file://db/migrations", "migration source")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	m, err := migrate.New(*source, dsn)
	if err != nil {
		log.Fatalf("migration setup failed: %v", err)
	}

	switch {
	case *steps > 0 && *down:
		err = m.Steps(-*steps)
	case *steps > 0:
		err = m.Steps(*steps)
	case *down:
		err = m.Down()
	default:
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migration run failed: %v", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.Fatalf("reading migration version failed: %v", err)
	}
	log.Printf("migrations done version=%d dirty=%t", version, dirty)
}
