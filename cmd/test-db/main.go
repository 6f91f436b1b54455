package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/MediSynth-io/contactbook/internal/config"
	"github.com/MediSynth-io/contactbook/internal/logging"
	"github.com/MediSynth-io/contactbook/internal/store/backend"
)

// test-db opens the configured backend, which runs migrations or index
// creation, and pings it.
func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	log.Printf("Testing database initialization...")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Config loaded - driver: %s", cfg.Database.Driver)

	logger, err := logging.New(cfg.Log.Level, true)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := backend.Open(ctx, cfg.Database, logger)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close(ctx)
	log.Printf("Database initialization successful!")

	if err := db.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Printf("Database connection test successful!")
}
