package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/shopfront/shopfront/internal/config"
	"github.com/shopfront/shopfront/internal/logger"
	"github.com/shopfront/shopfront/internal/migrations"
	"github.com/shopfront/shopfront/internal/postgres"
)

func main() {
	// Parse command line flags
	command := flag.String("command", "up", "Migration command: up, down or status")
	flag.Parse()

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	logger.Infow("Connecting to database", "host", cfg.Postgres.Host, "dbname", cfg.Postgres.DBName)

	db, err := postgres.Open(cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to connect to postgres", "error", err)
	}
	defer db.Close()

	switch *command {
	case "up":
		logger.Info("Applying database migrations...")
		err = migrations.Up(db.DB.DB)
	case "down":
		logger.Info("Rolling back the latest migration...")
		err = migrations.Down(db.DB.DB)
	case "status":
		err = migrations.Status(db.DB.DB)
	default:
		logger.Fatalf("Unknown migration command: %s", *command)
	}
	if err != nil {
		logger.Fatalw("Migration failed", "command", *command, "error", err)
	}

	fmt.Println("Migration process completed")
}
