package main

import (
	"errors"
	"flag"
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/pageza/recipe-manager/backend/config"
	"github.com/pageza/recipe-manager/backend/internal/database"
	"github.com/pageza/recipe-manager/backend/internal/logger"
)

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	dir := flag.String("dir", "", "Migrations directory (defaults to server.migrations_dir)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zapLog, err := logger.New(logger.Config{Level: cfg.App.LogLevel, Format: cfg.App.LogFormat})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLog.Sync()

	migrationsDir := *dir
	if migrationsDir == "" {
		migrationsDir = cfg.Server.MigrationsDir
	}

	db, err := database.New(cfg.Database, zapLog)
	if err != nil {
		zapLog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if *rollback {
		name, err := database.RollbackLastMigration(db.DB, migrationsDir, zapLog)
		if errors.Is(err, database.ErrNothingToRollback) {
			fmt.Println("No migrations to rollback")
			return
		}
		if err != nil {
			zapLog.Fatal("Rollback failed", zap.Error(err))
		}
		fmt.Printf("Successfully rolled back migration: %s\n", name)
		return
	}

	if err := database.RunMigrations(db.DB, migrationsDir, zapLog); err != nil {
		zapLog.Fatal("Migration failed", zap.Error(err))
	}
	fmt.Println("All migrations applied successfully.")
}
