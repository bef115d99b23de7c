package database

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipe-manager/backend/internal/model"
)

// rollbackSuffix marks the file that undoes NAME.sql as NAME_rollback.sql.
const rollbackSuffix = "_rollback.sql"

// ErrNothingToRollback is returned when no SQL migration has been recorded.
var ErrNothingToRollback = errors.New("no migrations to rollback")

// RunMigrations brings the schema up to date. Models are auto-migrated on
// every driver; on postgres the vector extension is created first and any
// SQL files in migrationsDir are applied once each, in name order.
func RunMigrations(db *gorm.DB, migrationsDir string, log *zap.Logger) error {
	if db.Dialector.Name() == "sqlite" {
		log.Info("Using GORM auto-migration for SQLite")
		return db.AutoMigrate(&model.Recipe{}, &model.Macros{})
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}
	if err := db.AutoMigrate(&model.Recipe{}, &model.Macros{}); err != nil {
		return fmt.Errorf("failed to auto-migrate models: %w", err)
	}

	files, err := os.ReadDir(migrationsDir)
	if errors.Is(err, fs.ErrNotExist) {
		log.Info("No migrations directory, skipping SQL migrations", zap.String("dir", migrationsDir))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name() < files[j].Name()
	})

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") || strings.HasSuffix(file.Name(), rollbackSuffix) {
			continue
		}

		var count int64
		if err := db.Table("migrations").Where("name = ?", file.Name()).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if count > 0 {
			log.Debug("Skipping migration (already applied)", zap.String("name", file.Name()))
			continue
		}

		content, err := os.ReadFile(filepath.Join(migrationsDir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file.Name(), err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(content)).Error; err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", file.Name(), err)
			}
			if err := tx.Exec("INSERT INTO migrations (name) VALUES (?)", file.Name()).Error; err != nil {
				return fmt.Errorf("failed to record migration %s: %w", file.Name(), err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		log.Info("Applied migration", zap.String("name", file.Name()))
	}

	return nil
}

// RollbackLastMigration undoes the most recently applied SQL migration by
// running its rollback file and removing its record. It returns the name of
// the migration that was rolled back.
func RollbackLastMigration(db *gorm.DB, migrationsDir string, log *zap.Logger) (string, error) {
	if db.Dialector.Name() != "postgres" {
		return "", fmt.Errorf("rollback is only supported on postgres")
	}
	if !db.Migrator().HasTable("migrations") {
		return "", ErrNothingToRollback
	}

	var last struct {
		Name string
	}
	res := db.Table("migrations").Select("name").Order("applied_at DESC, id DESC").Limit(1).Scan(&last)
	if res.Error != nil {
		return "", fmt.Errorf("failed to get last migration: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return "", ErrNothingToRollback
	}

	rollbackFile := strings.TrimSuffix(last.Name, ".sql") + rollbackSuffix
	content, err := os.ReadFile(filepath.Join(migrationsDir, rollbackFile))
	if err != nil {
		return "", fmt.Errorf("failed to read rollback file %s: %w", rollbackFile, err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(string(content)).Error; err != nil {
			return fmt.Errorf("failed to execute rollback %s: %w", rollbackFile, err)
		}
		if err := tx.Exec("DELETE FROM migrations WHERE name = ?", last.Name).Error; err != nil {
			return fmt.Errorf("failed to remove migration record %s: %w", last.Name, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	log.Info("Rolled back migration", zap.String("name", last.Name))
	return last.Name, nil
}
