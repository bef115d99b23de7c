package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pageza/recipe-manager/backend/config"
)

// DB wraps the gorm handle and the pool underneath it.
type DB struct {
	*gorm.DB
	sqlDB *sql.DB
}

// New opens the configured database. Postgres connections go through a
// lib/pq pool that gorm runs on top of; sqlite is opened directly.
func New(cfg config.DatabaseConfig, log *zap.Logger) (*DB, error) {
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}

	var (
		gdb *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "sqlite":
		log.Info("Opening sqlite database", zap.String("path", cfg.Path))
		gdb, err = gorm.Open(sqlite.Open(cfg.Path), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("error opening sqlite database: %w", err)
		}
	default:
		log.Info("Connecting to database",
			zap.String("host", cfg.Host),
			zap.String("port", cfg.Port),
			zap.String("user", cfg.User),
		)
		pool, err := sql.Open("postgres", cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("error opening database: %w", err)
		}
		gdb, err = gorm.Open(postgres.New(postgres.Config{Conn: pool}), gormCfg)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("error initializing gorm: %w", err)
		}
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting sql.DB: %w", err)
	}
	idle := cfg.MaxIdleConns
	if gdb.Dialector.Name() == "sqlite" && idle < 1 {
		// An in-memory sqlite database is dropped with its last connection.
		idle = 1
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(idle)
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	log.Info("Successfully connected to database", zap.String("driver", gdb.Dialector.Name()))
	return &DB{DB: gdb, sqlDB: sqlDB}, nil
}

// Wrap adopts an already opened gorm handle, as tests do.
func Wrap(gdb *gorm.DB) (*DB, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	return &DB{DB: gdb, sqlDB: sqlDB}, nil
}

// HealthCheck checks if the database is accessible
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.sqlDB.PingContext(ctx)
}

// IsPostgres reports whether vector search is available.
func (db *DB) IsPostgres() bool {
	return db.Dialector.Name() == "postgres"
}

func (db *DB) Close() error {
	return db.sqlDB.Close()
}
