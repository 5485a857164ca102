// Package db opens the draft store database and keeps its schema current.
package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/proposal-desk/internal/config"
	"github.com/diewo77/proposal-desk/internal/models"
)

const connectAttempts = 5

// Connect opens the configured database. Postgres is retried to give the
// container time to start.
func Connect(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Path)
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var (
		db  *gorm.DB
		err error
	)
	for i := 1; i <= connectAttempts; i++ {
		db, err = gorm.Open(dialector, gcfg)
		if err == nil || cfg.Driver != "postgres" {
			break
		}
		log.Warn("database connection failed, retrying", zap.Int("attempt", i), zap.Error(err))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Driver, err)
	}
	if err := db.Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("db ping failed: %w", err)
	}
	return db, nil
}

// Migrate brings the schema up to date. With sqlMigrations on postgres the
// embedded SQL files are applied; otherwise gorm derives the schema.
func Migrate(db *gorm.DB, cfg config.DatabaseConfig, sqlMigrations bool) error {
	if sqlMigrations && cfg.Driver == "postgres" {
		if err := RunSQLMigrations(cfg.URL()); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
	} else if err := db.AutoMigrate(&models.DraftRecord{}); err != nil {
		return fmt.Errorf("automigrate drafts: %w", err)
	}
	if !db.Migrator().HasTable(&models.DraftRecord{}) {
		return fmt.Errorf("missing table after migration: drafts")
	}
	return nil
}
