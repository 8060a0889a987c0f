package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"skyline/opsboard/internal/config"
	"skyline/opsboard/internal/logging"
	gormModels "skyline/opsboard/internal/models/gorm"
)

// InitORM opens the GORM handle for the configured driver.
func InitORM(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	if cfg.AppEnv == "production" {
		gormCfg.Logger = logger.Default.LogMode(logger.Error)
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.DBDriver {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(cfg.SQLitePath), gormCfg)
	default:
		db, err = gorm.Open(postgres.Open(cfg.PostgresDSN()), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.DBDriver, err)
	}

	logging.Info("Connected to database via GORM", "driver", cfg.DBDriver)
	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(gormModels.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
