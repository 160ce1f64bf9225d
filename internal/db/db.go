package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/eldos/workmarket/internal/config"
	"github.com/eldos/workmarket/internal/schema"
)

// New opens the configured database and creates the tables for every
// registered kind. The default sqlite :memory: DSN matches the process-scoped
// store the service is meant to demonstrate.
func New(cfg *config.Config, log zerolog.Logger, registry *schema.Registry) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DB.Driver {
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DB.DSN)
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DB.DSN)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DB.Driver)
	}

	database, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.DB.Driver == config.DriverSQLite {
		sqlDB, err := database.DB()
		if err != nil {
			return nil, err
		}
		// A :memory: database exists per connection; one connection keeps
		// every request on the same store.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := runMigrations(database, registry, cfg.DB.Driver); err != nil {
		return nil, err
	}

	log.Info().Str("driver", cfg.DB.Driver).Msg("database ready")
	return database, nil
}
