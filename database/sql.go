package database

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ortelius/component-monitor/config"
)

// OpenSQL opens the relational store selected by cfg.StoreDriver, retrying until it answers.
func OpenSQL(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	maxElapsed := 5 * time.Minute

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		dsn := cfg.DatabaseDSN
		if dsn == "" {
			dsn = "host=localhost user=postgres password=postgres dbname=components port=5432 sslmode=disable"
		}
		dialector = postgres.Open(dsn)
	case config.DriverSQLite:
		dsn := cfg.DatabaseDSN
		if dsn == "" {
			dsn = "components.db"
		}
		dialector = sqlite.Open(dsn)
		maxElapsed = time.Second
	default:
		return nil, fmt.Errorf("store driver %q is not a SQL driver", cfg.StoreDriver)
	}

	var db *gorm.DB
	err := backoff.RetryNotify(func() error {
		var err error
		db, err = gorm.Open(dialector, &gorm.Config{
			Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
			TranslateError: true,
		})
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Ping()
	}, connectBackoff(maxElapsed), func(err error, wait time.Duration) {
		logger.Warn("Retrying connection to database", zap.String("driver", cfg.StoreDriver), zap.Error(err), zap.Duration("wait", wait))
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.StoreDriver, err)
	}

	if cfg.StoreDriver == config.DriverSQLite {
		// sqlite allows one writer; a single connection serializes writes
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	logger.Info("Database connection established", zap.String("driver", cfg.StoreDriver))
	return db, nil
}
