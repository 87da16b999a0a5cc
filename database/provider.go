package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/tech-arch1tect/mailcheck/config"
	"github.com/tech-arch1tect/mailcheck/services/logging"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const sqliteBusyTimeout = 5 * time.Second

type ModelsOption struct {
	models []any
}

func WithModels(models ...any) *ModelsOption {
	return &ModelsOption{models: models}
}

func ProvideDatabase(cfg config.Config, modelsOpt *ModelsOption, logger *logging.Service) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Database.Driver {
	case "sqlite":
		dialector = sqlite.Open(sqliteDSN(cfg.Database.DSN))
	case "postgres", "postgresql":
		dialector = postgres.Open(cfg.Database.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.Database.DSN)
	default:
		logger.Error("unsupported database driver", zap.String("driver", cfg.Database.Driver))
		return nil, fmt.Errorf("unsupported database driver: %s (supported: sqlite, postgres, mysql)", cfg.Database.Driver)
	}

	logger.Info("connecting to database", zap.String("driver", cfg.Database.Driver))

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logging.GormLogger(logger, logging.LogLevel(cfg.Log.Level)),
	})
	if err != nil {
		logger.Error("failed to connect to database", zap.Error(err), zap.String("driver", cfg.Database.Driver))
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Every connection to ":memory:" opens a separate empty database.
	if cfg.Database.Driver == "sqlite" && strings.Contains(cfg.Database.DSN, ":memory:") {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access connection pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if cfg.Database.AutoMigrate && modelsOpt != nil && len(modelsOpt.models) > 0 {
		logger.Debug("running auto-migration", zap.Int("models", len(modelsOpt.models)))
		if err := db.AutoMigrate(modelsOpt.models...); err != nil {
			logger.Error("auto-migration failed", zap.Error(err))
			return nil, fmt.Errorf("failed to auto-migrate models: %w", err)
		}
	}

	logger.Info("database ready", zap.String("driver", cfg.Database.Driver))
	return db, nil
}

// sqliteDSN makes write transactions take the database lock when they begin
// and wait for it, instead of failing with "database is locked" when two
// transactions that have both read try to write. Parameters already present
// in dsn win.
func sqliteDSN(dsn string) string {
	params := []string{}
	if !strings.Contains(dsn, "_txlock=") {
		params = append(params, "_txlock=immediate")
	}
	// matches both _timeout and _busy_timeout
	if !strings.Contains(dsn, "_timeout=") {
		params = append(params, fmt.Sprintf("_busy_timeout=%d", sqliteBusyTimeout.Milliseconds()))
	}
	if len(params) == 0 {
		return dsn
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}
