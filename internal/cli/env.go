// Package cli holds the cobra commands of the babymind and backup binaries.
package cli

import (
	"fmt"

	"go.uber.org/zap"

	"babymind/internal/config"
	"babymind/internal/database"
)

// env is the runtime a command works against
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *database.DB
}

// openEnv loads configuration and opens the migrated database
func openEnv() (*env, error) {
	cfg := config.Load()

	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, err
	}

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	db.Logger = logger

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &env{cfg: cfg, logger: logger, db: db}, nil
}

func (e *env) Close() {
	e.db.Close()
	_ = e.logger.Sync()
}
