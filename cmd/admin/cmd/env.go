package cmd

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/dreamwise/dreamwise/internal/app"
	"github.com/dreamwise/dreamwise/internal/config"
	"github.com/dreamwise/dreamwise/internal/db"
	"github.com/dreamwise/dreamwise/internal/logger"
)

// openDB connects without migrating, for the migrate subcommands.
func openDB(ctx context.Context) (*config.Config, *sqlx.DB, error) {
	cfg := config.Load()
	logger.Init(cfg.IsDevelopment(), "")

	database, err := db.Init(ctx, cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, nil, err
	}
	return cfg, database, nil
}

// openApp builds the full service graph on a migrated database.
func openApp(ctx context.Context) (*app.App, error) {
	cfg := config.Load()
	logger.Init(cfg.IsDevelopment(), "")

	return app.New(ctx, cfg)
}
