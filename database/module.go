package database

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"knucklebone/config"
)

// Module provides the *Database opened at the configured path and closes it
// when the application stops.
func Module() fx.Option {
	return fx.Provide(newManagedDatabase)
}

func newManagedDatabase(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (*Database, error) {
	db, err := NewDatabase(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	logger.Info("database ready", zap.String("path", cfg.DBPath))

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return db.Close()
		},
	})
	return db, nil
}
