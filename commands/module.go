package commands

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"knucklebone/config"
	"knucklebone/database"
	"knucklebone/dice"
	"knucklebone/metrics"
)

// Module provides the *App and the *Dispatcher over the static Table.
func Module() fx.Option {
	return fx.Provide(
		func(cfg *config.Config) *dice.Roller {
			return dice.NewRoller(dice.NewSource(cfg.DiceSeed))
		},
		func(roller *dice.Roller, db *database.Database, logger *zap.Logger, m *metrics.Metrics) *App {
			return NewApp(roller, db, logger, m)
		},
		func(app *App) *Dispatcher {
			return NewDispatcher(app, Table())
		},
	)
}
