package logger

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"knucklebone/config"
)

func Module(service string) fx.Option {
	return fx.Provide(
		func(cfg *config.Config) (*zap.Logger, error) {
			return New(service, cfg.LogLevel)
		},
	)
}
