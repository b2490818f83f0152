package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"knucklebone/bot"
	"knucklebone/commands"
	"knucklebone/config"
	"knucklebone/database"
	"knucklebone/discord"
	"knucklebone/logger"
	"knucklebone/metrics"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Connect to the chat platform and answer commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			app := fx.New(
				serverModules(cfg),
				fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
					return &fxevent.ZapLogger{Logger: l}
				}),
			)
			app.Run()
			return nil
		},
	}
}

func serverModules(cfg *config.Config) fx.Option {
	return fx.Options(
		fx.Supply(cfg),
		logger.Module("knucklebone"),
		database.Module(),
		metrics.Module(),
		commands.Module(),
		fx.Invoke(runBot),
	)
}

type runFunc func(ctx context.Context) error

func newPlatformBot(cfg *config.Config, d *commands.Dispatcher, log *zap.Logger) (runFunc, error) {
	switch cfg.Platform {
	case config.PlatformTelegram:
		b, err := bot.NewBot(cfg, d, log)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) error {
			b.Run(ctx)
			return nil
		}, nil
	case config.PlatformDiscord:
		b, err := discord.NewBot(cfg, d, log)
		if err != nil {
			return nil, err
		}
		return b.Run, nil
	}
	return nil, fmt.Errorf("unknown platform %q", cfg.Platform)
}

// runBot connects on start and keeps the bot running until the application
// stops. A bot that exits on its own shuts the application down.
func runBot(lc fx.Lifecycle, shutdowner fx.Shutdowner, cfg *config.Config, d *commands.Dispatcher, log *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			run, err := newPlatformBot(cfg, d, log)
			if err != nil {
				cancel()
				return err
			}

			go func() {
				defer close(done)
				if err := run(ctx); err != nil {
					log.Error("bot stopped", zap.Error(err))
				}
				if ctx.Err() == nil {
					shutdowner.Shutdown()
				}
			}()
			log.Info("bot started", zap.String("platform", cfg.Platform))
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
			return nil
		},
	})
}
