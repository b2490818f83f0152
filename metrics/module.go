package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"knucklebone/config"
)

// Module provides the registry and *Metrics, and runs the HTTP server when
// METRICS_ADDR is set.
func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			prometheus.NewRegistry,
			New,
		),
		fx.Invoke(startServer),
	)
}

func startServer(lc fx.Lifecycle, cfg *config.Config, registry *prometheus.Registry, logger *zap.Logger) {
	if cfg.MetricsAddr == "" {
		return
	}

	ms := NewMetricsServer(cfg.MetricsAddr, registry, logger)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := ms.Listen()
			if err != nil {
				return err
			}
			go ms.Serve(ln)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return ms.Shutdown(ctx)
		},
	})
}
