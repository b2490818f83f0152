package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsServer serves /metrics and /health over HTTP.
type MetricsServer struct {
	server *http.Server
	logger *zap.Logger
}

func NewMetricsServer(addr string, registry *prometheus.Registry, logger *zap.Logger) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		MaxRequestsInFlight: 10,
		Timeout:             30 * time.Second,
		ErrorHandling:       promhttp.ContinueOnError,
	}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK\n"))
	})

	return &MetricsServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// Handler exposes the mux, mainly for tests.
func (ms *MetricsServer) Handler() http.Handler {
	return ms.server.Handler
}

// Listen binds the server's address so a port clash surfaces before serving.
func (ms *MetricsServer) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", ms.server.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", ms.server.Addr, err)
	}
	return ln, nil
}

// Serve blocks until the server is shut down.
func (ms *MetricsServer) Serve(ln net.Listener) error {
	ms.logger.Info("starting metrics server", zap.String("addr", ln.Addr().String()))

	if err := ms.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		ms.logger.Error("metrics server failed", zap.Error(err))
		return err
	}
	return nil
}

func (ms *MetricsServer) Shutdown(ctx context.Context) error {
	ms.logger.Info("shutting down metrics server")
	return ms.server.Shutdown(ctx)
}
