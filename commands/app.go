package commands

import (
	"context"
	"time"

	"go.uber.org/zap"

	"knucklebone/dice"
	"knucklebone/metrics"
)

// Store is the key-value persistence the commands rely on.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// App is the state shared by every handler. It is built once at startup.
type App struct {
	Roller  *dice.Roller
	Store   Store
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

func NewApp(roller *dice.Roller, store Store, logger *zap.Logger, m *metrics.Metrics) *App {
	return &App{
		Roller:  roller,
		Store:   &instrumentedStore{store: store, metrics: m},
		Logger:  logger,
		Metrics: m,
	}
}

type instrumentedStore struct {
	store   Store
	metrics *metrics.Metrics
}

func (s *instrumentedStore) observe(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.StorageOperationTotal.WithLabelValues(op, status).Inc()
	s.metrics.StorageOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (s *instrumentedStore) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	value, ok, err := s.store.Get(ctx, key)
	s.observe("get", start, err)
	return value, ok, err
}

func (s *instrumentedStore) Set(ctx context.Context, key, value string) error {
	start := time.Now()
	err := s.store.Set(ctx, key, value)
	s.observe("set", start, err)
	return err
}

func (s *instrumentedStore) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.store.Delete(ctx, key)
	s.observe("delete", start, err)
	return err
}
