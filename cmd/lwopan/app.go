package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/aliskhannn/lwopan/internal/config"
	"github.com/aliskhannn/lwopan/internal/infra/postgres"
	pgrepo "github.com/aliskhannn/lwopan/internal/infra/postgres/repository"
	"github.com/aliskhannn/lwopan/internal/logger"
	"github.com/aliskhannn/lwopan/internal/metrics"
	"github.com/aliskhannn/lwopan/internal/repository"
	"github.com/aliskhannn/lwopan/internal/service"
)

// app holds the dependencies shared by every command.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	resolver *service.Resolver
	pool     *pgxpool.Pool
	closers  []func()
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &app{
		cfg:      cfg,
		logger:   log,
		registry: prometheus.NewRegistry(),
	}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = metrics.New(a.registry)

	store, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.resolver = service.NewResolver(
		store,
		service.NewClassifier(cfg.Query.OriginPrefix),
		a.metrics,
		log,
	)

	return a, nil
}

// openStore builds the record store selected by configuration.
func (a *app) openStore(ctx context.Context) (service.RecordStore, error) {
	switch a.cfg.Storage.Driver {
	case config.DriverPostgres:
		pool, err := a.openPool(ctx)
		if err != nil {
			return nil, err
		}
		return pgrepo.NewRecordRepository(pool), nil

	default:
		store := a.csvStore()
		if a.cfg.Data.Preload {
			if err := store.Preload(ctx, a.cfg.Data.PreloadWorkers); err != nil {
				return nil, fmt.Errorf("preload tables: %w", err)
			}
		}
		return store, nil
	}
}

func (a *app) csvStore() *repository.RecordRepository {
	return repository.NewRecordRepository(repository.CSVOptions{
		Dir:               a.cfg.Data.Dir,
		MasterFile:        a.cfg.Data.MasterFile,
		CollectionPattern: a.cfg.Data.CollectionPattern,
		MasterHasHeader:   a.cfg.Data.MasterHasHeader,
	}, a.logger)
}

// openPool connects once and reuses the pool for later calls.
func (a *app) openPool(ctx context.Context) (*pgxpool.Pool, error) {
	if a.pool != nil {
		return a.pool, nil
	}

	dsn, err := a.cfg.DB.DSN()
	if err != nil {
		return nil, err
	}

	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
		MaxConns:        int32(a.cfg.DB.MaxConnections),
		MaxConnLifetime: a.cfg.DB.MaxConnLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	a.closers = append(a.closers, pool.Close)
	a.pool = pool

	return pool, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	_ = a.logger.Sync()
}
