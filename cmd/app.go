package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ortelius/component-monitor/config"
	"github.com/ortelius/component-monitor/database"
	vulnevents "github.com/ortelius/component-monitor/events/modules/vulnerabilities"
	"github.com/ortelius/component-monitor/internal/analyzer"
	"github.com/ortelius/component-monitor/internal/identifier"
	"github.com/ortelius/component-monitor/internal/metrics"
	"github.com/ortelius/component-monitor/internal/services"
	"github.com/ortelius/component-monitor/internal/sources"
	"github.com/ortelius/component-monitor/internal/sources/nvd"
	"github.com/ortelius/component-monitor/internal/sources/osv"
	"github.com/ortelius/component-monitor/internal/store"
)

// pipeline is the identify and fetch chain; it needs no storage.
type pipeline struct {
	resolver *identifier.Resolver
	analyzer *analyzer.Analyzer
	metrics  *metrics.Metrics
}

func newPipeline(cfg *config.Config, logger *zap.Logger) *pipeline {
	httpClient := sources.DefaultHTTPClient()
	m := metrics.New()

	nvdClient := nvd.NewClient(cfg.NVDURL, cfg.NVDAPIKey, httpClient)
	osvClient := osv.NewClient(cfg.OSVURL, httpClient)
	resolver := identifier.NewResolver(nvdClient, logger)

	return &pipeline{
		resolver: resolver,
		analyzer: analyzer.New(resolver, osvClient, nvdClient, m, logger),
		metrics:  m,
	}
}

// openStore connects to the configured backend.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverArangoDB:
		conn, err := database.InitializeDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return store.NewArangoStore(conn, logger), nil
	case config.DriverPostgres, config.DriverSQLite:
		db, err := database.OpenSQL(cfg, logger)
		if err != nil {
			return nil, err
		}
		return store.NewSQLStore(db, logger)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

// application is everything a stateful command needs.
type application struct {
	*pipeline
	store     store.Store
	publisher vulnevents.Publisher
	service   *services.MonitorService
}

func newApplication(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*application, error) {
	p := newPipeline(cfg, logger)

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var publisher vulnevents.Publisher = vulnevents.Noop{}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic != "" {
		publisher = vulnevents.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		logger.Info("Publishing discovery events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	svc := services.NewMonitorService(st, p.analyzer, p.resolver,
		services.WithPublisher(publisher),
		services.WithMetrics(p.metrics),
		services.WithLogger(logger))

	return &application{pipeline: p, store: st, publisher: publisher, service: svc}, nil
}

func (a *application) Close(logger *zap.Logger) {
	if err := a.publisher.Close(); err != nil {
		logger.Warn("Closing event publisher failed", zap.Error(err))
	}
	if err := a.store.Close(); err != nil {
		logger.Warn("Closing store failed", zap.Error(err))
	}
}
