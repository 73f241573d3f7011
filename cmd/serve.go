package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ortelius/component-monitor/internal/api"
	"github.com/ortelius/component-monitor/internal/kafka"
	"github.com/ortelius/component-monitor/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the REST and GraphQL API and run the daily refresh",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(v)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close(logger)

	var sched *scheduler.Scheduler
	if cfg.SchedulerEnabled {
		sched, err = scheduler.New(cfg.RefreshSchedule, app.service, logger)
		if err != nil {
			return err
		}
		sched.Start()
	}

	if cfg.KafkaIngestTopic != "" && len(cfg.KafkaBrokers) > 0 {
		if err := kafka.RunEventProcessor(ctx, cfg, app.service, logger); err != nil {
			logger.Warn("Kafka event processor not started", zap.Error(err))
		}
	}

	server, err := api.NewFiberApp(app.service, app.metrics, logger)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Port))
		logger.Info("GraphQL endpoint available at /graphql")
		errCh <- server.Listen(":" + cfg.Port)
	}()

	select {
	case err = <-errCh:
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if sched != nil {
		if serr := sched.Stop(shutdownCtx); serr != nil {
			logger.Warn("Scheduler did not stop cleanly", zap.Error(serr))
		}
	}
	if serr := server.ShutdownWithContext(shutdownCtx); serr != nil {
		logger.Warn("Server did not stop cleanly", zap.Error(serr))
	}
	return err
}
