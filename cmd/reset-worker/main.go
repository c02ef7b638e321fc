package main

import (
	"context"
	"time"

	"accounting/internal/amqp"
	"accounting/internal/cli"
	applog "accounting/internal/log"
	"accounting/internal/services"
)

// reset-worker runs the monthly reset check without the HTTP API, for
// deployments where the API process is not always up.
func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentReset)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var publisher services.EventPublisher
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, reset events disabled", "error", err)
		} else {
			defer client.Close()
			publisher = client
		}
	}

	scheduler := services.NewResetScheduler(repo, publisher)

	ctx, done := cli.GracefulShutdown(logger, 15*time.Second, func(ctx context.Context) {
		if err := scheduler.Stop(ctx); err != nil {
			logger.Error("Reset scheduler stop error", "error", err)
		}
	})

	if err := scheduler.EnsureResetDay(ctx, time.Now()); err != nil {
		cli.Fatal(logger, "Failed to initialize reset day", err)
	}
	if err := scheduler.Start(ctx, cfg.ResetCheckInterval); err != nil {
		cli.Fatal(logger, "Failed to start reset scheduler", err)
	}
	logger.Info("Reset worker started", "interval", cfg.ResetCheckInterval)

	cli.WaitForShutdown(ctx, done)
	logger.Info("Reset worker stopped")
}
