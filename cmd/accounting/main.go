package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"accounting/internal/amqp"
	"accounting/internal/cli"
	"accounting/internal/config"
	apphttp "accounting/internal/http"
	applog "accounting/internal/log"
	"accounting/internal/services"
	"accounting/internal/wishlist"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)
	if err := run(logger, cfg); err != nil {
		logger.Error("accounting exited", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(logger *applog.Logger, cfg *config.Config) error {
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Events are optional: the ledger keeps working when the broker is down.
	var publisher services.EventPublisher
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, ledger events disabled", "error", err)
		} else {
			defer client.Close()
			publisher = client
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange)
		}
	}

	ledger := services.NewLedgerService(repo, publisher)
	scheduler := services.NewResetScheduler(repo, publisher)
	reconciler := services.NewWishlistReconciler(repo, newFetcher(cfg), publisher, cfg.WishlistFetchTimeout)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Ledger:     ledger,
		Scheduler:  scheduler,
		Reconciler: reconciler,
		DB:         repo,
		Logger:     logger,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := scheduler.Stop(ctx); err != nil {
			logger.Error("Reset scheduler stop error", "error", err)
		}
		if err := reconciler.Stop(ctx); err != nil {
			logger.Error("Wishlist refresher stop error", "error", err)
		}
	})

	if err := scheduler.EnsureResetDay(ctx, time.Now()); err != nil {
		return err
	}
	// The first tick runs immediately, so a reset due today applies at launch.
	if err := scheduler.Start(ctx, cfg.ResetCheckInterval); err != nil {
		return fmt.Errorf("start reset scheduler: %w", err)
	}

	if cfg.WishlistEnabled() {
		if cfg.WishlistRefreshInterval > 0 {
			if err := reconciler.Start(ctx, cfg.WishlistRefreshInterval); err != nil {
				logger.Error("Failed to start wishlist refresher", "error", err)
			}
		} else {
			reconciler.RefreshAsync(ctx, nil)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting accounting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		_ = scheduler.Stop(context.Background())
		_ = reconciler.Stop(context.Background())
		return fmt.Errorf("serve on port %s: %w", cfg.Port, err)
	}
	cli.WaitForShutdown(ctx, done)
	return nil
}

// newFetcher returns nil when no wishlist source is configured.
func newFetcher(cfg *config.Config) wishlist.Fetcher {
	switch {
	case cfg.WishlistFeedURL != "":
		return wishlist.NewFeedFetcher(cfg.WishlistFeedURL, cfg.WishlistFetchTimeout)
	case cfg.WishlistFile != "":
		return wishlist.NewFileFetcher(cfg.WishlistFile)
	default:
		return nil
	}
}
