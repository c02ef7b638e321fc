package main

import (
	"context"
	"errors"
	"os"
	"time"

	"accounting/internal/amqp"
	"accounting/internal/cli"
	applog "accounting/internal/log"
	"accounting/internal/services"
	ports "accounting/internal/sheets"
	gsheet "accounting/internal/sheets/google"
	mem "accounting/internal/sheets/memory"
)

// archive-worker consumes ledger.reset events and copies the removed rows
// to the archive spreadsheet.
func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentArchive)
	cfg := cli.LoadAndValidateConfig(logger)

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the archive worker")
		os.Exit(1)
	}

	var archive ports.Archive
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			cli.Fatal(logger, "Failed to initialize Google Sheets client", err)
		}
		archive = client
		logger.Info("Google Sheets archive initialized",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleArchiveSheetName)
	} else {
		archive = mem.New()
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, archiving to memory only")
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer client.Close()

	ctx, done := cli.GracefulShutdown(logger, 15*time.Second, nil)

	logger.Info("Archive worker started", "queue", cfg.AMQPQueue)
	if err := client.ConsumeResetEvents(ctx, services.ArchiveHandler(archive)); err != nil && !errors.Is(err, context.Canceled) {
		cli.Fatal(logger, "Reset event consumption failed", err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Archive worker stopped")
}
