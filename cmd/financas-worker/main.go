package main

import (
	"context"
	"errors"
	"os"

	"financas/internal/amqp"
	"financas/internal/backend"
	"financas/internal/cli"
	"financas/internal/log"
	"financas/internal/metrics"
	"financas/internal/services"
	gsheet "financas/internal/sheets/google"
	"financas/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentWorker)
	logger.Info("Starting financas-worker", log.FieldOperation, log.OpStartup)

	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required: the worker mirrors statements to Google Sheets")
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	// The worker consumes; it never publishes.
	backendCfg.AMQPURL = ""
	res, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer res.Close()

	sheetsLogger := logger.WithComponent(log.ComponentSheets)
	sheetsClient, err := gsheet.NewFromEnv(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleStatementSheet)
	if err != nil {
		sheetsLogger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	sheetsLogger.Info("Google Sheets client initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleStatementSheet)

	m := metrics.New()
	ledgerService := services.NewLedgerService(res.Store, res.Store, m)
	statementWorker := worker.NewStatementWorker(ledgerService, sheetsClient, m)

	logger.Info("Performing startup refresh...")
	if err := statementWorker.RefreshCurrentMonth(ctx); err != nil {
		logger.Error("Startup refresh failed", "error", err)
	}

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		go func() {
			err := amqpClient.ConsumeTransactionChanged(ctx, statementWorker.HandleTransactionChanged)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", "error", err)
				stop()
			}
		}()
	} else {
		logger.Info("AMQP disabled, relying on periodic refresh", "interval", cfg.RefreshInterval)
	}

	statementWorker.Run(ctx, cfg.RefreshInterval)
	logger.Info("Worker shutdown complete", log.FieldOperation, log.OpShutdown)
}
