package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"viaggi/internal/amqp"
	"viaggi/internal/backend"
	"viaggi/internal/config"
	"viaggi/internal/export/sheets"
	applog "viaggi/internal/log"
	"viaggi/internal/services"
	"viaggi/internal/vision"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.FromEnv(applog.ComponentWorker))
	applog.SetDefault(logger)

	logger.Info("Starting viaggi-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}
	if cfg.GeminiAPIKey == "" {
		logger.Error("GEMINI_API_KEY is required for the worker")
		os.Exit(1)
	}

	result, err := backend.Open(backend.Config{
		Type:         backend.Type(cfg.DataBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
	})
	if err != nil {
		logger.Error("Failed to open storage backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	analyzer, err := vision.New(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Error("Failed to initialize receipt analyzer", "error", err)
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP broker", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	// The worker scans inline; no publisher, or every scan would loop back
	// into the queue.
	expenses := services.NewExpenseService(result.Store, nil, analyzer)
	processor := services.NewScanProcessor(client, expenses)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	if err := processor.Start(gctx); err != nil {
		logger.Error("Failed to start scan processor", "error", err)
		os.Exit(1)
	}

	var reports *services.ReportWorker
	if cfg.SheetsEnabled() {
		publisher, err := sheets.New(gctx, sheets.Config{
			SpreadsheetID:   cfg.SheetsSpreadsheetID,
			SheetName:       cfg.SheetsSheetName,
			CredentialsJSON: cfg.SheetsCredentialsJSON,
			CredentialsFile: cfg.SheetsCredentialsFile,
		})
		if err != nil {
			logger.Error("Failed to initialize sheets publisher", "error", err)
			os.Exit(1)
		}
		reports = services.NewReportWorker(result.Store, publisher, 15*time.Minute)
		if err := reports.Start(gctx); err != nil {
			logger.Error("Failed to start report worker", "error", err)
			os.Exit(1)
		}
		logger.Info("Trip report publishing enabled", "spreadsheet_id", cfg.SheetsSpreadsheetID)
	} else {
		logger.Info("Trip report publishing disabled, no spreadsheet configured")
	}

	g.Go(func() error {
		<-gctx.Done()

		stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.ScanStopTimeout)
		defer stopCancel()

		if reports != nil {
			if err := reports.Stop(stopCtx); err != nil {
				logger.Error("Report worker stop error", "error", err)
			}
		}
		return processor.Stop(stopCtx)
	})

	logger.Info("Worker running", "queue", cfg.AMQPQueue)
	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
