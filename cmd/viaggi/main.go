package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"viaggi/internal/amqp"
	"viaggi/internal/backend"
	"viaggi/internal/config"
	apphttp "viaggi/internal/http"
	applog "viaggi/internal/log"
	"viaggi/internal/rates"
	"viaggi/internal/services"
	"viaggi/internal/settings"
	"viaggi/internal/vision"
)

func main() {
	// .env is for local development; missing file is fine.
	_ = godotenv.Load()

	logger := applog.New(applog.FromEnv(applog.ComponentApp))
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
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
	logger.Info("Storage backend ready", "backend", cfg.DataBackend)

	// Receipt scans go through the queue when a broker is configured,
	// otherwise the API analyzes inline (or leaves scans pending when no
	// vision credential is set either).
	var publisher services.ScanPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP broker", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		logger.Info("AMQP scan queue ready", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("No AMQP broker configured, receipt scans run inline")
	}

	var analyzer services.ReceiptAnalyzer
	if cfg.GeminiAPIKey != "" {
		a, err := vision.New(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("Failed to initialize receipt analyzer", "error", err)
			os.Exit(1)
		}
		analyzer = a
	} else {
		logger.Info("No Gemini credential configured, receipt analysis disabled")
	}

	var provider rates.Provider
	if cfg.RatesAPIToken != "" {
		if cfg.RatesBaseURL != "" {
			provider = rates.NewHTTPProviderWithBase(cfg.RatesAPIToken, cfg.RatesBaseURL)
		} else {
			provider = rates.NewHTTPProvider(cfg.RatesAPIToken)
		}
	} else {
		logger.Info("No rates credential configured, using static fallback table")
	}

	expenses := services.NewExpenseService(result.Store, publisher, analyzer)
	prefs := settings.NewStore(cfg.SettingsPath)

	srv := apphttp.NewServer(apphttp.Config{
		Addr:           ":" + cfg.Port,
		AllowedOrigins: cfg.AllowedOrigins,
	}, result.Store, expenses, rates.NewResolver(provider), prefs)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting viaggi server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
