package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mohamedkhairy/pricepulse/internal/api"
	"github.com/mohamedkhairy/pricepulse/internal/config"
	"github.com/mohamedkhairy/pricepulse/internal/engine"
	"github.com/mohamedkhairy/pricepulse/internal/market"
	"github.com/mohamedkhairy/pricepulse/internal/notify"
	"github.com/mohamedkhairy/pricepulse/internal/policy"
	"github.com/mohamedkhairy/pricepulse/internal/store"
	"github.com/mohamedkhairy/pricepulse/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.LogLevel, cfg.Environment); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting alert engine",
		logger.String("database", cfg.Database.Path),
		logger.Duration("scan_interval", cfg.Engine.ScanInterval),
		logger.Int("api_port", cfg.API.Port),
	)

	// Open storage
	st, err := store.Open(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to open store",
			logger.ErrorField(err),
		)
	}
	defer st.Close()

	// Market data gateway with a TTL price cache
	gateway := market.NewCachedGateway(cfg.MarketData, time.Now)

	// Notification transport
	var notifier notify.Notifier
	if cfg.Telegram.BotToken != "" {
		notifier = notify.NewTelegramNotifier(cfg.Telegram)
	} else {
		logger.Warn("No bot token configured, notifications go to the log")
		notifier = notify.NewLogNotifier()
	}

	caps := policy.DefaultCapabilities()

	// Evaluation engine and scheduler
	eng := engine.New(st, gateway, notifier, caps, cfg.Engine)
	scheduler := engine.NewScheduler(eng, cfg.Engine)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := scheduler.Start(ctx); err != nil {
		logger.Fatal("Failed to start scheduler",
			logger.ErrorField(err),
		)
	}

	// HTTP query surface
	server := api.NewServer(cfg.API.Port, gateway, func() interface{} {
		return eng.GetStats()
	})

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start API server",
				logger.ErrorField(err),
			)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	logger.Info("Shutting down alert engine")

	cancel()
	scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("API server shutdown failed",
			logger.ErrorField(err),
		)
	}
}
