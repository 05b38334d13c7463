package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/paaavkata/crypto-market-dashboard/internal/collector"
	"github.com/paaavkata/crypto-market-dashboard/internal/config"
	"github.com/paaavkata/crypto-market-dashboard/internal/health"
	"github.com/paaavkata/crypto-market-dashboard/internal/web"
	"github.com/paaavkata/crypto-market-dashboard/pkg/coingecko"
	"github.com/paaavkata/crypto-market-dashboard/pkg/utils"
)

func main() {
	// Initialize logger
	logger := utils.NewLogger("market-dashboard")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	logger.WithFields(logrus.Fields{
		"http_port":          cfg.HTTPPort,
		"coingecko_base_url": cfg.CoinGecko.BaseURL,
		"list_poll_interval": cfg.ListPollInterval,
		"swap_poll_interval": cfg.SwapPollInterval,
		"mock_fallback":      cfg.MockFallback,
	}).Info("Configuration loaded")

	// Initialize CoinGecko client
	client := coingecko.NewClient(cfg.CoinGecko, logger)
	fetcher := collector.NewFetcher(client, cfg.MockFallback, logger)

	// Initialize health checker
	healthChecker := health.NewHealthChecker(client, cfg.MockFallback, logger)

	server := web.NewServer(fetcher, healthChecker, web.Options{
		ListPollInterval: cfg.ListPollInterval,
		SwapPollInterval: cfg.SwapPollInterval,
		ChartMAPeriod:    cfg.ChartMAPeriod,
	}, logger)
	httpServer := server.Start(cfg.HTTPPort)

	logger.Info("Market dashboard service started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down market dashboard service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx, httpServer); err != nil {
		logger.WithError(err).Error("Failed to shutdown dashboard server gracefully")
	}

	logger.Info("Market dashboard service stopped")
}
