package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campuskeep/lostfound/internal/config"
	"github.com/campuskeep/lostfound/internal/domain"
	"github.com/campuskeep/lostfound/internal/httpserver"
	"github.com/campuskeep/lostfound/internal/notify"
	"github.com/campuskeep/lostfound/internal/sqlite"
	"github.com/campuskeep/lostfound/internal/webhook"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := sqlite.EnsureSchema(db); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	logger.Info("connected to database", "path", cfg.DatabasePath)

	store := sqlite.NewStore(db)

	// Observer registry: stored notifications always; webhook forwarding and
	// the websocket stream when configured/connected.
	registry := domain.NewRegistry(logger)
	notifier := notify.NewStoreNotifier(db, logger)
	registry.Subscribe(notify.NewBridge(notifier))
	if cfg.WebhookURL != "" {
		registry.Subscribe(notify.NewBridge(webhook.NewClient(cfg.WebhookURL)))
		logger.Info("webhook forwarding enabled", "url", cfg.WebhookURL)
	}
	hub := httpserver.NewHub(logger)
	registry.Subscribe(hub)

	matcher, err := domain.NewService(store, store, registry, domain.MatcherConfig{
		AutoThreshold:     cfg.MatchThreshold,
		SuggestFloor:      cfg.SuggestMinScore,
		SuggestWindowDays: cfg.SuggestWindowDays,
	}, logger)
	if err != nil {
		return fmt.Errorf("create matching service: %w", err)
	}

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Start background match expiry
	go matcher.StartExpiryJob(ctx, time.Hour, time.Duration(cfg.MatchExpiryDays)*24*time.Hour)

	// Start the HTTP server
	server := httpserver.NewServer(cfg, matcher, notifier, hub, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server exited with error", "error", err)
		}
	}()

	logger.Info("server started", "port", cfg.Port)

	// Wait for shutdown signal
	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)
	cancel()

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("error shutting down http server", "error", err)
	}

	return nil
}
