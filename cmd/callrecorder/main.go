// Package main is the entry point for the call recorder
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

	"github.com/btafoya/callrecorder/internal/api"
	"github.com/btafoya/callrecorder/internal/config"
	"github.com/btafoya/callrecorder/internal/db"
	"github.com/btafoya/callrecorder/internal/storage"
	"github.com/btafoya/callrecorder/pkg/mixer"
	"github.com/btafoya/callrecorder/pkg/sip"
)

func main() {
	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting callrecorder", "version", "1.0.0")

	// Load configuration
	cfg := config.Load()

	// Ensure data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		slog.Error("Failed to create data directories", "error", err)
		os.Exit(1)
	}

	// Initialize database
	database, err := db.New(cfg.DBPath())
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// Run migrations
	if err := database.Migrate(); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize SIP server
	sipServer, err := sip.NewServer(sip.Config{
		Port:      cfg.SIPPort,
		UserAgent: config.DefaultUserAgent,
	})
	if err != nil {
		slog.Error("Failed to initialize SIP server", "error", err)
		os.Exit(1)
	}

	// Start SIP server
	if err := sipServer.Start(ctx); err != nil {
		slog.Error("Failed to start SIP server", "error", err)
		os.Exit(1)
	}
	slog.Info("SIP server started", "port", cfg.SIPPort)

	// Initialize call recording, if enabled. ENCRYPTION_KEY is required
	// for the recording pipeline specifically; the rest of the service
	// still starts fine without it.
	var recStore *storage.LocalStorage
	if cfg.RecordingEnabled {
		if err := cfg.RequireEncryptionKey(); err != nil {
			slog.Error("Recording is enabled but ENCRYPTION_KEY is not set", "error", err)
			os.Exit(1)
		}

		encCtx, err := storage.FromHex(cfg.EncryptionKey, cfg.EncryptionKeyID)
		if err != nil {
			slog.Error("Invalid ENCRYPTION_KEY", "error", err)
			os.Exit(1)
		}

		recStore = storage.New(cfg.RecordingsPath(), cfg.MaxStorageGB, encCtx)
		if err := recStore.Init(); err != nil {
			slog.Error("Failed to initialize recording storage", "error", err)
			os.Exit(1)
		}

		recMgr := sip.NewRecordingManager(recStore, mixer.Mono, config.RecordingSampleRate, cfg.RecordingMaxPackets, database.Recordings)
		sipServer.SetRecordingManager(recMgr)
		slog.Info("Call recording enabled", "storage_path", cfg.RecordingsPath(), "max_storage_gb", cfg.MaxStorageGB)
	}

	// Initialize and start HTTP server
	router := api.NewRouter(api.NewDependencies(cfg, database, sipServer, recStore))

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server in goroutine
	go func() {
		slog.Info("HTTP server started", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	slog.Info("Shutdown signal received, initiating graceful shutdown...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Shutdown HTTP server
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Stop SIP server
	sipServer.Stop()

	slog.Info("callrecorder shutdown complete")
}
