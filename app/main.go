package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goncharom/yomu/app/api"
	"github.com/goncharom/yomu/app/cfg"
	"github.com/goncharom/yomu/app/config"
	"github.com/goncharom/yomu/app/content"
	"github.com/goncharom/yomu/app/daemon"
	"github.com/goncharom/yomu/app/database"
	"github.com/goncharom/yomu/app/delivery"
	"github.com/goncharom/yomu/app/fetch"
	"github.com/goncharom/yomu/app/newsletter"
	"github.com/goncharom/yomu/app/schedule"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Yomu", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	migrationVersion, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", migrationVersion, "dirty", dirty)

	if appCfg.InitDB {
		slog.Info("Database initialized, exiting")
		return
	}

	cacheRepo := database.NewCacheRepository(db)

	if appCfg.ClearAllCache {
		deleted, err := cacheRepo.ClearAll()
		if err != nil {
			slog.Error("Failed to clear extraction cache", "error", err)
			os.Exit(1)
		}
		slog.Info("Extraction cache cleared", "deleted", deleted)
		return
	}

	if len(appCfg.ClearCacheKeys) > 0 {
		deleted, err := cacheRepo.ClearKeys(appCfg.ClearCacheKeys)
		if err != nil {
			slog.Error("Failed to clear extraction cache keys", "error", err)
			os.Exit(1)
		}
		slog.Info("Extraction cache keys cleared", "requested", len(appCfg.ClearCacheKeys), "deleted", deleted)
		return
	}

	newsletterConfig, err := config.Load(appCfg.ConfigFile)
	if err != nil {
		slog.Error("Failed to load newsletter configuration", "file", appCfg.ConfigFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Newsletter configuration loaded",
		"file", appCfg.ConfigFile,
		"sources", len(newsletterConfig.Sources),
		"frequencies", len(newsletterConfig.Frequencies))

	schedules, err := schedule.Parse(newsletterConfig.Frequencies)
	if err != nil {
		slog.Error("Failed to parse schedules", "error", err)
		os.Exit(1)
	}

	runRepo := database.NewRunRepository(db)

	httpClient := &http.Client{}
	fetcher := fetch.NewHTTPFetcher(httpClient, cacheRepo, appCfg.UserAgent)
	deliverer := delivery.NewSpoolDeliverer(appCfg.SpoolDir)
	buffer := content.NewFallbackBuffer(newsletterConfig.FallbackBufferCapacity)

	coordinator := newsletter.NewCoordinator(newsletterConfig, fetcher, deliverer, runRepo, buffer)

	d := daemon.NewDaemon(schedules, coordinator)
	d.Start()
	defer d.Stop()

	apiHandler := api.NewHandler(newsletterConfig, schedules, runRepo, coordinator)
	server := api.NewServer(apiHandler, appCfg.Version)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	if nextFire, err := schedules.NextFire(time.Now()); err == nil {
		slog.Info("Daemon started", "next_fire_at", nextFire.Format(time.RFC3339))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("HTTP server error, shutting down", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Daemon is stopped via defer; an in-flight cycle finishes its
	// delivery and commit before Stop returns.
	slog.Info("Shutdown complete")
}
