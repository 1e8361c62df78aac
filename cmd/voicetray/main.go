package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voicetray/voicetray/internal/app"
	"github.com/voicetray/voicetray/internal/audio"
	"github.com/voicetray/voicetray/internal/config"
	"github.com/voicetray/voicetray/internal/logging"
	"github.com/voicetray/voicetray/internal/permissions"
	"github.com/voicetray/voicetray/internal/recorder"
	"github.com/voicetray/voicetray/internal/relay"
	"github.com/voicetray/voicetray/internal/server"
	"github.com/voicetray/voicetray/internal/tray"
)

var (
	// Version is set via ldflags at build time
	Version = "dev"
	// Commit is set via ldflags at build time
	Commit = "unknown"
)

func main() {
	// Load config from XDG/Library/AppData
	cfg, err := config.Load()
	if err != nil {
		// Use default logger if config fails to load
		log := logging.New()
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	// Initialize logger with configured level
	log := logging.NewWithLevel(cfg.LogLevel)

	// macOS requires explicit microphone approval before capture works
	if err := permissions.EnsurePermissions(); err != nil {
		log.Fatal().Err(err).Msg("Required permissions not granted")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the audio backend
	host, err := audio.NewHost(log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize audio")
	}
	defer host.Close()

	rec := recorder.New(host, log)

	// Create tray UI first (we'll pass it to app)
	trayUI := tray.New(cfg, log, Version, Commit)

	// Create app with tray as status updater
	application := app.New(app.Config{
		Recorder:      rec,
		Config:        cfg,
		Logger:        log,
		StatusUpdater: trayUI,
	})

	// Set app reference in tray
	trayUI.SetApp(application)

	// Optional localhost API for the webview frontend
	var api *server.Server
	if cfg.Server.Enabled {
		relayClient := relay.New(cfg.Relay, log)
		api = server.New(cfg.Server.Address, application, relayClient, log)
		api.Start()
	}

	log.Info().Str("version", Version).Msg("voicetray starting...")

	// Setup shutdown signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Shutting down...")
		if api != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := api.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("HTTP API shutdown error")
			}
			shutdownCancel()
		}
		if err := application.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Shutdown error")
		}
		os.Exit(0)
	}()

	// Start tray UI - MUST run on main thread
	if err := trayUI.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Tray error")
	}
}
