package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"squish/config"
	"squish/internal/adapter/ffmpeg"
	httpadapter "squish/internal/adapter/http"
	sqlitestore "squish/internal/adapter/storage/sqlite"
	"squish/internal/domain"
	"squish/internal/infrastructure/logger"
	"squish/internal/service"
)

func newServeCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the encode daemon and its HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			return runServe(cfg)
		},
	}
}

func runServe(cfg *config.Config) error {
	logger.Info.Printf("starting squish %s on %s", version, cfg.Bind)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	lock := flock.New(filepath.Join(cfg.DataDir, "squishd.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return errors.New("another squish daemon instance is already running")
	}
	defer func() { _ = lock.Unlock() }()

	store, err := sqlitestore.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = store.Close() }()

	prober := ffmpeg.NewProber(cfg.FFprobePath)
	encoder := ffmpeg.NewEncoder(cfg.FFmpegPath)
	runner := service.NewRunner(prober, encoder)
	sink := service.NewLogSink(cfg.LogBufferLines)

	settings := cfg.Settings()
	supervisor := service.NewSupervisor(store, runner, func() domain.EncodeSettings {
		return settings
	}, sink)

	supervisorCtx, supervisorCancel := context.WithCancel(context.Background())
	defer supervisorCancel()
	go supervisor.Run(supervisorCtx)

	server := httpadapter.NewServer(supervisor, sink, cfg.APITokenHash, version)

	httpServer := &http.Server{
		Addr:        cfg.Bind,
		Handler:     server,
		ReadTimeout: 1 * time.Minute,
		// No WriteTimeout: the log stream endpoint holds connections
		// open indefinitely.
		IdleTimeout: 120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info.Printf("received %s, shutting down", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error.Printf("http shutdown error: %v", err)
		}

		// Stop the supervisor; an in-flight ffmpeg run is killed through
		// its context and the job is reset to waiting on next start.
		supervisorCancel()

		logger.Info.Printf("shutdown complete")
	}()

	logger.Info.Printf("server listening on %s", cfg.Bind)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
