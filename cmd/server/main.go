package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/timegrid/internal/api"
	"github.com/dgallion1/timegrid/internal/config"
	"github.com/dgallion1/timegrid/internal/fetch"
	"github.com/dgallion1/timegrid/internal/pipeline"
	"github.com/dgallion1/timegrid/internal/render"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	theme, err := render.LoadTheme(cfg.ThemePath)
	if err != nil {
		log.Error("invalid theme", "path", cfg.ThemePath, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	fetcher := fetch.NewClient(cfg.FetchTimeout, cfg.SourceAuthToken, cfg.MaxFetchBytes)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, fetcher, theme, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, theme, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		fetcher.Close()
	}()

	log.Info("starting timegrid", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
