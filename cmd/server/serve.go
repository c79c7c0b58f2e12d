package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "autonotes/internal/mcp"
	"autonotes/internal/notes"
	"autonotes/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo := newRepository(cfg)
	gen, err := newGenerator(cfg, logger)
	if err != nil {
		return err
	}
	if cfg.LLMAPIKey == "" {
		logger.Warn("LLM API key not configured; note generation will fail", "provider", cfg.LLMProvider)
	}

	startCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	logger.Info("opening storage", "backend", cfg.StoreBackend)
	openRepository(startCtx, repo, logger)
	cancel()

	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := repo.Close(closeCtx); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}()

	// Wire dependencies
	svc := notes.NewService(repo, gen, logger)
	handler := server.New(svc, logger, server.Options{
		Version:     version,
		CORSOrigins: cfg.CORSOrigins,
		MCP:         mcpserver.NewServer(svc, version),
	})

	// The write timeout leaves room for one full LLM round trip.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.LLMTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()

		logger.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("server starting", "port", cfg.Port, "version", version)
	logger.Info("endpoints available",
		"api", "http://localhost:"+cfg.Port+"/api/notes",
		"web", "http://localhost:"+cfg.Port+"/notes",
		"mcp", "http://localhost:"+cfg.Port+"/mcp",
	)

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	logger.Info("server stopped")
	return nil
}
