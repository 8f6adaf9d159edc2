package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog-admin/internal/api"
	"catalog-admin/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
)

var backendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Run the in-memory development catalog API",
	Long: `Backend serves the catalog REST API under BACKEND_BASE_PATH on
BACKEND_PORT. Products live in memory and are lost on exit; BACKEND_SEED
inserts three sample products at startup.`,
	RunE: runBackend,
}

func runBackend(cmd *cobra.Command, args []string) error {
	memStore := store.NewMemoryStore()
	if cfg.Backend.Seed {
		n, err := memStore.SeedSampleProducts(cmd.Context())
		if err != nil {
			return err
		}
		logger.Printf("INFO: Seeded %d sample products", n)
	}

	handler := api.NewHTTPHandler(memStore, logger)
	router := chi.NewRouter()
	setupBaseMiddleware(router, logger)
	router.Route(cfg.Backend.BasePath, handler.RegisterRoutes)
	logger.Printf("INFO: Catalog API routes registered under %s", cfg.Backend.BasePath)

	server := &http.Server{
		Addr:         ":" + cfg.Backend.Port,
		Handler:      router,
		ReadTimeout:  cfg.HttpServer.TimeoutRead,
		WriteTimeout: cfg.HttpServer.TimeoutWrite,
		IdleTimeout:  cfg.HttpServer.TimeoutIdle,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("INFO: Catalog API listening on port %s", cfg.Backend.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Println("INFO: Shutting down catalog API...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("WARN: Catalog API graceful shutdown failed: %v", err)
		return err
	}
	logger.Println("INFO: Catalog API gracefully shut down.")
	return nil
}
