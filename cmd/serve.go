package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog-admin/internal/api"
	"catalog-admin/internal/catalogclient"
	"catalog-admin/internal/dashboard"
	"catalog-admin/internal/observability"
	"catalog-admin/internal/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web console",
	Long: `Serve starts the web console on HTTP_SERVER_PORT and, unless disabled,
a gRPC server carrying the health and reflection services on GRPC_SERVER_PORT.
The console talks to the catalog API at CATALOG_API_BASE_URL.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	logger.Println("INFO: Starting console...")

	telemetry, err := observability.NewProviders(observability.ProviderConfig{
		ServiceName:    "catalog-admin",
		Exporter:       cfg.Telemetry.Exporter,
		Writer:         os.Stdout,
		MetricInterval: cfg.Telemetry.MetricInterval,
	})
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(ctx); err != nil {
			logger.Printf("WARN: Telemetry shutdown failed: %v", err)
		}
	}()
	logger.Printf("INFO: Telemetry exporter: %s", cfg.Telemetry.Exporter)

	client, err := catalogclient.New(cfg.CatalogAPI.BaseURL,
		catalogclient.WithTimeout(cfg.CatalogAPI.Timeout),
		catalogclient.WithLogger(logger),
		catalogclient.WithTracerProvider(telemetry.Tracer),
		catalogclient.WithMeterProvider(telemetry.Meter),
	)
	if err != nil {
		return err
	}

	reporter := api.NewHealthReporter(logger)
	controller := dashboard.NewController(client, dashboard.Options{
		PageSize:        cfg.Dashboard.PageSize,
		NotificationTTL: cfg.Dashboard.NotificationTTL,
		Logger:          logger,
		Observer:        reporter,
	})

	consoleHandler, err := web.NewHandler(controller, logger, cfg.Dashboard.SearchDebounce)
	if err != nil {
		return err
	}

	// --- Setup & Start HTTP Server ---
	httpRouter := chi.NewRouter()
	setupBaseMiddleware(httpRouter, logger)
	httpRouter.Use(observability.ServerTiming)
	registerHealthCheck(httpRouter, logger, controller)
	consoleHandler.RegisterRoutes(httpRouter)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HttpServer.Port,
		Handler:      httpRouter,
		ReadTimeout:  cfg.HttpServer.TimeoutRead,
		WriteTimeout: cfg.HttpServer.TimeoutWrite,
		IdleTimeout:  cfg.HttpServer.TimeoutIdle,
	}

	// Initial load. A failure is already shown as a notification, so the console still starts.
	loadCtx, cancelLoad := context.WithTimeout(cmd.Context(), cfg.CatalogAPI.Timeout)
	if err := controller.Refresh(loadCtx); err != nil {
		logger.Printf("WARN: Initial catalog load failed: %v", err)
	}
	cancelLoad()

	go func() {
		logger.Printf("INFO: HTTP server listening on port %s", cfg.HttpServer.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("FATAL: HTTP server ListenAndServe error: %v", err)
		}
		logger.Println("INFO: HTTP server has stopped.")
	}()

	// --- Setup & Start gRPC Server ---
	var grpcServer *grpc.Server
	if cfg.GrpcServer.Enabled {
		grpcServer = api.NewGRPCServer(logger, reporter)
		grpcListener, err := net.Listen("tcp", ":"+cfg.GrpcServer.Port)
		if err != nil {
			return err
		}

		go func() {
			logger.Printf("INFO: gRPC server listening on port %s", cfg.GrpcServer.Port)
			if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				logger.Fatalf("FATAL: gRPC server Serve error: %v", err)
			}
			logger.Println("INFO: gRPC server has stopped.")
		}()
	}

	// --- Graceful Shutdown ---
	shutdownComplete := make(chan struct{})
	go waitForShutdown(logger, httpServer, grpcServer, reporter, shutdownComplete)

	<-shutdownComplete
	logger.Println("INFO: Console shutdown sequence finished.")
	return nil
}

func setupBaseMiddleware(router *chi.Mux, logger *log.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger) // Chi's request logger
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second)) // Default timeout for requests
	logger.Println("INFO: Base HTTP middleware registered.")
}

func registerHealthCheck(router *chi.Mux, logger *log.Logger, controller *dashboard.Controller) {
	healthPath := "/api/v1/healthz"
	router.Get(healthPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK) // Always 200, but payload indicates detailed status
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":      "healthy",
			"serviceName": defaultAppName,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"mode":        controller.Mode().String(),
			"products":    len(controller.Products()),
		})
	})
	logger.Printf("INFO: HTTP health check registered at %s", healthPath)
}

func waitForShutdown(
	logger *log.Logger,
	httpServer *http.Server,
	grpcServer *grpc.Server, // nil when gRPC is disabled
	reporter *api.HealthReporter,
	shutdownComplete chan struct{},
) {
	defer close(shutdownComplete)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-sigChan
	logger.Printf("INFO: Received signal: %s. Starting graceful shutdown...", receivedSignal)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	reporter.Shutdown()

	stoppedGrpc := make(chan struct{})
	if grpcServer != nil {
		logger.Println("INFO: Attempting to gracefully shut down gRPC server...")
		go func() {
			grpcServer.GracefulStop()
			close(stoppedGrpc)
		}()
	} else {
		close(stoppedGrpc)
	}

	logger.Println("INFO: Attempting to gracefully shut down HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("WARN: HTTP server graceful shutdown failed: %v", err)
	} else {
		logger.Println("INFO: HTTP server gracefully shut down.")
	}

	select {
	case <-stoppedGrpc:
		logger.Println("INFO: gRPC server gracefully shut down.")
	case <-shutdownCtx.Done():
		logger.Printf("WARN: gRPC server graceful shutdown timed out: %v", shutdownCtx.Err())
		if grpcServer != nil {
			logger.Println("INFO: Forcing gRPC server stop...")
			grpcServer.Stop()
			logger.Println("INFO: gRPC server forced stop.")
		}
	}

	logger.Println("INFO: Graceful shutdown sequence completed.")
}
