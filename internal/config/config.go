package config

import (
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the application's configuration values.
// Tags like `envconfig:"APP_PORT"` specify the environment variable name.
// `default:""` provides a default value if the env var is not set.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"` // e.g., development, staging, production
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`      // e.g., debug, info, warn, error
	HttpServer ServerConfig
	GrpcServer GrpcServerConfig
	CatalogAPI CatalogAPIConfig
	Dashboard  DashboardConfig
	Backend    BackendConfig
	Telemetry  TelemetryConfig
}

// ServerConfig holds HTTP server-specific configurations for the console.
type ServerConfig struct {
	Port         string        `envconfig:"HTTP_SERVER_PORT" default:"8080"`
	TimeoutRead  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_READ" default:"15s"`
	TimeoutWrite time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_WRITE" default:"15s"`
	TimeoutIdle  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_IDLE" default:"60s"`
}

// GrpcServerConfig holds gRPC server-specific configurations.
type GrpcServerConfig struct {
	Port    string `envconfig:"GRPC_SERVER_PORT" default:"9090"`
	Enabled bool   `envconfig:"GRPC_SERVER_ENABLED" default:"true"`
}

// CatalogAPIConfig points the console at the remote catalog API.
type CatalogAPIConfig struct {
	BaseURL string        `envconfig:"CATALOG_API_BASE_URL" default:"http://localhost:7071/api"`
	Timeout time.Duration `envconfig:"CATALOG_API_TIMEOUT" default:"10s"`
}

// DashboardConfig tunes the console's browsing behaviour.
type DashboardConfig struct {
	PageSize        int           `envconfig:"DASHBOARD_PAGE_SIZE" default:"10"`
	SearchDebounce  time.Duration `envconfig:"DASHBOARD_SEARCH_DEBOUNCE" default:"300ms"`
	NotificationTTL time.Duration `envconfig:"DASHBOARD_NOTIFICATION_TTL" default:"5s"`
}

// BackendConfig configures the in-memory development catalog API.
type BackendConfig struct {
	Port     string `envconfig:"BACKEND_PORT" default:"7071"`
	BasePath string `envconfig:"BACKEND_BASE_PATH" default:"/api"`
	Seed     bool   `envconfig:"BACKEND_SEED" default:"true"`
}

// TelemetryConfig selects the OpenTelemetry exporter for catalog API calls.
type TelemetryConfig struct {
	Exporter       string        `envconfig:"OTEL_EXPORTER" default:"none"` // none, stdout
	MetricInterval time.Duration `envconfig:"OTEL_METRIC_INTERVAL" default:"60s"`
}

// Validate reports configuration values that envconfig accepts but the
// application cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.CatalogAPI.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid CATALOG_API_BASE_URL: %q", c.CatalogAPI.BaseURL)
	}
	if c.Dashboard.PageSize <= 0 {
		return fmt.Errorf("invalid DASHBOARD_PAGE_SIZE: %d", c.Dashboard.PageSize)
	}
	if c.Dashboard.SearchDebounce < 0 {
		return fmt.Errorf("invalid DASHBOARD_SEARCH_DEBOUNCE: %s", c.Dashboard.SearchDebounce)
	}
	if c.Dashboard.NotificationTTL <= 0 {
		return fmt.Errorf("invalid DASHBOARD_NOTIFICATION_TTL: %s", c.Dashboard.NotificationTTL)
	}
	if c.Telemetry.Exporter != "none" && c.Telemetry.Exporter != "stdout" {
		return fmt.Errorf("invalid OTEL_EXPORTER: %q", c.Telemetry.Exporter)
	}
	if c.Backend.BasePath == "" || c.Backend.BasePath[0] != '/' {
		return fmt.Errorf("invalid BACKEND_BASE_PATH: %q", c.Backend.BasePath)
	}
	return nil
}

// Load initializes the configuration from environment variables.
// It should be called once during application startup.
func Load() (*Config, error) {
	log.Println("Loading service configuration...")
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil { // The first argument is a prefix for env vars, empty means no prefix
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Printf("Configuration loaded successfully for APP_ENV: %s", cfg.AppEnv)
	return &cfg, nil
}
