package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", c.AppEnv)
	assert.Equal(t, "8080", c.HttpServer.Port)
	assert.Equal(t, 15*time.Second, c.HttpServer.TimeoutRead)
	assert.Equal(t, "9090", c.GrpcServer.Port)
	assert.True(t, c.GrpcServer.Enabled)
	assert.Equal(t, "http://localhost:7071/api", c.CatalogAPI.BaseURL)
	assert.Equal(t, 10*time.Second, c.CatalogAPI.Timeout)
	assert.Equal(t, 10, c.Dashboard.PageSize)
	assert.Equal(t, 300*time.Millisecond, c.Dashboard.SearchDebounce)
	assert.Equal(t, 5*time.Second, c.Dashboard.NotificationTTL)
	assert.Equal(t, "7071", c.Backend.Port)
	assert.Equal(t, "/api", c.Backend.BasePath)
	assert.True(t, c.Backend.Seed)
	assert.Equal(t, "none", c.Telemetry.Exporter)
	assert.Equal(t, 60*time.Second, c.Telemetry.MetricInterval)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("CATALOG_API_BASE_URL", "https://catalog.example.com/api")
	t.Setenv("DASHBOARD_PAGE_SIZE", "25")
	t.Setenv("DASHBOARD_SEARCH_DEBOUNCE", "150ms")
	t.Setenv("GRPC_SERVER_ENABLED", "false")
	t.Setenv("BACKEND_SEED", "false")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://catalog.example.com/api", c.CatalogAPI.BaseURL)
	assert.Equal(t, 25, c.Dashboard.PageSize)
	assert.Equal(t, 150*time.Millisecond, c.Dashboard.SearchDebounce)
	assert.False(t, c.GrpcServer.Enabled)
	assert.False(t, c.Backend.Seed)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unparsable page size", "DASHBOARD_PAGE_SIZE", "ten"},
		{"zero page size", "DASHBOARD_PAGE_SIZE", "0"},
		{"relative base url", "CATALOG_API_BASE_URL", "/api"},
		{"unsupported scheme", "CATALOG_API_BASE_URL", "ftp://catalog/api"},
		{"base path without slash", "BACKEND_BASE_PATH", "api"},
		{"zero notification ttl", "DASHBOARD_NOTIFICATION_TTL", "0s"},
		{"unknown exporter", "OTEL_EXPORTER", "jaeger"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_ReturnsIndependentConfigs(t *testing.T) {
	first, err := Load()
	require.NoError(t, err)

	t.Setenv("DASHBOARD_PAGE_SIZE", "50")
	second, err := Load()
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, 10, first.Dashboard.PageSize)
	assert.Equal(t, 50, second.Dashboard.PageSize)
}
