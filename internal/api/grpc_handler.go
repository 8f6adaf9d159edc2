package api

import (
	"log"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// HealthServiceName is the service name reported over the gRPC health protocol.
const HealthServiceName = "catalog-admin.Dashboard"

// HealthReporter publishes the console's view of the catalog API over the
// gRPC Health Checking Protocol. The overall server ("") is always SERVING;
// HealthServiceName follows the outcome of the latest catalog call.
type HealthReporter struct {
	server *health.Server
	logger *log.Logger

	mu        sync.Mutex
	reachable *bool
}

// NewHealthReporter creates a reporter. HealthServiceName starts as NOT_SERVING
// until the first catalog call succeeds.
func NewHealthReporter(logger *log.Logger) *HealthReporter {
	if logger == nil {
		logger = log.Default()
	}
	s := health.NewServer()
	s.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	s.SetServingStatus(HealthServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	return &HealthReporter{server: s, logger: logger}
}

// CatalogReachable records whether the last catalog call reached the API.
// Transitions are logged; repeated reports of the same state are not.
func (h *HealthReporter) CatalogReachable(ok bool) {
	h.mu.Lock()
	changed := h.reachable == nil || *h.reachable != ok
	h.reachable = &ok
	h.mu.Unlock()

	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if ok {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	h.server.SetServingStatus(HealthServiceName, status)
	if changed {
		h.logger.Printf("INFO: Catalog API health is now %s", status)
	}
}

// Server returns the underlying health server.
func (h *HealthReporter) Server() grpc_health_v1.HealthServer {
	return h.server
}

// Shutdown marks every service NOT_SERVING so clients drain before the server stops.
func (h *HealthReporter) Shutdown() {
	h.server.Shutdown()
}

// NewGRPCServer builds the gRPC server carrying the health and reflection services.
func NewGRPCServer(logger *log.Logger, reporter *HealthReporter) *grpc.Server {
	s := grpc.NewServer()

	// Register gRPC Health Checking Protocol service.
	grpc_health_v1.RegisterHealthServer(s, reporter.Server())
	logger.Println("INFO: gRPC health check service registered.")

	// Enable gRPC server reflection (useful for tools like grpcurl).
	reflection.Register(s)
	logger.Println("INFO: gRPC reflection service registered.")

	return s
}
