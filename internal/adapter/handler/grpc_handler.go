package handler

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker publishes the state of the cart dependencies on the standard
// gRPC health service. Each dependency is reported under its own service name;
// the empty name is SERVING only when all of them are.
type HealthChecker struct {
	server *health.Server
	deps   map[string]Pinger
	logger *zap.Logger
}

func NewHealthChecker(server *health.Server, deps map[string]Pinger, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{server: server, deps: deps, logger: logger}
}

func (h *HealthChecker) Check(ctx context.Context) bool {
	healthy := true
	for name, dep := range h.deps {
		status := healthpb.HealthCheckResponse_SERVING
		if err := dep.Ping(ctx); err != nil {
			h.logger.Warn("dependency unhealthy", zap.String("dependency", name), zap.Error(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
			healthy = false
		}
		h.server.SetServingStatus(name, status)
	}

	overall := healthpb.HealthCheckResponse_SERVING
	if !healthy {
		overall = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.server.SetServingStatus("", overall)

	return healthy
}

// Run re-checks dependencies every interval until ctx is done.
func (h *HealthChecker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		checkCtx, cancel := context.WithTimeout(ctx, interval)
		h.Check(checkCtx)
		cancel()

		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.C:
		}
	}
}
