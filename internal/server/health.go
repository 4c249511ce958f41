package server

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name reported next to the overall status.
const ServiceName = "pdfx.Extractor"

// HealthServer exposes grpc_health_v1 for orchestrators. Status follows the store ping.
type HealthServer struct {
	grpc   *grpc.Server
	health *health.Server
	ping   func(ctx context.Context) error
	logger *slog.Logger
}

func NewHealthServer(ping func(ctx context.Context) error, logger *slog.Logger) *HealthServer {
	if logger == nil {
		logger = slog.Default()
	}
	gs := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	reflection.Register(gs)

	h := &HealthServer{grpc: gs, health: hs, ping: ping, logger: logger}
	h.setServing(true)
	return h
}

func (h *HealthServer) setServing(ok bool) {
	status := healthpb.HealthCheckResponse_SERVING
	if !ok {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
}

// Check pings the store once and updates the reported status.
func (h *HealthServer) Check(ctx context.Context) bool {
	ok := true
	if h.ping != nil {
		if err := h.ping(ctx); err != nil {
			h.logger.Warn("health.check.failed", "error", err)
			ok = false
		}
	}
	h.setServing(ok)
	return ok
}

// Watch re-checks health every interval until ctx is done.
func (h *HealthServer) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			h.Check(ctx)
		}
	}
}

// Serve blocks serving gRPC on lis.
func (h *HealthServer) Serve(lis net.Listener) error {
	h.logger.Info("grpc health listening", "addr", lis.Addr().String())
	return h.grpc.Serve(lis)
}

// Stop marks the service as not serving and drains connections.
func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.grpc.GracefulStop()
}
