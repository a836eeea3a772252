package services

import (
	"context"
	"net/http"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Pinger is anything that can report whether its backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) bool
}

// HealthCheckService implements gRPC health checking on top of the cart's
// storage backend.
type HealthCheckService struct {
	store Pinger
	healthpb.UnimplementedHealthServer
}

// NewHealthCheckService constructor
func NewHealthCheckService(store Pinger) *HealthCheckService {
	return &HealthCheckService{store: store}
}

// Check RPC: SERVING when the storage backend answers a Ping.
func (h *HealthCheckService) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if h.store.Ping(ctx) {
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
}

// ServeHTTP answers GET /healthz with the same verdict as Check.
func (h *HealthCheckService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.store.Ping(r.Context()) {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}
