// Package grpcserver serves the standard gRPC health service. The cluster
// entry follows periodic connectivity checks against the stored cluster.
package grpcserver

import (
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/minhtt159/sheet-ingest/internal/config"
	"github.com/minhtt159/sheet-ingest/internal/middleware"
)

// ClusterService is the health service name reporting cluster reachability.
const ClusterService = "sheet_ingest.Cluster"

// New returns a gRPC server with the health service registered. The overall
// status is SERVING; ClusterService starts NOT_SERVING until a probe passes.
func New(cfg *config.Config, limiter *middleware.RateLimiter) (*grpc.Server, *health.Server) {
	var interceptors []grpc.UnaryServerInterceptor

	if cfg.Server.BasicAuth.Enabled {
		interceptors = append(interceptors, middleware.BasicAuthUnary(cfg.Server.BasicAuth))
	}
	if rl := middleware.RateLimitUnary(limiter); rl != nil {
		interceptors = append(interceptors, rl)
	}

	var opts []grpc.ServerOption
	if len(interceptors) > 0 {
		opts = append(opts, grpc.ChainUnaryInterceptor(interceptors...))
	}

	server := grpc.NewServer(opts...)
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ClusterService, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(server, hs)
	return server, hs
}

// Listen opens a TCP listener for the configured gRPC port.
func Listen(cfg *config.Config) (net.Listener, string, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", addr)
	return lis, addr, err
}
