// Package server runs the HTTP API, the gRPC health service and the cluster
// probe until its context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	"github.com/minhtt159/sheet-ingest/internal/config"
	"github.com/minhtt159/sheet-ingest/internal/grpcserver"
	"github.com/minhtt159/sheet-ingest/internal/httpserver"
	"github.com/minhtt159/sheet-ingest/internal/middleware"
)

const shutdownTimeout = 10 * time.Second

// Server bundles both listeners and the probe.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger
	http   *http.Server
	grpc   *grpc.Server
	health *health.Server
	prober *grpcserver.Prober
}

// New wires svc into both servers. The limiter is shared, so a client's
// HTTP and gRPC calls draw from the same bucket.
func New(cfg *config.Config, svc httpserver.Service, logger *zap.Logger) *Server {
	limiter := middleware.NewRateLimiter(cfg.Server.RateLimit)
	grpcSrv, hs := grpcserver.New(cfg, limiter)
	interval := time.Duration(cfg.Server.HealthProbeInterval) * time.Second

	return &Server{
		cfg:    cfg,
		logger: logger,
		http:   httpserver.New(cfg, svc, limiter, logger),
		grpc:   grpcSrv,
		health: hs,
		prober: grpcserver.NewProber(hs, svc, interval, logger),
	}
}

// Run listens on the configured ports and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	httpLis, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen http %s: %w", s.http.Addr, err)
	}
	grpcLis, addr, err := grpcserver.Listen(s.cfg)
	if err != nil {
		_ = httpLis.Close()
		return fmt.Errorf("listen grpc %s: %w", addr, err)
	}
	return s.Serve(ctx, httpLis, grpcLis)
}

// Serve uses the given listeners. It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, httpLis, grpcLis net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("HTTP server listening", zap.String("addr", httpLis.Addr().String()))
		if err := s.http.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		s.logger.Info("gRPC server listening", zap.String("addr", grpcLis.Addr().String()))
		if err := s.grpc.Serve(grpcLis); err != nil {
			return fmt.Errorf("serve grpc: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		s.prober.Run(ctx)
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("Shutting down...")
		s.health.Shutdown()
		s.grpc.GracefulStop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	s.logger.Info("Shutdown complete")
	return err
}
