package grpcserver

import (
	"context"
	"time"

	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const probeTimeout = 10 * time.Second

// Checker tests cluster connectivity.
type Checker interface {
	Check(ctx context.Context) error
}

// StatusSetter is implemented by *health.Server.
type StatusSetter interface {
	SetServingStatus(service string, status healthpb.HealthCheckResponse_ServingStatus)
}

// Prober keeps ClusterService in sync with the result of Checker.
type Prober struct {
	health   StatusSetter
	checker  Checker
	interval time.Duration
	logger   *zap.Logger
}

func NewProber(health StatusSetter, checker Checker, interval time.Duration, logger *zap.Logger) *Prober {
	return &Prober{
		health:   health,
		checker:  checker,
		interval: interval,
		logger:   logger,
	}
}

// Run probes once immediately and then every interval until ctx is done.
// A non-positive interval probes only once.
func (p *Prober) Run(ctx context.Context) {
	p.Probe(ctx)
	if p.interval <= 0 {
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Probe(ctx)
		}
	}
}

// Probe runs a single check and returns the status it recorded.
func (p *Prober) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := p.checker.Check(ctx); err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		p.logger.Debug("Cluster probe failed", zap.Error(err))
	}
	p.health.SetServingStatus(ClusterService, status)
	return status
}
