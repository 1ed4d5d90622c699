package grpcserver

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/proto"

	"github.com/minhtt159/sheet-ingest/internal/config"
)

type stubChecker struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (s *stubChecker) Check(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.err
}

func (s *stubChecker) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *stubChecker) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestProbeUpdatesClusterStatus(t *testing.T) {
	srv, hs := New(&config.Config{}, nil)
	client := dialBufConn(t, srv)
	checker := &stubChecker{}
	prober := NewProber(hs, checker, 0, zap.NewNop())
	ctx := context.Background()

	if got := prober.Probe(ctx); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("Probe() = %v, want SERVING", got)
	}
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: ClusterService})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !proto.Equal(resp, servingStatus(healthpb.HealthCheckResponse_SERVING)) {
		t.Fatalf("cluster status = %v", resp)
	}

	checker.setErr(errors.New("cannot connect to the cluster"))
	if got := prober.Probe(ctx); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("Probe() = %v, want NOT_SERVING", got)
	}
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: ClusterService})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !proto.Equal(resp, servingStatus(healthpb.HealthCheckResponse_NOT_SERVING)) {
		t.Fatalf("cluster status after failure = %v", resp)
	}
}

func TestRunProbesUntilCancelled(t *testing.T) {
	_, hs := New(&config.Config{}, nil)
	checker := &stubChecker{}
	prober := NewProber(hs, checker, 5*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		prober.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for checker.count() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected repeated probes, got %d", checker.count())
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunWithoutIntervalProbesOnce(t *testing.T) {
	_, hs := New(&config.Config{}, nil)
	checker := &stubChecker{}
	NewProber(hs, checker, 0, zap.NewNop()).Run(context.Background())
	if checker.count() != 1 {
		t.Fatalf("expected a single probe, got %d", checker.count())
	}
}
