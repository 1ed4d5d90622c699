// Package middleware holds the HTTP and gRPC guards shared by both servers:
// basic auth, per-client rate limiting and CORS.
package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/minhtt159/sheet-ingest/internal/config"
)

const unknownClient = "unknown"

// RateLimiter keeps one token bucket per client address.
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewRateLimiter returns nil when rate limiting is disabled. A nil
// *RateLimiter allows everything.
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	if !cfg.Enabled || cfg.RequestsPerSecond <= 0 {
		return nil
	}
	return &RateLimiter{
		limit:    rate.Limit(cfg.RequestsPerSecond),
		burst:    cfg.Burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow reports whether a request from client may proceed.
func (r *RateLimiter) Allow(client string) bool {
	if r == nil {
		return true
	}
	if client == "" {
		client = unknownClient
	}
	return r.limiterFor(client).Allow()
}

func (r *RateLimiter) limiterFor(client string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	limiter, ok := r.limiters[client]
	if !ok {
		limiter = rate.NewLimiter(r.limit, r.burst)
		r.limiters[client] = limiter
	}
	return limiter
}

// RateLimitHTTP answers 429 once a client runs out of tokens.
func RateLimitHTTP(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(ClientIP(r)) {
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitUnary limits gRPC calls by peer address. It returns nil when
// limiter is nil so callers can skip it.
func RateLimitUnary(limiter *RateLimiter) grpc.UnaryServerInterceptor {
	if limiter == nil {
		return nil
	}
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !limiter.Allow(peerHost(ctx)) {
			return nil, status.Error(codes.ResourceExhausted, "rate limit exceeded")
		}
		return handler(ctx, req)
	}
}

// ClientIP returns the first X-Forwarded-For entry, falling back to the
// remote address without its port.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return hostOnly(r.RemoteAddr)
}

func peerHost(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	return hostOnly(p.Addr.String())
}

func hostOnly(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
