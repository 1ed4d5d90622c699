package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/minhtt159/sheet-ingest/internal/config"
)

// BasicAuthHTTP rejects requests without the configured credentials. Paths
// listed in public are served without authentication.
func BasicAuthHTTP(cfg config.BasicAuthConfig, public ...string) func(http.Handler) http.Handler {
	open := make(map[string]struct{}, len(public))
	for _, p := range public {
		open[p] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := open[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}
			username, password, ok := r.BasicAuth()
			if !ok || !credentialsMatch(username, password, cfg) {
				w.Header().Set("WWW-Authenticate", `Basic realm="sheet-ingest"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BasicAuthUnary enforces the same credentials on gRPC calls.
func BasicAuthUnary(cfg config.BasicAuthConfig) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}
		if err := checkAuthorization(md.Get("authorization"), cfg); err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		return handler(ctx, req)
	}
}

// BasicAuthHeader renders the authorization value for username and password.
func BasicAuthHeader(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

func checkAuthorization(values []string, cfg config.BasicAuthConfig) error {
	if len(values) == 0 {
		return errors.New("authorization header missing")
	}
	encoded, ok := strings.CutPrefix(values[0], "Basic ")
	if !ok {
		return errors.New("invalid authorization header")
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return errors.New("invalid base64 in authorization header")
	}
	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return errors.New("invalid authorization value")
	}
	if !credentialsMatch(username, password, cfg) {
		return errors.New("invalid credentials")
	}
	return nil
}

func credentialsMatch(username, password string, cfg config.BasicAuthConfig) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(cfg.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(cfg.Password)) == 1
	return userOK && passOK
}
