package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/minhtt159/sheet-ingest/internal/config"
)

// Healthcheck requests /healthz on the local server, or HEALTHCHECK_URL when
// set. HEALTHCHECK_TIMEOUT overrides the two second timeout.
func Healthcheck(ctx context.Context, cfg *config.Config) error {
	url := os.Getenv("HEALTHCHECK_URL")
	if url == "" {
		host := cfg.Server.BindAddress
		if host == "" {
			host = "127.0.0.1"
		}
		port := cfg.Server.HTTPPort
		if port == 0 {
			port = 8080
		}
		url = fmt.Sprintf("http://%s:%d/healthz", host, port)
	}

	timeout := 2 * time.Second
	if v := os.Getenv("HEALTHCHECK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			timeout = d
		}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck %s: status %d", url, resp.StatusCode)
	}
	return nil
}
