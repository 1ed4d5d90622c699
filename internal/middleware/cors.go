package middleware

import (
	"net/http"
	"slices"

	"github.com/minhtt159/sheet-ingest/internal/config"
)

// CORS lets browser-hosted sheet add-ons call the API. Requests from origins
// outside cfg.AllowedOrigins pass through without CORS headers.
func CORS(next http.Handler, cfg config.CORSConfig) http.Handler {
	if !cfg.Enabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowed, ok := allowedOrigin(origin, cfg.AllowedOrigins)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Set("Access-Control-Allow-Origin", allowed)
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if allowed != "*" {
			h.Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func allowedOrigin(origin string, list []string) (string, bool) {
	switch {
	case len(list) == 0 || slices.Contains(list, "*"):
		return "*", true
	case origin != "" && slices.Contains(list, origin):
		return origin, true
	default:
		return "", false
	}
}
