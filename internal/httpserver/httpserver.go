// Package httpserver exposes the settings, check and push operations over HTTP.
package httpserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"github.com/minhtt159/sheet-ingest/internal/config"
	_ "github.com/minhtt159/sheet-ingest/internal/docs"
	"github.com/minhtt159/sheet-ingest/internal/indexer"
	"github.com/minhtt159/sheet-ingest/internal/ingest"
	"github.com/minhtt159/sheet-ingest/internal/middleware"
	"github.com/minhtt159/sheet-ingest/internal/settings"
	"github.com/minhtt159/sheet-ingest/internal/sheet"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxBodyBytes bounds a push request.
const maxBodyBytes = 32 << 20

// Service is the subset of service.Service used by the HTTP endpoints.
type Service interface {
	SaveSettings(conn indexer.Connection) error
	Settings() (settings.Settings, error)
	Check(ctx context.Context) error
	Push(ctx context.Context, req ingest.Request) (*ingest.Result, error)
}

// New returns a configured HTTP server. /healthz stays public when basic auth
// is enabled so container probes keep working.
func New(cfg *config.Config, svc Service, limiter *middleware.RateLimiter, logger *zap.Logger) *http.Server {
	h := &handler{svc: svc, logger: logger}

	var root http.Handler = h.routes()
	root = middleware.RateLimitHTTP(limiter)(root)
	if cfg.Server.BasicAuth.Enabled {
		root = middleware.BasicAuthHTTP(cfg.Server.BasicAuth, "/healthz")(root)
	}
	root = middleware.CORS(root, cfg.Server.CORS)

	return &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.HTTPPort),
		Handler: root,
	}
}

type handler struct {
	svc    Service
	logger *zap.Logger
}

func (h *handler) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/settings", h.getSettings)
	mux.HandleFunc("PUT /v1/settings", h.putSettings)
	mux.HandleFunc("POST /v1/check", h.check)
	mux.HandleFunc("POST /v1/push", h.push)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
	))
	return mux
}

func (h *handler) getSettings(w http.ResponseWriter, _ *http.Request) {
	st, err := h.svc.Settings()
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSettingsBody(st))
}

func (h *handler) putSettings(w http.ResponseWriter, r *http.Request) {
	var body connectionBody
	if err := decodeBody(w, r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request format"})
		return
	}
	if err := h.svc.SaveSettings(body.connection()); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) check(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Check(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) push(w http.ResponseWriter, r *http.Request) {
	var body pushBody
	if err := decodeBody(w, r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request format"})
		return
	}
	res, err := h.svc.Push(r.Context(), body.request())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newResultBody(res))
}

// writeError maps pipeline errors onto status codes. Cluster failures are
// reported as 502 with the normalized message only.
func (h *handler) writeError(w http.ResponseWriter, err error) {
	body := errorBody{Error: err.Error()}
	var missing *sheet.MissingDocumentIDError

	var code int
	switch {
	case errors.As(err, &missing):
		code = http.StatusBadRequest
		body.Row = missing.Row
	case errors.Is(err, indexer.ErrInvalidConfig),
		errors.Is(err, sheet.ErrEmptyHeader),
		errors.Is(err, sheet.ErrColumnMismatch):
		code = http.StatusBadRequest
	case errors.Is(err, settings.ErrNotConfigured):
		code = http.StatusNotFound
	case errors.Is(err, ingest.ErrNoData):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, indexer.ErrConnection),
		errors.Is(err, indexer.ErrTemplate),
		errors.Is(err, indexer.ErrBulkSubmit),
		errors.Is(err, indexer.ErrUnknownCluster):
		code = http.StatusBadGateway
	default:
		code = http.StatusInternalServerError
		body.Error = "internal error"
		h.logger.Error("Request failed", zap.Error(err))
	}
	writeJSON(w, code, body)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	data, readErr := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	closeErr := r.Body.Close()
	if readErr != nil {
		return readErr
	}
	if closeErr != nil {
		return closeErr
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
