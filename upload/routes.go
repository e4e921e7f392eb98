package upload

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"application-portal/middleware/ratelimit"
	"application-portal/middleware/requestlog"
	"application-portal/upload/application"
	"application-portal/upload/domain"
)

type RouterOptions struct {
	Service *application.Service
	KeyFunc ratelimit.KeyFunc
	Logger  *zap.Logger
	// Concurrency limita uploads simultâneos. Max <= 0 desliga.
	Concurrency ratelimit.ConcurrencyOptions
	// Metrics serve /metrics. Padrão: promhttp.Handler().
	Metrics http.Handler
}

type healthResponse struct {
	Status            string `json:"status"`
	StorageConfigured bool   `json:"storageConfigured"`
}

// NewRouter monta as rotas do portal:
//
//	POST /upload   envio de candidatura (multipart)
//	GET  /healthz  liveness + se o storage está configurado
//	GET  /metrics  Prometheus
func NewRouter(opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = promhttp.Handler()
	}
	if opts.Concurrency.Reject == nil {
		opts.Concurrency.Reject = func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: domain.MsgBusy})
		}
	}

	h := NewHandler(opts.Service, opts.KeyFunc, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestlog.Middleware(logger))
	r.Use(requestlog.Recoverer(logger, domain.MsgUnexpected))

	r.With(ratelimit.ConcurrencyMiddleware(opts.Concurrency)).Post("/upload", h.ServeHTTP)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok", StorageConfigured: opts.Service.Configured()})
	})
	r.Method(http.MethodGet, "/metrics", opts.Metrics)

	return r
}
