// Package httpapi is C7's HTTP surface: the runtime-interceptor
// equivalent for hosts that call SqlGuard out-of-process instead of
// linking pkg/validator directly. Routing and documentation-serving
// conventions are adapted from internal/api/router.go (gorilla/mux route
// groups, a Swagger UI mounted via swaggo/http-swagger, a JSON health
// endpoint); middleware (request ID, rate limiting) is adapted from
// internal/api/middleware.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/sqlguard/sqlguard/internal/logging"
	"github.com/sqlguard/sqlguard/pkg/validator"
)

// Config configures the server beyond the validator/registry it wraps,
// mirroring internal/config.ServerConfig's HTTP-facing fields.
type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
}

// Server wires a *validator.Validator behind gorilla/mux, exposing
// POST /v1/validate, GET /healthz, GET /metrics, and a Swagger UI.
type Server struct {
	router    *mux.Router
	validator *validator.Validator
	registry  *prometheus.Registry
	logger    *slog.Logger
}

// NewServer builds the Server and its route table. registry may be nil,
// in which case /metrics is not mounted (a host that only wants
// validation over HTTP, with its own metrics pipeline, shouldn't be
// forced to expose SqlGuard's).
func NewServer(v *validator.Validator, registry *prometheus.Registry, logger *slog.Logger, cfg Config) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{validator: v, registry: registry, logger: logger}
	s.router = s.buildRouter(cfg)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter(cfg Config) *mux.Router {
	r := mux.NewRouter()
	r.Use(recoverMiddleware)
	r.Use(requestIDMiddleware)
	r.Use(logging.RequestMiddleware(s.logger))

	if cfg.RateLimitRPS > 0 {
		limiter := newRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		r.Use(limiter.middleware)
	}

	r.HandleFunc("/v1/validate", s.ValidateHandler).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.HealthHandler).Methods(http.MethodGet)

	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	r.PathPrefix("/docs").Handler(httpSwagger.WrapHandler)

	return r
}
