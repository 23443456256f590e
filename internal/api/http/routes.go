package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"drawstats/internal/api/http/handlers"
	"drawstats/internal/api/http/mw"
	"drawstats/internal/metrics"
)

func BuildRouter(
	h *handlers.Handler,
	logMW *mw.LoggingMiddleware,
	gzipMW *mw.GzipMiddleware,
	rateLimitMW *mw.RateLimitMiddleware,
	corsMW *mw.CORSMiddleware,
) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	if logMW != nil {
		r.Use(logMW.Handler)
	}
	if gzipMW != nil {
		r.Use(gzipMW.Handler)
	}
	if corsMW != nil {
		r.Use(corsMW.Handler())
	}

	// tech endpoints, never rate limited
	r.Get("/healthz", h.Healthz)
	r.Mount("/metrics", metrics.Handler())

	// dashboard surface behind the rate limit
	protected := chi.NewRouter()
	if rateLimitMW != nil {
		protected.Use(rateLimitMW.Handler)
	}

	protected.Route("/api", func(apiR chi.Router) {
		apiR.Get("/revenue", h.Revenue)
		apiR.Get("/lottery-ngr", h.NGR)
		apiR.Get("/lottery-prizes", h.Prizes)
		apiR.Get("/health", h.Health)
	})

	r.Mount("/", protected)
	return r
}
