package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tatami-dev/tatami/internal/middleware/metrics"
	"github.com/tatami-dev/tatami/internal/setup"
)

// New creates and configures the router with all the routes.
func New(deps *setup.Dependencies) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	h := deps.Handler

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/media/{name}", h.GetMedia)

	r.Route("/boards", func(r chi.Router) {
		r.Get("/", h.GetBoards)
		r.Post("/", h.CreateBoard)
	})

	r.Route("/{board}", func(r chi.Router) {
		r.Get("/", h.GetBoard)
		r.Post("/", h.CreateThread)

		r.Route("/thread/{thread}", func(r chi.Router) {
			r.Get("/", h.GetThread)
			r.Post("/", h.CreateReply)
			r.Delete("/", h.DeleteThread)
		})
	})

	return r
}
