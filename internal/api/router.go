package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes collects what NewRouter mounts. Metrics and RateLimit are optional.
type Routes struct {
	API       *Handler
	Health    http.Handler
	Metrics   http.Handler
	RateLimit func(http.Handler) http.Handler
}

// NewRouter builds the service's HTTP routes.
func NewRouter(rt Routes) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(RequestID)

	r.Get("/health", rt.Health.ServeHTTP)
	if rt.Metrics != nil {
		r.Handle("/metrics", rt.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		if rt.RateLimit != nil {
			r.Use(rt.RateLimit)
		}
		r.Post("/generate", rt.API.Generate)
		r.Post("/generate-image", rt.API.GenerateImage)
		r.Post("/generate-poll", rt.API.GeneratePoll)
		r.Post("/generate-newsletter", rt.API.GenerateNewsletter)
	})

	return r
}
