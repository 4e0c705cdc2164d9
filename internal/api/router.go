package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"

	"github.com/erd-studio/engine/internal/api/handlers"
	mw "github.com/erd-studio/engine/internal/api/middleware"
)

type Dependencies struct {
	HealthHandler   *handlers.HealthHandler
	ProjectsHandler *handlers.ProjectsHandler
	DiagramHandler  *handlers.DiagramHandler
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	// Built-in middleware
	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(mw.CORS)
	r.Use(mw.RateLimit(20, 40))

	// Health endpoints
	r.Get("/healthz", dep.HealthHandler.Liveness)
	r.Get("/readyz", dep.HealthHandler.Readiness)

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/projects", func(pr chi.Router) {
			pr.With(chimid.Compress(5)).Get("/", dep.ProjectsHandler.List)
			pr.Post("/", dep.ProjectsHandler.Create)
			pr.With(chimid.Compress(5)).Get("/{id}", dep.ProjectsHandler.Get)
			pr.Delete("/{id}", dep.ProjectsHandler.Delete)

			pr.Route("/{id}/diagram", func(dr chi.Router) {
				dr.With(chimid.Compress(5)).Get("/", dep.DiagramHandler.Get)
				dr.Post("/commands", dep.DiagramHandler.Command)
				dr.Get("/live", dep.DiagramHandler.Live)
			})
		})
	})

	return r
}
