package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires all routes and middleware. Authentication happens in the
// fronting gateway; it passes the resolved identity down through the
// X-User-Id and X-User-Role headers.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-User-Id", "X-User-Role"},
		AllowCredentials: false,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/requirements", h.ResolveRequirements)
		r.Post("/requirements/materialize", h.MaterializeRecurring)

		r.Get("/availability", h.FetchAvailability)
		r.Post("/availability", h.SubmitAvailability)
		r.Post("/availability/copy-previous", h.CopyPreviousMonth)

		r.Post("/months/clear", h.ClearMonth)

		r.Put("/assignments", h.SaveAssignments)
		r.Post("/assignments/approve", h.ApproveAssignments)

		r.Get("/coverage", h.ComputeCoverage)
		r.Get("/coverage/overview", h.CoverageOverview)

		r.Get("/candidates", h.RankCandidates)
	})

	return r
}
