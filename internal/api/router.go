package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/sunc/internal/evalservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *evalservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Algebra.
	r.Post("/evaluate", h.Evaluate)
	r.Post("/scalar-product", h.ScalarProduct)
	r.Post("/multiply", h.Multiply)
	r.Post("/conjugate", h.Conjugate)
	r.Post("/matrix", h.Matrix)

	// Memoised results.
	r.Get("/evaluations", h.ListEvaluations)
	r.Delete("/evaluations", h.ClearEvaluations)
	r.Get("/evaluations/{id}", h.GetEvaluation)

	// Worksheets.
	r.Get("/worksheets", h.ListWorksheets)
	r.Post("/worksheets", h.CreateWorksheet)
	r.Post("/worksheets/move", h.MoveWorksheet)
	r.Get("/worksheets/*", h.GetWorksheet)
	r.Put("/worksheets/*", h.UpdateWorksheet)
	r.Delete("/worksheets/*", h.DeleteWorksheet)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
