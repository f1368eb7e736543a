package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/starford/mdxmend/internal/mendservice"
	"github.com/starford/mdxmend/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// broker, if non-nil, is mounted at GET /events inside the auth group and
// receives a run.completed event after every repair.
func NewRouter(svc *mendservice.Service, authEnabled bool, token string, broker *sse.Broker) chi.Router {
	h := NewHandler(svc, broker)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Validation.
	r.Get("/findings", h.ListFindings)
	r.Get("/findings/{name}", h.DocumentFindings)

	// Repair.
	r.Post("/repair", h.Repair)
	r.Post("/fix", h.FixText)

	// Ledger.
	r.Get("/runs", h.ListRuns)
	r.Get("/runs/{id}", h.GetRun)
	r.Get("/documents/{name}/history", h.DocumentHistory)

	if broker != nil {
		r.Get("/events", broker.ServeHTTP)
	}

	return r
}
