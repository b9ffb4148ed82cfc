package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/othala/internal/peopleservice"
	"github.com/starford/othala/internal/storage"
	"github.com/starford/othala/internal/store"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// files and db back the dataset upload and download endpoints; notify, if
// non-nil, is told about every uploaded dataset.
func NewRouter(svc *peopleservice.Service, authEnabled bool, token string, sseHandler http.Handler,
	files storage.Provider, db *store.DB, notify store.EventCallback) chi.Router {
	h := NewHandler(svc)
	dh := NewDatasetHandler(files, db, notify)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// People.
	r.Get("/people", h.ListPeople)
	r.Get("/people.json", h.ExportPeople)
	r.Get("/people/{slug}", h.GetPerson)

	// Dataset files.
	r.Get("/datasets", dh.List)
	r.Post("/datasets", dh.Upload)
	r.Get("/datasets/{filename}", dh.ServeFile)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

// NewPageRouter creates the router for the server-rendered people page.
// It is mounted without auth so the page works in a plain browser.
func NewPageRouter(svc *peopleservice.Service) chi.Router {
	ph := NewPageHandler(svc)

	r := chi.NewRouter()
	r.Get("/", ph.ServePage)
	r.Get("/{slug}", ph.ServePage)
	return r
}
