package api

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/othala/internal/page"
	"github.com/starford/othala/internal/people"
	"github.com/starford/othala/internal/peopleservice"
)

// PageHandler serves the HTML people page.
type PageHandler struct {
	svc *peopleservice.Service
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(svc *peopleservice.Service) *PageHandler {
	return &PageHandler{svc: svc}
}

// ServePage handles GET /people and GET /people/{slug}. Every request is one
// page mount; the slug only selects the highlighted row.
func (h *PageHandler) ServePage(w http.ResponseWriter, r *http.Request) {
	p := h.svc.Page(r.Context())
	v := p.View(people.ParseParams(r.URL.Query()), chi.URLParam(r, "slug"))

	var buf bytes.Buffer
	if err := page.Render(&buf, v); err != nil {
		slog.Error("render page failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
