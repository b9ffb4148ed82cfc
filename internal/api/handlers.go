package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/dataset"
	"github.com/starford/othala/internal/peopleservice"
	"github.com/starford/othala/internal/people"
)

// Handler holds API route handlers.
type Handler struct {
	svc *peopleservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *peopleservice.Service) *Handler {
	return &Handler{svc: svc}
}

// ListPeople handles GET /api/people.
//
//	@Summary		List linked people filtered and sorted like the people page
//	@Tags			people
//	@Produce		json
//	@Param			sex			query		string	false	"m or f"
//	@Param			query		query		string	false	"Case-insensitive name substring"
//	@Param			centuries	query		[]int	false	"Birth centuries"	collectionFormat(multi)
//	@Param			sort		query		string	false	"Sort field"	Enums(name, sex, born, died)
//	@Param			order		query		string	false	"Any non-empty value sorts descending"
//	@Success		200			{object}	PeopleResponse
//	@Failure		502			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/people [get]
func (h *Handler) ListPeople(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Query(r.Context(), people.ParseParams(r.URL.Query()))
	if err != nil {
		slog.Error("list people failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("people could not be loaded"))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GetPerson handles GET /api/people/{slug}.
//
//	@Summary		Get one person with resolved parents
//	@Tags			people
//	@Produce		json
//	@Param			slug	path		string	true	"Person slug"
//	@Success		200		{object}	Person
//	@Failure		404		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/people/{slug} [get]
func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	p, err := h.svc.Person(r.Context(), slug)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		default:
			slog.Error("get person failed", slog.String("slug", slug), slog.String("error", err.Error()))
			writeJSON(w, http.StatusBadGateway, errorBody("people could not be loaded"))
		}
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ExportPeople handles GET /api/people.json: the flat imported records in
// the people API wire format, usable as the remote source of another instance.
//
//	@Summary		Export the imported people as a flat JSON array
//	@Tags			people
//	@Produce		json
//	@Param			If-None-Match	header	string	false	"ETag of a previous response"
//	@Success		200				{array}		Person
//	@Success		304				"Not modified"
//	@Security		BearerAuth
//	@Router			/people.json [get]
func (h *Handler) ExportPeople(w http.ResponseWriter, r *http.Request) {
	ds, err := h.svc.Dataset(r.Context())
	if err != nil {
		internalError(w, "export people failed", err)
		return
	}
	w.Header().Set("ETag", ds.ETag)
	if etagMatches(r.Header.Get("If-None-Match"), ds.ETag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	data, err := dataset.Encode(ds.People)
	if err != nil {
		internalError(w, "encode people failed", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
