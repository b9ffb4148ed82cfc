package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/dataset"
	"github.com/starford/othala/internal/storage"
	"github.com/starford/othala/internal/store"
)

const maxUploadBytes = 10 << 20 // 10 MB

// DatasetHandler lists, serves and accepts dataset files.
type DatasetHandler struct {
	files  storage.Provider
	db     *store.DB
	notify store.EventCallback
}

// NewDatasetHandler creates a handler over the data directory. Uploaded files
// are imported into db right away and reported to notify; the watcher sees
// the same checksum later and skips them.
func NewDatasetHandler(files storage.Provider, db *store.DB, notify store.EventCallback) *DatasetHandler {
	return &DatasetHandler{files: files, db: db, notify: notify}
}

// safeName validates that the filename is a plain dataset file name (no path
// separators, no traversal, a known extension).
func safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	if strings.ContainsAny(name, `/\`) || name != path.Clean(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	if !dataset.IsDatasetFile(name) {
		return "", fmt.Errorf("unsupported file type: %s (want one of %s)", name, strings.Join(dataset.Extensions, ", "))
	}
	return name, nil
}

// List handles GET /api/datasets.
//
//	@Summary		List dataset files in the data directory
//	@Tags			datasets
//	@Produce		json
//	@Success		200	{object}	DatasetListResponse
//	@Security		BearerAuth
//	@Router			/datasets [get]
func (h *DatasetHandler) List(w http.ResponseWriter, _ *http.Request) {
	metas, err := h.files.List("")
	if err != nil {
		internalError(w, "list datasets failed", err)
		return
	}
	writeJSON(w, http.StatusOK, DatasetListResponse{Datasets: metas})
}

// ServeFile handles GET /api/datasets/{filename}.
//
//	@Summary		Download a dataset file
//	@Tags			datasets
//	@Param			filename	path	string	true	"Dataset file name"
//	@Success		200
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/datasets/{filename} [get]
func (h *DatasetHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	name, err := safeName(chi.URLParam(r, "filename"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	data, err := h.files.Read(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		internalError(w, "read dataset failed", err, slog.String("path", name))
		return
	}
	if strings.EqualFold(path.Ext(name), ".json") {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Upload handles POST /api/datasets (multipart/form-data, field "file").
//
//	@Summary		Upload a people dataset file
//	@Tags			datasets
//	@Accept			mpfd
//	@Produce		json
//	@Param			file	formData	file	true	"JSON or YAML array of people"
//	@Success		201		{object}	DatasetUploadResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/datasets [post]
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	name, err := safeName(header.Filename)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}

	list, err := store.Add(h.db, h.files, name, data)
	switch {
	case errors.Is(err, apperr.ErrInvalidDataset):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
		return
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody(apperr.ErrAlreadyExists.Error()))
		return
	case err != nil:
		internalError(w, "store dataset failed", err, slog.String("path", name))
		return
	}
	if h.notify != nil {
		h.notify("created", name)
	}

	writeJSON(w, http.StatusCreated, DatasetUploadResponse{
		Filename: name,
		Size:     int64(len(data)),
		People:   len(list),
		URL:      "/api/datasets/" + name,
	})
}
