package api

import (
	"github.com/starford/othala/internal/models"
	"github.com/starford/othala/internal/peopleservice"
)

// PeopleResponse is the derived view returned by GET /api/people
// (aliased from the domain layer).
type PeopleResponse = peopleservice.Result

// Person is a linked person record.
type Person = models.Person

// DatasetListResponse lists the dataset files in the data directory.
type DatasetListResponse struct {
	Datasets []models.DatasetMetadata `json:"datasets" validate:"required"`
}

// DatasetUploadResponse is returned after a successful dataset upload.
type DatasetUploadResponse struct {
	Filename string `json:"filename" example:"haverbeke.json" validate:"required"`
	Size     int64  `json:"size" example:"12345" validate:"required"`
	People   int    `json:"people" example:"39" validate:"required"`
	URL      string `json:"url" example:"/api/datasets/haverbeke.json" validate:"required"`
}
