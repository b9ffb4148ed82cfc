// Package storage defines the data directory abstraction for dataset files.
package storage

import "github.com/starford/othala/internal/models"

// Provider is the interface for data directory file operations.
type Provider interface {
	// List returns metadata for every dataset file under dir (relative to the data root).
	List(dir string) ([]models.DatasetMetadata, error)
	// Read returns the raw bytes of the file at path (relative to the data root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the data root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to the data root).
	Delete(path string) error
}
