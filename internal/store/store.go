package store

import (
	"context"

	"github.com/starford/othala/internal/models"
)

// PeopleStore defines the operations on imported people datasets.
// Consumers should depend on this interface rather than the concrete *DB type.
type PeopleStore interface {
	ReplaceDataset(path, checksum string, people []models.Person) error
	DeleteDataset(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	Version() (string, error)
	ListPeople(ctx context.Context) ([]models.Person, error)
	CheckSlugs(path string, people []models.Person) error
	Count() (int, error)
	Close() error
}

// Verify *DB satisfies PeopleStore at compile time.
var _ PeopleStore = (*DB)(nil)
