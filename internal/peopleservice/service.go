// Package peopleservice coordinates the people source, the SQLite store and
// the page controller for the HTTP and MCP surfaces.
package peopleservice

import (
	"context"
	"errors"
	"log/slog"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/checksum"
	"github.com/starford/othala/internal/models"
	"github.com/starford/othala/internal/page"
	"github.com/starford/othala/internal/people"
	"github.com/starford/othala/internal/source"
	"github.com/starford/othala/internal/store"
)

// ErrLoad is returned when the source could not deliver people.
var ErrLoad = errors.New("people could not be loaded")

// Result is a derived view of the people list.
type Result struct {
	People []models.Person `json:"people"`
	Total  int             `json:"total"`
	NoData bool            `json:"noData"`
}

// Dataset is the flat, unlinked list of imported people.
type Dataset struct {
	People []models.Person
	ETag   string
}

// Service coordinates source, store and page operations.
type Service struct {
	src    source.Provider
	db     store.PeopleStore
	logger *slog.Logger
}

// NewService creates a new people service.
func NewService(src source.Provider, db store.PeopleStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{src: src, db: db, logger: logger}
}

// Page mounts a fresh page: one fetch from the source, parents linked.
// The returned page is in the loaded or load error state.
func (s *Service) Page(ctx context.Context) *page.Page {
	p := page.New(s.src, s.logger)
	p.Mount(ctx)
	return p
}

// Query loads the people and returns the view for params.
func (s *Service) Query(ctx context.Context, params people.Params) (*Result, error) {
	p := s.Page(ctx)
	if p.State() == page.StateLoadError {
		return nil, errors.Join(ErrLoad, p.Err())
	}
	v := p.View(params, "")
	return &Result{
		People: nonNilSlice(v.People),
		Total:  v.Total,
		NoData: v.NoData,
	}, nil
}

// Person returns the linked record with slug. Parents are resolved against
// the full list, so the lookup goes through a page mount.
func (s *Service) Person(ctx context.Context, slug string) (*models.Person, error) {
	p := s.Page(ctx)
	if p.State() == page.StateLoadError {
		return nil, errors.Join(ErrLoad, p.Err())
	}
	person, ok := p.Person(slug)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &person, nil
}

// Dataset returns the flat records imported into the store with an ETag that
// changes whenever any dataset file does.
func (s *Service) Dataset(ctx context.Context) (*Dataset, error) {
	version, err := s.db.Version()
	if err != nil {
		return nil, err
	}
	list, err := s.db.ListPeople(ctx)
	if err != nil {
		return nil, err
	}
	return &Dataset{People: nonNilSlice(list), ETag: checksum.ETag(version)}, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
