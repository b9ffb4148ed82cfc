// Package source provides the fetch collaborators that return the raw,
// unlinked people list a page is built from.
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/othala/internal/models"
	"github.com/starford/othala/internal/store"
)

// Source kinds.
const (
	KindStore = "store"
	KindHTTP  = "http"
)

// Provider returns the flat list of people. Implementations fail on any
// transport or decoding problem; an empty list is a valid answer.
type Provider interface {
	GetPeople(ctx context.Context) ([]models.Person, error)
}

// Func adapts a function to Provider.
type Func func(ctx context.Context) ([]models.Person, error)

// GetPeople calls f.
func (f Func) GetPeople(ctx context.Context) ([]models.Person, error) {
	return f(ctx)
}

// Store reads people imported into the local SQLite store.
type Store struct {
	db store.PeopleStore
}

// NewStore creates a Provider backed by db.
func NewStore(db store.PeopleStore) *Store {
	return &Store{db: db}
}

// GetPeople lists every imported person.
func (s *Store) GetPeople(ctx context.Context) ([]models.Person, error) {
	people, err := s.db.ListPeople(ctx)
	if err != nil {
		return nil, fmt.Errorf("source: store: %w", err)
	}
	return people, nil
}

// Config selects and configures a Provider.
type Config struct {
	Kind    string
	URL     string
	Token   string
	Timeout time.Duration
}

// New returns the Provider for cfg.Kind. The store kind reads db.
func New(cfg Config, db store.PeopleStore) (Provider, error) {
	switch cfg.Kind {
	case KindStore, "":
		return NewStore(db), nil
	case KindHTTP:
		if cfg.URL == "" {
			return nil, fmt.Errorf("source: http: url is required")
		}
		var opts []HTTPOption
		if cfg.Token != "" {
			opts = append(opts, WithToken(cfg.Token))
		}
		return NewHTTP(cfg.URL, cfg.Timeout, opts...), nil
	default:
		return nil, fmt.Errorf("source: unknown kind %q", cfg.Kind)
	}
}
