// Package page implements the people page controller: one fetch per mount,
// parent linking, and the filtered and sorted view the table renders.
package page

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/othala/internal/models"
	"github.com/starford/othala/internal/people"
	"github.com/starford/othala/internal/source"
)

// State is the load state of a page.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateLoadError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateLoadError:
		return "load_error"
	default:
		return "unknown"
	}
}

// Page owns the people loaded for one page mount.
type Page struct {
	src    source.Provider
	logger *slog.Logger

	mount sync.Once

	mu      sync.RWMutex
	state   State
	noData  bool
	loadErr error
	people  []models.Person
	deriver *people.Deriver
}

// New creates an idle page that will load from src.
func New(src source.Provider, logger *slog.Logger) *Page {
	if logger == nil {
		logger = slog.Default()
	}
	return &Page{src: src, logger: logger}
}

// Mount loads the page: it fetches from the source exactly once, links
// parents and stores the result. Further calls return immediately. The
// outcome is recorded in the page state, never returned.
func (p *Page) Mount(ctx context.Context) {
	p.mount.Do(func() {
		p.setState(StateLoading)
		start := time.Now()

		fetched, err := p.src.GetPeople(ctx)

		p.mu.Lock()
		defer p.mu.Unlock()
		if err != nil {
			p.state = StateLoadError
			p.loadErr = err
			p.logger.Warn("page: load failed",
				slog.String("error", err.Error()),
				slog.Duration("elapsed", time.Since(start)))
			return
		}
		p.state = StateLoaded
		p.noData = len(fetched) == 0
		p.people = people.Link(fetched)
		p.deriver = people.NewDeriver(p.people)
		p.logger.Debug("page: loaded",
			slog.Int("count", len(p.people)),
			slog.Duration("elapsed", time.Since(start)))
	})
}

func (p *Page) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// State returns the current load state.
func (p *Page) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Err returns the load failure, if any.
func (p *Page) Err() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loadErr
}

// People returns the full linked list. Callers must not modify it.
func (p *Page) People() []models.Person {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.people
}

// Person returns the linked record with the given slug.
func (p *Page) Person(slug string) (models.Person, bool) {
	return people.FindBySlug(p.People(), slug)
}

// View is everything the page template needs. The flags follow the page's
// rendering policy: the loader replaces the table while loading, and a load
// error or an empty result hides both filters and table.
type View struct {
	State        State
	Loading      bool
	LoadError    bool
	NoData       bool
	ShowFilters  bool
	ShowTable    bool
	People       []models.Person
	Total        int
	Params       people.Params
	SelectedSlug string
}

// View derives the view for params with selected highlighted.
func (p *Page) View(params people.Params, selected string) View {
	p.mu.RLock()
	state, noData, deriver, total := p.state, p.noData, p.deriver, len(p.people)
	p.mu.RUnlock()

	v := View{
		State:        state,
		Loading:      state == StateLoading,
		LoadError:    state == StateLoadError,
		NoData:       state == StateLoaded && noData,
		Params:       params,
		SelectedSlug: selected,
		Total:        total,
	}
	if state == StateLoaded && !noData {
		v.ShowFilters = true
		v.ShowTable = true
		v.People = deriver.View(params)
	}
	return v
}
