package people

import (
	"sync"

	"github.com/starford/othala/internal/models"
)

// Deriver produces the filtered and sorted view of a fixed base list and
// remembers the last result, so asking again with the same Params does no work.
type Deriver struct {
	base []models.Person

	mu   sync.Mutex
	key  string
	last []models.Person
	ok   bool
	runs int
}

// NewDeriver returns a Deriver over base. base must not be modified afterwards.
func NewDeriver(base []models.Person) *Deriver {
	return &Deriver{base: base}
}

// View returns Sort(Filter(base, p), p). Callers must not modify the result.
func (d *Deriver) View(p Params) []models.Person {
	key := p.Key()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ok && d.key == key {
		return d.last
	}
	filtered := Filter(d.base, p.Sex, p.Query, p.Centuries)
	d.last = Sort(filtered, p.Sort, p.Desc)
	d.key = key
	d.ok = true
	d.runs++
	return d.last
}

// Computations reports how many times the view was actually recomputed.
func (d *Deriver) Computations() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.runs
}
