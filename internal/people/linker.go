// Package people implements the pure operations over a loaded people list:
// parent linking, filtering, sorting and the cached derived view.
package people

import (
	"slices"

	"github.com/starford/othala/internal/models"
)

// Link resolves every record's mother and father by exact name match against
// the same list. When several records share a name the first one wins. Names
// with no match leave the reference unset.
//
// The result is a new slice of shallow copies; in is not modified. Resolved
// references point at flat copies of the matched records, so the output never
// forms reference cycles.
func Link(in []models.Person) []models.Person {
	flat := make([]models.Person, len(in))
	for i := range in {
		flat[i] = in[i].Flat()
	}

	byName := make(map[string]*models.Person, len(flat))
	for i := range flat {
		if _, seen := byName[flat[i].Name]; !seen {
			byName[flat[i].Name] = &flat[i]
		}
	}

	out := slices.Clone(flat)
	for i := range out {
		if name := out[i].MotherName; name != "" {
			out[i].Mother = byName[name]
		}
		if name := out[i].FatherName; name != "" {
			out[i].Father = byName[name]
		}
	}
	return out
}

// FindBySlug returns the first record with the given slug.
func FindBySlug(list []models.Person, slug string) (models.Person, bool) {
	i := slices.IndexFunc(list, func(p models.Person) bool { return p.Slug == slug })
	if i < 0 {
		return models.Person{}, false
	}
	return list[i], true
}
