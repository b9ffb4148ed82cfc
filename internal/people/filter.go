package people

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/starford/othala/internal/models"
)

// SexFilter gates records by their recorded sex.
type SexFilter string

const (
	SexAll    SexFilter = ""
	SexMale   SexFilter = SexFilter(models.SexMale)
	SexFemale SexFilter = SexFilter(models.SexFemale)
)

// ParseSexFilter maps a query value to a SexFilter. Unknown values mean All.
func ParseSexFilter(s string) SexFilter {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male":
		return SexMale
	case "f", "female":
		return SexFemale
	default:
		return SexAll
	}
}

// Matches reports whether sex passes the filter.
func (f SexFilter) Matches(sex models.Sex) bool {
	return f == SexAll || models.Sex(f) == sex
}

// Century returns ceil(born / 100).
func Century(born int) int {
	if born > 0 {
		return (born + 99) / 100
	}
	// Integer division truncates toward zero, which is the ceiling for negatives.
	return born / 100
}

// Filter returns the records that satisfy every active criterion, in their
// original relative order. An empty query or an empty centuries set does not
// filter anything out.
func Filter(list []models.Person, sex SexFilter, query string, centuries []int) []models.Person {
	// Casers are stateful and must not be shared between goroutines.
	fold := cases.Fold()
	needle := fold.String(query)

	var wanted map[int]struct{}
	if len(centuries) > 0 {
		wanted = make(map[int]struct{}, len(centuries))
		for _, c := range centuries {
			wanted[c] = struct{}{}
		}
	}

	out := make([]models.Person, 0, len(list))
	for _, p := range list {
		if !sex.Matches(p.Sex) {
			continue
		}
		if needle != "" && !strings.Contains(fold.String(p.Name), needle) {
			continue
		}
		if wanted != nil {
			if _, ok := wanted[Century(p.Born)]; !ok {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}
