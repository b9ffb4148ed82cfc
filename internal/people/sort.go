package people

import (
	"cmp"
	"slices"
	"strings"

	"github.com/starford/othala/internal/models"
)

// SortField selects the column a list is ordered by.
type SortField string

const (
	SortNone SortField = ""
	SortName SortField = "name"
	SortSex  SortField = "sex"
	SortBorn SortField = "born"
	SortDied SortField = "died"
)

// SortFields lists the sortable columns in table order.
var SortFields = []SortField{SortName, SortSex, SortBorn, SortDied}

// ParseSortField maps a query value to a SortField. Unknown values mean None.
func ParseSortField(s string) SortField {
	f := SortField(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(SortFields, f) {
		return f
	}
	return SortNone
}

// Sort returns a sorted copy of list. SortNone keeps the input order.
// Otherwise the copy is stable-sorted ascending by field and reversed when
// desc is set, so equal keys appear in reverse input order when descending.
func Sort(list []models.Person, field SortField, desc bool) []models.Person {
	out := slices.Clone(list)
	compare := comparator(field)
	if compare == nil {
		return out
	}
	slices.SortStableFunc(out, compare)
	if desc {
		slices.Reverse(out)
	}
	return out
}

func comparator(field SortField) func(a, b models.Person) int {
	switch field {
	case SortName:
		return func(a, b models.Person) int { return strings.Compare(a.Name, b.Name) }
	case SortSex:
		return func(a, b models.Person) int { return strings.Compare(string(a.Sex), string(b.Sex)) }
	case SortBorn:
		return func(a, b models.Person) int { return cmp.Compare(a.Born, b.Born) }
	case SortDied:
		return func(a, b models.Person) int { return cmp.Compare(a.Died, b.Died) }
	default:
		return nil
	}
}
