package people

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Query parameter names shared by the page, its links and the JSON API.
const (
	ParamSex       = "sex"
	ParamQuery     = "query"
	ParamCenturies = "centuries"
	ParamSort      = "sort"
	ParamOrder     = "order"

	orderDesc = "desc"
)

// Params are the filter and sort inputs of a derived view.
type Params struct {
	Sex       SexFilter
	Query     string
	Centuries []int
	Sort      SortField
	Desc      bool
}

// ParseParams reads Params from URL query values. Unknown sex and sort values
// fall back to All and None; centuries that are not integers are ignored; any
// non-empty order value means descending.
func ParseParams(q url.Values) Params {
	p := Params{
		Sex:   ParseSexFilter(q.Get(ParamSex)),
		Query: q.Get(ParamQuery),
		Sort:  ParseSortField(q.Get(ParamSort)),
		Desc:  q.Get(ParamOrder) != "",
	}
	for _, raw := range q[ParamCenturies] {
		c, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			continue
		}
		if !slices.Contains(p.Centuries, c) {
			p.Centuries = append(p.Centuries, c)
		}
	}
	return p
}

// Values encodes p back into query values, omitting defaults.
func (p Params) Values() url.Values {
	q := url.Values{}
	if p.Sex != SexAll {
		q.Set(ParamSex, string(p.Sex))
	}
	if p.Query != "" {
		q.Set(ParamQuery, p.Query)
	}
	for _, c := range p.Centuries {
		q.Add(ParamCenturies, strconv.Itoa(c))
	}
	if p.Sort != SortNone {
		q.Set(ParamSort, string(p.Sort))
		if p.Desc {
			q.Set(ParamOrder, orderDesc)
		}
	}
	return q
}

// Encode returns the query string for p, without a leading '?'.
func (p Params) Encode() string {
	return p.Values().Encode()
}

// Key identifies p for caching. Century order does not matter.
func (p Params) Key() string {
	cs := slices.Clone(p.Centuries)
	slices.Sort(cs)
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join([]string{
		string(p.Sex),
		p.Query,
		strings.Join(parts, ","),
		string(p.Sort),
		strconv.FormatBool(p.Desc),
	}, "\x00")
}

// WithSex returns a copy of p filtered by sex.
func (p Params) WithSex(s SexFilter) Params {
	p.Centuries = slices.Clone(p.Centuries)
	p.Sex = s
	return p
}

// HasCentury reports whether century c is selected.
func (p Params) HasCentury(c int) bool {
	return slices.Contains(p.Centuries, c)
}

// ToggleCentury returns a copy of p with century c added or removed.
func (p Params) ToggleCentury(c int) Params {
	if p.HasCentury(c) {
		p.Centuries = slices.DeleteFunc(slices.Clone(p.Centuries), func(x int) bool { return x == c })
		return p
	}
	p.Centuries = append(slices.Clone(p.Centuries), c)
	return p
}

// WithoutCenturies returns a copy of p with no century selected.
func (p Params) WithoutCenturies() Params {
	p.Centuries = nil
	return p
}

// NextSort returns p advanced by one click on the field's column header:
// unsorted → ascending → descending → unsorted.
func (p Params) NextSort(field SortField) Params {
	p.Centuries = slices.Clone(p.Centuries)
	switch {
	case p.Sort != field:
		p.Sort, p.Desc = field, false
	case !p.Desc:
		p.Desc = true
	default:
		p.Sort, p.Desc = SortNone, false
	}
	return p
}
