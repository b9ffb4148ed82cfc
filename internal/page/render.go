package page

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"

	"github.com/starford/othala/internal/models"
	"github.com/starford/othala/internal/people"
)

// BasePath is where the people page is mounted.
const BasePath = "/people"

// CenturyChoices are the centuries offered by the filter panel.
var CenturyChoices = []int{16, 17, 18, 19, 20}

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.New("page").
	Funcs(template.FuncMap{"link": personLinkFor}).
	ParseFS(templateFS, "templates/*.html.tmpl"))

type personLink struct {
	Href   string
	Name   string
	Female bool
}

func personLinkFor(v View, slug, name string, sex models.Sex) personLink {
	return personLink{Href: v.PersonHref(slug), Name: name, Female: sex == models.SexFemale}
}

// Render writes the full HTML document for v.
func Render(w io.Writer, v View) error {
	if err := pageTemplate.ExecuteTemplate(w, "page", v); err != nil {
		return fmt.Errorf("page: render: %w", err)
	}
	return nil
}

func href(path string, p people.Params) string {
	if q := p.Encode(); q != "" {
		return path + "?" + q
	}
	return path
}

func (v View) currentPath() string {
	if v.SelectedSlug == "" {
		return BasePath
	}
	return BasePath + "/" + url.PathEscape(v.SelectedSlug)
}

// PersonHref links to the page with slug selected, keeping the current params.
func (v View) PersonHref(slug string) string {
	return href(BasePath+"/"+url.PathEscape(slug), v.Params)
}

// SortHref links to the next sort state of the column.
func (v View) SortHref(field string) string {
	return href(v.currentPath(), v.Params.NextSort(people.SortField(field)))
}

// SortDir returns "asc", "desc" or "" for the column.
func (v View) SortDir(field string) string {
	if v.Params.Sort != people.SortField(field) {
		return ""
	}
	if v.Params.Desc {
		return "desc"
	}
	return "asc"
}

// SexHref links to the page filtered by sex ("" for all).
func (v View) SexHref(sex string) string {
	return href(v.currentPath(), v.Params.WithSex(people.ParseSexFilter(sex)))
}

// SexActive reports whether the sex tab is selected.
func (v View) SexActive(sex string) bool {
	return v.Params.Sex == people.ParseSexFilter(sex)
}

// CenturyHref links to the page with century c toggled.
func (v View) CenturyHref(c int) string {
	return href(v.currentPath(), v.Params.ToggleCentury(c))
}

// CenturyActive reports whether century c is selected.
func (v View) CenturyActive(c int) bool {
	return v.Params.HasCentury(c)
}

// AllCenturiesHref links to the page with no century filter.
func (v View) AllCenturiesHref() string {
	return href(v.currentPath(), v.Params.WithoutCenturies())
}

// ResetHref links to the page with every filter and sort cleared.
func (v View) ResetHref() string {
	return v.currentPath()
}

// CurrentPath is the form action of the search box.
func (v View) CurrentPath() string {
	return v.currentPath()
}

// Centuries returns the centuries offered by the filter panel.
func (v View) Centuries() []int {
	return CenturyChoices
}

// HiddenParams returns the params the search form must carry besides query.
func (v View) HiddenParams() url.Values {
	p := v.Params
	p.Query = ""
	return p.Values()
}
