package page

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/starford/othala/internal/models"
	"github.com/starford/othala/internal/people"
)

func render(t *testing.T, v View) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Render(&buf, v); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func TestRender_Loaded(t *testing.T) {
	p := New(staticSource(family(), nil, nil), nil)
	p.Mount(context.Background())
	html := render(t, p.View(people.Params{Sort: people.SortName}, "ben"))

	for _, want := range []string{
		`data-cy="peopleFilters"`,
		`data-cy="peopleTable"`,
		`<a href="/people/anna?sort=name" class="has-text-danger">Anna</a>`,
		`<tr data-cy="person" class="has-background-warning">`,
		`href="/people/ben?order=desc&amp;sort=name" data-sort="asc">Name</a>`,
		`<td>Unknown</td>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(html, "peopleLoadingError") || strings.Contains(html, "noPeopleMessage") {
		t.Error("loaded page must not show error or no data messages")
	}
}

func TestRender_NoData(t *testing.T) {
	p := New(staticSource(nil, nil, nil), nil)
	p.Mount(context.Background())
	html := render(t, p.View(people.Params{}, ""))

	if !strings.Contains(html, "There are no people on the server") {
		t.Error("missing no data message")
	}
	if strings.Contains(html, "peopleFilters") || strings.Contains(html, "peopleTable") {
		t.Error("no data page must hide filters and table")
	}
}

func TestRender_LoadError(t *testing.T) {
	p := New(staticSource(nil, errors.New("down"), nil), nil)
	p.Mount(context.Background())
	html := render(t, p.View(people.Params{}, ""))

	if !strings.Contains(html, `data-cy="peopleLoadingError"`) {
		t.Error("missing error message")
	}
	if strings.Contains(html, "peopleFilters") || strings.Contains(html, "peopleTable") {
		t.Error("error page must hide filters and table")
	}
}

func TestRender_Loading(t *testing.T) {
	html := render(t, View{State: StateLoading, Loading: true})
	if !strings.Contains(html, `data-cy="loader"`) {
		t.Error("missing loader")
	}
	if strings.Contains(html, "peopleTable") {
		t.Error("loader replaces the table")
	}
}

func TestRender_NoMatches(t *testing.T) {
	p := New(staticSource(family(), nil, nil), nil)
	p.Mount(context.Background())
	html := render(t, p.View(people.Params{Query: "zzz"}, ""))
	if !strings.Contains(html, "There are no people matching the current search criteria") {
		t.Error("missing no match message")
	}
	if !strings.Contains(html, `value="zzz"`) {
		t.Error("search box should keep the query")
	}
}

func TestRender_EscapesNames(t *testing.T) {
	list := []models.Person{{Slug: "x", Name: "<script>alert(1)</script>", Sex: models.SexMale}}
	p := New(staticSource(list, nil, nil), nil)
	p.Mount(context.Background())
	html := render(t, p.View(people.Params{}, ""))
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Error("names must be HTML-escaped")
	}
}

func TestView_Links(t *testing.T) {
	v := View{Params: people.Params{Sex: people.SexMale, Centuries: []int{18}}, SelectedSlug: "ben"}

	if got := v.SexHref(""); got != "/people/ben?centuries=18" {
		t.Errorf("SexHref(all) = %q", got)
	}
	if got := v.CenturyHref(18); got != "/people/ben?sex=m" {
		t.Errorf("CenturyHref(18) = %q", got)
	}
	if got := v.CenturyHref(19); got != "/people/ben?centuries=18&centuries=19&sex=m" {
		t.Errorf("CenturyHref(19) = %q", got)
	}
	if got := v.ResetHref(); got != "/people/ben" {
		t.Errorf("ResetHref = %q", got)
	}
	if !v.SexActive("m") || v.SexActive("f") {
		t.Error("SexActive mismatch")
	}
	if v.SortDir("name") != "" {
		t.Error("unsorted column should have no direction")
	}
}
