package people

import (
	"testing"

	"github.com/starford/othala/internal/models"
)

func TestLink_ResolvesMotherByName(t *testing.T) {
	in := []models.Person{
		{Slug: "jane", Name: "Jane", MotherName: "Mary"},
		{Slug: "mary", Name: "Mary"},
	}
	out := Link(in)

	if out[0].Mother == nil {
		t.Fatal("Jane's mother should be resolved")
	}
	if out[0].Mother.Slug != "mary" {
		t.Errorf("mother slug = %q, want mary", out[0].Mother.Slug)
	}
	if out[0].Father != nil {
		t.Errorf("father = %+v, want nil", out[0].Father)
	}
	if out[1].Mother != nil || out[1].Father != nil {
		t.Error("Mary has no parent names and must stay unresolved")
	}
}

func TestLink_UnknownNameStaysUnset(t *testing.T) {
	out := Link([]models.Person{{Name: "Jan", FatherName: "Nobody"}})
	if out[0].Father != nil {
		t.Errorf("father = %+v, want nil", out[0].Father)
	}
}

func TestLink_FirstOccurrenceWins(t *testing.T) {
	in := []models.Person{
		{Slug: "kid", Name: "Kid", FatherName: "Pieter"},
		{Slug: "pieter-1650", Name: "Pieter", Born: 1650},
		{Slug: "pieter-1700", Name: "Pieter", Born: 1700},
	}
	out := Link(in)
	if out[0].Father == nil || out[0].Father.Slug != "pieter-1650" {
		t.Fatalf("father = %+v, want pieter-1650", out[0].Father)
	}
}

func TestLink_InputUntouched(t *testing.T) {
	in := []models.Person{
		{Name: "A", MotherName: "B"},
		{Name: "B"},
	}
	_ = Link(in)
	if in[0].Mother != nil {
		t.Error("Link must not modify its input")
	}
}

func TestLink_Properties(t *testing.T) {
	in := sample()
	out := Link(in)
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i, p := range out {
		if p.Mother != nil && p.Mother.Name != in[i].MotherName {
			t.Errorf("%s: mother name %q != %q", p.Slug, p.Mother.Name, in[i].MotherName)
		}
		if p.Father != nil && p.Father.Name != in[i].FatherName {
			t.Errorf("%s: father name %q != %q", p.Slug, p.Father.Name, in[i].FatherName)
		}
		if p.Mother != nil && (p.Mother.Mother != nil || p.Mother.Father != nil) {
			t.Errorf("%s: resolved mother must be flat", p.Slug)
		}
	}
}

func TestFindBySlug(t *testing.T) {
	list := sample()
	p, ok := FindBySlug(list, "emma-de-milliano-1876")
	if !ok || p.Name != "Emma de Milliano" {
		t.Errorf("FindBySlug = %+v, %v", p, ok)
	}
	if _, ok := FindBySlug(list, "missing"); ok {
		t.Error("missing slug should not be found")
	}
}

// sample is a small slice of the classic Haverbeke family dataset.
func sample() []models.Person {
	return []models.Person{
		{Slug: "carolus-haverbeke-1832", Name: "Carolus Haverbeke", Sex: models.SexMale, Born: 1832, Died: 1905,
			FatherName: "Carel Haverbeke", MotherName: "Maria van Brussel"},
		{Slug: "emma-de-milliano-1876", Name: "Emma de Milliano", Sex: models.SexFemale, Born: 1876, Died: 1956,
			FatherName: "Petrus de Milliano", MotherName: "Sophia van Damme"},
		{Slug: "maria-de-rycke-1683", Name: "Maria de Rycke", Sex: models.SexFemale, Born: 1683, Died: 1724,
			FatherName: "Frederik de Rycke", MotherName: "Laurentia van Vlaenderen"},
		{Slug: "jan-van-brussel-1714", Name: "Jan van Brussel", Sex: models.SexMale, Born: 1714, Died: 1748,
			FatherName: "Jacobus van Brussel", MotherName: "Joanna van Rooten"},
		{Slug: "philibert-haverbeke-1907", Name: "Philibert Haverbeke", Sex: models.SexMale, Born: 1907, Died: 1997,
			FatherName: "Emile Haverbeke", MotherName: "Emma de Milliano"},
		{Slug: "jan-frans-van-brussel-1761", Name: "Jan Frans van Brussel", Sex: models.SexMale, Born: 1761, Died: 1833,
			FatherName: "Jacobus Bernardus van Brussel"},
		{Slug: "pauwels-van-haverbeke-1535", Name: "Pauwels van Haverbeke", Sex: models.SexMale, Born: 1535, Died: 1582,
			FatherName: "N. van Haverbeke"},
		{Slug: "clara-aernoudts-1918", Name: "Clara Aernoudts", Sex: models.SexFemale, Born: 1918, Died: 2012},
		{Slug: "emile-haverbeke-1877", Name: "Emile Haverbeke", Sex: models.SexMale, Born: 1877, Died: 1968,
			FatherName: "Carolus Haverbeke", MotherName: "Maria Sturm"},
		{Slug: "lieven-de-causmaecker-1696", Name: "Lieven de Causmaecker", Sex: models.SexMale, Born: 1696, Died: 1724,
			FatherName: "Carel de Causmaecker", MotherName: "Joanna Claes"},
	}
}
