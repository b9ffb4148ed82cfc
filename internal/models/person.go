// Package models defines the domain types for Othala.
package models

import "time"

// Sex is the recorded sex of a person.
type Sex string

const (
	SexMale   Sex = "m"
	SexFemale Sex = "f"
)

// Person is a single record of the people directory.
//
// MotherName and FatherName are the names as stored in the source; Mother and
// Father are set only after linking and point at records of the same list.
type Person struct {
	Slug       string  `json:"slug" yaml:"slug"`
	Name       string  `json:"name" yaml:"name"`
	Sex        Sex     `json:"sex" yaml:"sex"`
	Born       int     `json:"born" yaml:"born"`
	Died       int     `json:"died" yaml:"died"`
	Country    string  `json:"country,omitempty" yaml:"country,omitempty"`
	MotherName string  `json:"motherName,omitempty" yaml:"motherName,omitempty"`
	FatherName string  `json:"fatherName,omitempty" yaml:"fatherName,omitempty"`
	Mother     *Person `json:"mother,omitempty" yaml:"-"`
	Father     *Person `json:"father,omitempty" yaml:"-"`
}

// Flat returns a copy of p without resolved parent references.
func (p Person) Flat() Person {
	p.Mother = nil
	p.Father = nil
	return p
}

// DatasetMetadata describes a dataset file in the data directory.
type DatasetMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
