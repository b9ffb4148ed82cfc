// Package dataset decodes and validates people dataset files (JSON or YAML arrays
// of flat person records).
package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/models"
)

// Extensions lists the file extensions recognised as datasets.
var Extensions = []string{".json", ".yaml", ".yml"}

// IsDatasetFile reports whether name has a dataset extension.
func IsDatasetFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Decode parses data as a dataset, choosing the codec by the extension of name,
// and validates every record. All failures wrap apperr.ErrInvalidDataset.
func Decode(name string, data []byte) ([]models.Person, error) {
	people, err := Parse(name, data)
	if err != nil {
		return nil, err
	}
	if err := Validate(people); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperr.ErrInvalidDataset, name, err)
	}
	return people, nil
}

// Parse decodes data without checking the records. Syntax errors wrap
// apperr.ErrInvalidDataset.
func Parse(name string, data []byte) ([]models.Person, error) {
	var people []models.Person
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		if err := json.Unmarshal(data, &people); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", apperr.ErrInvalidDataset, name, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &people); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", apperr.ErrInvalidDataset, name, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s: unsupported extension", apperr.ErrInvalidDataset, name)
	}
	if people == nil {
		people = []models.Person{}
	}
	return people, nil
}

// DecodeJSON parses a JSON people payload, as served by a people API. Records
// are taken as they come; only malformed JSON is an error.
func DecodeJSON(data []byte) ([]models.Person, error) {
	return Parse("payload.json", data)
}

// Validate checks each record and rejects duplicate slugs.
func Validate(people []models.Person) error {
	seen := make(map[string]int, len(people))
	for i := range people {
		if err := validatePerson(&people[i]); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if j, dup := seen[people[i].Slug]; dup {
			return fmt.Errorf("record %d: slug %q already used by record %d", i, people[i].Slug, j)
		}
		seen[people[i].Slug] = i
	}
	return nil
}

func validatePerson(p *models.Person) error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Slug, validation.Required),
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Sex, validation.Required, validation.In(models.SexMale, models.SexFemale)),
		validation.Field(&p.Died, validation.When(p.Died != 0, validation.Min(p.Born))),
	)
}

// Encode renders people as an indented JSON array of flat records.
func Encode(people []models.Person) ([]byte, error) {
	flat := make([]models.Person, len(people))
	for i := range people {
		flat[i] = people[i].Flat()
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(flat); err != nil {
		return nil, fmt.Errorf("dataset: encode: %w", err)
	}
	return buf.Bytes(), nil
}
