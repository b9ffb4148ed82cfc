// Package testutil provides shared test helpers for setting up data dirs and databases.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/othala/internal/dataset"
	"github.com/starford/othala/internal/models"
	"github.com/starford/othala/internal/storage"
	"github.com/starford/othala/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "othala-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestDataDir creates a temporary data directory with a storage.Provider.
func TestDataDir(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	files, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, files
}

// QuietLogger returns a logger that discards everything.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WriteDataset encodes people as JSON into path under files.
func WriteDataset(t *testing.T, files storage.Provider, path string, people []models.Person) {
	t.Helper()
	data, err := dataset.Encode(people)
	if err != nil {
		t.Fatal(err)
	}
	if err := files.Write(path, data); err != nil {
		t.Fatal(err)
	}
}

// Haverbekes is a small family with mothers and fathers resolvable by name.
func Haverbekes() []models.Person {
	return []models.Person{
		{Slug: "carolus-haverbeke-1832", Name: "Carolus Haverbeke", Sex: models.SexMale, Born: 1832, Died: 1905,
			Country: "BE", FatherName: "Carel Haverbeke", MotherName: "Maria van Brussel"},
		{Slug: "emma-de-milliano-1876", Name: "Emma de Milliano", Sex: models.SexFemale, Born: 1876, Died: 1956,
			Country: "BE", FatherName: "Petrus de Milliano", MotherName: "Sophia van Damme"},
		{Slug: "maria-de-rycke-1683", Name: "Maria de Rycke", Sex: models.SexFemale, Born: 1683, Died: 1724,
			Country: "BE", FatherName: "Frederik de Rycke", MotherName: "Laurentia van Vlaenderen"},
		{Slug: "jan-van-brussel-1714", Name: "Jan van Brussel", Sex: models.SexMale, Born: 1714, Died: 1748,
			Country: "BE", FatherName: "Jacobus van Brussel", MotherName: "Joanna van Rooten"},
		{Slug: "philibert-haverbeke-1907", Name: "Philibert Haverbeke", Sex: models.SexMale, Born: 1907, Died: 1997,
			Country: "BE", FatherName: "Emile Haverbeke", MotherName: "Emma de Milliano"},
		{Slug: "emile-haverbeke-1877", Name: "Emile Haverbeke", Sex: models.SexMale, Born: 1877, Died: 1968,
			Country: "BE", FatherName: "Carolus Haverbeke", MotherName: "Maria Sturm"},
	}
}
