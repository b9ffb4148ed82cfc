package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/checksum"
	"github.com/starford/othala/internal/models"
)

const personColumns = `slug, name, sex, born, died, country, mother_name, father_name`

// ReplaceDataset stores people as the full content of the dataset at path,
// replacing whatever was imported from it before. Runs in one transaction.
// A slug already imported from another dataset fails with
// apperr.ErrInvalidDataset and leaves the store unchanged.
func (db *DB) ReplaceDataset(path, sum string, people []models.Person) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if err := checkSlugs(tx, path, people); err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO datasets (path, checksum, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, path, sum, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store: upsert dataset: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM people WHERE dataset = ?`, path); err != nil {
		return fmt.Errorf("store: clear dataset: %w", err)
	}
	if len(people) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO people (dataset, position, ` + personColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("store: prepare person insert: %w", err)
		}
		defer stmt.Close()
		for i, p := range people {
			if _, err := stmt.Exec(path, i, p.Slug, p.Name, string(p.Sex), p.Born, p.Died,
				p.Country, p.MotherName, p.FatherName); err != nil {
				return fmt.Errorf("store: insert person %s: %w", p.Slug, err)
			}
		}
	}

	return tx.Commit()
}

// CheckSlugs reports whether people could be imported as the dataset at path
// without reusing a slug held by another dataset.
func (db *DB) CheckSlugs(path string, people []models.Person) error {
	return checkSlugs(db.conn, path, people)
}

type rowQuerier interface {
	QueryRow(query string, args ...any) *sql.Row
}

func checkSlugs(q rowQuerier, path string, people []models.Person) error {
	for _, p := range people {
		var other string
		err := q.QueryRow(`SELECT dataset FROM people WHERE slug = ? AND dataset <> ? LIMIT 1`,
			p.Slug, path).Scan(&other)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return fmt.Errorf("store: check slug: %w", err)
		}
		return fmt.Errorf("%w: %s: slug %q already imported from %s",
			apperr.ErrInvalidDataset, path, p.Slug, other)
	}
	return nil
}

// DeleteDataset removes a dataset and every person imported from it.
func (db *DB) DeleteDataset(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM people WHERE dataset = ?`, path); err != nil {
		return fmt.Errorf("store: delete people: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM datasets WHERE path = ?`, path); err != nil {
		return fmt.Errorf("store: delete dataset: %w", err)
	}
	return tx.Commit()
}

// GetChecksum returns the stored checksum for a dataset, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM datasets WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("store: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns path → checksum for every imported dataset.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM datasets`)
	if err != nil {
		return nil, fmt.Errorf("store: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// Version returns a digest of every imported dataset. It changes whenever
// any dataset is added, replaced or removed.
func (db *DB) Version() (string, error) {
	rows, err := db.conn.Query(`SELECT checksum FROM datasets ORDER BY path`)
	if err != nil {
		return "", fmt.Errorf("store: version: %w", err)
	}
	defer rows.Close()
	var sums []string
	for rows.Next() {
		var cs string
		if err := rows.Scan(&cs); err != nil {
			return "", err
		}
		sums = append(sums, cs)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return checksum.Combine(sums...), nil
}

// ListPeople returns every imported person ordered by dataset path, then by
// position within the file.
func (db *DB) ListPeople(ctx context.Context) ([]models.Person, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+personColumns+` FROM people ORDER BY dataset, position`)
	if err != nil {
		return nil, fmt.Errorf("store: list people: %w", err)
	}
	defer rows.Close()

	out := []models.Person{}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan person: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Count returns the number of imported people.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM people`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPerson(s scanner) (models.Person, error) {
	var p models.Person
	var sex string
	err := s.Scan(&p.Slug, &p.Name, &sex, &p.Born, &p.Died, &p.Country, &p.MotherName, &p.FatherName)
	p.Sex = models.Sex(sex)
	return p, err
}
