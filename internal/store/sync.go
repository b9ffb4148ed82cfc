package store

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/checksum"
	"github.com/starford/othala/internal/dataset"
	"github.com/starford/othala/internal/models"
	"github.com/starford/othala/internal/storage"
)

// Sync walks the data directory and brings the store up to date:
//   - new/changed dataset files are decoded and imported
//   - datasets whose file is gone are removed
//
// A file that fails to decode, or that reuses a slug of another dataset, is
// logged and skipped. Whatever was imported from it earlier stays in place.
func Sync(db *DB, fs storage.Provider, logger *slog.Logger) error {
	metas, err := fs.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}
	}

	// Stale datasets go first so a slug moved to another file can be imported.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteDataset(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	for _, m := range metas {
		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := fs.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := Import(db, m.Path, data); err != nil {
			logger.Warn("sync: import failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: imported", slog.String("path", m.Path))
		}
	}

	return nil
}

// Import decodes data and replaces the dataset at path with it.
func Import(db *DB, path string, data []byte) error {
	people, err := dataset.Decode(path, data)
	if err != nil {
		return err
	}
	if err := db.ReplaceDataset(path, checksum.Sum(data), people); err != nil {
		return fmt.Errorf("store: import %s: %w", path, err)
	}
	return nil
}

// Add stores a new dataset file under name and imports it. It never replaces
// an existing file: that fails with apperr.ErrAlreadyExists. Invalid content
// and slugs owned by another dataset fail with apperr.ErrInvalidDataset
// before anything is written.
func Add(db *DB, fs storage.Provider, name string, data []byte) ([]models.Person, error) {
	people, err := dataset.Decode(name, data)
	if err != nil {
		return nil, err
	}
	if _, err := fs.Read(name); err == nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrAlreadyExists, name)
	}
	if err := db.CheckSlugs(name, people); err != nil {
		return nil, err
	}
	if err := fs.Write(name, data); err != nil {
		return nil, fmt.Errorf("store: write %s: %w", name, err)
	}
	if err := Import(db, name, data); err != nil {
		// Roll back the write.
		if rmErr := fs.Delete(name); rmErr != nil {
			err = errors.Join(err, rmErr)
		}
		return nil, err
	}
	return people, nil
}
