package store

import (
	"context"
	"os"

	"github.com/pkg/errors"
)

// Stats holds database statistics.
type Stats struct {
	DBPath      string            `json:"db_path"`
	DBSizeBytes int64             `json:"db_size_bytes"`
	TotalRows   int               `json:"total_rows"`
	Collections []CollectionStats `json:"collections"`
}

// CollectionStats holds per-collection counts.
type CollectionStats struct {
	Name    string `json:"name"`
	Rows    int    `json:"rows"`
	Version int    `json:"schema_version"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	versions, err := s.Versions(ctx)
	if err != nil {
		return st, err
	}

	for _, name := range Collections {
		cs := CollectionStats{Name: name, Version: versions[name]}
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+name).Scan(&cs.Rows); err != nil {
			return st, errors.Wrapf(err, "count %s", name)
		}
		st.TotalRows += cs.Rows
		st.Collections = append(st.Collections, cs)
	}
	return st, nil
}
