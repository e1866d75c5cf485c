package store

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/pkg/errors"
)

// Export is the portable JSON form of the whole store.
type Export struct {
	SchemaVersion int       `json:"schema_version"`
	ExportedAt    time.Time `json:"exported_at"`
	State         *State    `json:"state"`
}

// ExportAll returns every collection wrapped with its schema version.
func (s *SQLiteStore) ExportAll(ctx context.Context) (*Export, error) {
	st, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Export{
		SchemaVersion: SchemaVersion,
		ExportedAt:    time.Now().UTC(),
		State:         st,
	}, nil
}

// ReadExport decodes an export and rejects schema versions this build cannot read.
func ReadExport(r io.Reader) (*Export, error) {
	var exp Export
	if err := json.NewDecoder(r).Decode(&exp); err != nil {
		return nil, errors.Wrap(err, "decode export")
	}
	if exp.SchemaVersion == 0 {
		return nil, errors.New("export has no schema_version")
	}
	if exp.SchemaVersion > SchemaVersion {
		return nil, errors.Errorf("export schema version %d is newer than supported %d", exp.SchemaVersion, SchemaVersion)
	}
	if exp.State == nil {
		exp.State = &State{}
	}
	return &exp, nil
}

// WriteExport encodes exp as indented JSON.
func WriteExport(w io.Writer, exp *Export) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(exp), "encode export")
}
