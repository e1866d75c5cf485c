package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/nudge/internal/model"
)

func TestSearchCompletions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Save(ctx, sampleState()))

	got, err := s.SearchCompletions(ctx, SearchParams{Query: "Quarterly"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].ID)
	assert.Equal(t, 50, *got[0].DurationMinutes)

	got, err = s.SearchCompletions(ctx, SearchParams{Category: model.CategoryExercise})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Gym", got[0].Title)
	assert.Nil(t, got[0].DurationMinutes)

	got, err = s.SearchCompletions(ctx, SearchParams{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c2", got[0].ID, "newest first")

	got, err = s.SearchCompletions(ctx, SearchParams{Query: "javascript"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Save(ctx, sampleState()))

	stats, err := s.Stats(ctx, dbPath)
	require.NoError(t, err)
	assert.Equal(t, 2+2+1+1+2+1, stats.TotalRows)
	require.Len(t, stats.Collections, len(Collections))
	assert.Equal(t, CollectionResponses, stats.Collections[0].Name)
	assert.Equal(t, 2, stats.Collections[0].Rows)
	assert.Equal(t, SchemaVersion, stats.Collections[0].Version)
	assert.NotZero(t, stats.DBSizeBytes)
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	src, err := NewSQLiteStore(filepath.Join(dir, "src.db"))
	require.NoError(t, err)
	defer src.Close()
	require.NoError(t, src.Save(ctx, sampleState()))

	exp, err := src.ExportAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, exp.SchemaVersion)

	var buf strings.Builder
	require.NoError(t, WriteExport(&buf, exp))

	read, err := ReadExport(strings.NewReader(buf.String()))
	require.NoError(t, err)

	dst, err := NewSQLiteStore(filepath.Join(dir, "dst.db"))
	require.NoError(t, err)
	defer dst.Close()
	require.NoError(t, dst.Save(ctx, read.State))

	got, err := dst.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleState(), got)
}

func TestReadExportRejectsNewer(t *testing.T) {
	_, err := ReadExport(strings.NewReader(`{"schema_version": 99, "state": {}}`))
	assert.Error(t, err)

	_, err = ReadExport(strings.NewReader(`{"state": {}}`))
	assert.Error(t, err)

	exp, err := ReadExport(strings.NewReader(`{"schema_version": 1}`))
	require.NoError(t, err)
	assert.NotNil(t, exp.State)
}
