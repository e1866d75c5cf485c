package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/nudge/internal/eventlog"
	"github.com/rcliao/nudge/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	require.NoError(t, err, "create store")
	t.Cleanup(func() { s.Close() })
	return s
}

func intPtr(v int) *int { return &v }

func sampleState() *State {
	sent := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	responded := sent.Add(90 * time.Second)
	latency := 90.0
	done := time.Date(2026, 3, 2, 11, 30, 0, 0, time.UTC)
	monday := 2

	return &State{
		Snapshot: eventlog.Snapshot{
			Responses: []model.NotificationResponseEvent{
				{NotificationID: "n1", SentAt: sent, RespondedAt: &responded, Action: model.ActionCompleted,
					HourOfDay: 10, DayOfWeek: 2, ResponseTimeSeconds: &latency},
				{NotificationID: "n2", SentAt: sent.Add(time.Hour), Action: model.ActionIgnored,
					HourOfDay: 11, DayOfWeek: 2},
			},
			Completions: []model.TaskCompletionRecord{
				{ID: "c1", Title: "Write quarterly report", Keywords: []string{"write", "quarterly", "report"},
					Category: model.CategoryDeepWork, CompletedAt: done, HourOfDay: 11, DayOfWeek: 2,
					DurationMinutes: intPtr(50), WasOnTime: true},
				{ID: "c2", Title: "Gym", Category: model.CategoryExercise, CompletedAt: done.Add(time.Hour),
					HourOfDay: 12, DayOfWeek: 2, WasOnTime: false},
			},
			Durations: []model.DurationRecord{
				{ID: "d1", Title: "Write quarterly report", Keywords: []string{"write", "quarterly", "report"},
					Category: model.CategoryDeepWork, EstimatedMinutes: 45, ActualMinutes: 50, CompletedAt: done},
			},
			Attempts: []model.StrategyAttempt{
				{ID: "a1", Strategy: model.StrategyEatTheFrog, Energy: model.EnergyHigh, Succeeded: true, AttemptedAt: done},
			},
		},
		Windows: []model.ProductiveWindow{
			{StartHour: 9, EndHour: 12, ResponseRate: 0.8, AvgResponseSeconds: 120},
			{StartHour: 10, EndHour: 11, DayOfWeek: &monday, ResponseRate: 1, AvgResponseSeconds: 90},
		},
		QuietPeriods: []model.QuietPeriod{
			{StartHour: 14, EndHour: 15, Reason: "0% response rate across 6 reminders"},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	want := sampleState()
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadEmpty(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got.Responses)
	assert.Empty(t, got.Completions)
	assert.Empty(t, got.Windows)
}

func TestSaveReplaces(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Save(ctx, sampleState()))

	smaller := sampleState()
	smaller.Responses = smaller.Responses[1:]
	smaller.Windows = nil
	require.NoError(t, s.Save(ctx, smaller))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Responses, 1)
	assert.Equal(t, "n2", got.Responses[0].NotificationID)
	assert.Empty(t, got.Windows)
}

func TestSaveTagsSchemaVersion(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Save(ctx, &State{}))

	versions, err := s.Versions(ctx)
	require.NoError(t, err)
	for _, name := range Collections {
		assert.Equal(t, SchemaVersion, versions[name], name)
	}
}

func TestLoadRejectsNewerSchema(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Save(ctx, &State{}))

	_, err := s.db.Exec(`UPDATE collection_versions SET version = ? WHERE name = ?`, SchemaVersion+1, CollectionDurations)
	require.NoError(t, err)

	_, err = s.Load(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "durations")
}

func TestDBPathCreation(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "db file should exist")
}

func TestLoadRejectsCorruptRows(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "bad completed_at",
			sql:  `UPDATE completions SET completed_at = 'yesterday-ish'`,
			want: "completed_at",
		},
		{
			name: "bad keywords",
			sql:  `UPDATE completions SET keywords = '{not json'`,
			want: "keywords",
		},
		{
			name: "bad sent_at",
			sql:  `UPDATE responses SET sent_at = ''`,
			want: "sent_at",
		},
		{
			name: "bad duration keywords",
			sql:  `UPDATE durations SET keywords = '[1,'`,
			want: "keywords",
		},
		{
			name: "bad attempted_at",
			sql:  `UPDATE attempts SET attempted_at = '2026-13-45'`,
			want: "attempted_at",
		},
	}

	ctx := context.Background()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			require.NoError(t, s.Save(ctx, sampleState()))
			_, err := s.db.ExecContext(ctx, tt.sql)
			require.NoError(t, err)

			_, err = s.Load(ctx)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
