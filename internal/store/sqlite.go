package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/rcliao/nudge/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create db dir")
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.Wrap(err, "open db")
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate")
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS collection_versions (
		name       TEXT PRIMARY KEY,
		version    INTEGER NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS responses (
		seq                   INTEGER PRIMARY KEY,
		notification_id       TEXT NOT NULL,
		sent_at               TEXT NOT NULL,
		responded_at          TEXT,
		action                TEXT NOT NULL,
		hour_of_day           INTEGER NOT NULL,
		day_of_week           INTEGER NOT NULL,
		response_time_seconds REAL
	);
	CREATE INDEX IF NOT EXISTS idx_responses_notification ON responses(notification_id);

	CREATE TABLE IF NOT EXISTS completions (
		seq              INTEGER PRIMARY KEY,
		id               TEXT NOT NULL,
		title            TEXT NOT NULL,
		keywords         TEXT,
		category         TEXT NOT NULL,
		completed_at     TEXT NOT NULL,
		hour_of_day      INTEGER NOT NULL,
		day_of_week      INTEGER NOT NULL,
		duration_minutes INTEGER,
		was_on_time      INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS durations (
		seq               INTEGER PRIMARY KEY,
		id                TEXT NOT NULL,
		title             TEXT NOT NULL,
		keywords          TEXT,
		category          TEXT NOT NULL,
		estimated_minutes INTEGER NOT NULL,
		actual_minutes    INTEGER NOT NULL,
		completed_at      TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS attempts (
		seq          INTEGER PRIMARY KEY,
		id           TEXT NOT NULL,
		strategy     TEXT NOT NULL,
		energy       TEXT NOT NULL,
		succeeded    INTEGER NOT NULL,
		attempted_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS productive_windows (
		seq                  INTEGER PRIMARY KEY,
		start_hour           INTEGER NOT NULL,
		end_hour             INTEGER NOT NULL,
		day_of_week          INTEGER,
		response_rate        REAL NOT NULL,
		avg_response_seconds REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS quiet_periods (
		seq        INTEGER PRIMARY KEY,
		start_hour INTEGER NOT NULL,
		end_hour   INTEGER NOT NULL,
		reason     TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Versions returns the schema version recorded for each saved collection.
func (s *SQLiteStore) Versions(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, version FROM collection_versions`)
	if err != nil {
		return nil, errors.Wrap(err, "query collection versions")
	}
	defer rows.Close()

	versions := map[string]int{}
	for rows.Next() {
		var name string
		var v int
		if err := rows.Scan(&name, &v); err != nil {
			return nil, errors.Wrap(err, "scan collection version")
		}
		versions[name] = v
	}
	return versions, rows.Err()
}

// Load reads every collection in insertion order.
func (s *SQLiteStore) Load(ctx context.Context) (*State, error) {
	versions, err := s.Versions(ctx)
	if err != nil {
		return nil, err
	}
	for name, v := range versions {
		if v > SchemaVersion {
			return nil, errors.Errorf("collection %s has schema version %d, newer than supported %d", name, v, SchemaVersion)
		}
	}

	st := &State{}
	if st.Responses, err = s.loadResponses(ctx); err != nil {
		return nil, err
	}
	if st.Completions, err = s.loadCompletions(ctx); err != nil {
		return nil, err
	}
	if st.Durations, err = s.loadDurations(ctx); err != nil {
		return nil, err
	}
	if st.Attempts, err = s.loadAttempts(ctx); err != nil {
		return nil, err
	}
	if st.Windows, err = s.loadWindows(ctx); err != nil {
		return nil, err
	}
	if st.QuietPeriods, err = s.loadQuietPeriods(ctx); err != nil {
		return nil, err
	}
	return st, nil
}

// Save replaces every collection in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, st *State) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin save")
	}
	defer tx.Rollback()

	for _, name := range Collections {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+name); err != nil {
			return errors.Wrapf(err, "clear %s", name)
		}
	}

	for i, e := range st.Responses {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO responses (seq, notification_id, sent_at, responded_at, action, hour_of_day, day_of_week, response_time_seconds)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			i, e.NotificationID, formatTime(e.SentAt), formatTimePtr(e.RespondedAt), string(e.Action),
			e.HourOfDay, e.DayOfWeek, nullFloat(e.ResponseTimeSeconds))
		if err != nil {
			return errors.Wrap(err, "insert response")
		}
	}

	for i, r := range st.Completions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO completions (seq, id, title, keywords, category, completed_at, hour_of_day, day_of_week, duration_minutes, was_on_time)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i, r.ID, r.Title, encodeKeywords(r.Keywords), string(r.Category), formatTime(r.CompletedAt),
			r.HourOfDay, r.DayOfWeek, nullInt(r.DurationMinutes), r.WasOnTime)
		if err != nil {
			return errors.Wrap(err, "insert completion")
		}
	}

	for i, r := range st.Durations {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO durations (seq, id, title, keywords, category, estimated_minutes, actual_minutes, completed_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			i, r.ID, r.Title, encodeKeywords(r.Keywords), string(r.Category),
			r.EstimatedMinutes, r.ActualMinutes, formatTime(r.CompletedAt))
		if err != nil {
			return errors.Wrap(err, "insert duration")
		}
	}

	for i, a := range st.Attempts {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO attempts (seq, id, strategy, energy, succeeded, attempted_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			i, a.ID, string(a.Strategy), string(a.Energy), a.Succeeded, formatTime(a.AttemptedAt))
		if err != nil {
			return errors.Wrap(err, "insert attempt")
		}
	}

	for i, w := range st.Windows {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO productive_windows (seq, start_hour, end_hour, day_of_week, response_rate, avg_response_seconds)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			i, w.StartHour, w.EndHour, nullInt(w.DayOfWeek), w.ResponseRate, w.AvgResponseSeconds)
		if err != nil {
			return errors.Wrap(err, "insert productive window")
		}
	}

	for i, q := range st.QuietPeriods {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO quiet_periods (seq, start_hour, end_hour, reason) VALUES (?, ?, ?, ?)`,
			i, q.StartHour, q.EndHour, q.Reason)
		if err != nil {
			return errors.Wrap(err, "insert quiet period")
		}
	}

	now := formatTime(time.Now())
	for _, name := range Collections {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO collection_versions (name, version, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(name) DO UPDATE SET version = excluded.version, updated_at = excluded.updated_at`,
			name, SchemaVersion, now)
		if err != nil {
			return errors.Wrapf(err, "tag %s version", name)
		}
	}

	return errors.Wrap(tx.Commit(), "commit save")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) loadResponses(ctx context.Context) ([]model.NotificationResponseEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT notification_id, sent_at, responded_at, action, hour_of_day, day_of_week, response_time_seconds
		 FROM responses ORDER BY seq`)
	if err != nil {
		return nil, errors.Wrap(err, "query responses")
	}
	defer rows.Close()

	var out []model.NotificationResponseEvent
	for rows.Next() {
		var e model.NotificationResponseEvent
		var sentAt, action string
		var respondedAt sql.NullString
		var latency sql.NullFloat64
		if err := rows.Scan(&e.NotificationID, &sentAt, &respondedAt, &action, &e.HourOfDay, &e.DayOfWeek, &latency); err != nil {
			return nil, errors.Wrap(err, "scan response")
		}
		if e.SentAt, err = parseTime(sentAt); err != nil {
			return nil, errors.Wrapf(err, "response %s sent_at", e.NotificationID)
		}
		e.Action = model.ResponseAction(action)
		if respondedAt.Valid {
			t, err := parseTime(respondedAt.String)
			if err != nil {
				return nil, errors.Wrapf(err, "response %s responded_at", e.NotificationID)
			}
			e.RespondedAt = &t
		}
		if latency.Valid {
			v := latency.Float64
			e.ResponseTimeSeconds = &v
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadCompletions(ctx context.Context) ([]model.TaskCompletionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, keywords, category, completed_at, hour_of_day, day_of_week, duration_minutes, was_on_time
		 FROM completions ORDER BY seq`)
	if err != nil {
		return nil, errors.Wrap(err, "query completions")
	}
	defer rows.Close()

	var out []model.TaskCompletionRecord
	for rows.Next() {
		r, err := scanCompletion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadDurations(ctx context.Context) ([]model.DurationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, keywords, category, estimated_minutes, actual_minutes, completed_at
		 FROM durations ORDER BY seq`)
	if err != nil {
		return nil, errors.Wrap(err, "query durations")
	}
	defer rows.Close()

	var out []model.DurationRecord
	for rows.Next() {
		var r model.DurationRecord
		var keywords sql.NullString
		var category, completedAt string
		if err := rows.Scan(&r.ID, &r.Title, &keywords, &category,
			&r.EstimatedMinutes, &r.ActualMinutes, &completedAt); err != nil {
			return nil, errors.Wrap(err, "scan duration")
		}
		if r.Keywords, err = decodeKeywords(keywords); err != nil {
			return nil, errors.Wrapf(err, "duration %s keywords", r.ID)
		}
		r.Category = model.Category(category)
		if r.CompletedAt, err = parseTime(completedAt); err != nil {
			return nil, errors.Wrapf(err, "duration %s completed_at", r.ID)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadAttempts(ctx context.Context) ([]model.StrategyAttempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, strategy, energy, succeeded, attempted_at FROM attempts ORDER BY seq`)
	if err != nil {
		return nil, errors.Wrap(err, "query attempts")
	}
	defer rows.Close()

	var out []model.StrategyAttempt
	for rows.Next() {
		var a model.StrategyAttempt
		var strategyID, energy, attemptedAt string
		if err := rows.Scan(&a.ID, &strategyID, &energy, &a.Succeeded, &attemptedAt); err != nil {
			return nil, errors.Wrap(err, "scan attempt")
		}
		a.Strategy = model.StrategyID(strategyID)
		a.Energy = model.EnergyLevel(energy)
		if a.AttemptedAt, err = parseTime(attemptedAt); err != nil {
			return nil, errors.Wrapf(err, "attempt %s attempted_at", a.ID)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadWindows(ctx context.Context) ([]model.ProductiveWindow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT start_hour, end_hour, day_of_week, response_rate, avg_response_seconds
		 FROM productive_windows ORDER BY seq`)
	if err != nil {
		return nil, errors.Wrap(err, "query productive windows")
	}
	defer rows.Close()

	var out []model.ProductiveWindow
	for rows.Next() {
		var w model.ProductiveWindow
		var day sql.NullInt64
		if err := rows.Scan(&w.StartHour, &w.EndHour, &day, &w.ResponseRate, &w.AvgResponseSeconds); err != nil {
			return nil, errors.Wrap(err, "scan productive window")
		}
		if day.Valid {
			d := int(day.Int64)
			w.DayOfWeek = &d
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadQuietPeriods(ctx context.Context) ([]model.QuietPeriod, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT start_hour, end_hour, reason FROM quiet_periods ORDER BY seq`)
	if err != nil {
		return nil, errors.Wrap(err, "query quiet periods")
	}
	defer rows.Close()

	var out []model.QuietPeriod
	for rows.Next() {
		var q model.QuietPeriod
		if err := rows.Scan(&q.StartHour, &q.EndHour, &q.Reason); err != nil {
			return nil, errors.Wrap(err, "scan quiet period")
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parse time %q", s)
	}
	return t, nil
}

func nullInt(v *int) *int64 {
	if v == nil {
		return nil
	}
	n := int64(*v)
	return &n
}

func nullFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	f := *v
	return &f
}

func encodeKeywords(kw []string) *string {
	if kw == nil {
		return nil
	}
	b, _ := json.Marshal(kw)
	s := string(b)
	return &s
}

func decodeKeywords(s sql.NullString) ([]string, error) {
	if !s.Valid {
		return nil, nil
	}
	var kw []string
	if err := json.Unmarshal([]byte(s.String), &kw); err != nil {
		return nil, errors.Wrapf(err, "decode keywords %q", s.String)
	}
	return kw, nil
}
