package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/rcliao/nudge/internal/model"
)

// SearchParams holds parameters for searching completion history.
type SearchParams struct {
	Query    string
	Category model.Category
	Limit    int
}

// SearchCompletions finds completed tasks whose title or keywords contain the
// query substring, newest first.
func (s *SQLiteStore) SearchCompletions(ctx context.Context, p SearchParams) ([]model.TaskCompletionRecord, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	var where []string
	var args []interface{}

	if q := strings.TrimSpace(p.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		where = append(where, "(LOWER(title) LIKE ? OR keywords LIKE ?)")
		args = append(args, like, like)
	}
	if p.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(p.Category))
	}

	cond := ""
	if len(where) > 0 {
		cond = "WHERE " + strings.Join(where, " AND ")
	}
	query := fmt.Sprintf(`
		SELECT id, title, keywords, category, completed_at, hour_of_day, day_of_week, duration_minutes, was_on_time
		FROM completions %s
		ORDER BY seq DESC
		LIMIT ?`, cond)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "search completions")
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

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCompletion(row scanner) (model.TaskCompletionRecord, error) {
	var r model.TaskCompletionRecord
	var keywords sql.NullString
	var category, completedAt string
	var duration sql.NullInt64
	if err := row.Scan(&r.ID, &r.Title, &keywords, &category, &completedAt,
		&r.HourOfDay, &r.DayOfWeek, &duration, &r.WasOnTime); err != nil {
		return r, errors.Wrap(err, "scan completion")
	}
	var err error
	if r.Keywords, err = decodeKeywords(keywords); err != nil {
		return r, errors.Wrapf(err, "completion %s keywords", r.ID)
	}
	r.Category = model.Category(category)
	if r.CompletedAt, err = parseTime(completedAt); err != nil {
		return r, errors.Wrapf(err, "completion %s completed_at", r.ID)
	}
	if duration.Valid {
		d := int(duration.Int64)
		r.DurationMinutes = &d
	}
	return r, nil
}
