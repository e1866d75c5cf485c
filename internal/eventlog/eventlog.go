// Package eventlog holds the bounded, append-only history the engine learns from.
package eventlog

import (
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rcliao/nudge/internal/keyword"
	"github.com/rcliao/nudge/internal/model"
)

const (
	DefaultMaxResponses   = 500
	DefaultMaxCompletions = 200
	DefaultMaxDurations   = 100
	DefaultMaxAttempts    = 50
)

// Limits caps each collection. Oldest entries are dropped first.
type Limits struct {
	Responses   int
	Completions int
	Durations   int
	Attempts    int
}

// DefaultLimits returns the default collection caps.
func DefaultLimits() Limits {
	return Limits{
		Responses:   DefaultMaxResponses,
		Completions: DefaultMaxCompletions,
		Durations:   DefaultMaxDurations,
		Attempts:    DefaultMaxAttempts,
	}
}

// Snapshot is a copy of every collection in insertion order.
type Snapshot struct {
	Responses   []model.NotificationResponseEvent `json:"responses"`
	Completions []model.TaskCompletionRecord      `json:"completions"`
	Durations   []model.DurationRecord            `json:"durations"`
	Attempts    []model.StrategyAttempt           `json:"attempts"`
}

// In returns a copy of s with every timestamp expressed in loc. Instants are
// unchanged.
func (s Snapshot) In(loc *time.Location) Snapshot {
	out := Snapshot{
		Responses:   make([]model.NotificationResponseEvent, len(s.Responses)),
		Completions: make([]model.TaskCompletionRecord, len(s.Completions)),
		Durations:   make([]model.DurationRecord, len(s.Durations)),
		Attempts:    make([]model.StrategyAttempt, len(s.Attempts)),
	}
	for i, e := range s.Responses {
		e.SentAt = e.SentAt.In(loc)
		if e.RespondedAt != nil {
			t := e.RespondedAt.In(loc)
			e.RespondedAt = &t
		}
		out.Responses[i] = e
	}
	for i, r := range s.Completions {
		r.CompletedAt = r.CompletedAt.In(loc)
		out.Completions[i] = r
	}
	for i, r := range s.Durations {
		r.CompletedAt = r.CompletedAt.In(loc)
		out.Durations[i] = r
	}
	for i, a := range s.Attempts {
		a.AttemptedAt = a.AttemptedAt.In(loc)
		out.Attempts[i] = a
	}
	return out
}

// Log is the single source of truth for learned behavior. It is not safe for
// concurrent use.
type Log struct {
	limits      Limits
	entropy     *rand.Rand
	responses   []model.NotificationResponseEvent
	completions []model.TaskCompletionRecord
	durations   []model.DurationRecord
	attempts    []model.StrategyAttempt
}

// New creates an empty log. Zero-valued limits fall back to the defaults.
func New(limits Limits, entropy *rand.Rand) *Log {
	def := DefaultLimits()
	if limits.Responses <= 0 {
		limits.Responses = def.Responses
	}
	if limits.Completions <= 0 {
		limits.Completions = def.Completions
	}
	if limits.Durations <= 0 {
		limits.Durations = def.Durations
	}
	if limits.Attempts <= 0 {
		limits.Attempts = def.Attempts
	}
	if entropy == nil {
		entropy = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Log{limits: limits, entropy: entropy}
}

func (l *Log) newID(at time.Time) string {
	return ulid.MustNew(ulid.Timestamp(at), l.entropy).String()
}

// Restore replaces the log contents with s, trimmed to the caps.
func (l *Log) Restore(s Snapshot) {
	l.responses = trimHead(append([]model.NotificationResponseEvent(nil), s.Responses...), l.limits.Responses)
	l.completions = trimHead(append([]model.TaskCompletionRecord(nil), s.Completions...), l.limits.Completions)
	l.durations = trimHead(append([]model.DurationRecord(nil), s.Durations...), l.limits.Durations)
	l.attempts = trimHead(append([]model.StrategyAttempt(nil), s.Attempts...), l.limits.Attempts)
}

// Snapshot returns a copy of every collection.
func (l *Log) Snapshot() Snapshot {
	return Snapshot{
		Responses:   l.Responses(),
		Completions: l.Completions(),
		Durations:   l.Durations(),
		Attempts:    l.Attempts(),
	}
}

// Responses returns a copy of the notification-response events, oldest first.
func (l *Log) Responses() []model.NotificationResponseEvent {
	return append([]model.NotificationResponseEvent(nil), l.responses...)
}

// Completions returns a copy of the completion records, oldest first.
func (l *Log) Completions() []model.TaskCompletionRecord {
	return append([]model.TaskCompletionRecord(nil), l.completions...)
}

// Durations returns a copy of the duration history, oldest first.
func (l *Log) Durations() []model.DurationRecord {
	return append([]model.DurationRecord(nil), l.durations...)
}

// Attempts returns a copy of the strategy-attempt history, oldest first.
func (l *Log) Attempts() []model.StrategyAttempt {
	return append([]model.StrategyAttempt(nil), l.attempts...)
}

// AppendSent records a reminder sent at the given time. The event starts out
// as ignored until a response arrives.
func (l *Log) AppendSent(notificationID string, sentAt time.Time) model.NotificationResponseEvent {
	e := model.NotificationResponseEvent{
		NotificationID: notificationID,
		SentAt:         sentAt,
		Action:         model.ActionIgnored,
		HourOfDay:      sentAt.Hour(),
		DayOfWeek:      model.DayOfWeek(sentAt),
	}
	l.responses = trimHead(append(l.responses, e), l.limits.Responses)
	return e
}

// RecordResponse fills in the most recent open event for notificationID.
// It returns false when no open event matches.
func (l *Log) RecordResponse(notificationID string, action model.ResponseAction, respondedAt time.Time) (model.NotificationResponseEvent, bool) {
	for i := len(l.responses) - 1; i >= 0; i-- {
		e := &l.responses[i]
		if e.NotificationID != notificationID || !e.Open() {
			continue
		}
		at := respondedAt
		latency := at.Sub(e.SentAt).Seconds()
		if latency < 0 {
			latency = 0
		}
		e.RespondedAt = &at
		e.Action = action
		e.ResponseTimeSeconds = &latency
		return *e, true
	}
	return model.NotificationResponseEvent{}, false
}

// CompletionParams describes a finished task.
type CompletionParams struct {
	Title           string
	CompletedAt     time.Time
	DurationMinutes *int
	Deadline        *time.Time
}

// AppendCompletion records a finished task, deriving keywords, category and
// the hour/day fields.
func (l *Log) AppendCompletion(p CompletionParams) model.TaskCompletionRecord {
	kw, cat := keyword.ClassifyTitle(p.Title)
	r := model.TaskCompletionRecord{
		ID:          l.newID(p.CompletedAt),
		Title:       p.Title,
		Keywords:    kw,
		Category:    cat,
		CompletedAt: p.CompletedAt,
		HourOfDay:   p.CompletedAt.Hour(),
		DayOfWeek:   model.DayOfWeek(p.CompletedAt),
		WasOnTime:   p.Deadline == nil || !p.CompletedAt.After(*p.Deadline),
	}
	if p.DurationMinutes != nil {
		d := *p.DurationMinutes
		r.DurationMinutes = &d
	}
	l.completions = trimHead(append(l.completions, r), l.limits.Completions)
	return r
}

// AppendDuration records how long a task took against its estimate.
func (l *Log) AppendDuration(r model.DurationRecord) model.DurationRecord {
	if r.ID == "" {
		r.ID = l.newID(r.CompletedAt)
	}
	l.durations = trimHead(append(l.durations, r), l.limits.Durations)
	return r
}

// AppendAttempt records a strategy attempt.
func (l *Log) AppendAttempt(a model.StrategyAttempt) model.StrategyAttempt {
	if a.ID == "" {
		a.ID = l.newID(a.AttemptedAt)
	}
	l.attempts = trimHead(append(l.attempts, a), l.limits.Attempts)
	return a
}

// RecentResponses returns up to n of the newest response events, oldest first.
func (l *Log) RecentResponses(n int) []model.NotificationResponseEvent {
	if n <= 0 || n > len(l.responses) {
		n = len(l.responses)
	}
	return append([]model.NotificationResponseEvent(nil), l.responses[len(l.responses)-n:]...)
}

// RecentDurations returns up to n of the newest duration records, oldest first.
func (l *Log) RecentDurations(n int) []model.DurationRecord {
	if n <= 0 || n > len(l.durations) {
		n = len(l.durations)
	}
	return append([]model.DurationRecord(nil), l.durations[len(l.durations)-n:]...)
}

func trimHead[T any](s []T, max int) []T {
	if len(s) <= max {
		return s
	}
	return append(s[:0:0], s[len(s)-max:]...)
}
