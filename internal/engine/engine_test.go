package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/nudge/internal/eventlog"
	"github.com/rcliao/nudge/internal/model"
	"github.com/rcliao/nudge/internal/pattern"
	"github.com/rcliao/nudge/internal/policy"
	"github.com/rcliao/nudge/internal/store"
)

var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) set(hour, minute int) {
	c.t = monday.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type memStore struct {
	saved *store.State
	saves int
	err   error
}

func (m *memStore) Load(context.Context) (*store.State, error) {
	if m.saved == nil {
		return &store.State{}, nil
	}
	return m.saved, nil
}

func (m *memStore) Save(_ context.Context, st *store.State) error {
	m.saves++
	if m.err != nil {
		return m.err
	}
	m.saved = st
	return nil
}

type countingRecorder struct {
	events    map[string]int
	decisions map[string]int
	failures  int
	windows   int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{events: map[string]int{}, decisions: map[string]int{}}
}

func (r *countingRecorder) RecordEvent(kind string) { r.events[kind]++ }
func (r *countingRecorder) RecordDecision(rule string, send bool) {
	r.decisions[fmt.Sprintf("%s/%t", rule, send)]++
}
func (r *countingRecorder) RecordPersistError() { r.failures++ }
func (r *countingRecorder) SetPatterns(_, _ bool, windows, _ int) {
	r.windows = windows
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, st Store) (*Engine, *fakeClock) {
	t.Helper()
	c := &fakeClock{}
	c.set(9, 0)
	e := New(Options{
		Store:    st,
		Logger:   quietLogger(),
		Clock:    c.now,
		Location: time.UTC,
		Rand:     rand.New(rand.NewSource(1)),
	})
	return e, c
}

// playScenario sends 14 answered reminders at 10:00 and 6 ignored ones at 14:00.
func playScenario(t *testing.T, e *Engine, c *fakeClock) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < 14; i++ {
		c.set(10, i*2)
		id := fmt.Sprintf("am-%d", i)
		e.RecordNotificationSent(ctx, id)
		c.advance(time.Minute)
		_, ok := e.RecordResponse(ctx, id, model.ActionCompleted)
		require.True(t, ok)
	}
	for i := 0; i < 6; i++ {
		c.set(14, i*5)
		e.RecordNotificationSent(ctx, fmt.Sprintf("pm-%d", i))
	}
}

func inWindow(a pattern.Aggregates, hour int) bool {
	for _, w := range a.Windows {
		if w.Contains(hour, model.DayOfWeek(monday)) {
			return true
		}
	}
	return false
}

func inQuiet(a pattern.Aggregates, hour int) bool {
	for _, q := range a.QuietPeriods {
		if q.Contains(hour) {
			return true
		}
	}
	return false
}

func TestLearningDefaults(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	assert.True(t, e.IsLearning())
	assert.Equal(t, LearningStatus{Responses: true, Completions: true}, e.Learning())

	d := e.ShouldSendNotificationNow()
	assert.True(t, d.ShouldSend)
	assert.Equal(t, policy.RuleLearning, d.Rule)

	assert.Equal(t, 15*time.Minute, e.OptimalNotificationInterval(model.EnergyMedium))

	est := e.EstimateDuration("Ponder existence")
	assert.Equal(t, 15, est.Minutes)
	assert.Equal(t, model.ConfidenceLow, est.Confidence)
	assert.Equal(t, model.SourceKeywordBased, est.Source)

	assert.Equal(t, pattern.NeutralRate, e.Patterns().Rate(10))
}

func TestProductiveAndQuietScenario(t *testing.T) {
	e, c := newTestEngine(t, nil)
	playScenario(t, e, c)

	require.False(t, e.IsLearning())
	p := e.Patterns()
	assert.True(t, inWindow(p, 10))
	assert.False(t, inWindow(p, 14))
	assert.True(t, inQuiet(p, 14))

	c.set(14, 30)
	d := e.ShouldSendNotificationNow()
	assert.False(t, d.ShouldSend)
	assert.Equal(t, policy.RuleQuiet, d.Rule)
	assert.Equal(t, 3600, d.DelaySeconds)

	c.set(10, 30)
	d = e.ShouldSendNotificationNow()
	assert.True(t, d.ShouldSend)
	assert.Equal(t, policy.RuleWindow, d.Rule)
}

func TestLearningEndsAtTwentyResponses(t *testing.T) {
	e, c := newTestEngine(t, nil)
	ctx := context.Background()
	for i := 0; i < pattern.MinResponseSamples-1; i++ {
		c.advance(time.Minute)
		e.RecordNotificationSent(ctx, fmt.Sprintf("n-%d", i))
	}
	assert.True(t, e.IsLearning())

	e.RecordNotificationSent(ctx, "last")
	assert.False(t, e.IsLearning())
}

func TestIntervalMonotonicInEnergy(t *testing.T) {
	e, c := newTestEngine(t, nil)
	playScenario(t, e, c)

	low := e.OptimalNotificationInterval(model.EnergyLow)
	medium := e.OptimalNotificationInterval(model.EnergyMedium)
	high := e.OptimalNotificationInterval(model.EnergyHigh)

	assert.GreaterOrEqual(t, low, medium)
	assert.GreaterOrEqual(t, medium, high)
	for _, d := range []time.Duration{low, medium, high} {
		assert.GreaterOrEqual(t, d, 5*time.Minute)
		assert.LessOrEqual(t, d, 60*time.Minute)
	}
}

func TestRecordResponseUnknownIsNoop(t *testing.T) {
	ms := &memStore{}
	e, _ := newTestEngine(t, ms)
	ctx := context.Background()

	e.RecordNotificationSent(ctx, "known")
	saves := ms.saves

	_, ok := e.RecordResponse(ctx, "missing", model.ActionCompleted)
	assert.False(t, ok)
	_, ok = e.RecordResponse(ctx, "known", model.ResponseAction("shrugged"))
	assert.False(t, ok)

	assert.Equal(t, saves, ms.saves)
	require.Len(t, e.Log().Responses(), 1)
	assert.True(t, e.Log().Responses()[0].Open())
}

func TestRecordResponseFillsLatency(t *testing.T) {
	e, c := newTestEngine(t, nil)
	ctx := context.Background()

	e.RecordNotificationSent(ctx, "n1")
	c.advance(90 * time.Second)
	ev, ok := e.RecordResponse(ctx, "n1", model.ActionSnoozed)
	require.True(t, ok)
	assert.Equal(t, model.ActionSnoozed, ev.Action)
	require.NotNil(t, ev.ResponseTimeSeconds)
	assert.Equal(t, 90.0, *ev.ResponseTimeSeconds)

	_, ok = e.RecordResponse(ctx, "n1", model.ActionCompleted)
	assert.False(t, ok, "already answered")
}

func TestRecordTaskCompletionAddsDurationRecord(t *testing.T) {
	e, c := newTestEngine(t, nil)
	ctx := context.Background()
	minutes := 50
	deadline := c.now().Add(-time.Hour)

	rec := e.RecordTaskCompletion(ctx, Completion{
		Title:           "Write quarterly report",
		DurationMinutes: &minutes,
		Deadline:        &deadline,
	})
	assert.False(t, rec.WasOnTime)
	assert.Equal(t, 9, rec.HourOfDay)
	assert.Equal(t, []string{"write", "quarterly", "report"}, rec.Keywords)

	durations := e.Log().Durations()
	require.Len(t, durations, 1)
	assert.Equal(t, 45, durations[0].EstimatedMinutes)
	assert.Equal(t, 50, durations[0].ActualMinutes)

	e.RecordTaskCompletion(ctx, Completion{Title: "Gym"})
	assert.Len(t, e.Log().Completions(), 2)
	assert.Len(t, e.Log().Durations(), 1, "no duration given")
}

func TestHistoricalEstimateAfterLearning(t *testing.T) {
	e, c := newTestEngine(t, nil)
	ctx := context.Background()
	for i := 0; i < pattern.MinCompletionSamples; i++ {
		c.advance(time.Hour)
		minutes := 30
		e.RecordTaskCompletion(ctx, Completion{Title: "Clean garage shelves", DurationMinutes: &minutes})
	}
	require.False(t, e.Learning().Completions)

	est := e.EstimateDuration("Clean garage shelves")
	assert.Equal(t, model.SourceHistorical, est.Source)
	assert.Equal(t, 30, est.Minutes)
	assert.Equal(t, model.ConfidenceHigh, est.Confidence)
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	ms := &memStore{err: errors.New("disk full")}
	rec := newCountingRecorder()
	e, _ := newTestEngine(t, ms)
	e.metrics = rec
	ctx := context.Background()

	e.RecordNotificationSent(ctx, "n1")
	require.Error(t, e.PersistErr())
	assert.Len(t, e.Log().Responses(), 1)
	assert.Equal(t, 1, rec.failures)

	ms.err = nil
	e.RecordNotificationSent(ctx, "n2")
	assert.NoError(t, e.PersistErr())
	require.NotNil(t, ms.saved)
	assert.Len(t, ms.saved.Responses, 2)
}

func TestMetricsRecorded(t *testing.T) {
	rec := newCountingRecorder()
	c := &fakeClock{}
	c.set(10, 0)
	e := New(Options{Metrics: rec, Logger: quietLogger(), Clock: c.now, Location: time.UTC})
	ctx := context.Background()

	e.RecordNotificationSent(ctx, "n1")
	e.RecordResponse(ctx, "n1", model.ActionCompleted)
	e.RecordTaskCompletion(ctx, Completion{Title: "Gym"})
	e.RecordStrategyAttempt(ctx, model.StrategyJustStart, model.EnergyLow, true)
	e.ShouldSendNotificationNow()

	assert.Equal(t, map[string]int{"sent": 1, "response": 1, "completion": 1, "attempt": 1}, rec.events)
	assert.Equal(t, map[string]int{"learning/true": 1}, rec.decisions)
}

func TestLoadFromSQLite(t *testing.T) {
	ctx := context.Background()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "nudge.db"))
	require.NoError(t, err)
	defer s.Close()

	e1, c := newTestEngine(t, s)
	playScenario(t, e1, c)
	require.NoError(t, e1.PersistErr())

	e2, _ := newTestEngine(t, s)
	require.NoError(t, e2.Load(ctx))

	assert.Equal(t, e1.State(), e2.State())
	assert.Equal(t, e1.Patterns(), e2.Patterns())
	assert.False(t, e2.IsLearning())
}

func TestImportAppends(t *testing.T) {
	ms := &memStore{}
	e, _ := newTestEngine(t, ms)
	ctx := context.Background()
	e.RecordNotificationSent(ctx, "local")

	var imported []model.NotificationResponseEvent
	for i := 0; i < 25; i++ {
		imported = append(imported, model.NotificationResponseEvent{
			NotificationID: fmt.Sprintf("old-%d", i),
			SentAt:         monday.Add(9 * time.Hour),
			Action:         model.ActionCompleted,
			HourOfDay:      9,
			DayOfWeek:      2,
		})
	}
	e.Import(ctx, eventlog.Snapshot{Responses: imported})

	responses := e.Log().Responses()
	require.Len(t, responses, 26)
	assert.Equal(t, "local", responses[0].NotificationID)
	assert.False(t, e.IsLearning())
	assert.Len(t, ms.saved.Responses, 26)
}

func TestRecommendNextTask(t *testing.T) {
	e, c := newTestEngine(t, nil)
	yesterday := c.now().Add(-24 * time.Hour)
	tasks := []model.Task{
		{ID: "a", Title: "Answer survey", Priority: model.PriorityMedium},
		{ID: "b", Title: "File taxes", Priority: model.PriorityHigh, DueDate: &yesterday},
	}

	rec, ok := e.RecommendNextTask(tasks, model.EnergyLow)
	require.True(t, ok)
	assert.Equal(t, "b", rec.Task.ID)
	assert.Contains(t, rec.Reason, "waiting")
}

func TestAnalyzeTaskSeeded(t *testing.T) {
	a, _ := newTestEngine(t, nil)
	b, _ := newTestEngine(t, nil)
	task := model.Task{Title: "Ponder existence", Priority: model.PriorityLow}

	first := a.AnalyzeTask(task, model.EnergyMedium)
	second := b.AnalyzeTask(task, model.EnergyMedium)
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first.TinyFirstStep)
	assert.Len(t, first.Alternatives, 3)
}

func TestValidateUserEstimate(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	v := e.ValidateUserEstimate("Write quarterly report", 10)
	assert.False(t, v.Realistic)

	v = e.ValidateUserEstimate("Write quarterly report", 120)
	assert.True(t, v.Realistic)
	assert.True(t, v.Generous)
}

func TestPatternsAreCopies(t *testing.T) {
	e, c := newTestEngine(t, nil)
	playScenario(t, e, c)
	c.set(10, 45)
	e.RecordTaskCompletion(context.Background(), Completion{Title: "Gym workout"})

	p := e.Patterns()
	require.Equal(t, 1, p.Hourly[10].CategoryCounts[model.CategoryExercise])
	p.Hourly[10].CategoryCounts[model.CategoryExercise] = 999
	p.Windows[0].StartHour = 0
	p.QuietPeriods[0].StartHour = 0
	for i := range p.Windows {
		if p.Windows[i].DayOfWeek != nil {
			*p.Windows[i].DayOfWeek = 7
		}
	}

	fresh := e.Patterns()
	assert.Equal(t, 1, fresh.Hourly[10].CategoryCounts[model.CategoryExercise])
	assert.Equal(t, 10, fresh.Windows[0].StartHour)
	assert.Equal(t, 14, fresh.QuietPeriods[0].StartHour)
	for _, w := range fresh.Windows {
		if w.DayOfWeek != nil {
			assert.Equal(t, model.DayOfWeek(monday), *w.DayOfWeek)
		}
	}

	st := e.State()
	for _, w := range st.Windows {
		if w.DayOfWeek != nil {
			*w.DayOfWeek = 7
		}
	}
	for _, w := range e.Patterns().Windows {
		if w.DayOfWeek != nil {
			assert.Equal(t, model.DayOfWeek(monday), *w.DayOfWeek)
		}
	}
}

func TestLoadRestoresEngineLocation(t *testing.T) {
	ctx := context.Background()
	loc := time.FixedZone("PDT", -7*60*60)
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "nudge.db"))
	require.NoError(t, err)
	defer s.Close()

	c := &fakeClock{}
	c.set(17, 0)
	opts := Options{
		Store:    s,
		Logger:   quietLogger(),
		Clock:    c.now,
		Location: loc,
		Rand:     rand.New(rand.NewSource(1)),
	}
	e1 := New(opts)
	e1.RecordNotificationSent(ctx, "n1")
	c.advance(time.Minute)
	e1.RecordResponse(ctx, "n1", model.ActionCompleted)
	minutes := 20
	e1.RecordTaskCompletion(ctx, Completion{Title: "Reply to emails", DurationMinutes: &minutes})
	e1.RecordStrategyAttempt(ctx, model.StrategyJustStart, model.EnergyHigh, true)
	require.NoError(t, e1.PersistErr())

	e2 := New(opts)
	require.NoError(t, e2.Load(ctx))

	want, got := e1.State().Snapshot, e2.State().Snapshot
	assert.Equal(t, want, got)
	require.Len(t, got.Responses, 1)
	assert.Equal(t, loc, got.Responses[0].SentAt.Location())
	assert.Equal(t, loc, got.Responses[0].RespondedAt.Location())
	assert.Equal(t, 10, got.Responses[0].HourOfDay)
	assert.Equal(t, loc, got.Completions[0].CompletedAt.Location())
	assert.Equal(t, loc, got.Durations[0].CompletedAt.Location())
	assert.Equal(t, loc, got.Attempts[0].AttemptedAt.Location())
}
