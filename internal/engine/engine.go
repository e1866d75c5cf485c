// Package engine ties the event log, pattern aggregation and inference
// together behind one owner. An Engine is not safe for concurrent use.
package engine

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/rcliao/nudge/internal/estimate"
	"github.com/rcliao/nudge/internal/eventlog"
	"github.com/rcliao/nudge/internal/pattern"
	"github.com/rcliao/nudge/internal/policy"
	"github.com/rcliao/nudge/internal/recommend"
	"github.com/rcliao/nudge/internal/store"
	"github.com/rcliao/nudge/internal/strategy"
)

// Store is the persistence the engine writes through after every mutation.
type Store interface {
	Load(ctx context.Context) (*store.State, error)
	Save(ctx context.Context, st *store.State) error
}

// Recorder receives engine activity for monitoring.
type Recorder interface {
	RecordEvent(kind string)
	RecordDecision(rule string, send bool)
	RecordPersistError()
	SetPatterns(learningResponses, learningCompletions bool, windows, quietPeriods int)
}

// Options configures an Engine. Every field is optional.
type Options struct {
	Store    Store
	Metrics  Recorder
	Logger   *slog.Logger
	Clock    func() time.Time
	Location *time.Location
	Rand     *rand.Rand
	Limits   eventlog.Limits
	Policy   policy.Config
}

// Engine owns the event log and everything derived from it.
type Engine struct {
	store   Store
	metrics Recorder
	logger  *slog.Logger
	clock   func() time.Time
	loc     *time.Location

	log      *eventlog.Log
	agg      pattern.Aggregates
	policy   *policy.Policy
	selector *strategy.Selector

	persistErr error
}

// New creates an engine with an empty log. Call Load to restore saved state.
func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	e := &Engine{
		store:    opts.Store,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		clock:    opts.Clock,
		loc:      opts.Location,
		log:      eventlog.New(opts.Limits, opts.Rand),
		policy:   policy.New(opts.Policy),
		selector: strategy.NewSelector(opts.Rand),
	}
	e.recompute()
	return e
}

func (e *Engine) now() time.Time {
	return e.clock().In(e.loc)
}

// Load replaces the in-memory log with the stored one, with timestamps in the
// engine's location. Windows and quiet periods are recomputed rather than
// trusted from storage.
func (e *Engine) Load(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	st, err := e.store.Load(ctx)
	if err != nil {
		return err
	}
	e.log.Restore(st.Snapshot.In(e.loc))
	e.recompute()
	e.logger.Debug("engine loaded",
		"responses", len(st.Responses),
		"completions", len(st.Completions),
		"durations", len(st.Durations),
		"attempts", len(st.Attempts))
	return nil
}

// Import appends the events in snap after the current log, trimming to the
// caps, and persists the result.
func (e *Engine) Import(ctx context.Context, snap eventlog.Snapshot) {
	cur := e.log.Snapshot()
	snap = snap.In(e.loc)
	e.log.Restore(eventlog.Snapshot{
		Responses:   append(cur.Responses, snap.Responses...),
		Completions: append(cur.Completions, snap.Completions...),
		Durations:   append(cur.Durations, snap.Durations...),
		Attempts:    append(cur.Attempts, snap.Attempts...),
	})
	e.changed(ctx)
}

// State returns the log and derived collections as they would be persisted.
func (e *Engine) State() *store.State {
	a := e.agg.Clone()
	return &store.State{
		Snapshot:     e.log.Snapshot(),
		Windows:      a.Windows,
		QuietPeriods: a.QuietPeriods,
	}
}

// PersistErr returns the error from the most recent save, or nil.
func (e *Engine) PersistErr() error {
	return e.persistErr
}

// changed recomputes derived state and saves. A failed save is logged and kept
// for PersistErr; the in-memory mutation stands.
func (e *Engine) changed(ctx context.Context) {
	e.recompute()
	if e.store == nil {
		return
	}
	e.persistErr = e.store.Save(ctx, e.State())
	if e.persistErr != nil {
		e.logger.Warn("persist engine state", "error", e.persistErr)
		if e.metrics != nil {
			e.metrics.RecordPersistError()
		}
	}
}

func (e *Engine) recompute() {
	e.agg = pattern.Recompute(e.log.Responses(), e.log.Completions())
	e.logger.Debug("patterns recomputed",
		"responses", e.agg.ResponseCount,
		"completions", e.agg.CompletionCount,
		"windows", len(e.agg.Windows),
		"quiet_periods", len(e.agg.QuietPeriods))
	if e.metrics != nil {
		e.metrics.SetPatterns(e.agg.LearningResponses(), e.agg.LearningCompletions(),
			len(e.agg.Windows), len(e.agg.QuietPeriods))
	}
}

func (e *Engine) event(kind string) {
	if e.metrics != nil {
		e.metrics.RecordEvent(kind)
	}
}

// Patterns returns a copy of the current aggregates.
func (e *Engine) Patterns() pattern.Aggregates {
	return e.agg.Clone()
}

// LearningStatus reports which subsystems still lack enough samples.
type LearningStatus struct {
	Responses   bool `json:"responses"`
	Completions bool `json:"completions"`
}

// Learning reports the learning state of both subsystems.
func (e *Engine) Learning() LearningStatus {
	return LearningStatus{
		Responses:   e.agg.LearningResponses(),
		Completions: e.agg.LearningCompletions(),
	}
}

// IsLearning reports whether reminder timing still runs on defaults.
func (e *Engine) IsLearning() bool {
	return e.agg.LearningResponses()
}

// Log exposes the underlying event log for read access.
func (e *Engine) Log() *eventlog.Log {
	return e.log
}

func (e *Engine) estimator() recommend.Estimator {
	return func(title string) int {
		return e.EstimateDuration(title).Minutes
	}
}

func (e *Engine) history() estimate.History {
	return estimate.History{
		Completions: e.log.Completions(),
		Durations:   e.log.RecentDurations(estimate.AccuracyWindow),
		Learning:    e.agg.LearningCompletions(),
	}
}
