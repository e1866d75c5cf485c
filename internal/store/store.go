// Package store persists the engine's event log and derived windows.
package store

import (
	"context"

	"github.com/rcliao/nudge/internal/eventlog"
	"github.com/rcliao/nudge/internal/model"
)

// SchemaVersion is written for every persisted collection.
const SchemaVersion = 1

// Collection names, also used as table names.
const (
	CollectionResponses    = "responses"
	CollectionCompletions  = "completions"
	CollectionDurations    = "durations"
	CollectionAttempts     = "attempts"
	CollectionWindows      = "productive_windows"
	CollectionQuietPeriods = "quiet_periods"
)

// Collections lists every persisted collection in save order.
var Collections = []string{
	CollectionResponses,
	CollectionCompletions,
	CollectionDurations,
	CollectionAttempts,
	CollectionWindows,
	CollectionQuietPeriods,
}

// State is the full persisted state: the event log plus the windows and quiet
// periods derived from it at save time.
type State struct {
	eventlog.Snapshot
	Windows      []model.ProductiveWindow `json:"productive_windows"`
	QuietPeriods []model.QuietPeriod      `json:"quiet_periods"`
}

// Store defines the engine storage interface.
type Store interface {
	// Load reads the full state. An empty database yields an empty state.
	Load(ctx context.Context) (*State, error)

	// Save replaces every collection with the contents of st.
	Save(ctx context.Context, st *State) error

	// Close closes the store.
	Close() error
}
