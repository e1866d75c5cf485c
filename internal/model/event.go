// Package model defines the core engine data types.
package model

import "time"

// ResponseAction is how the user reacted to a reminder.
type ResponseAction string

const (
	ActionCompleted ResponseAction = "completed"
	ActionSnoozed   ResponseAction = "snoozed"
	ActionDismissed ResponseAction = "dismissed"
	ActionIgnored   ResponseAction = "ignored"
)

// ValidActions are the allowed response actions.
var ValidActions = map[ResponseAction]bool{
	ActionCompleted: true,
	ActionSnoozed:   true,
	ActionDismissed: true,
	ActionIgnored:   true,
}

// NotificationResponseEvent records one sent reminder and the user's reaction to it.
type NotificationResponseEvent struct {
	NotificationID      string         `json:"notification_id"`
	SentAt              time.Time      `json:"sent_at"`
	RespondedAt         *time.Time     `json:"responded_at,omitempty"`
	Action              ResponseAction `json:"action"`
	HourOfDay           int            `json:"hour_of_day"`
	DayOfWeek           int            `json:"day_of_week"`
	ResponseTimeSeconds *float64       `json:"response_time_seconds,omitempty"`
}

// Open reports whether the user has not responded yet.
func (e NotificationResponseEvent) Open() bool {
	return e.RespondedAt == nil
}

// TaskCompletionRecord records a finished task.
type TaskCompletionRecord struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Keywords        []string  `json:"keywords"`
	Category        Category  `json:"category"`
	CompletedAt     time.Time `json:"completed_at"`
	HourOfDay       int       `json:"hour_of_day"`
	DayOfWeek       int       `json:"day_of_week"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
	WasOnTime       bool      `json:"was_on_time"`
}

// DurationRecord pairs the engine's estimate for a task with how long it actually took.
type DurationRecord struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Keywords         []string  `json:"keywords"`
	Category         Category  `json:"category"`
	EstimatedMinutes int       `json:"estimated_minutes"`
	ActualMinutes    int       `json:"actual_minutes"`
	CompletedAt      time.Time `json:"completed_at"`
}

// StrategyAttempt records whether a strategy got the user started.
type StrategyAttempt struct {
	ID          string      `json:"id"`
	Strategy    StrategyID  `json:"strategy"`
	Energy      EnergyLevel `json:"energy"`
	Succeeded   bool        `json:"succeeded"`
	AttemptedAt time.Time   `json:"attempted_at"`
}

// DayOfWeek returns the 1-7 weekday of t, Sunday first.
func DayOfWeek(t time.Time) int {
	return int(t.Weekday()) + 1
}
