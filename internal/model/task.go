package model

import "time"

// Category is the inferred kind of work a task represents.
type Category string

const (
	CategoryEmail    Category = "email"
	CategoryMeeting  Category = "meeting"
	CategoryDeepWork Category = "deep-work"
	CategoryAdmin    Category = "admin"
	CategoryCreative Category = "creative"
	CategoryExercise Category = "exercise"
	CategoryPersonal Category = "personal"
	CategoryOther    Category = "other"
)

// Priority is the user-assigned importance of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ValidPriorities are the allowed priority levels.
var ValidPriorities = map[Priority]bool{
	PriorityLow:    true,
	PriorityMedium: true,
	PriorityHigh:   true,
}

// EnergyLevel is the user's self-reported energy tier.
type EnergyLevel string

const (
	EnergyLow    EnergyLevel = "low"
	EnergyMedium EnergyLevel = "medium"
	EnergyHigh   EnergyLevel = "high"
)

// NotificationMultiplier scales the reminder interval for this energy tier.
func (e EnergyLevel) NotificationMultiplier() float64 {
	switch e {
	case EnergyLow:
		return 2.0
	case EnergyHigh:
		return 0.75
	default:
		return 1.0
	}
}

// Task is an open task supplied by the external task store.
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Priority  Priority   `json:"priority"`
	Completed bool       `json:"completed"`
}

// IsOverdue reports whether the task's due date has passed.
func (t Task) IsOverdue(now time.Time) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(now)
}

// IsDueToday reports whether the task is due later on the same calendar day as now.
func (t Task) IsDueToday(now time.Time) bool {
	if t.DueDate == nil || t.IsOverdue(now) {
		return false
	}
	d := t.DueDate.In(now.Location())
	y1, m1, d1 := d.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
