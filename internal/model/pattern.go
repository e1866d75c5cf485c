package model

// HourlyPattern is the aggregate for one hour of the day. It is derived from the
// event log and never edited directly.
type HourlyPattern struct {
	Hour               int              `json:"hour"`
	SampleCount        int              `json:"sample_count"`
	ResponseRate       float64          `json:"response_rate"`
	AvgResponseSeconds float64          `json:"avg_response_seconds"`
	CompletionCount    int              `json:"completion_count"`
	AvgDurationMinutes float64          `json:"avg_duration_minutes"`
	CategoryCounts     map[Category]int `json:"category_counts,omitempty"`
}

// ProductiveWindow is a contiguous hour range [StartHour, EndHour) with a high response rate.
type ProductiveWindow struct {
	StartHour          int     `json:"start_hour"`
	EndHour            int     `json:"end_hour"`
	DayOfWeek          *int    `json:"day_of_week,omitempty"`
	ResponseRate       float64 `json:"response_rate"`
	AvgResponseSeconds float64 `json:"avg_response_seconds"`
}

// Contains reports whether hour on day falls inside the window.
func (w ProductiveWindow) Contains(hour, day int) bool {
	if w.DayOfWeek != nil && *w.DayOfWeek != day {
		return false
	}
	return hour >= w.StartHour && hour < w.EndHour
}

// QuietPeriod is a contiguous hour range [StartHour, EndHour) where reminders go unanswered.
type QuietPeriod struct {
	StartHour int    `json:"start_hour"`
	EndHour   int    `json:"end_hour"`
	Reason    string `json:"reason"`
}

// Contains reports whether hour falls inside the period.
func (q QuietPeriod) Contains(hour int) bool {
	return hour >= q.StartHour && hour < q.EndHour
}
