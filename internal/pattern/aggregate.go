// Package pattern derives hourly statistics, productive windows and quiet
// periods from the event log. Everything here is a pure function of its input.
package pattern

import (
	"github.com/rcliao/nudge/internal/model"
)

const (
	// MinResponseSamples is how many response events the log needs before
	// response statistics are trusted.
	MinResponseSamples = 20
	// MinCompletionSamples is the same threshold for completion records.
	MinCompletionSamples = 10

	// NeutralRate is reported for hours without data or while learning.
	NeutralRate = 0.5
)

// Aggregates is everything derived from one pass over the log.
type Aggregates struct {
	Hourly          [24]model.HourlyPattern    `json:"hourly"`
	Daily           [7][24]model.HourlyPattern `json:"-"`
	Windows         []model.ProductiveWindow   `json:"productive_windows"`
	QuietPeriods    []model.QuietPeriod        `json:"quiet_periods"`
	ResponseCount   int                        `json:"response_count"`
	CompletionCount int                        `json:"completion_count"`
}

// LearningResponses reports whether too few response events exist for
// decisions to use the derived rates.
func (a Aggregates) LearningResponses() bool {
	return a.ResponseCount < MinResponseSamples
}

// LearningCompletions reports whether too few completions exist for
// duration estimates to use history.
func (a Aggregates) LearningCompletions() bool {
	return a.CompletionCount < MinCompletionSamples
}

// Rate returns the response rate for hour, or NeutralRate when the hour has no
// samples or the log is still learning.
func (a Aggregates) Rate(hour int) float64 {
	if a.LearningResponses() || hour < 0 || hour > 23 {
		return NeutralRate
	}
	h := a.Hourly[hour]
	if h.SampleCount == 0 {
		return NeutralRate
	}
	return h.ResponseRate
}

// Clone returns a deep copy that shares no maps, slices or pointers with a.
func (a Aggregates) Clone() Aggregates {
	c := a
	for h := range c.Hourly {
		c.Hourly[h].CategoryCounts = cloneCounts(a.Hourly[h].CategoryCounts)
		for d := range c.Daily {
			c.Daily[d][h].CategoryCounts = cloneCounts(a.Daily[d][h].CategoryCounts)
		}
	}
	c.Windows = nil
	for _, w := range a.Windows {
		if w.DayOfWeek != nil {
			day := *w.DayOfWeek
			w.DayOfWeek = &day
		}
		c.Windows = append(c.Windows, w)
	}
	c.QuietPeriods = append([]model.QuietPeriod(nil), a.QuietPeriods...)
	return c
}

func cloneCounts(m map[model.Category]int) map[model.Category]int {
	if m == nil {
		return nil
	}
	out := make(map[model.Category]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// accumulator carries the running-average denominators for one hour.
type accumulator struct {
	p         model.HourlyPattern
	responded int
	durations int
}

func (acc *accumulator) addResponse(e model.NotificationResponseEvent) {
	completed := 0.0
	if e.Action == model.ActionCompleted {
		completed = 1.0
	}
	acc.p.SampleCount++
	acc.p.ResponseRate += (completed - acc.p.ResponseRate) / float64(acc.p.SampleCount)
	if e.ResponseTimeSeconds != nil {
		acc.responded++
		acc.p.AvgResponseSeconds += (*e.ResponseTimeSeconds - acc.p.AvgResponseSeconds) / float64(acc.responded)
	}
}

func (acc *accumulator) addCompletion(r model.TaskCompletionRecord) {
	acc.p.CompletionCount++
	if acc.p.CategoryCounts == nil {
		acc.p.CategoryCounts = make(map[model.Category]int)
	}
	acc.p.CategoryCounts[r.Category]++
	if r.DurationMinutes != nil {
		acc.durations++
		acc.p.AvgDurationMinutes += (float64(*r.DurationMinutes) - acc.p.AvgDurationMinutes) / float64(acc.durations)
	}
}

// Aggregate walks the whole log once and builds per-hour statistics, both
// overall and per day of week. All events weigh the same regardless of age.
func Aggregate(responses []model.NotificationResponseEvent, completions []model.TaskCompletionRecord) (hourly [24]model.HourlyPattern, daily [7][24]model.HourlyPattern) {
	var all [24]accumulator
	var byDay [7][24]accumulator

	for _, e := range responses {
		if e.HourOfDay < 0 || e.HourOfDay > 23 {
			continue
		}
		all[e.HourOfDay].addResponse(e)
		if e.DayOfWeek >= 1 && e.DayOfWeek <= 7 {
			byDay[e.DayOfWeek-1][e.HourOfDay].addResponse(e)
		}
	}
	for _, r := range completions {
		if r.HourOfDay < 0 || r.HourOfDay > 23 {
			continue
		}
		all[r.HourOfDay].addCompletion(r)
	}

	for h := 0; h < 24; h++ {
		hourly[h] = all[h].p
		hourly[h].Hour = h
		for d := 0; d < 7; d++ {
			daily[d][h] = byDay[d][h].p
			daily[d][h].Hour = h
		}
	}
	return hourly, daily
}

// Recompute rebuilds every derived structure from the log. Windows and quiet
// periods are only detected once the response log reaches MinResponseSamples.
func Recompute(responses []model.NotificationResponseEvent, completions []model.TaskCompletionRecord) Aggregates {
	a := Aggregates{
		ResponseCount:   len(responses),
		CompletionCount: len(completions),
	}
	a.Hourly, a.Daily = Aggregate(responses, completions)

	if a.LearningResponses() {
		return a
	}

	a.Windows = DetectWindows(a.Hourly, nil)
	for d := 0; d < 7; d++ {
		if samples(a.Daily[d]) < MinResponseSamples {
			continue
		}
		day := d + 1
		a.Windows = append(a.Windows, DetectWindows(a.Daily[d], &day)...)
	}
	a.QuietPeriods = DetectQuietPeriods(a.Hourly)
	return a
}

func samples(hours [24]model.HourlyPattern) int {
	n := 0
	for _, h := range hours {
		n += h.SampleCount
	}
	return n
}
