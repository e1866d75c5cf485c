// Package recommend picks the single best task to work on next.
package recommend

import (
	"time"

	"github.com/rcliao/nudge/internal/model"
)

const (
	overdueBonus  = 100
	dueTodayBonus = 50

	highEnergyHardBonus    = 25
	mediumEnergyModerate   = 20
	lowEnergyShortBonus    = 25
	lowEnergyShortBonusExt = 15

	ShortMinutes = 15
	HardMinutes  = 45
)

var priorityPoints = map[model.Priority]int{
	model.PriorityHigh:   30,
	model.PriorityMedium: 15,
	model.PriorityLow:    5,
}

// Estimator returns the expected minutes for a task title.
type Estimator func(title string) int

// Recommendation is the chosen task and why.
type Recommendation struct {
	Task   model.Task `json:"task"`
	Score  int        `json:"score"`
	Reason string     `json:"reason"`
}

// Score rates one task for the current energy and time. The reason reflects the
// first bonus that applied, in the order overdue, due today, priority, energy.
func Score(t model.Task, minutes int, energy model.EnergyLevel, now time.Time) (int, string) {
	score := 0
	reason := ""
	note := func(r string) {
		if reason == "" {
			reason = r
		}
	}

	if t.IsOverdue(now) {
		score += overdueBonus
		note("It's overdue and has been waiting on you")
	} else if t.IsDueToday(now) {
		score += dueTodayBonus
		note("It's due today")
	}

	p := t.Priority
	if _, ok := priorityPoints[p]; !ok {
		p = model.PriorityMedium
	}
	score += priorityPoints[p]
	if p == model.PriorityHigh {
		note("It's high priority")
	}

	short := minutes <= ShortMinutes
	hard := minutes >= HardMinutes || p == model.PriorityHigh
	switch {
	case energy == model.EnergyHigh && hard:
		score += highEnergyHardBonus
		note("Your energy is high, good time for something hard")
	case energy == model.EnergyMedium && !short && !hard:
		score += mediumEnergyModerate
		note("A solid fit for medium energy")
	case energy == model.EnergyLow && short:
		score += lowEnergyShortBonus
		note("Quick and doable on low energy")
	}
	if energy == model.EnergyLow && short {
		score += lowEnergyShortBonusExt
	}

	note("Next up on your list")
	return score, reason
}

// Next returns the best open task. The first task wins a tie. It reports false
// when there is no open task.
func Next(tasks []model.Task, estimate Estimator, energy model.EnergyLevel, now time.Time) (Recommendation, bool) {
	var best Recommendation
	found := false
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		minutes := estimate(t.Title)
		score, reason := Score(t, minutes, energy, now)
		if !found || score > best.Score {
			best = Recommendation{Task: t, Score: score, Reason: reason}
			found = true
		}
	}
	return best, found
}
