package engine

import (
	"time"

	"github.com/rcliao/nudge/internal/estimate"
	"github.com/rcliao/nudge/internal/model"
	"github.com/rcliao/nudge/internal/policy"
	"github.com/rcliao/nudge/internal/recommend"
	"github.com/rcliao/nudge/internal/strategy"
)

// ShouldSendNotificationNow decides whether a reminder should go out now.
func (e *Engine) ShouldSendNotificationNow() policy.Decision {
	d := e.policy.ShouldSendNow(&e.agg, e.now())
	if e.metrics != nil {
		e.metrics.RecordDecision(string(d.Rule), d.ShouldSend)
	}
	return d
}

// OptimalNotificationInterval is the gap to wait between reminders.
func (e *Engine) OptimalNotificationInterval(energy model.EnergyLevel) time.Duration {
	recent := e.log.RecentResponses(e.policy.Config().IgnoreWindow)
	return e.policy.OptimalInterval(energy, recent, e.agg.LearningResponses())
}

// EstimateDuration predicts how long the task titled title will take.
func (e *Engine) EstimateDuration(title string) model.DurationEstimate {
	return estimate.Estimate(title, e.history())
}

// ValidateUserEstimate compares a user-entered duration with the engine's.
func (e *Engine) ValidateUserEstimate(title string, userMinutes int) estimate.Validation {
	return estimate.ValidateUserEstimate(userMinutes, e.EstimateDuration(title).Minutes)
}

// AnalyzeTask picks attack strategies for task at the given energy.
func (e *Engine) AnalyzeTask(task model.Task, energy model.EnergyLevel) model.TaskAttackAnalysis {
	return e.selector.Analyze(strategy.Input{
		Title:    task.Title,
		Priority: task.Priority,
		DueDate:  task.DueDate,
		Estimate: e.EstimateDuration(task.Title),
		Energy:   energy,
		Now:      e.now(),
		Attempts: e.log.Attempts(),
	})
}

// RecommendNextTask picks the open task to do next. It reports false when
// every task is completed.
func (e *Engine) RecommendNextTask(tasks []model.Task, energy model.EnergyLevel) (recommend.Recommendation, bool) {
	return recommend.Next(tasks, e.estimator(), energy, e.now())
}
