package engine

import (
	"context"
	"time"

	"github.com/rcliao/nudge/internal/eventlog"
	"github.com/rcliao/nudge/internal/keyword"
	"github.com/rcliao/nudge/internal/metrics"
	"github.com/rcliao/nudge/internal/model"
)

// RecordNotificationSent logs a reminder sent now. Its action stays ignored
// until RecordResponse is called with the same id.
func (e *Engine) RecordNotificationSent(ctx context.Context, notificationID string) model.NotificationResponseEvent {
	ev := e.log.AppendSent(notificationID, e.now())
	e.event(metrics.EventSent)
	e.changed(ctx)
	return ev
}

// RecordResponse fills in the user's reaction to the latest open reminder with
// this id. Unknown ids and invalid actions are ignored and report false.
func (e *Engine) RecordResponse(ctx context.Context, notificationID string, action model.ResponseAction) (model.NotificationResponseEvent, bool) {
	if !model.ValidActions[action] {
		return model.NotificationResponseEvent{}, false
	}
	ev, ok := e.log.RecordResponse(notificationID, action, e.now())
	if !ok {
		e.logger.Debug("response for unknown notification", "notification_id", notificationID)
		return ev, false
	}
	e.event(metrics.EventResponse)
	e.changed(ctx)
	return ev, true
}

// Completion describes a finished task.
type Completion struct {
	Title string
	// CompletedAt defaults to now.
	CompletedAt     time.Time
	DurationMinutes *int
	Deadline        *time.Time
}

// RecordTaskCompletion logs a finished task. When a duration is given it also
// logs how that duration compared with the estimate made before completion.
func (e *Engine) RecordTaskCompletion(ctx context.Context, c Completion) model.TaskCompletionRecord {
	at := c.CompletedAt
	if at.IsZero() {
		at = e.now()
	} else {
		at = at.In(e.loc)
	}

	var est model.DurationEstimate
	if c.DurationMinutes != nil {
		est = e.EstimateDuration(c.Title)
	}

	rec := e.log.AppendCompletion(eventlog.CompletionParams{
		Title:           c.Title,
		CompletedAt:     at,
		DurationMinutes: c.DurationMinutes,
		Deadline:        c.Deadline,
	})
	if c.DurationMinutes != nil {
		kw, cat := keyword.ClassifyTitle(c.Title)
		e.log.AppendDuration(model.DurationRecord{
			Title:            c.Title,
			Keywords:         kw,
			Category:         cat,
			EstimatedMinutes: est.Minutes,
			ActualMinutes:    *c.DurationMinutes,
			CompletedAt:      at,
		})
	}
	e.event(metrics.EventCompletion)
	e.changed(ctx)
	return rec
}

// RecordStrategyAttempt logs whether a strategy got the user started.
func (e *Engine) RecordStrategyAttempt(ctx context.Context, id model.StrategyID, energy model.EnergyLevel, succeeded bool) model.StrategyAttempt {
	a := e.log.AppendAttempt(model.StrategyAttempt{
		Strategy:    id,
		Energy:      energy,
		Succeeded:   succeeded,
		AttemptedAt: e.now(),
	})
	e.event(metrics.EventAttempt)
	e.changed(ctx)
	return a
}
