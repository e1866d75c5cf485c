// Package policy decides whether a reminder should go out now and how far apart
// reminders should be spaced.
package policy

import (
	"fmt"
	"time"

	"github.com/rcliao/nudge/internal/model"
	"github.com/rcliao/nudge/internal/pattern"
)

// Config holds the policy thresholds.
type Config struct {
	// LowRate is the hourly response rate below which reminders are deferred.
	LowRate float64
	// TargetRate is the rate a later hour must reach to be suggested instead.
	TargetRate float64

	BaseInterval time.Duration
	MinInterval  time.Duration
	MaxInterval  time.Duration

	// IgnoreWindow is how many recent responses feed the ignore rate.
	IgnoreWindow int
	// IgnoreThreshold is the ignore rate above which IgnorePenalty applies.
	IgnoreThreshold float64
	IgnorePenalty   float64
}

// DefaultConfig returns the default policy configuration.
func DefaultConfig() Config {
	return Config{
		LowRate:         0.3,
		TargetRate:      0.5,
		BaseInterval:    15 * time.Minute,
		MinInterval:     5 * time.Minute,
		MaxInterval:     60 * time.Minute,
		IgnoreWindow:    20,
		IgnoreThreshold: 0.5,
		IgnorePenalty:   1.5,
	}
}

// Rule names the check that produced a decision.
type Rule string

const (
	RuleLearning Rule = "learning"
	RuleQuiet    Rule = "quiet-period"
	RuleWindow   Rule = "productive-window"
	RuleLowRate  Rule = "low-rate"
	RuleNormal   Rule = "normal"
)

// Decision is the answer to "should a reminder go out now?".
type Decision struct {
	ShouldSend   bool          `json:"should_send"`
	Rule         Rule          `json:"rule"`
	Reason       string        `json:"reason"`
	Delay        time.Duration `json:"-"`
	DelaySeconds int           `json:"delay_seconds"`
}

func sendNow(rule Rule, reason string) Decision {
	return Decision{ShouldSend: true, Rule: rule, Reason: reason}
}

func sendLater(rule Rule, reason string, delay time.Duration) Decision {
	return Decision{Rule: rule, Reason: reason, Delay: delay, DelaySeconds: int(delay.Seconds())}
}

// Policy turns learned patterns into send decisions.
type Policy struct {
	cfg Config
}

// New creates a policy. Zero-valued fields fall back to DefaultConfig.
func New(cfg Config) *Policy {
	def := DefaultConfig()
	if cfg.LowRate <= 0 {
		cfg.LowRate = def.LowRate
	}
	if cfg.TargetRate <= 0 {
		cfg.TargetRate = def.TargetRate
	}
	if cfg.BaseInterval <= 0 {
		cfg.BaseInterval = def.BaseInterval
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = def.MinInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = def.MaxInterval
	}
	if cfg.IgnoreWindow <= 0 {
		cfg.IgnoreWindow = def.IgnoreWindow
	}
	if cfg.IgnoreThreshold <= 0 {
		cfg.IgnoreThreshold = def.IgnoreThreshold
	}
	if cfg.IgnorePenalty <= 0 {
		cfg.IgnorePenalty = def.IgnorePenalty
	}
	return &Policy{cfg: cfg}
}

// Config returns the effective configuration.
func (p *Policy) Config() Config {
	return p.cfg
}

// ShouldSendNow decides whether a reminder should be sent at now. It always
// returns a decision.
func (p *Policy) ShouldSendNow(a *pattern.Aggregates, now time.Time) Decision {
	if a.LearningResponses() {
		return sendNow(RuleLearning, "Still learning your patterns")
	}

	hour := now.Hour()
	day := model.DayOfWeek(now)

	for _, q := range a.QuietPeriods {
		if q.Contains(hour) {
			remaining := time.Duration(q.EndHour-hour) * time.Hour
			return sendLater(RuleQuiet, fmt.Sprintf("Quiet period (%s)", q.Reason), remaining)
		}
	}

	for _, w := range a.Windows {
		if w.Contains(hour, day) {
			return sendNow(RuleWindow, fmt.Sprintf("Productive window: you respond %.0f%% of the time", w.ResponseRate*100))
		}
	}

	rate := a.Rate(hour)
	if rate < p.cfg.LowRate {
		for k := 1; k < 24; k++ {
			h := (hour + k) % 24
			if a.Rate(h) >= p.cfg.TargetRate {
				return sendLater(RuleLowRate,
					fmt.Sprintf("Low response rate (%.0f%%) at this hour; %02d:00 works better", rate*100, h),
					time.Duration(k)*time.Hour,
				)
			}
		}
		return sendLater(RuleLowRate, fmt.Sprintf("Low response rate (%.0f%%) at this hour; try again in an hour", rate*100), time.Hour)
	}

	return sendNow(RuleNormal, "Normal window")
}

// IgnoreRate is the share of events whose action is still ignored.
func IgnoreRate(events []model.NotificationResponseEvent) float64 {
	if len(events) == 0 {
		return 0
	}
	ignored := 0
	for _, e := range events {
		if e.Action == model.ActionIgnored {
			ignored++
		}
	}
	return float64(ignored) / float64(len(events))
}

// OptimalInterval returns the spacing between reminders for the given energy
// and recent responses. The ignore penalty is skipped while learning.
func (p *Policy) OptimalInterval(energy model.EnergyLevel, recent []model.NotificationResponseEvent, learning bool) time.Duration {
	minutes := p.cfg.BaseInterval.Minutes() * energy.NotificationMultiplier()

	if !learning {
		if len(recent) > p.cfg.IgnoreWindow {
			recent = recent[len(recent)-p.cfg.IgnoreWindow:]
		}
		if IgnoreRate(recent) > p.cfg.IgnoreThreshold {
			minutes *= p.cfg.IgnorePenalty
		}
	}

	d := time.Duration(minutes * float64(time.Minute))
	if d < p.cfg.MinInterval {
		d = p.cfg.MinInterval
	}
	if d > p.cfg.MaxInterval {
		d = p.cfg.MaxInterval
	}
	return d
}
