// Package estimate predicts how long a task will take, from similar past tasks
// when there are enough of them and from title keywords otherwise.
package estimate

import (
	"strings"

	"github.com/rcliao/nudge/internal/keyword"
	"github.com/rcliao/nudge/internal/model"
)

const (
	DefaultMinutes = 15

	// MinMatches is how many similar completions a historical estimate needs.
	MinMatches = 2
	// MinSharedKeywords makes two titles similar.
	MinSharedKeywords = 2

	// AccuracyWindow is how many recent duration records feed the accuracy ratio.
	AccuracyWindow = 20
	// MinAccuracySamples is how many records the ratio needs before it is used.
	MinAccuracySamples = 5
	// UnderestimateRatio is the accuracy ratio above which keyword estimates are scaled up.
	UnderestimateRatio = 1.3
)

var (
	quickKeywords    = []string{"quick", "call", "text", "reply", "check", "send", "pay", "book", "confirm", "remind", "buy", "order", "sign"}
	mediumKeywords   = []string{"review", "update", "prepare", "organize", "fix", "plan", "read", "edit", "clean", "practice"}
	longKeywords     = []string{"write", "research", "design", "build", "develop", "study", "analyze", "create", "draft", "presentation"}
	veryLongKeywords = []string{"project", "migrate", "migration", "overhaul", "rewrite", "thesis", "renovate", "move"}

	emailKeywords    = []string{"email", "emails", "inbox"}
	meetingKeywords  = []string{"meeting", "meetings", "standup", "sync", "interview"}
	documentKeywords = []string{"report", "reports", "document", "documentation", "proposal"}
)

const (
	quickDelta    = -10
	mediumDelta   = 10
	longDelta     = 30
	veryLongDelta = 60

	quickFloor    = 5
	emailCap      = 20
	meetingFloor  = 30
	documentFloor = 45
)

// History is the past behavior an estimate may draw on.
type History struct {
	Completions []model.TaskCompletionRecord
	Durations   []model.DurationRecord
	// Learning disables history-based estimates and accuracy correction.
	Learning bool
}

// Estimate predicts the duration of the task titled title.
func Estimate(title string, h History) model.DurationEstimate {
	kw := keyword.Extract(title)

	if !h.Learning {
		if est, ok := Historical(title, kw, h.Completions); ok {
			return est
		}
	}

	minutes := float64(KeywordMinutes(kw))
	if !h.Learning {
		if ratio, ok := AccuracyRatio(h.Durations); ok && ratio > UnderestimateRatio {
			minutes *= ratio
		}
	}

	return model.DurationEstimate{
		Minutes:    RoundNice(minutes),
		Confidence: model.ConfidenceLow,
		Source:     model.SourceKeywordBased,
	}
}

// Historical averages the actual durations of completions similar to title.
func Historical(title string, kw []string, completions []model.TaskCompletionRecord) (model.DurationEstimate, bool) {
	lower := strings.ToLower(strings.TrimSpace(title))
	total, n := 0, 0
	for _, c := range completions {
		if c.DurationMinutes == nil || *c.DurationMinutes <= 0 {
			continue
		}
		if keyword.Overlap(kw, c.Keywords) >= MinSharedKeywords || contains(lower, strings.ToLower(strings.TrimSpace(c.Title))) {
			total += *c.DurationMinutes
			n++
		}
	}
	if n < MinMatches {
		return model.DurationEstimate{}, false
	}
	return model.DurationEstimate{
		Minutes:     RoundNice(float64(total) / float64(n)),
		Confidence:  confidenceFor(n),
		Source:      model.SourceHistorical,
		SampleCount: n,
	}, true
}

func contains(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func confidenceFor(matches int) model.Confidence {
	switch {
	case matches >= 10:
		return model.ConfidenceHigh
	case matches >= 5:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}

// KeywordMinutes is the heuristic estimate for a keyword set, before accuracy
// correction and rounding.
func KeywordMinutes(kw []string) int {
	minutes := DefaultMinutes
	for _, k := range kw {
		switch {
		case keyword.ContainsAny(quickKeywords, k):
			minutes += quickDelta
			if minutes < quickFloor {
				minutes = quickFloor
			}
		case keyword.ContainsAny(veryLongKeywords, k):
			minutes += veryLongDelta
		case keyword.ContainsAny(longKeywords, k):
			minutes += longDelta
		case keyword.ContainsAny(mediumKeywords, k):
			minutes += mediumDelta
		}
	}

	if keyword.ContainsAny(kw, emailKeywords...) && !keyword.ContainsAny(kw, "all") && minutes > emailCap {
		minutes = emailCap
	}
	if keyword.ContainsAny(kw, meetingKeywords...) && minutes < meetingFloor {
		minutes = meetingFloor
	}
	if keyword.ContainsAny(kw, documentKeywords...) && minutes < documentFloor {
		minutes = documentFloor
	}
	return minutes
}

// AccuracyRatio is the mean actual/estimated ratio over the most recent
// duration records. It reports false when there are too few records.
func AccuracyRatio(durations []model.DurationRecord) (float64, bool) {
	if len(durations) > AccuracyWindow {
		durations = durations[len(durations)-AccuracyWindow:]
	}
	sum, n := 0.0, 0
	for _, d := range durations {
		if d.EstimatedMinutes <= 0 || d.ActualMinutes <= 0 {
			continue
		}
		sum += float64(d.ActualMinutes) / float64(d.EstimatedMinutes)
		n++
	}
	if n < MinAccuracySamples {
		return 1.0, false
	}
	return sum / float64(n), true
}
