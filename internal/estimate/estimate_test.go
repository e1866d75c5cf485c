package estimate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/nudge/internal/keyword"
	"github.com/rcliao/nudge/internal/model"
)

func completion(title string, minutes int) model.TaskCompletionRecord {
	kw, cat := keyword.ClassifyTitle(title)
	return model.TaskCompletionRecord{
		Title:           title,
		Keywords:        kw,
		Category:        cat,
		CompletedAt:     time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		DurationMinutes: &minutes,
	}
}

func durations(n, estimated, actual int) []model.DurationRecord {
	var out []model.DurationRecord
	for i := 0; i < n; i++ {
		out = append(out, model.DurationRecord{EstimatedMinutes: estimated, ActualMinutes: actual})
	}
	return out
}

func TestEstimate_QuarterlyReportWithoutHistory(t *testing.T) {
	got := Estimate("Write quarterly report", History{})
	assert.Equal(t, 45, got.Minutes)
	assert.Equal(t, model.ConfidenceLow, got.Confidence)
	assert.Equal(t, model.SourceKeywordBased, got.Source)
	assert.Zero(t, got.SampleCount)
}

func TestEstimate_LearningDefault(t *testing.T) {
	got := Estimate("Something vague", History{Learning: true})
	assert.Equal(t, DefaultMinutes, got.Minutes)
	assert.Equal(t, model.SourceKeywordBased, got.Source)
}

func TestEstimate_AccuracyRatioScalesUp(t *testing.T) {
	require.Equal(t, 20, KeywordMinutes(keyword.Extract("Write email")))

	got := Estimate("Write email", History{Durations: durations(20, 20, 30)})
	assert.Equal(t, 30, got.Minutes)
	assert.Equal(t, model.SourceKeywordBased, got.Source)
}

func TestEstimate_AccuracyRatioNeverScalesDown(t *testing.T) {
	got := Estimate("Write email", History{Durations: durations(20, 20, 10)})
	assert.Equal(t, 20, got.Minutes)
}

func TestEstimate_AccuracyIgnoredWhileLearning(t *testing.T) {
	got := Estimate("Write email", History{Durations: durations(20, 20, 40), Learning: true})
	assert.Equal(t, 20, got.Minutes)
}

func TestEstimate_Historical(t *testing.T) {
	h := History{Completions: []model.TaskCompletionRecord{
		completion("Write weekly status report", 50),
		completion("Write monthly status report", 70),
		completion("Walk the dog", 30),
	}}

	got := Estimate("Write status report for Q3", h)
	assert.Equal(t, model.SourceHistorical, got.Source)
	assert.Equal(t, 60, got.Minutes)
	assert.Equal(t, 2, got.SampleCount)
	assert.Equal(t, model.ConfidenceLow, got.Confidence)
}

func TestEstimate_HistoricalNeedsTwoMatches(t *testing.T) {
	h := History{Completions: []model.TaskCompletionRecord{
		completion("Write weekly status report", 50),
		completion("Walk the dog", 30),
	}}

	got := Estimate("Write status report", h)
	assert.Equal(t, model.SourceKeywordBased, got.Source)
}

func TestEstimate_HistoricalContainment(t *testing.T) {
	h := History{Completions: []model.TaskCompletionRecord{
		completion("Laundry", 40),
		completion("laundry", 50),
	}}

	got := Estimate("Do laundry", h)
	assert.Equal(t, model.SourceHistorical, got.Source)
	assert.Equal(t, 45, got.Minutes)
}

func TestHistorical_Confidence(t *testing.T) {
	cases := []struct {
		matches int
		want    model.Confidence
	}{
		{2, model.ConfidenceLow},
		{4, model.ConfidenceLow},
		{5, model.ConfidenceMedium},
		{9, model.ConfidenceMedium},
		{10, model.ConfidenceHigh},
	}
	for _, tc := range cases {
		var cs []model.TaskCompletionRecord
		for i := 0; i < tc.matches; i++ {
			cs = append(cs, completion("Plan team offsite", 30))
		}
		got, ok := Historical("Plan team offsite", keyword.Extract("Plan team offsite"), cs)
		require.True(t, ok)
		assert.Equal(t, tc.want, got.Confidence, "matches=%d", tc.matches)
	}
}

func TestKeywordMinutes(t *testing.T) {
	cases := []struct {
		title string
		want  int
	}{
		{"Something", 15},
		{"Quick call", 5},
		{"Review notes", 25},
		{"Research vendors", 45},
		{"Project kickoff", 75},
		{"Write email", 20},
		{"Write email to all staff", 45},
		{"Team meeting", 30},
		{"Update document", 45},
		{"Research and write proposal", 75},
	}
	for _, tc := range cases {
		t.Run(tc.title, func(t *testing.T) {
			assert.Equal(t, tc.want, KeywordMinutes(keyword.Extract(tc.title)))
		})
	}
}

func TestAccuracyRatio(t *testing.T) {
	_, ok := AccuracyRatio(durations(4, 10, 20))
	assert.False(t, ok, "too few samples")

	r, ok := AccuracyRatio(append(durations(30, 10, 100), durations(20, 10, 15)...))
	require.True(t, ok)
	assert.InDelta(t, 1.5, r, 0.0001, "only the trailing 20 count")
}

func TestRoundNice(t *testing.T) {
	cases := map[float64]int{
		1: 5, 5: 5, 5.5: 10, 12: 15, 16: 20, 20: 20, 21: 30, 30: 30,
		31: 45, 46: 60, 75: 90, 90: 90, 100: 90, 110: 120, 135: 150, 200: 210,
	}
	for in, want := range cases {
		assert.Equal(t, want, RoundNice(in), "RoundNice(%v)", in)
	}
}

func TestRoundNice_KeywordEstimatesLandOnLadder(t *testing.T) {
	for m := 5; m <= 90; m++ {
		assert.Contains(t, Ladder, RoundNice(float64(m)))
	}
	for m := 91; m <= 400; m++ {
		assert.Zero(t, RoundNice(float64(m))%30)
	}
}

func TestValidateUserEstimate(t *testing.T) {
	v := ValidateUserEstimate(10, 30)
	assert.False(t, v.Realistic)
	assert.Contains(t, v.Message, "optimistic")

	v = ValidateUserEstimate(15, 30)
	assert.True(t, v.Realistic)
	assert.False(t, v.Generous)

	v = ValidateUserEstimate(90, 30)
	assert.True(t, v.Realistic)
	assert.True(t, v.Generous)

	v = ValidateUserEstimate(10, 0)
	assert.True(t, v.Realistic)
}
