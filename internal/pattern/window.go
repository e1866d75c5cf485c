package pattern

import (
	"fmt"

	"github.com/rcliao/nudge/internal/model"
)

const (
	ProductiveRate  = 0.5
	QuietRate       = 0.2
	MinQuietSamples = 5

	// Productive windows are only searched for within the daytime band.
	DayStartHour = 6
	DayEndHour   = 22
	// An open productive run at the end of the band closes here.
	DayCloseHour = 23
)

type run struct {
	start   int
	samples int
	rate    float64
	latency float64
}

func (r *run) add(h model.HourlyPattern) {
	n := float64(h.SampleCount)
	total := float64(r.samples) + n
	if total > 0 {
		r.rate = (r.rate*float64(r.samples) + h.ResponseRate*n) / total
		r.latency = (r.latency*float64(r.samples) + h.AvgResponseSeconds*n) / total
	}
	r.samples += h.SampleCount
}

// DetectWindows scans the daytime band for runs of hours whose response rate
// is at least ProductiveRate. day scopes the resulting windows, nil means every day.
func DetectWindows(hourly [24]model.HourlyPattern, day *int) []model.ProductiveWindow {
	var windows []model.ProductiveWindow
	var cur *run

	closeRun := func(end int) {
		w := model.ProductiveWindow{
			StartHour:          cur.start,
			EndHour:            end,
			ResponseRate:       cur.rate,
			AvgResponseSeconds: cur.latency,
		}
		if day != nil {
			d := *day
			w.DayOfWeek = &d
		}
		windows = append(windows, w)
		cur = nil
	}

	for h := DayStartHour; h <= DayEndHour; h++ {
		p := hourly[h]
		productive := p.SampleCount > 0 && p.ResponseRate >= ProductiveRate
		switch {
		case productive && cur == nil:
			cur = &run{start: h}
			cur.add(p)
		case productive:
			cur.add(p)
		case cur != nil:
			closeRun(h)
		}
	}
	if cur != nil {
		closeRun(DayCloseHour)
	}
	return windows
}

// DetectQuietPeriods scans the whole day for runs of hours with enough samples
// and a response rate below QuietRate.
func DetectQuietPeriods(hourly [24]model.HourlyPattern) []model.QuietPeriod {
	var periods []model.QuietPeriod
	var cur *run

	closeRun := func(end int) {
		periods = append(periods, model.QuietPeriod{
			StartHour: cur.start,
			EndHour:   end,
			Reason:    fmt.Sprintf("%.0f%% response rate across %d reminders", cur.rate*100, cur.samples),
		})
		cur = nil
	}

	for h := 0; h < 24; h++ {
		p := hourly[h]
		quiet := p.SampleCount >= MinQuietSamples && p.ResponseRate < QuietRate
		switch {
		case quiet && cur == nil:
			cur = &run{start: h}
			cur.add(p)
		case quiet:
			cur.add(p)
		case cur != nil:
			closeRun(h)
		}
	}
	if cur != nil {
		closeRun(24)
	}
	return periods
}
