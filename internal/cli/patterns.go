package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rcliao/nudge/internal/engine"
	"github.com/rcliao/nudge/internal/pattern"
)

func init() {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Show learned hourly patterns, productive windows and quiet periods",
		Args:  cobra.NoArgs,
		Run:   runPatterns,
	}

	RootCmd.AddCommand(cmd)
}

type patternsOutput struct {
	Learning engine.LearningStatus `json:"learning"`
	pattern.Aggregates
}

func runPatterns(cmd *cobra.Command, args []string) {
	e, s := openEngine(cmd, engine.Options{})
	defer s.Close()

	out := patternsOutput{Learning: e.Learning(), Aggregates: e.Patterns()}
	printOut(out, func() { printPatternsText(out) })
}

func printPatternsText(out patternsOutput) {
	fmt.Printf("%s reminders, %s completions\n",
		humanize.Comma(int64(out.ResponseCount)), humanize.Comma(int64(out.CompletionCount)))
	if out.Learning.Responses {
		fmt.Printf("still learning reminder timing (%d more reminders needed)\n",
			pattern.MinResponseSamples-out.ResponseCount)
	}
	if out.Learning.Completions {
		fmt.Printf("still learning task durations (%d more completions needed)\n",
			pattern.MinCompletionSamples-out.CompletionCount)
	}

	for _, h := range out.Hourly {
		if h.SampleCount == 0 && h.CompletionCount == 0 {
			continue
		}
		avg := time.Duration(h.AvgResponseSeconds * float64(time.Second)).Round(time.Second)
		fmt.Printf("%02d:00  %4s reminders  %3.0f%% answered  avg reply %-8s  %s done\n",
			h.Hour, humanize.Comma(int64(h.SampleCount)), h.ResponseRate*100, avg,
			humanize.Comma(int64(h.CompletionCount)))
	}

	for _, w := range out.Windows {
		scope := "every day"
		if w.DayOfWeek != nil {
			scope = time.Weekday(*w.DayOfWeek - 1).String()
		}
		fmt.Printf("productive %02d:00-%02d:00 %s (%.0f%%)\n", w.StartHour, w.EndHour, scope, w.ResponseRate*100)
	}
	for _, q := range out.QuietPeriods {
		fmt.Printf("quiet %02d:00-%02d:00 (%s)\n", q.StartHour, q.EndHour, q.Reason)
	}
}
