package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rcliao/nudge/internal/engine"
	"github.com/rcliao/nudge/internal/model"
)

func init() {
	decideCmd := &cobra.Command{
		Use:   "decide",
		Short: "Decide whether a reminder should be sent now",
		Args:  cobra.NoArgs,
		Run:   runDecide,
	}

	intervalCmd := &cobra.Command{
		Use:   "interval",
		Short: "Show the reminder interval for the current energy",
		Args:  cobra.NoArgs,
		Run:   runInterval,
	}

	estimateCmd := &cobra.Command{
		Use:   "estimate <title>",
		Short: "Estimate how long a task will take",
		Args:  cobra.MinimumNArgs(1),
		Run:   runEstimate,
	}

	validateCmd := &cobra.Command{
		Use:   "validate <title>",
		Short: "Check a user-entered duration against the estimate",
		Args:  cobra.MinimumNArgs(1),
		Run:   runValidate,
	}
	validateCmd.Flags().IntP("minutes", "m", 0, "Your estimate in minutes (required)")
	validateCmd.MarkFlagRequired("minutes")

	analyzeCmd := &cobra.Command{
		Use:   "analyze <title>",
		Short: "Pick a strategy for attacking a task",
		Args:  cobra.MinimumNArgs(1),
		Run:   runAnalyze,
	}
	analyzeCmd.Flags().StringP("priority", "p", "medium", "Priority: low, medium, high")
	analyzeCmd.Flags().String("due", "", "Due date (RFC3339, 2006-01-02 15:04 or 2006-01-02)")

	nextCmd := &cobra.Command{
		Use:   "next [tasks.json]",
		Short: "Recommend the next task",
		Long:  "Recommend the next task from a JSON array of tasks (file or stdin).",
		Args:  cobra.MaximumNArgs(1),
		Run:   runNext,
	}

	RootCmd.AddCommand(decideCmd, intervalCmd, estimateCmd, validateCmd, analyzeCmd, nextCmd)
}

func runDecide(cmd *cobra.Command, args []string) {
	e, s := openEngine(cmd, engine.Options{})
	defer s.Close()

	d := e.ShouldSendNotificationNow()
	printOut(d, func() {
		if d.ShouldSend {
			fmt.Printf("send now: %s\n", d.Reason)
			return
		}
		fmt.Printf("wait %s: %s\n", d.Delay, d.Reason)
	})
}

func runInterval(cmd *cobra.Command, args []string) {
	e, s := openEngine(cmd, engine.Options{})
	defer s.Close()

	d := e.OptimalNotificationInterval(cfg.Energy)
	out := struct {
		Energy          model.EnergyLevel `json:"energy"`
		IntervalSeconds int               `json:"interval_seconds"`
		Learning        bool              `json:"learning"`
	}{cfg.Energy, int(d.Seconds()), e.IsLearning()}
	printOut(out, func() {
		fmt.Printf("remind every %s at %s energy\n", d, cfg.Energy)
	})
}

func runEstimate(cmd *cobra.Command, args []string) {
	title := strings.Join(args, " ")

	e, s := openEngine(cmd, engine.Options{})
	defer s.Close()

	est := e.EstimateDuration(title)
	printOut(est, func() {
		fmt.Printf("%d min (%s confidence, %s)\n", est.Minutes, est.Confidence, est.Source)
	})
}

func runValidate(cmd *cobra.Command, args []string) {
	title := strings.Join(args, " ")
	minutes, _ := cmd.Flags().GetInt("minutes")
	if minutes <= 0 {
		exitErr("validate", errors.New("--minutes must be positive"))
	}

	e, s := openEngine(cmd, engine.Options{})
	defer s.Close()

	v := e.ValidateUserEstimate(title, minutes)
	printOut(v, func() {
		fmt.Println(v.Message)
	})
}

func runAnalyze(cmd *cobra.Command, args []string) {
	priority, _ := cmd.Flags().GetString("priority")
	dueStr, _ := cmd.Flags().GetString("due")

	p := model.Priority(strings.ToLower(priority))
	if !model.ValidPriorities[p] {
		exitErr("analyze", errors.Errorf("invalid priority %q", priority))
	}
	due, err := parseTimeFlag(dueStr, cfg.Location)
	if err != nil {
		exitErr("due", err)
	}

	e, s := openEngine(cmd, engine.Options{})
	defer s.Close()

	a := e.AnalyzeTask(model.Task{Title: strings.Join(args, " "), Priority: p, DueDate: due}, cfg.Energy)
	printOut(a, func() {
		fmt.Printf("strategy: %s\n", a.Recommended.Name)
		fmt.Printf("first step: %s\n", a.TinyFirstStep)
		fmt.Printf("estimate: %d min\n", a.Estimate.Minutes)
		fmt.Printf("energy: %s\n", a.EnergyMatch.Message)
		fmt.Printf("timing: %s\n", a.Timing.Message)
		for i, step := range a.SubSteps {
			fmt.Printf("  %d. %s\n", i+1, step)
		}
	})
}

func runNext(cmd *cobra.Command, args []string) {
	var r io.Reader = os.Stdin
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			exitErr("open tasks", err)
		}
		defer f.Close()
		r = f
	}

	tasks, err := readTasks(r)
	if err != nil {
		exitErr("read tasks", err)
	}

	e, s := openEngine(cmd, engine.Options{})
	defer s.Close()

	rec, ok := e.RecommendNextTask(tasks, cfg.Energy)
	if !ok {
		printOut(map[string]any{"task": nil, "reason": "No open tasks"}, func() {
			fmt.Println("no open tasks")
		})
		return
	}
	printOut(rec, func() {
		fmt.Printf("%s: %s\n", rec.Task.Title, rec.Reason)
	})
}

// readTasks decodes a JSON array of tasks. Missing priorities become medium.
func readTasks(r io.Reader) ([]model.Task, error) {
	var tasks []model.Task
	if err := json.NewDecoder(r).Decode(&tasks); err != nil {
		return nil, errors.Wrap(err, "decode tasks")
	}
	for i := range tasks {
		if tasks[i].Priority == "" {
			tasks[i].Priority = model.PriorityMedium
		}
		if !model.ValidPriorities[tasks[i].Priority] {
			return nil, errors.Errorf("task %q: invalid priority %q", tasks[i].Title, tasks[i].Priority)
		}
	}
	return tasks, nil
}
