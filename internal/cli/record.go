package cli

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rcliao/nudge/internal/engine"
	"github.com/rcliao/nudge/internal/model"
	"github.com/rcliao/nudge/internal/strategy"
)

func init() {
	notifyCmd := &cobra.Command{
		Use:   "notify [notification-id]",
		Short: "Record that a reminder was sent now",
		Long:  "Record a sent reminder. Without an id a random UUID is generated and printed.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runNotify,
	}

	respondCmd := &cobra.Command{
		Use:   "respond <notification-id> <completed|snoozed|dismissed|ignored>",
		Short: "Record the response to a reminder",
		Args:  cobra.ExactArgs(2),
		Run:   runRespond,
	}

	completeCmd := &cobra.Command{
		Use:   "complete <title>",
		Short: "Record a finished task",
		Args:  cobra.MinimumNArgs(1),
		Run:   runComplete,
	}
	completeCmd.Flags().IntP("minutes", "m", 0, "Actual duration in minutes")
	completeCmd.Flags().String("deadline", "", "Deadline the task had (RFC3339, 2006-01-02 15:04 or 2006-01-02)")
	completeCmd.Flags().String("at", "", "Completion time (default: now)")

	attemptCmd := &cobra.Command{
		Use:   "attempt <strategy-id>",
		Short: "Record whether a strategy got you started",
		Args:  cobra.ExactArgs(1),
		Run:   runAttempt,
	}
	attemptCmd.Flags().Bool("failed", false, "The strategy did not work")

	RootCmd.AddCommand(notifyCmd, respondCmd, completeCmd, attemptCmd)
}

func runNotify(cmd *cobra.Command, args []string) {
	id := uuid.NewString()
	if len(args) > 0 {
		id = args[0]
	}

	e, s := openEngine(cmd, engine.Options{})
	defer s.Close()

	ev := e.RecordNotificationSent(cmd.Context(), id)
	checkSaved(e)
	printOut(ev, func() {
		fmt.Printf("%s sent at %s\n", ev.NotificationID, ev.SentAt.Format("15:04"))
	})
}

func runRespond(cmd *cobra.Command, args []string) {
	action := model.ResponseAction(strings.ToLower(args[1]))
	if !model.ValidActions[action] {
		exitErr("respond", errors.Errorf("invalid action %q", args[1]))
	}

	e, s := openEngine(cmd, engine.Options{})
	defer s.Close()

	ev, ok := e.RecordResponse(cmd.Context(), args[0], action)
	checkSaved(e)
	if !ok {
		printOut(map[string]any{"recorded": false, "notification_id": args[0]}, func() {
			fmt.Printf("no open reminder %s\n", args[0])
		})
		return
	}
	printOut(ev, func() {
		fmt.Printf("%s %s after %.0fs\n", ev.NotificationID, ev.Action, *ev.ResponseTimeSeconds)
	})
}

func runComplete(cmd *cobra.Command, args []string) {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		exitErr("complete", errors.New("title is required"))
	}
	minutes, _ := cmd.Flags().GetInt("minutes")
	deadlineStr, _ := cmd.Flags().GetString("deadline")
	atStr, _ := cmd.Flags().GetString("at")

	deadline, err := parseTimeFlag(deadlineStr, cfg.Location)
	if err != nil {
		exitErr("deadline", err)
	}
	at, err := parseTimeFlag(atStr, cfg.Location)
	if err != nil {
		exitErr("at", err)
	}

	c := engine.Completion{Title: title, Deadline: deadline}
	if at != nil {
		c.CompletedAt = *at
	}
	if minutes > 0 {
		c.DurationMinutes = &minutes
	}

	e, s := openEngine(cmd, engine.Options{})
	defer s.Close()

	rec := e.RecordTaskCompletion(cmd.Context(), c)
	checkSaved(e)
	printOut(rec, func() {
		fmt.Printf("%s (%s) done at %s\n", rec.Title, rec.Category, rec.CompletedAt.Format("15:04"))
	})
}

func runAttempt(cmd *cobra.Command, args []string) {
	id := model.StrategyID(args[0])
	if _, ok := strategy.Lookup(id); !ok {
		exitErr("attempt", errors.Errorf("unknown strategy %q", args[0]))
	}
	failed, _ := cmd.Flags().GetBool("failed")

	e, s := openEngine(cmd, engine.Options{})
	defer s.Close()

	a := e.RecordStrategyAttempt(cmd.Context(), id, cfg.Energy, !failed)
	checkSaved(e)
	printOut(a, nil)
}
