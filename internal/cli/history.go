package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rcliao/nudge/internal/model"
	"github.com/rcliao/nudge/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "history [query]",
		Short: "Search completed tasks",
		Long:  "Search completed task titles and keywords, newest first.",
		Run:   runHistory,
	}

	cmd.Flags().StringP("category", "c", "", "Filter by category")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	category, _ := cmd.Flags().GetString("category")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	results, err := s.SearchCompletions(cmd.Context(), store.SearchParams{
		Query:    strings.Join(args, " "),
		Category: model.Category(category),
		Limit:    limit,
	})
	if err != nil {
		exitErr("history", err)
	}

	if len(results) == 0 && formatFlag != "text" {
		fmt.Println("[]")
		return
	}

	printOut(results, func() {
		for _, r := range results {
			took := ""
			if r.DurationMinutes != nil {
				took = fmt.Sprintf(", took %d min", *r.DurationMinutes)
			}
			fmt.Printf("%s [%s] %s%s\n", r.Title, r.Category, humanize.Time(r.CompletedAt), took)
		}
	})
}
