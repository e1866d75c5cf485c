package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), cfg.DBPath)
	if err != nil {
		exitErr("stats", err)
	}

	printOut(stats, func() {
		fmt.Printf("%s (%s)\n", stats.DBPath, humanize.Bytes(uint64(stats.DBSizeBytes)))
		for _, c := range stats.Collections {
			fmt.Printf("  %-20s %8s rows  v%d\n", c.Name, humanize.Comma(int64(c.Rows)), c.Version)
		}
	})
}
