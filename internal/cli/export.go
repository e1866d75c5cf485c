package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/nudge/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all history as JSON",
		Long:  "Export every collection with its schema version. Writes to stdout unless -o is given.",
		Run:   runExport,
	}

	cmd.Flags().StringP("out", "o", "", "Output file")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	out, _ := cmd.Flags().GetString("out")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	exp, err := s.ExportAll(cmd.Context())
	if err != nil {
		exitErr("export", err)
	}

	var w io.Writer = os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			exitErr("create output", err)
		}
		defer f.Close()
		w = f
	}

	if err := store.WriteExport(w, exp); err != nil {
		exitErr("export", err)
	}
}
