package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/nudge/internal/engine"
	"github.com/rcliao/nudge/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import history from JSON",
		Long:  "Import history (stdin or file) in the format produced by export. Events are appended after existing history.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	var r io.Reader = os.Stdin
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			exitErr("open import", err)
		}
		defer f.Close()
		r = f
	}

	exp, err := store.ReadExport(r)
	if err != nil {
		exitErr("parse import", err)
	}

	e, s := openEngine(cmd, engine.Options{})
	defer s.Close()

	e.Import(cmd.Context(), exp.State.Snapshot)
	checkSaved(e)

	snap := exp.State.Snapshot
	imported := len(snap.Responses) + len(snap.Completions) + len(snap.Durations) + len(snap.Attempts)
	fmt.Printf(`{"ok":true,"imported":%d}`+"\n", imported)
}
