// Package cli implements the nudge CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rcliao/nudge/internal/config"
	"github.com/rcliao/nudge/internal/engine"
	"github.com/rcliao/nudge/internal/store"
)

var (
	formatFlag string
	cfg        *config.Config
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "nudge",
	Short: "Learns when reminders work for you and how long your tasks take",
	Long: "A behavioral scheduling engine. Record reminders, responses and finished tasks; " +
		"ask when to remind, how long a task will take, how to attack it and what to do next.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(); err != nil {
			return err
		}
		c, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		cfg = c
		slog.SetDefault(cfg.NewLogger(os.Stderr))
		return nil
	},
}

func init() {
	config.Setup(viper.GetViper())

	RootCmd.PersistentFlags().StringP(config.KeyDB, "d", "", "Database path (default: $NUDGE_DB or ~/.nudge/nudge.db)")
	RootCmd.PersistentFlags().String(config.KeyTimezone, "", "IANA timezone for hour-of-day bucketing (default: local)")
	RootCmd.PersistentFlags().StringP(config.KeyEnergy, "e", "", "Current energy: low, medium or high")
	RootCmd.PersistentFlags().String(config.KeyLogLevel, "info", "Log level: debug, info, warn, error")
	RootCmd.PersistentFlags().String(config.KeyLogFormat, "text", "Log format: text or json")
	RootCmd.PersistentFlags().Int64(config.KeySeed, 0, "Seed for random choices (0 = clock)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")

	if err := config.BindFlags(viper.GetViper(), RootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(cfg.DBPath)
}

// openEngine opens the store and an engine loaded from it. Callers close the
// returned store.
func openEngine(cmd *cobra.Command, opts engine.Options) (*engine.Engine, *store.SQLiteStore) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}

	opts.Store = s
	opts.Logger = slog.Default()
	opts.Location = cfg.Location
	opts.Rand = newRand(cfg.Seed)

	e := engine.New(opts)
	if err := e.Load(cmd.Context()); err != nil {
		s.Close()
		exitErr("load", err)
	}
	return e, s
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// printOut writes v as JSON, or calls text when --format text is set and a
// text form exists.
func printOut(v any, text func()) {
	if formatFlag == "text" && text != nil {
		text()
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

// checkSaved fails the command when its mutation could not be saved.
func checkSaved(e *engine.Engine) {
	if err := e.PersistErr(); err != nil {
		exitErr("save", err)
	}
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
