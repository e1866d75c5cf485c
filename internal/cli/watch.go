package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rcliao/nudge/internal/config"
	"github.com/rcliao/nudge/internal/engine"
	"github.com/rcliao/nudge/internal/metrics"
	"github.com/rcliao/nudge/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Periodically decide whether a reminder is due",
		Long: "Run the send decision on a cron schedule. With --record, each positive decision " +
			"records a new reminder and prints it as a JSON line for a delivery tool to pick up.",
		Args: cobra.NoArgs,
		Run:  runWatch,
	}

	cmd.Flags().String(config.KeyWatchSchedule, config.DefaultWatchSchedule, "Cron schedule or @every descriptor")
	cmd.Flags().String(config.KeyMetricsAddr, "", "Serve Prometheus metrics on this address, e.g. :9464")
	cmd.Flags().Bool("record", false, "Record a sent reminder on each positive decision")

	if err := config.BindFlags(viper.GetViper(), cmd.Flags()); err != nil {
		panic(err)
	}

	RootCmd.AddCommand(cmd)
}

func runWatch(cmd *cobra.Command, args []string) {
	record, _ := cmd.Flags().GetBool("record")

	exporter := metrics.New(nil)
	e, s := openEngine(cmd, engine.Options{Metrics: exporter})
	defer s.Close()

	w := &watcher{
		engine: e,
		energy: cfg.Energy,
		record: record,
		clock:  time.Now,
		out:    os.Stdout,
		logger: slog.Default(),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := cron.New(
		cron.WithLocation(cfg.Location),
		cron.WithLogger(cronLogger{slog.Default()}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{slog.Default()})),
	)
	if _, err := c.AddFunc(cfg.WatchSchedule, func() { w.tick(ctx) }); err != nil {
		exitErr("schedule", err)
	}

	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux(exporter), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server", "error", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		slog.Info("serving metrics", "addr", cfg.MetricsAddr)
	}

	slog.Info("watching", "schedule", cfg.WatchSchedule, "energy", cfg.Energy, "record", record)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	slog.Info("stopped")
}

func metricsMux(exporter *metrics.Exporter) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", exporter.Handler())
	return mux
}

// watcher runs one decision per cron tick.
type watcher struct {
	engine *engine.Engine
	energy model.EnergyLevel
	record bool
	clock  func() time.Time
	out    io.Writer
	logger *slog.Logger
}

// tick reloads history written by other commands, then sends when the policy
// agrees and the reminder interval has passed since the last send.
func (w *watcher) tick(ctx context.Context) {
	if err := w.engine.Load(ctx); err != nil {
		w.logger.Error("reload history", "error", err)
		return
	}

	d := w.engine.ShouldSendNotificationNow()
	if !d.ShouldSend {
		w.logger.Info("holding reminder", "rule", d.Rule, "reason", d.Reason, "delay", d.Delay)
		return
	}

	interval := w.engine.OptimalNotificationInterval(w.energy)
	if last, ok := w.lastSent(); ok {
		if wait := last.Add(interval).Sub(w.clock()); wait > 0 {
			w.logger.Info("interval not elapsed", "interval", interval, "wait", wait.Round(time.Second))
			return
		}
	}

	if !w.record {
		w.emit(d)
		return
	}
	ev := w.engine.RecordNotificationSent(ctx, uuid.NewString())
	if err := w.engine.PersistErr(); err != nil {
		w.logger.Error("save reminder", "error", err)
		return
	}
	w.logger.Info("reminder due", "notification_id", ev.NotificationID, "reason", d.Reason)
	w.emit(ev)
}

func (w *watcher) lastSent() (time.Time, bool) {
	recent := w.engine.Log().RecentResponses(1)
	if len(recent) == 0 {
		return time.Time{}, false
	}
	return recent[0].SentAt, true
}

func (w *watcher) emit(v any) {
	b, _ := json.Marshal(v)
	fmt.Fprintln(w.out, string(b))
}

// cronLogger routes cron's logging through slog.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
