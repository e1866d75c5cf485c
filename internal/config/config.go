// Package config resolves nudge settings from flags, environment and .env files.
package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/rcliao/nudge/internal/model"
)

// EnvPrefix prefixes every environment variable, e.g. NUDGE_DB.
const EnvPrefix = "NUDGE"

// Keys understood by Load.
const (
	KeyDB            = "db"
	KeyTimezone      = "timezone"
	KeyEnergy        = "energy"
	KeyLogLevel      = "log-level"
	KeyLogFormat     = "log-format"
	KeyWatchSchedule = "watch-schedule"
	KeyMetricsAddr   = "metrics-addr"
	KeySeed          = "seed"
)

const DefaultWatchSchedule = "@every 15m"

// Config is the resolved runtime configuration.
type Config struct {
	DBPath        string
	Location      *time.Location
	Energy        model.EnergyLevel
	LogLevel      slog.Level
	LogFormat     string
	WatchSchedule string
	MetricsAddr   string
	// Seed makes random choices reproducible. Zero seeds from the clock.
	Seed int64
}

// DefaultDBPath is ~/.nudge/nudge.db.
func DefaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".nudge", "nudge.db")
}

// Setup installs defaults and environment lookup on v.
func Setup(v *viper.Viper) {
	v.SetDefault(KeyDB, DefaultDBPath())
	v.SetDefault(KeyTimezone, "")
	v.SetDefault(KeyEnergy, string(model.EnergyMedium))
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyWatchSchedule, DefaultWatchSchedule)
	v.SetDefault(KeyMetricsAddr, "")
	v.SetDefault(KeySeed, 0)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// BindFlags binds every flag in fs whose name is a config key.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, key := range []string{KeyDB, KeyTimezone, KeyEnergy, KeyLogLevel, KeyLogFormat, KeyWatchSchedule, KeyMetricsAddr, KeySeed} {
		f := fs.Lookup(key)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return errors.Wrapf(err, "bind flag %s", key)
		}
	}
	return nil
}

// LoadDotEnv loads the given .env files, or ./.env when none are named.
// Missing files are not an error. Variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return errors.Wrapf(err, "load %s", p)
		}
	}
	return nil
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DBPath:        expandHome(v.GetString(KeyDB)),
		WatchSchedule: v.GetString(KeyWatchSchedule),
		MetricsAddr:   v.GetString(KeyMetricsAddr),
		Seed:          v.GetInt64(KeySeed),
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	if cfg.WatchSchedule == "" {
		cfg.WatchSchedule = DefaultWatchSchedule
	}

	loc := time.Local
	if tz := v.GetString(KeyTimezone); tz != "" {
		var err error
		loc, err = time.LoadLocation(tz)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid timezone %q", tz)
		}
	}
	cfg.Location = loc

	energy, err := ParseEnergy(v.GetString(KeyEnergy))
	if err != nil {
		return nil, err
	}
	cfg.Energy = energy

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString(KeyLogLevel))); err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", v.GetString(KeyLogLevel))
	}

	cfg.LogFormat = strings.ToLower(v.GetString(KeyLogFormat))
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, errors.Errorf("invalid log format %q (use text or json)", cfg.LogFormat)
	}
	return cfg, nil
}

// ParseEnergy is strict: only low, medium and high are accepted. An empty
// string means medium.
func ParseEnergy(s string) (model.EnergyLevel, error) {
	switch model.EnergyLevel(strings.ToLower(strings.TrimSpace(s))) {
	case "", model.EnergyMedium:
		return model.EnergyMedium, nil
	case model.EnergyLow:
		return model.EnergyLow, nil
	case model.EnergyHigh:
		return model.EnergyHigh, nil
	}
	return "", errors.Errorf("invalid energy %q (use low, medium or high)", s)
}

// NewLogger builds the slog logger described by cfg, writing to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}
