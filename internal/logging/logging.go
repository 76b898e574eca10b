// Package logging builds the zerolog loggers used across the tool.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel     = "FISH_LOG_LEVEL"
	EnvLogTimestamp = "FISH_LOG_TIMESTAMP"
	EnvLogNoColor   = "FISH_LOG_NOCOLOR"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
	ProfileQuiet
)

type Config struct {
	Level     zerolog.Level
	Timestamp bool
	NoColor   bool
	Out       io.Writer
}

func DefaultConfig(profile Profile) Config {
	cfg := Config{Out: os.Stderr}
	switch profile {
	case ProfileTest:
		cfg.Level = zerolog.DebugLevel
	case ProfileQuiet:
		cfg.Level = zerolog.WarnLevel
		cfg.Timestamp = true
	default:
		cfg.Level = zerolog.InfoLevel
		cfg.Timestamp = true
	}
	return cfg
}

// ApplyEnv overrides cfg from the FISH_LOG_* variables. Unparseable values
// are ignored.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if lvl, ok := parseLevel(getenv(EnvLogLevel)); ok {
		cfg.Level = lvl
	}
	if v, ok := parseBool(getenv(EnvLogTimestamp)); ok {
		cfg.Timestamp = v
	}
	if v, ok := parseBool(getenv(EnvLogNoColor)); ok {
		cfg.NoColor = v
	}
}

// New returns a console logger tagged with app.
func New(cfg Config, app string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        cfg.Out,
		NoColor:    cfg.NoColor,
		TimeFormat: time.RFC3339,
	}
	if !cfg.Timestamp {
		output.PartsExclude = []string{zerolog.TimestampFieldName}
	}
	ctx := zerolog.New(output).Level(cfg.Level).With().Str("app", app)
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	return ctx.Logger()
}

var configureOnce sync.Once

// Configure installs the process-wide logger once and returns it.
func Configure(profile Profile, app string) zerolog.Logger {
	configureOnce.Do(func() {
		cfg := DefaultConfig(profile)
		ApplyEnv(&cfg, os.Getenv)
		log.Logger = New(cfg, app)
	})
	return log.Logger
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "off", "disabled":
		return zerolog.Disabled, true
	}
	return zerolog.InfoLevel, false
}

func parseBool(raw string) (bool, bool) {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, false
	}
	return v, true
}
