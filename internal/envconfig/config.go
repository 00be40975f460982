// Package envconfig reads runtime settings from ATTENTION_* environment variables.
package envconfig

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/born-ml/attention/internal/parallel"
)

// Var returns the trimmed value of the environment variable key, with
// surrounding quotes removed.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}

// BoolWithDefault returns a getter for a boolean variable.
// A set but unparsable value counts as true.
func BoolWithDefault(k string) func(defaultValue bool) bool {
	return func(defaultValue bool) bool {
		if s := Var(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return defaultValue
	}
}

// Uint returns a getter for an unsigned integer variable.
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

var (
	// ParallelEnabled toggles goroutine fan-out for row work (ATTENTION_PARALLEL).
	ParallelEnabled = BoolWithDefault("ATTENTION_PARALLEL")
	// NumWorkers caps concurrent goroutines; 0 keeps the CPU-count default (ATTENTION_NUM_WORKERS).
	NumWorkers = Uint("ATTENTION_NUM_WORKERS", 0)
	// MinChunk is the minimum rows per goroutine; 0 keeps the default (ATTENTION_MIN_CHUNK).
	MinChunk = Uint("ATTENTION_MIN_CHUNK", 0)
)

// Parallel builds a parallel.Config from the defaults overridden by the environment.
func Parallel() parallel.Config {
	cfg := parallel.DefaultConfig()
	cfg.Enabled = ParallelEnabled(cfg.Enabled)
	if n := NumWorkers(); n > 0 {
		cfg.NumWorkers = int(n)
	}
	if n := MinChunk(); n > 0 {
		cfg.MinChunkSize = int(n)
	}
	return cfg
}

// LogLevel returns the slog level selected by ATTENTION_DEBUG.
// "1"/"true" enables debug, "2" and above enables trace-like verbosity
// (slog.LevelDebug - 4); unset or "0"/"false" gives info.
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("ATTENTION_DEBUG"); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			if b {
				level = slog.LevelDebug
			}
		} else if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			level = slog.Level(i * -4)
		}
	}
	return level
}

// Values returns the effective settings keyed by variable name.
func Values() map[string]string {
	cfg := Parallel()
	return map[string]string{
		"ATTENTION_PARALLEL":    strconv.FormatBool(cfg.Enabled),
		"ATTENTION_NUM_WORKERS": strconv.Itoa(cfg.NumWorkers),
		"ATTENTION_MIN_CHUNK":   strconv.Itoa(cfg.MinChunkSize),
		"ATTENTION_DEBUG":       LogLevel().String(),
	}
}
