// Package logging centralizes zerolog setup for the launcher and
// clipfixctl. Launcher tracing is off unless CLIPFIX_LAUNCHER_LOG is set;
// the diagnostics required by the exit-status contract never go through
// here.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// EnvLevel enables launcher tracing, e.g. CLIPFIX_LAUNCHER_LOG=debug.
const EnvLevel = "CLIPFIX_LAUNCHER_LOG"

// New returns a console logger writing to w at the given level.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// FromEnv returns a disabled logger unless CLIPFIX_LAUNCHER_LOG names a
// level. Unknown level names mean debug rather than an error: tracing is
// best-effort and must never stop a launch.
func FromEnv(w io.Writer) zerolog.Logger {
	name := os.Getenv(EnvLevel)
	if name == "" {
		return zerolog.Nop()
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		level = zerolog.DebugLevel
	}
	return New(w, level)
}
