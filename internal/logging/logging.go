// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetDefaultLogger provides an ok log output format on startup, before any
// config has been read.
func SetDefaultLogger() {
	log.Logger = log.Output(ConsoleWriter(os.Stderr))
}

// Setup sets the global level and output format. format is "json" or
// "console"; anything else is treated as "console".
func Setup(level, format string) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(level))

	var w io.Writer = os.Stderr
	if format != "json" {
		w = ConsoleWriter(os.Stderr)
	}

	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return log.Logger
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ConsoleWriter returns a human readable writer for f, colored only when f
// is a terminal.
func ConsoleWriter(f *os.File) io.Writer {
	noColor := !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
	return zerolog.ConsoleWriter{Out: f, NoColor: noColor, TimeFormat: time.DateTime}
}
