// Package logging builds the zerolog logger used for diagnostics. Check
// results go to the console formatter; this logger writes to stderr only.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type Options struct {
	Level   string
	NoColor bool
	Writer  io.Writer
}

// New returns a console logger. An empty or unknown level falls back to warn.
func New(opts Options) zerolog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.WarnLevel
	}

	console := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    opts.NoColor,
		TimeFormat: time.TimeOnly,
	}

	return zerolog.New(console).With().
		Timestamp().
		Str("service", "ordercheck").
		Logger().
		Level(level)
}

// Nop returns a logger that discards everything
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
