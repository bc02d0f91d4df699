// Package logging configures the global zerolog logger for ordersync.
//
// Logs go to stdout; when a log file is configured they are teed to it as
// well, so operators keep a durable record of what each sweep did.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options control logger setup.
type Options struct {
	// Level is one of debug, info, warn, error (default info)
	Level string
	// JSON emits structured JSON instead of the console format
	JSON bool
	// File, when set, tees output to the named file (append, create)
	File string
}

// Setup configures the global logger. It returns a close function for the
// log file, a no-op when no file is configured.
func Setup(opts Options) (func(), error) {
	level := parseLevel(opts.Level)
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stdout
	if !opts.JSON {
		writer := zerolog.ConsoleWriter{Out: os.Stdout}
		writer.TimeFormat = "2006-01-02 15:04:05"
		out = writer
	}

	closeFn := func() {}
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		// The file always gets JSON lines, whatever the console shows
		out = zerolog.MultiLevelWriter(out, f)
		closeFn = func() { _ = f.Close() }
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return closeFn, nil
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "":
		return zerolog.InfoLevel
	default:
		if lvl, err := zerolog.ParseLevel(strings.ToLower(s)); err == nil {
			return lvl
		}
		return zerolog.InfoLevel
	}
}
