// Package logging provides structured logging for mavroute using zerolog.
//
// A process wide default logger is created at init time from the LOG_LEVEL,
// LOG_FORMAT and NO_COLOR environment variables. Terminals get the console
// writer, everything else gets JSON lines on stderr.
//
//	log := logging.Default()
//	log.Info().Str("endpoint", ep.Key()).Msg("endpoint registered")
//
//	ctx = logging.WithEndpoint(ctx, ep.Key())
//	logging.Ctx(ctx).Debug().Msg("validated")
package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	defaultLogger zerolog.Logger

	// Nop discards everything.
	Nop = zerolog.Nop()
)

func init() {
	defaultLogger = createDefaultLogger()
}

func createDefaultLogger() zerolog.Logger {
	var writer io.Writer = os.Stderr
	if stderrIsTerminal() && os.Getenv("LOG_FORMAT") != "json" {
		writer = consoleWriter(os.Stderr, time.Kitchen, os.Getenv("NO_COLOR") != "")
	}

	level := envLevel()
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	if level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}
	return logger
}

func consoleWriter(out io.Writer, timeFormat string, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: timeFormat,
		NoColor:    noColor,
	}
}

// Default returns the process wide logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the process wide logger. zerolog's global log.Logger
// is updated as well.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// New returns a JSON logger writing to w at the current global level.
func New(w io.Writer) zerolog.Logger {
	return zerolog.New(w).
		Level(zerolog.GlobalLevel()).
		With().
		Timestamp().
		Logger()
}

// NewConsole returns a human readable logger on stderr.
func NewConsole() zerolog.Logger {
	return New(consoleWriter(os.Stderr, time.Kitchen, os.Getenv("NO_COLOR") != ""))
}

// NewJSON returns a JSON logger. A nil writer means stderr.
func NewJSON(w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return New(w)
}

// With starts a child context of the default logger.
func With() zerolog.Context {
	return defaultLogger.With()
}

// Level returns a copy of the default logger at level.
func Level(level zerolog.Level) zerolog.Logger {
	return defaultLogger.Level(level)
}

func Debug() *zerolog.Event { return defaultLogger.Debug() }
func Info() *zerolog.Event  { return defaultLogger.Info() }
func Warn() *zerolog.Event  { return defaultLogger.Warn() }
func Error() *zerolog.Event { return defaultLogger.Error() }

// Fatal logs and exits.
func Fatal() *zerolog.Event { return defaultLogger.Fatal() }

// WithLevel starts an event at a level chosen at runtime.
func WithLevel(level zerolog.Level) *zerolog.Event {
	return defaultLogger.WithLevel(level)
}

// Err starts an error event carrying err, or an info event when err is nil.
func Err(err error) *zerolog.Event {
	return defaultLogger.Err(err)
}

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// envLevel reads LOG_LEVEL, falling back to debug when DEBUG is set and info
// otherwise.
func envLevel() zerolog.Level {
	s := os.Getenv("LOG_LEVEL")
	if s == "" {
		if os.Getenv("DEBUG") != "" {
			return zerolog.DebugLevel
		}
		return zerolog.InfoLevel
	}
	return parseLevel(s)
}
