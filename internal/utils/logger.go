package utils

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger with the child-logger helpers the scrape
// pipeline attaches context with.
type Logger struct {
	zerolog.Logger
}

// LoggerOptions configures a Logger.
type LoggerOptions struct {
	// Level is one of debug, info, warn, error.
	Level string
	// Format selects "pretty" console output or raw JSON.
	Format string
	// Output defaults to stderr.
	Output io.Writer
	// Verbose forces debug level regardless of Level.
	Verbose bool
}

// NewLogger builds a Logger from options.
func NewLogger(opts LoggerOptions) *Logger {
	var out io.Writer = os.Stderr
	if opts.Output != nil {
		out = opts.Output
	}
	if opts.Format == "pretty" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	level := parseLevel(opts.Level)
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return &Logger{Logger: logger}
}

// NewDefaultLogger returns an info-level pretty logger.
func NewDefaultLogger() *Logger {
	return NewLogger(LoggerOptions{Level: "info", Format: "pretty"})
}

// NewVerboseLogger returns a debug-level pretty logger.
func NewVerboseLogger() *Logger {
	return NewLogger(LoggerOptions{Format: "pretty", Verbose: true})
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithComponent returns a child logger tagged with the component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.Logger.With().Str("component", component).Logger()}
}

// WithURL returns a child logger tagged with the URL being scraped.
func (l *Logger) WithURL(url string) *Logger {
	return &Logger{Logger: l.Logger.With().Str("url", url).Logger()}
}

// WithBackend returns a child logger tagged with a fetch backend's name.
func (l *Logger) WithBackend(backend string) *Logger {
	return &Logger{Logger: l.Logger.With().Str("backend", backend).Logger()}
}
