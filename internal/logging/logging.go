// Package logging provides structured logging for parceltrack built on
// zerolog. It supports console and JSON output, optional file logging with
// fallback to stderr, and trace ID propagation through context.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Output destinations understood by Config.Output.
const (
	OutputStderr = "stderr"
	OutputStdout = "stdout"
	OutputFile   = "file"
)

// Formats understood by Config.Format.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config describes how the logger should be constructed.
type Config struct {
	// Level is a zerolog level name ("debug", "info", ...). Unparseable
	// values fall back to info.
	Level string

	// Format selects console or JSON output. File output is always JSON.
	Format string

	// Output selects the destination: stderr, stdout, or file.
	Output string

	// File is the log file path when Output is "file".
	File string

	// Caller adds the caller field to every event.
	Caller bool
}

// LogPathResult carries the constructed logger together with information
// about where log output actually went, so the CLI can tell the user and
// close the file handle on shutdown.
type LogPathResult struct {
	Logger         zerolog.Logger
	UsingFile      bool
	FilePath       string
	FallbackUsed   bool
	FallbackReason string

	file *os.File
}

// Close releases the log file handle, if any.
func (r *LogPathResult) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// NewLoggerWithPath builds a logger from cfg. If file output is requested
// but the file cannot be opened, it falls back to stderr and records the
// reason instead of failing the command.
func NewLoggerWithPath(cfg Config) LogPathResult {
	result := LogPathResult{}

	var w io.Writer
	switch cfg.Output {
	case OutputFile:
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			result.FallbackUsed = true
			result.FallbackReason = err.Error()
			w = consoleWriter(os.Stderr)
		} else {
			result.UsingFile = true
			result.FilePath = cfg.File
			result.file = f
			w = f
		}
	case OutputStdout:
		w = formatWriter(cfg.Format, os.Stdout)
	default:
		w = formatWriter(cfg.Format, os.Stderr)
	}

	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		lvl = zerolog.InfoLevel
	}

	lc := zerolog.New(w).Level(lvl).With().Timestamp()
	if cfg.Caller {
		lc = lc.Caller()
	}
	result.Logger = lc.Logger()
	return result
}

// NewLogger is a convenience wrapper for callers that do not care about the
// file path bookkeeping.
func NewLogger(cfg Config) zerolog.Logger {
	result := NewLoggerWithPath(cfg)
	return result.Logger
}

// ComponentLogger returns a child logger tagged with a component field.
func ComponentLogger(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// PrintLogPathMessage tells the user where log output is being written.
func PrintLogPathMessage(w io.Writer, path string) {
	fmt.Fprintf(w, "Logging to %s\n", path)
}

// PrintFallbackWarning tells the user why file logging was not available.
func PrintFallbackWarning(w io.Writer, reason string) {
	fmt.Fprintf(w, "Warning: file logging unavailable (%s), logging to stderr\n", reason)
}

func formatWriter(format string, out *os.File) io.Writer {
	if format == FormatJSON {
		return out
	}
	return consoleWriter(out)
}

func consoleWriter(out *os.File) io.Writer {
	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
}
