// Package logging builds khidmat's zerolog logger. The TUI owns the terminal,
// so interactive sessions log to a file; CLI commands may log to stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// TimeFormat is the timestamp layout written to the log file. logtail parses
// lines in this layout.
const TimeFormat = "2006-01-02 15:04:05"

// Options select the log destination and verbosity.
type Options struct {
	Level string // trace, debug, info, warn, error; empty means info
	Debug bool   // forces debug when Level is less verbose
	File  string // empty logs to Stderr
	// Stderr receives output when File is empty. Defaults to os.Stderr.
	Stderr io.Writer
}

// Logger is a configured zerolog logger plus the file it writes to.
type Logger struct {
	zerolog.Logger
	Path   string
	closer io.Closer
}

// Close releases the underlying log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// New opens the configured destination and returns a console-formatted logger.
func New(opts Options) (*Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	if opts.Debug && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}

	out := opts.Stderr
	if out == nil {
		out = os.Stderr
	}
	result := &Logger{}
	noColor := false

	if path := strings.TrimSpace(opts.File); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = file
		result.Path = path
		result.closer = file
		noColor = true
	}

	result.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    noColor,
		TimeFormat: TimeFormat,
	}).Level(level).With().Timestamp().Logger()
	return result, nil
}

// ParseLevel maps a config level name onto zerolog. Empty means info.
func ParseLevel(name string) (zerolog.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "":
		return zerolog.InfoLevel, nil
	case "warning":
		return zerolog.WarnLevel, nil
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("parse log level %q: %w", name, err)
	}
	return level, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}
