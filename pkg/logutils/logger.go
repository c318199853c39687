package logutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// New builds the process logger at level ("debug", "info", "warn", "error"
// or "fatal"). Entries are JSON lines appended to file, which is created
// with its directory if needed. An empty file logs JSON to stderr; "-" logs
// console-formatted text to stderr.
//
// Every CLI invocation appends to the same file, so entries carry the pid.
// The returned func closes the file and is safe to call when nothing was
// opened.
func New(level string, file string) (zerolog.Logger, func(), error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, func() {}, fmt.Errorf("log level: %w", err)
	}

	w, closer, err := sink(file)
	if err != nil {
		return zerolog.Logger{}, func() {}, err
	}

	l := zerolog.New(w).Level(lvl).With().
		Timestamp().
		Int("pid", os.Getpid()).
		Logger()
	return l, closer, nil
}

func sink(file string) (io.Writer, func(), error) {
	switch file {
	case "":
		return os.Stderr, func() {}, nil
	case "-":
		return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}, func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
