// Package log configures the process logger and keeps a journal of batch URL
// migrations.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the handler, level and sink of the process logger.
type Options struct {
	Level         string
	Format        string // text or json
	File          string // stderr when empty
	RetentionDays int
}

// New builds a logger. When File is set, output is rotated by lumberjack and
// old files are removed after RetentionDays. The returned closer releases the
// file and is a no-op for stderr.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	var (
		out    io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     opts.RetentionDays,
			Compress:   true,
		}
		out, closer = lj, lj
	}

	return slog.New(newHandler(out, opts.Format, level)), closer, nil
}

func newHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	ho := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, ho)
	}
	return slog.NewTextHandler(w, ho)
}

// ParseLevel accepts debug, info, warn(ing) and error in any case. Empty
// means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
