// Package logging builds the process logger from command-line flags and the
// configuration file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/joeycumines/arbor/internal/config"
)

// Options is a resolved logging configuration.
type Options struct {
	Level  slog.Level
	Format string
	// File is the log file path; empty logs to the fallback writer.
	File      string
	MaxSizeMB int
	MaxFiles  int
}

// ParseLevel parses debug, info, warn or error (case-insensitive). The empty
// string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", s)
	}
}

// Resolve merges flags with the configuration. Each setting is taken from
// its flag when set, then from cfg (with environment overrides), then from
// the schema default. cfg may be nil.
func Resolve(flagLevel, flagFile, flagFormat string, cfg *config.Config) (Options, error) {
	schema := config.DefaultSchema()
	pick := func(flagValue, key string) string {
		if flagValue != "" {
			return flagValue
		}
		return schema.Resolve(cfg, key)
	}

	var opts Options
	var err error
	if opts.Level, err = ParseLevel(pick(flagLevel, "log.level")); err != nil {
		return Options{}, err
	}

	switch opts.Format = strings.ToLower(pick(flagFormat, "log.format")); opts.Format {
	case "", "text":
		opts.Format = "text"
	case "json":
	default:
		return Options{}, fmt.Errorf("invalid log format: %s", opts.Format)
	}

	opts.File = pick(flagFile, "log.file")

	if opts.MaxSizeMB, err = schema.ResolveInt(cfg, "log.max-size-mb"); err != nil {
		return Options{}, err
	}
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = 10
	}
	// zero backups is valid: the file is truncated on rotation
	if opts.MaxFiles, err = schema.ResolveInt(cfg, "log.max-files"); err != nil {
		return Options{}, err
	}
	if opts.MaxFiles < 0 {
		opts.MaxFiles = 5
	}
	return opts, nil
}

// New returns a logger for opts, writing to fallback unless opts.File is
// set. The returned closer releases the log file, and is never nil.
func New(opts Options, fallback io.Writer) (*slog.Logger, io.Closer, error) {
	var (
		out    = fallback
		closer io.Closer = nopCloser{}
	)
	if opts.File != "" {
		w, err := NewRotatingFileWriter(opts.File, opts.MaxSizeMB, opts.MaxFiles)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %s: %w", opts.File, err)
		}
		out, closer = w, w
	}
	return slog.New(NewHandler(out, opts)), closer, nil
}

// NewHandler returns a text or JSON handler at the configured level.
func NewHandler(w io.Writer, opts Options) slog.Handler {
	ho := &slog.HandlerOptions{Level: opts.Level}
	if opts.Format == "json" {
		return slog.NewJSONHandler(w, ho)
	}
	return slog.NewTextHandler(w, ho)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
