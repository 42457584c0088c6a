package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeycumines/arbor/internal/config"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]slog.Level{
		"":       slog.LevelInfo,
		"DEBUG":  slog.LevelDebug,
		"info":   slog.LevelInfo,
		" warn ": slog.LevelWarn,
		"error":  slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	require.ErrorContains(t, err, "invalid log level")
}

func TestResolve_Defaults(t *testing.T) {
	t.Parallel()

	opts, err := Resolve("", "", "", nil)
	require.NoError(t, err)
	require.Equal(t, Options{
		Level:     slog.LevelInfo,
		Format:    "text",
		MaxSizeMB: 10,
		MaxFiles:  5,
	}, opts)
}

func TestResolve_FlagsOverrideConfig(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.SetGlobalOption("log.level", "warn")
	cfg.SetGlobalOption("log.format", "json")
	cfg.SetGlobalOption("log.file", "/from/config.log")
	cfg.SetGlobalOption("log.max-size-mb", "3")
	cfg.SetGlobalOption("log.max-files", "0")

	opts, err := Resolve("", "", "", cfg)
	require.NoError(t, err)
	require.Equal(t, Options{
		Level:     slog.LevelWarn,
		Format:    "json",
		File:      "/from/config.log",
		MaxSizeMB: 3,
		MaxFiles:  0,
	}, opts)

	opts, err = Resolve("debug", "/from/flag.log", "text", cfg)
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, opts.Level)
	require.Equal(t, "text", opts.Format)
	require.Equal(t, "/from/flag.log", opts.File)
}

func TestResolve_Errors(t *testing.T) {
	t.Parallel()

	_, err := Resolve("loud", "", "", nil)
	require.Error(t, err)
	_, err = Resolve("", "", "xml", nil)
	require.ErrorContains(t, err, "invalid log format")

	cfg := config.NewConfig()
	cfg.SetGlobalOption("log.max-files", "many")
	_, err = Resolve("", "", "", cfg)
	require.Error(t, err)
}

func TestNew(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, closer, err := New(Options{Level: slog.LevelWarn, Format: "json"}, &buf)
	require.NoError(t, err)
	require.NoError(t, closer.Close())

	logger.Info("[Test] hidden")
	logger.Warn("[Test] shown", "key", 1)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	require.Equal(t, "[Test] shown", record["msg"])
	require.Equal(t, float64(1), record["key"])

	path := filepath.Join(t.TempDir(), "logs", "arbor.log")
	logger, closer, err = New(Options{Level: slog.LevelDebug, Format: "text", File: path, MaxSizeMB: 1}, &buf)
	require.NoError(t, err)
	logger.Debug("[Test] to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `msg="[Test] to file"`)
}
