package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetKeyInFile(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name    string
		initial string
		key     string
		value   string
		want    string
	}{
		{"empty file", "", "log.level", "debug", "log.level debug"},
		{"append", "log.format json\n", "log.level", "debug", "log.format json\nlog.level debug\n"},
		{"replace", "# c\nlog.level info\nlog.file x\n", "log.level", "warn", "# c\nlog.level warn\nlog.file x\n"},
		{"before section", "log.file x\n[describe]\nlog.level info\n", "log.level", "error", "log.file x\nlog.level error\n[describe]\nlog.level info\n"},
		{"empty value", "log.file x\n", "log.file", "", "log.file\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "nested", "config")
			if tc.initial != "" {
				require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
				require.NoError(t, os.WriteFile(path, []byte(tc.initial), 0644))
			}
			require.NoError(t, SetKeyInFile(path, tc.key, tc.value))
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			require.Equal(t, tc.want, string(data))

			entries, err := os.ReadDir(filepath.Dir(path))
			require.NoError(t, err)
			require.Len(t, entries, 1, "temporary file left behind")
		})
	}
}

func TestWriteTemplate(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".arbor", "config")
	require.NoError(t, WriteTemplate(path, false))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	require.Empty(t, cfg.GetWarnings())
	require.Equal(t, "info", cfg.GetString("log.level"))
	require.Equal(t, 10.0, cfg.GetFloat("run.frequency"))
	_, ok := cfg.GetGlobalOption("monitor.nats-url")
	require.False(t, ok, "options without a default stay commented")
	v, ok := cfg.GetCommandOption("describe", "format")
	require.True(t, ok)
	require.Equal(t, "tree", v)

	require.ErrorIs(t, WriteTemplate(path, false), os.ErrExist)

	require.NoError(t, os.WriteFile(path, []byte("log.level debug\n"), 0644))
	require.NoError(t, WriteTemplate(path, true))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "# arbor configuration file"))
}
