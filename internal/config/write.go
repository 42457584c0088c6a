package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// SetKeyInFile updates or adds a global option key in the config file.
// It preserves comments and formatting. If the key exists in the global
// section, its line is replaced in-place. If not found, the key is inserted
// before the first section header (or appended at the end if no sections exist).
//
// Only global-section keys are matched; keys inside [section] blocks are
// never overwritten.
func SetKeyInFile(path, key, value string) error {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config file: %w", err)
	}

	var lines []string
	if len(data) > 0 {
		lines = strings.Split(string(data), "\n")
	}

	newLine := key
	if value != "" {
		newLine = key + " " + value
	}

	found := false
	inGlobalSection := true
	insertIndex := len(lines)

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			if inGlobalSection {
				insertIndex = i
			}
			inGlobalSection = false
			continue
		}

		if !inGlobalSection || trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if name, _, _ := strings.Cut(trimmed, " "); name == key {
			lines[i] = newLine
			found = true
			break
		}
	}

	if !found {
		switch {
		case insertIndex < len(lines):
			lines = append(lines[:insertIndex+1], lines[insertIndex:]...)
			lines[insertIndex] = newLine
		case len(lines) > 0 && lines[len(lines)-1] == "":
			// keep the trailing newline last
			lines = append(lines[:len(lines)-1], newLine, "")
		default:
			lines = append(lines, newLine)
		}
	}

	return atomicWriteFile(path, []byte(strings.Join(lines, "\n")), 0644)
}

// Template returns a commented configuration file listing every option in
// schema with its default.
func Template(schema *ConfigSchema) string {
	var b strings.Builder
	b.WriteString("# arbor configuration file\n")
	b.WriteString("# Format: optionName remainingLineIsTheValue\n")
	b.WriteString("# Use [command_name] sections for command-specific options\n")

	writeDefaults := func(opts []ConfigOption) {
		for _, o := range opts {
			fmt.Fprintf(&b, "\n# %s", o.Description)
			if o.EnvVar != "" {
				fmt.Fprintf(&b, " (env: %s)", o.EnvVar)
			}
			b.WriteString("\n")
			if o.Default == "" {
				fmt.Fprintf(&b, "# %s\n", o.Key)
			} else {
				fmt.Fprintf(&b, "%s %s\n", o.Key, o.Default)
			}
		}
	}

	writeDefaults(schema.GlobalOptions())
	for _, sec := range schema.Sections() {
		fmt.Fprintf(&b, "\n[%s]\n", sec)
		writeDefaults(schema.SectionOptions(sec))
	}
	return b.String()
}

// WriteTemplate writes [Template] for the default schema to path, creating
// parent directories. An existing file is only replaced if force is set;
// otherwise [os.ErrExist] is returned.
func WriteTemplate(path string, force bool) error {
	if _, err := os.Lstat(path); err == nil && !force {
		return fmt.Errorf("config %s: %w", path, os.ErrExist)
	}
	return atomicWriteFile(path, []byte(Template(DefaultSchema())), 0644)
}

// atomicWriteFile writes data to a temporary file beside filename, then
// renames it into place.
func atomicWriteFile(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, ".tmp-config-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	var success bool
	defer func() {
		if !success {
			if err := os.Remove(tempFile.Name()); err != nil && !os.IsNotExist(err) {
				slog.Warn("[Config] failed to remove temporary file", "path", tempFile.Name(), "error", err)
			}
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file %q: %w", tempFile.Name(), err)
	}
	if err := os.Chmod(tempFile.Name(), perm); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tempFile.Name(), filename); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	success = true
	return nil
}
