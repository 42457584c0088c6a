package config

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// OptionType represents the expected type of a configuration option value.
type OptionType string

const (
	// TypeString is a plain string value (the default for all config values).
	TypeString OptionType = "string"
	// TypeBool is a boolean value (true/false/yes/no/1/0/on/off).
	TypeBool OptionType = "bool"
	// TypeInt is an integer value.
	TypeInt OptionType = "int"
	// TypeDuration is a Go time.Duration value (e.g. "30s", "5m", "1h").
	TypeDuration OptionType = "duration"
	// TypeFloat is a floating point value. "inf" is accepted.
	TypeFloat OptionType = "float"
)

// ConfigOption declares a single configuration option with its type, default,
// documentation, and environment variable override.
type ConfigOption struct {
	// Key is the option name as it appears in the config file (kebab-case).
	Key string
	// Type is the expected value type for validation.
	Type OptionType
	// Default is the default value as a string, or "" for no default.
	Default string
	// Description is a human-readable description of the option.
	Description string
	// Section is "" for global options, or a command name.
	Section string
	// EnvVar is the environment variable that overrides this option, or "".
	EnvVar string
}

// ConfigSchema declares the expected configuration options for the application.
// It is used for validation, documentation, typed getters, and env var mapping.
type ConfigSchema struct {
	options []*ConfigOption
	// byKey indexes global options by key for fast lookup.
	byKey map[string]*ConfigOption
	// bySection indexes command options by section then key.
	bySection map[string]map[string]*ConfigOption
}

// NewSchema creates a new empty ConfigSchema.
func NewSchema() *ConfigSchema {
	return &ConfigSchema{
		byKey:     make(map[string]*ConfigOption),
		bySection: make(map[string]map[string]*ConfigOption),
	}
}

// Register adds a ConfigOption to the schema. Duplicate keys within the same
// section are silently overwritten (last registration wins).
func (s *ConfigSchema) Register(opt ConfigOption) {
	ref := new(ConfigOption)
	*ref = opt
	s.options = append(s.options, ref)
	if opt.Section == "" {
		s.byKey[opt.Key] = ref
	} else {
		if s.bySection[opt.Section] == nil {
			s.bySection[opt.Section] = make(map[string]*ConfigOption)
		}
		s.bySection[opt.Section][opt.Key] = ref
	}
}

// RegisterAll adds multiple ConfigOptions to the schema.
func (s *ConfigSchema) RegisterAll(opts []ConfigOption) {
	for _, opt := range opts {
		s.Register(opt)
	}
}

// Lookup returns the ConfigOption for a key in a given section ("" for global).
// Returns nil if the key is not registered.
func (s *ConfigSchema) Lookup(section, key string) *ConfigOption {
	if section == "" {
		return s.byKey[key]
	}
	if sec, ok := s.bySection[section]; ok {
		return sec[key]
	}
	return nil
}

// IsKnown returns true if the key is registered in the given section.
// For command sections, global keys are also considered known (they can
// appear in command sections and fall back to the global value).
func (s *ConfigSchema) IsKnown(section, key string) bool {
	if section == "" {
		return s.byKey[key] != nil
	}
	if sec, ok := s.bySection[section]; ok {
		if sec[key] != nil {
			return true
		}
	}
	return s.byKey[key] != nil
}

// GlobalOptions returns all registered global options (Section == "").
func (s *ConfigSchema) GlobalOptions() []ConfigOption {
	return s.SectionOptions("")
}

// SectionOptions returns all registered options for a specific section.
func (s *ConfigSchema) SectionOptions(section string) []ConfigOption {
	var out []ConfigOption
	for _, o := range s.options {
		if o.Section == section {
			out = append(out, *o)
		}
	}
	return out
}

// Sections returns a sorted list of all registered non-empty section names.
func (s *ConfigSchema) Sections() []string {
	out := make([]string, 0, len(s.bySection))
	for sec := range s.bySection {
		out = append(out, sec)
	}
	sort.Strings(out)
	return out
}

// Resolve returns the effective value for a global config key by checking,
// in order: (1) the environment variable declared in the schema for this key,
// (2) the config value, (3) the schema default. Returns "" if the key is not
// found anywhere. A nil config skips step 2.
func (s *ConfigSchema) Resolve(c *Config, key string) string {
	opt := s.Lookup("", key)
	if opt != nil && opt.EnvVar != "" {
		if v, ok := os.LookupEnv(opt.EnvVar); ok {
			return v
		}
	}
	if c != nil {
		if v, ok := c.GetGlobalOption(key); ok {
			return v
		}
	}
	if opt != nil {
		return opt.Default
	}
	return ""
}

// ResolveCommand is like [ConfigSchema.Resolve], but prefers an option set
// in the command's section over the global value.
func (s *ConfigSchema) ResolveCommand(c *Config, command, key string) string {
	if c != nil {
		if opts, ok := c.Commands[command]; ok {
			if v, ok := opts[key]; ok {
				return v
			}
		}
	}
	if opt := s.Lookup(command, key); opt != nil && s.Lookup("", key) == nil {
		return opt.Default
	}
	return s.Resolve(c, key)
}

// ResolveFloat resolves key and parses it with [ParseFloat].
func (s *ConfigSchema) ResolveFloat(c *Config, key string) (float64, error) {
	v := s.Resolve(c, key)
	if v == "" {
		return 0, nil
	}
	f, err := ParseFloat(v)
	if err != nil {
		return 0, fmt.Errorf("option %q: %w", key, err)
	}
	return f, nil
}

// ResolveInt resolves key and parses it as an integer.
func (s *ConfigSchema) ResolveInt(c *Config, key string) (int, error) {
	v := s.Resolve(c, key)
	if v == "" {
		return 0, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("option %q: expected int, got %q", key, v)
	}
	return i, nil
}

// ResolveDuration resolves key and parses it as a duration.
func (s *ConfigSchema) ResolveDuration(c *Config, key string) (time.Duration, error) {
	v := s.Resolve(c, key)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("option %q: expected duration, got %q", key, v)
	}
	return d, nil
}

// ParseFloat parses a float, accepting "inf" and "+inf" (any case) for
// positive infinity. NaN is rejected.
func ParseFloat(s string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inf", "+inf", "infinity":
		return math.Inf(1), nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) {
		return 0, fmt.Errorf("expected float, got %q", s)
	}
	return f, nil
}

// ValidateConfig checks a loaded Config against the schema and returns a list
// of human-readable issues (empty if the config is valid). Validation includes:
//   - Unknown global options (not in schema)
//   - Unknown command options (not in schema for that section, and not global)
//   - Type mismatches for options with declared types
func ValidateConfig(c *Config, s *ConfigSchema) []string {
	var issues []string

	for key, value := range c.Global {
		opt := s.Lookup("", key)
		if opt == nil {
			issues = append(issues, fmt.Sprintf("unknown global option: %q (value: %q)", key, value))
			continue
		}
		if err := validateType(opt.Type, value); err != nil {
			issues = append(issues, fmt.Sprintf("global option %q: %v", key, err))
		}
	}

	for section, opts := range c.Commands {
		for key, value := range opts {
			if !s.IsKnown(section, key) {
				issues = append(issues, fmt.Sprintf("unknown option for command %q: %q (value: %q)", section, key, value))
				continue
			}
			opt := s.Lookup(section, key)
			if opt == nil {
				opt = s.Lookup("", key)
			}
			if err := validateType(opt.Type, value); err != nil {
				issues = append(issues, fmt.Sprintf("option %q in [%s]: %v", key, section, err))
			}
		}
	}

	sort.Strings(issues)
	return issues
}

// validateType checks that a string value matches the expected OptionType.
func validateType(t OptionType, value string) error {
	switch t {
	case TypeString, "":
		return nil
	case TypeBool:
		if _, err := ParseBool(value); err != nil {
			return fmt.Errorf("expected bool, got %q", value)
		}
	case TypeInt:
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("expected int, got %q", value)
		}
	case TypeDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("expected duration, got %q", value)
		}
	case TypeFloat:
		if _, err := ParseFloat(value); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown option type %q", t)
	}
	return nil
}

// --- Typed getter methods on Config ---

// GetString returns the global option value for key, or "" if not set.
func (c *Config) GetString(key string) string {
	v, _ := c.GetGlobalOption(key)
	return v
}

// GetBool returns the global option value for key parsed as a boolean. Returns
// false if the key is not set or the value cannot be parsed.
func (c *Config) GetBool(key string) bool {
	v, ok := c.GetGlobalOption(key)
	if !ok {
		return false
	}
	b, err := ParseBool(v)
	if err != nil {
		return false
	}
	return b
}

// GetInt returns the global option value for key parsed as an integer. Returns
// 0 if the key is not set or the value cannot be parsed.
func (c *Config) GetInt(key string) int {
	v, ok := c.GetGlobalOption(key)
	if !ok {
		return 0
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return i
}

// GetFloat returns the global option value for key parsed with [ParseFloat].
// Returns 0 if the key is not set or the value cannot be parsed.
func (c *Config) GetFloat(key string) float64 {
	v, ok := c.GetGlobalOption(key)
	if !ok {
		return 0
	}
	f, err := ParseFloat(v)
	if err != nil {
		return 0
	}
	return f
}

// GetDuration returns the global option value for key parsed as a
// time.Duration. Returns 0 if the key is not set or the value cannot be parsed.
func (c *Config) GetDuration(key string) time.Duration {
	v, ok := c.GetGlobalOption(key)
	if !ok {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

// --- Help text generation ---

// FormatHelp returns a formatted, human-readable reference of all registered
// options in the schema, grouped by section.
func (s *ConfigSchema) FormatHelp() string {
	var b strings.Builder

	if globals := s.GlobalOptions(); len(globals) > 0 {
		b.WriteString("Global Options:\n")
		for _, o := range globals {
			writeOptionHelp(&b, o)
		}
	}

	for _, sec := range s.Sections() {
		opts := s.SectionOptions(sec)
		if len(opts) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n[%s] Options:\n", sec)
		for _, o := range opts {
			writeOptionHelp(&b, o)
		}
	}

	return b.String()
}

func writeOptionHelp(b *strings.Builder, o ConfigOption) {
	fmt.Fprintf(b, "  %-25s %s", o.Key, o.Description)
	parts := make([]string, 0, 3)
	if o.Type != "" && o.Type != TypeString {
		parts = append(parts, fmt.Sprintf("type: %s", o.Type))
	}
	if o.Default != "" {
		parts = append(parts, fmt.Sprintf("default: %s", o.Default))
	}
	if o.EnvVar != "" {
		parts = append(parts, fmt.Sprintf("env: %s", o.EnvVar))
	}
	if len(parts) > 0 {
		fmt.Fprintf(b, " (%s)", strings.Join(parts, ", "))
	}
	b.WriteString("\n")
}

// --- Default schema for arbor ---

// DefaultSchema returns the canonical schema declaring all known arbor
// configuration options.
func DefaultSchema() *ConfigSchema {
	s := NewSchema()
	s.RegisterAll(defaultGlobalOptions())
	s.RegisterAll(defaultCommandOptions())
	return s
}

func defaultGlobalOptions() []ConfigOption {
	return []ConfigOption{
		// Logging options
		{Key: "log.level", Type: TypeString, Default: "info", Description: "Log level: debug, info, warn, error", EnvVar: "ARBOR_LOG_LEVEL"},
		{Key: "log.file", Type: TypeString, Default: "", Description: "Log file path (stderr if empty)", EnvVar: "ARBOR_LOG_FILE"},
		{Key: "log.format", Type: TypeString, Default: "text", Description: "Log format: text, json"},
		{Key: "log.max-size-mb", Type: TypeInt, Default: "10", Description: "Max log file size in MB before rotation"},
		{Key: "log.max-files", Type: TypeInt, Default: "5", Description: "Max number of rotated log backup files"},

		// Tree driver options
		{Key: "run.frequency", Type: TypeFloat, Default: "10", Description: "Tick frequency in hertz; 0 ticks once, inf never sleeps"},
		{Key: "run.max-ticks", Type: TypeInt, Default: "0", Description: "Stop after this many ticks (0 is unlimited)"},
		{Key: "run.driver", Type: TypeString, Default: "tree", Description: "Tick driver: tree, ticker"},

		// Demo world options
		{Key: "demo.battery", Type: TypeFloat, Default: "100", Description: "Initial battery charge of the demo robot"},
		{Key: "demo.scan-delay", Type: TypeDuration, Default: "50ms", Description: "Duration of the demo robot's scan"},

		// Monitoring options
		{Key: "monitor.nats-url", Type: TypeString, Default: "", Description: "NATS server URL for frame broadcast (disabled if empty)", EnvVar: "ARBOR_NATS_URL"},
		{Key: "monitor.subject", Type: TypeString, Default: "arbor.frames", Description: "NATS subject for frames"},

		// Tracing options
		{Key: "trace.endpoint", Type: TypeString, Default: "", Description: "OTLP HTTP collector host:port (disabled if empty)", EnvVar: "ARBOR_TRACE_ENDPOINT"},
		{Key: "trace.sample-ratio", Type: TypeFloat, Default: "1", Description: "Fraction of traces sampled"},

		// Script leaves
		{Key: "script.timeout", Type: TypeDuration, Default: "1s", Description: "Limit on each call into a script leaf"},
	}
}

func defaultCommandOptions() []ConfigOption {
	return []ConfigOption{
		// [describe] section
		{Key: "format", Section: "describe", Type: TypeString, Default: "tree", Description: "Output format: tree, json"},
		{Key: "ids", Section: "describe", Type: TypeBool, Default: "false", Description: "Show node ids"},

		// [watch] section
		{Key: "ids", Section: "watch", Type: TypeBool, Default: "false", Description: "Show node ids"},
	}
}
