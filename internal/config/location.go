package config

import (
	"os"
	"path/filepath"
)

// EnvConfigPath names the environment variable overriding the config path.
const EnvConfigPath = "ARBOR_CONFIG"

// GetConfigPath returns the configuration file path using kubectl-style behavior.
// It first checks the ARBOR_CONFIG environment variable, then falls back
// to the default location (~/.arbor/config).
func GetConfigPath() (string, error) {
	if configPath := os.Getenv(EnvConfigPath); configPath != "" {
		return configPath, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".arbor", "config"), nil
}

// EnsureConfigDir ensures that the configuration directory exists.
func EnsureConfigDir() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	return os.MkdirAll(filepath.Dir(configPath), 0755)
}
