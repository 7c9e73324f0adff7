package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultConfigDir is the default directory name for devcluster configs
	DefaultConfigDir = ".devcluster"
	// DefaultConfigName is the default config file name
	DefaultConfigName = "config.yaml"
	// ConfigDirEnv overrides the config directory
	ConfigDirEnv = "DEVCLUSTER_CONFIG_DIR"
)

// GetConfigDir returns the devcluster configuration directory path
// Defaults to ~/.devcluster/ unless overridden by environment
func GetConfigDir() (string, error) {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, DefaultConfigDir), nil
}

// FindConfig locates the configuration file.
// An explicit path (absolute, or containing a separator) must exist.
// A bare name is looked up in the config directory and must exist.
// An empty name returns the default config path if it exists, or "" if it does not.
func FindConfig(name string) (string, error) {
	if name != "" && (filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator)) {
		if _, err := os.Stat(name); err != nil {
			if os.IsNotExist(err) {
				return "", fmt.Errorf("config file not found: %s", name)
			}
			return "", fmt.Errorf("failed to stat config file %s: %w", name, err)
		}
		return name, nil
	}

	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	optional := name == ""
	if optional {
		name = DefaultConfigName
	}

	if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
		name += ".yaml"
	}

	configPath := filepath.Join(configDir, name)

	if _, err := os.Stat(configPath); err != nil {
		if os.IsNotExist(err) {
			if optional {
				return "", nil
			}
			return "", fmt.Errorf("config file not found: %s", configPath)
		}
		return "", fmt.Errorf("failed to stat config file %s: %w", configPath, err)
	}

	return configPath, nil
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory %s: %w", configDir, err)
	}

	return configDir, nil
}
