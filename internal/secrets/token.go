// Package secrets stores the GitHub token used for release lookups.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/catalystcommunity/devcluster/v1/internal/config"
	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name used in the OS keyring
	KeyringService = "devcluster"
	// KeyringUser is the account name for the GitHub API token
	KeyringUser = "github-token"
	// FallbackFileName is the token file in the config dir, used without a keyring
	FallbackFileName = ".github-token"
	// TokenEnv takes precedence over any stored token
	TokenEnv = "GITHUB_TOKEN"
)

// ErrNoToken is returned when no token is stored anywhere
var ErrNoToken = errors.New("no github token found in keyring or file storage")

// StoreGitHubToken saves token in the OS keyring, or in the fallback file
// when no keyring is available
func StoreGitHubToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}

	if err := keyring.Set(KeyringService, KeyringUser, token); err == nil {
		return nil
	}

	path, err := tokenFile()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// LoadGitHubToken reads the stored token, keyring first
func LoadGitHubToken() (string, error) {
	if token, err := keyring.Get(KeyringService, KeyringUser); err == nil {
		return token, nil
	}

	path, err := tokenFile()
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return "", ErrNoToken
	case err != nil:
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// ClearGitHubToken removes the token from both the keyring and the file.
// It only fails when neither location could be cleared.
func ClearGitHubToken() error {
	keyringErr := keyring.Delete(KeyringService, KeyringUser)
	if errors.Is(keyringErr, keyring.ErrNotFound) {
		keyringErr = nil
	}

	var fileErr error
	if path, err := tokenFile(); err != nil {
		fileErr = err
	} else if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		fileErr = err
	}

	if keyringErr != nil && fileErr != nil {
		return fmt.Errorf("failed to clear token: keyring: %v, file: %v", keyringErr, fileErr)
	}
	return nil
}

// GitHubToken returns the token to use for GitHub API requests.
// $GITHUB_TOKEN wins over a stored token; an absent token is not an error.
func GitHubToken() string {
	if token := strings.TrimSpace(os.Getenv(TokenEnv)); token != "" {
		return token
	}

	token, err := LoadGitHubToken()
	if err != nil {
		return ""
	}
	return token
}

func tokenFile() (string, error) {
	dir, err := config.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FallbackFileName), nil
}
