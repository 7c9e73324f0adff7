package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"time"
)

// Config represents the devcluster configuration file
type Config struct {
	Cluster   ClusterConfig   `yaml:"cluster"`
	Tools     ToolsConfig     `yaml:"tools"`
	Versions  VersionsConfig  `yaml:"versions"`
	Endpoints EndpointsConfig `yaml:"endpoints"`
	Cilium    CiliumConfig    `yaml:"cilium"`
	Hubble    HubbleConfig    `yaml:"hubble"`
}

// ClusterConfig defines the Kind cluster settings
type ClusterConfig struct {
	Name         string        `yaml:"name"`
	KindConfig   string        `yaml:"kind_config"`
	WaitForReady time.Duration `yaml:"wait_for_ready"`
}

// ToolsConfig defines where CLI tools are installed and for which platform
type ToolsConfig struct {
	InstallDir string `yaml:"install_dir"`
	OS         string `yaml:"os,omitempty"`
	Arch       string `yaml:"arch,omitempty"`
}

// VersionsConfig holds the fallback versions used when a remote lookup fails
type VersionsConfig struct {
	Kind    string `yaml:"kind"`
	Kubectl string `yaml:"kubectl"`
	Helm    string `yaml:"helm"`
	Cilium  string `yaml:"cilium"`
}

// EndpointsConfig holds the release-metadata endpoints queried for latest versions
type EndpointsConfig struct {
	Kind    string `yaml:"kind"`
	Kubectl string `yaml:"kubectl"`
	Helm    string `yaml:"helm"`
	Cilium  string `yaml:"cilium"`
}

// CiliumConfig defines the Cilium install and readiness policy
type CiliumConfig struct {
	MaxAttempts int                    `yaml:"max_attempts"`
	BackoffStep time.Duration          `yaml:"backoff_step"`
	StatusCheck string                 `yaml:"status_check"`
	Values      map[string]interface{} `yaml:"values,omitempty"`
}

// HubbleConfig defines the Hubble enablement settings
type HubbleConfig struct {
	WaitTimeout time.Duration `yaml:"wait_timeout"`
}

// Cilium status check modes
const (
	StatusCheckAPI = "api"
	StatusCheckCLI = "cli"
)

// Kind cluster names end up in container and context names
var clusterNamePattern = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)

// Validate performs validation on the Config struct
func (c *Config) Validate() error {
	if err := c.Cluster.Validate(); err != nil {
		return fmt.Errorf("cluster validation failed: %w", err)
	}

	if err := c.Tools.Validate(); err != nil {
		return fmt.Errorf("tools validation failed: %w", err)
	}

	if err := c.Versions.Validate(); err != nil {
		return fmt.Errorf("versions validation failed: %w", err)
	}

	if err := c.Endpoints.Validate(); err != nil {
		return fmt.Errorf("endpoints validation failed: %w", err)
	}

	if err := c.Cilium.Validate(); err != nil {
		return fmt.Errorf("cilium validation failed: %w", err)
	}

	if c.Hubble.WaitTimeout <= 0 {
		return fmt.Errorf("hubble validation failed: wait_timeout must be positive")
	}

	return nil
}

// Validate performs validation on ClusterConfig
func (c *ClusterConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("cluster name is required")
	}

	if !clusterNamePattern.MatchString(c.Name) {
		return fmt.Errorf("invalid cluster name %q: must be lowercase alphanumeric or '-'", c.Name)
	}

	if c.KindConfig == "" {
		return fmt.Errorf("kind_config is required")
	}

	if c.WaitForReady < 0 {
		return fmt.Errorf("wait_for_ready cannot be negative")
	}

	return nil
}

// Validate performs validation on ToolsConfig
func (t *ToolsConfig) Validate() error {
	if t.InstallDir == "" {
		return fmt.Errorf("install_dir is required")
	}

	if !filepath.IsAbs(t.InstallDir) {
		return fmt.Errorf("install_dir must be an absolute path, got %q", t.InstallDir)
	}

	return nil
}

// Validate performs validation on VersionsConfig
func (v *VersionsConfig) Validate() error {
	for name, value := range map[string]string{
		"kind":    v.Kind,
		"kubectl": v.Kubectl,
		"helm":    v.Helm,
		"cilium":  v.Cilium,
	} {
		if value == "" {
			return fmt.Errorf("fallback version for %s is required", name)
		}
	}
	return nil
}

// Validate performs validation on EndpointsConfig
func (e *EndpointsConfig) Validate() error {
	for name, value := range map[string]string{
		"kind":    e.Kind,
		"kubectl": e.Kubectl,
		"helm":    e.Helm,
		"cilium":  e.Cilium,
	} {
		u, err := url.Parse(value)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid endpoint for %s: %q", name, value)
		}
	}
	return nil
}

// Validate performs validation on CiliumConfig
func (c *CiliumConfig) Validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1")
	}

	if c.BackoffStep <= 0 {
		return fmt.Errorf("backoff_step must be positive")
	}

	if c.StatusCheck != StatusCheckAPI && c.StatusCheck != StatusCheckCLI {
		return fmt.Errorf("invalid status_check %q: must be %s or %s", c.StatusCheck, StatusCheckAPI, StatusCheckCLI)
	}

	return nil
}
