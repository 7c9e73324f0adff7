package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/catalystcommunity/devcluster/v1/internal/config"
	"github.com/catalystcommunity/devcluster/v1/internal/output"
	"github.com/catalystcommunity/devcluster/v1/internal/shell"
	"github.com/catalystcommunity/devcluster/v1/internal/sudo"
)

// Action records what Ensure did for a tool
type Action string

const (
	ActionSkipped   Action = "skipped"
	ActionInstalled Action = "installed"
	ActionUpdated   Action = "updated"
)

// Result is the outcome of ensuring a single tool
type Result struct {
	Tool    string
	Version string
	Path    string
	Action  Action
	// ShadowedBy is set when another binary on $PATH takes precedence over Path
	ShadowedBy string
}

// Installer downloads tools and places them in InstallDir
type Installer struct {
	InstallDir string
	Platform   Platform
	Client     *http.Client
	Runner     shell.Runner
	Out        *output.Printer

	// LookPath finds binaries on $PATH
	LookPath func(file string) (string, error)
}

// NewInstaller creates an installer from the tools config
func NewInstaller(cfg config.ToolsConfig, runner shell.Runner, out *output.Printer) *Installer {
	platform := CurrentPlatform()
	if cfg.OS != "" {
		platform.OS = cfg.OS
	}
	if cfg.Arch != "" {
		platform.Arch = cfg.Arch
	}

	return &Installer{
		InstallDir: cfg.InstallDir,
		Platform:   platform,
		Client:     &http.Client{Timeout: 10 * time.Minute},
		Runner:     runner,
		Out:        out,
		LookPath:   exec.LookPath,
	}
}

// Installed returns the path of an existing binary for tool, checking $PATH
// first and then the install directory
func (i *Installer) Installed(tool Tool) (string, bool) {
	if i.LookPath != nil {
		if p, err := i.LookPath(tool.Name); err == nil {
			return p, true
		}
	}

	p := filepath.Join(i.InstallDir, tool.Name)
	info, err := os.Stat(p)
	if err != nil || info.IsDir() || info.Mode().Perm()&0111 == 0 {
		return "", false
	}
	return p, true
}

// Ensure installs version of tool unless it is already present and update is false
func (i *Installer) Ensure(ctx context.Context, tool Tool, version string, update bool) (*Result, error) {
	existing, present := i.Installed(tool)
	if present && !update {
		i.Out.Success("%s already installed at %s", tool.Name, existing)
		return &Result{Tool: tool.Name, Path: existing, Action: ActionSkipped}, nil
	}

	i.Out.Info("Downloading %s %s for %s...", tool.Name, version, i.Platform)

	tmpDir, err := os.MkdirTemp("", "devcluster-"+tool.Name+"-")
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create temp dir: %w", tool.Name, err)
	}
	defer os.RemoveAll(tmpDir)

	binary, err := i.fetch(ctx, tool, version, tmpDir)
	if err != nil {
		return nil, err
	}

	dest := filepath.Join(i.InstallDir, tool.Name)
	if err := i.install(ctx, binary, dest); err != nil {
		return nil, fmt.Errorf("%s: install failed: %w", tool.Name, err)
	}

	action := ActionInstalled
	if present {
		action = ActionUpdated
	}
	i.Out.Success("%s %s %s at %s", tool.Name, version, action, dest)

	result := &Result{Tool: tool.Name, Version: version, Path: dest, Action: action}
	if shadow := i.shadowedBy(tool, dest); shadow != "" {
		i.Out.Warn("%s on $PATH resolves to %s, not %s; remove it or reorder $PATH to use %s", tool.Name, shadow, dest, version)
		result.ShadowedBy = shadow
	}
	return result, nil
}

// shadowedBy returns the binary $PATH picks for tool when it is not dest
func (i *Installer) shadowedBy(tool Tool, dest string) string {
	if i.LookPath == nil {
		return ""
	}
	found, err := i.LookPath(tool.Name)
	if err != nil {
		return ""
	}
	if samePath(found, dest) {
		return ""
	}
	return found
}

func samePath(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ra, errA := filepath.EvalSymlinks(a)
	rb, errB := filepath.EvalSymlinks(b)
	return errA == nil && errB == nil && ra == rb
}

// fetch downloads and verifies the artifact and returns the path of an executable binary in dir
func (i *Installer) fetch(ctx context.Context, tool Tool, version, dir string) (string, error) {
	url := tool.DownloadURL(version, i.Platform)
	artifact := filepath.Join(dir, filepath.Base(url))

	sum, err := downloadFile(ctx, i.Client, url, artifact)
	if err != nil {
		return "", fmt.Errorf("%s: %w", tool.Name, err)
	}

	want, err := fetchChecksum(ctx, i.Client, tool.ChecksumURL(version, i.Platform))
	switch {
	case errors.Is(err, errNoChecksum):
		i.Out.Warn("No checksum published for %s %s, skipping verification", tool.Name, version)
	case err != nil:
		return "", fmt.Errorf("%s: %w", tool.Name, err)
	default:
		if err := verifyChecksum(tool.Name, sum, want); err != nil {
			return "", err
		}
		i.Out.Debugf("sha256 %s verified", sum)
	}

	binary := artifact
	if member := tool.ArchivePath(i.Platform); member != "" {
		binary = filepath.Join(dir, tool.Name)
		if err := extractFromTarGz(artifact, member, binary); err != nil {
			return "", fmt.Errorf("%s: %w", tool.Name, err)
		}
	}

	if err := os.Chmod(binary, 0755); err != nil {
		return "", fmt.Errorf("%s: failed to make binary executable: %w", tool.Name, err)
	}

	return binary, nil
}

// install moves src to dest, via a rename inside the install dir when it is
// writable and via sudo otherwise
func (i *Installer) install(ctx context.Context, src, dest string) error {
	staged, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+"-")
	if err != nil {
		if !os.IsPermission(err) {
			return fmt.Errorf("failed to stage binary: %w", err)
		}
		i.Out.Info("%s is not writable, installing with sudo", filepath.Dir(dest))
		return sudo.InstallFile(ctx, i.Runner, src, dest, "0755")
	}

	stagedPath := staged.Name()
	defer os.Remove(stagedPath)

	in, err := os.Open(src)
	if err != nil {
		staged.Close()
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	if _, err := io.Copy(staged, in); err != nil {
		staged.Close()
		return fmt.Errorf("failed to stage binary: %w", err)
	}
	if err := staged.Close(); err != nil {
		return fmt.Errorf("failed to stage binary: %w", err)
	}

	if err := os.Chmod(stagedPath, 0755); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(stagedPath, dest); err != nil {
		return fmt.Errorf("failed to move binary into place: %w", err)
	}

	return nil
}
