package sudo

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/catalystcommunity/devcluster/v1/internal/shell"
)

// SudoStatus represents the state of sudo access for the current user
type SudoStatus int

const (
	// SudoNotInstalled means the sudo command is not available on the system
	SudoNotInstalled SudoStatus = iota
	// SudoNoAccess means sudo is installed but user is not in sudoers
	SudoNoAccess
	// SudoRequiresPassword means user has sudo but must enter a password
	SudoRequiresPassword
	// SudoPasswordless means user has full passwordless sudo access
	SudoPasswordless
)

// String returns a human-readable description of the sudo status
func (s SudoStatus) String() string {
	switch s {
	case SudoNotInstalled:
		return "sudo not installed"
	case SudoNoAccess:
		return "user not in sudoers"
	case SudoRequiresPassword:
		return "sudo requires password"
	case SudoPasswordless:
		return "passwordless sudo configured"
	default:
		return "unknown"
	}
}

// lookPath is swapped in tests
var lookPath = exec.LookPath

// GetSudoStatus returns the detailed sudo status for the current user
func GetSudoStatus(ctx context.Context, runner shell.Runner) (SudoStatus, error) {
	if _, err := lookPath("sudo"); err != nil {
		return SudoNotInstalled, nil
	}

	result, err := runner.Exec(ctx, "sudo", "-n", "true")
	if err != nil {
		return SudoNoAccess, fmt.Errorf("failed to test sudo access: %w", err)
	}

	if result.ExitCode == 0 {
		return SudoPasswordless, nil
	}

	stderr := result.Stderr
	if stderr == "" {
		stderr = result.Stdout
	}

	if strings.Contains(stderr, "password is required") {
		return SudoRequiresPassword, nil
	}

	return SudoNoAccess, nil
}

// InstallFile copies src to dst with the given mode as root.
// install(1) writes the full file before replacing dst, so a failure leaves the old file in place.
func InstallFile(ctx context.Context, runner shell.Runner, src, dst string, mode string) error {
	status, err := GetSudoStatus(ctx, runner)
	if err != nil {
		return err
	}

	switch status {
	case SudoNotInstalled, SudoNoAccess:
		return fmt.Errorf("cannot write %s: %s", dst, status)
	}

	if _, err := shell.Run(ctx, runner, "sudo", "install", "-m", mode, src, dst); err != nil {
		return fmt.Errorf("failed to install %s: %w", dst, err)
	}

	return nil
}
