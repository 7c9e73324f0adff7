package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Result represents the result of a command execution
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes local commands.
// A non-zero exit code is reported through Result, not as an error; the error
// is reserved for commands that could not be started at all.
type Runner interface {
	Exec(ctx context.Context, name string, args ...string) (*Result, error)
}

// LocalRunner runs commands on the local machine via os/exec
type LocalRunner struct {
	// Stream, when set, receives a copy of stdout and stderr as the command runs
	Stream io.Writer
}

// NewLocalRunner creates a runner that captures output without streaming it
func NewLocalRunner() *LocalRunner {
	return &LocalRunner{}
}

// Exec runs name with args and waits for it to exit
func (r *LocalRunner) Exec(ctx context.Context, name string, args ...string) (*Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	if r.Stream != nil {
		cmd.Stdout = io.MultiWriter(&stdout, r.Stream)
		cmd.Stderr = io.MultiWriter(&stderr, r.Stream)
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("failed to run %s: %w", name, err)
	}

	return result, nil
}

// Run executes a command and converts a non-zero exit into an error carrying stderr
func Run(ctx context.Context, r Runner, name string, args ...string) (string, error) {
	result, err := r.Exec(ctx, name, args...)
	if err != nil {
		return "", err
	}
	if result.ExitCode != 0 {
		msg := strings.TrimSpace(result.Stderr)
		if msg == "" {
			msg = strings.TrimSpace(result.Stdout)
		}
		return result.Stdout, fmt.Errorf("%s %s exited with code %d: %s", name, strings.Join(args, " "), result.ExitCode, msg)
	}
	return result.Stdout, nil
}
