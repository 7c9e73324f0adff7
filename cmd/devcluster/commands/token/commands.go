package token

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/catalystcommunity/devcluster/v1/cmd/devcluster/commands/shared"
	"github.com/catalystcommunity/devcluster/v1/internal/secrets"
	"github.com/urfave/cli/v3"
)

// Command is the token command group
var Command = &cli.Command{
	Name:  "token",
	Usage: "Manage the GitHub token used for release lookups",
	Commands: []*cli.Command{
		SetCommand,
		ClearCommand,
		ShowCommand,
	},
}

// SetCommand stores a GitHub token
var SetCommand = &cli.Command{
	Name:      "set",
	Usage:     "Store a GitHub token in the OS keyring",
	ArgsUsage: "<token>",
	Action:    runSet,
}

// ClearCommand removes a stored GitHub token
var ClearCommand = &cli.Command{
	Name:   "clear",
	Usage:  "Remove the stored GitHub token",
	Action: runClear,
}

// ShowCommand reports where the active token comes from without printing it
var ShowCommand = &cli.Command{
	Name:   "show",
	Usage:  "Show whether a GitHub token is configured",
	Action: runShow,
}

func runSet(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one argument: <token>")
	}

	if err := secrets.StoreGitHubToken(cmd.Args().First()); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	shared.Printer(cmd).Success("GitHub token stored")
	return nil
}

func runClear(ctx context.Context, cmd *cli.Command) error {
	if err := secrets.ClearGitHubToken(); err != nil {
		return err
	}

	shared.Printer(cmd).Success("GitHub token cleared")
	return nil
}

func runShow(ctx context.Context, cmd *cli.Command) error {
	out := shared.Printer(cmd)

	if strings.TrimSpace(os.Getenv(secrets.TokenEnv)) != "" {
		out.Info("Using token from $%s", secrets.TokenEnv)
		return nil
	}

	if _, err := secrets.LoadGitHubToken(); err == nil {
		out.Info("Using stored token")
		return nil
	}

	out.Info("No GitHub token configured; release lookups are unauthenticated")
	return nil
}
