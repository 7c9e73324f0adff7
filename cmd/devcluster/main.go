package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/catalystcommunity/devcluster/v1/cmd/devcluster/commands/cluster"
	configcmd "github.com/catalystcommunity/devcluster/v1/cmd/devcluster/commands/config"
	"github.com/catalystcommunity/devcluster/v1/cmd/devcluster/commands/shared"
	"github.com/catalystcommunity/devcluster/v1/cmd/devcluster/commands/status"
	"github.com/catalystcommunity/devcluster/v1/cmd/devcluster/commands/token"
	"github.com/catalystcommunity/devcluster/v1/cmd/devcluster/commands/up"
	"github.com/catalystcommunity/devcluster/v1/cmd/devcluster/commands/versions"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(up.Action).Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// newRootCommand builds the command tree; action runs when no subcommand is given
func newRootCommand(action cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name:  "devcluster",
		Usage: "Bootstrap a local Kind cluster with Cilium and Hubble",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    shared.ConfigFlag,
				Aliases: []string{"c"},
				Usage:   "Path to config file (default: ~/.devcluster/config.yaml)",
				Sources: cli.EnvVars("DEVCLUSTER_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  shared.UpdateFlag,
				Usage: "Reinstall kind, helm and kubectl even when already present",
			},
			&cli.BoolFlag{
				Name:    shared.VerboseFlag,
				Aliases: []string{"v"},
				Usage:   "Show debug output",
			},
		},
		Action: action,
		Commands: []*cli.Command{
			up.Command,
			versions.Command,
			status.Command,
			cluster.DeleteCommand,
			token.Command,
			configcmd.Command,
		},
	}
}
