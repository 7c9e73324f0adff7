package up

import (
	"context"
	"fmt"

	"github.com/catalystcommunity/devcluster/v1/cmd/devcluster/commands/shared"
	"github.com/catalystcommunity/devcluster/v1/internal/bootstrap"
	"github.com/catalystcommunity/devcluster/v1/internal/cluster"
	"github.com/catalystcommunity/devcluster/v1/internal/tools"
	"github.com/urfave/cli/v3"
)

// Command runs the full bootstrap; the root command runs the same Action
var Command = &cli.Command{
	Name:   "up",
	Usage:  "Install tools, recreate the Kind cluster and install Cilium and Hubble",
	Action: Action,
}

// Action bootstraps the dev cluster
func Action(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() > 0 {
		return fmt.Errorf("unexpected argument %q", cmd.Args().First())
	}

	cfg, path, err := shared.LoadConfig(cmd)
	if err != nil {
		return err
	}

	out := shared.Printer(cmd)
	if path != "" {
		out.Debugf("using config %s", path)
	}

	runner := shared.Runner(out)

	provider, err := cluster.NewKindProvider(out)
	if err != nil {
		return err
	}

	b := &bootstrap.Bootstrapper{
		Resolver:      shared.NewResolver(cfg),
		Installer:     tools.NewInstaller(cfg.Tools, runner, out),
		Tools:         tools.All(),
		Cluster:       cluster.NewManager(provider, cfg.Cluster, out),
		NewComponents: bootstrap.NewComponentFactory(cfg, runner, out),
		CiliumValues:  cfg.Cilium.Values,
		Out:           out,
	}

	_, err = b.Run(ctx, bootstrap.Options{Update: cmd.Bool(shared.UpdateFlag)})
	return err
}
