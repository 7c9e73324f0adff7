package cluster

import (
	"context"

	"github.com/catalystcommunity/devcluster/v1/cmd/devcluster/commands/shared"
	"github.com/catalystcommunity/devcluster/v1/internal/cluster"
	"github.com/urfave/cli/v3"
)

// DeleteCommand deletes the Kind cluster
var DeleteCommand = &cli.Command{
	Name:   "delete",
	Usage:  "Delete the Kind cluster (no-op when it does not exist)",
	Action: runDelete,
}

func runDelete(ctx context.Context, cmd *cli.Command) error {
	cfg, _, err := shared.LoadConfig(cmd)
	if err != nil {
		return err
	}

	out := shared.Printer(cmd)
	provider, err := cluster.NewKindProvider(out)
	if err != nil {
		return err
	}

	out.Step("Deleting cluster %s", cfg.Cluster.Name)
	return cluster.NewManager(provider, cfg.Cluster, out).Delete(ctx)
}
