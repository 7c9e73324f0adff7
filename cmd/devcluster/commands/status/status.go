package status

import (
	"context"
	"fmt"
	"strings"

	"github.com/catalystcommunity/devcluster/v1/cmd/devcluster/commands/shared"
	"github.com/catalystcommunity/devcluster/v1/internal/bootstrap"
	"github.com/catalystcommunity/devcluster/v1/internal/cluster"
	"github.com/catalystcommunity/devcluster/v1/internal/component"
	"github.com/catalystcommunity/devcluster/v1/internal/k8s"
	"github.com/catalystcommunity/devcluster/v1/internal/output"
	"github.com/urfave/cli/v3"
)

// Command shows the state of the cluster and its components
var Command = &cli.Command{
	Name:   "status",
	Usage:  "Show node, Cilium and Hubble status for the existing cluster",
	Action: runStatus,
}

func runStatus(ctx context.Context, cmd *cli.Command) error {
	cfg, _, err := shared.LoadConfig(cmd)
	if err != nil {
		return err
	}

	out := shared.Printer(cmd)
	provider, err := cluster.NewKindProvider(out)
	if err != nil {
		return err
	}

	mgr := cluster.NewManager(provider, cfg.Cluster, out)
	exists, err := mgr.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		out.Fail("Cluster %s does not exist", mgr.Name())
		return nil
	}

	kubeconfig, err := mgr.Kubeconfig(ctx)
	if err != nil {
		return err
	}

	out.Step("Cluster %s", mgr.Name())
	k8sClient, err := k8s.NewClientFromKubeconfig(kubeconfig)
	if err != nil {
		return err
	}
	if err := printNodes(ctx, k8sClient, out); err != nil {
		return err
	}

	comps, err := bootstrap.NewComponentFactory(cfg, shared.Runner(out), out)(kubeconfig)
	if err != nil {
		return err
	}
	defer comps.Close()

	out.Step("Components")
	return printComponents(ctx, comps.Registry, out)
}

func printNodes(ctx context.Context, client *k8s.Client, out *output.Printer) error {
	nodes, err := client.GetNodes(ctx)
	if err != nil {
		return err
	}

	for _, n := range nodes {
		line := fmt.Sprintf("%s (%s) %s %s", n.Name, strings.Join(n.Roles, ","), n.Version, n.Status)
		if n.Ready {
			out.Success("%s", line)
		} else {
			out.Fail("%s", line)
		}
	}
	return nil
}

func printComponents(ctx context.Context, registry *component.Registry, out *output.Printer) error {
	order, err := component.ResolveInstallationOrder(registry, registry.List())
	if err != nil {
		return err
	}

	for _, name := range order {
		st, err := registry.Get(name).Status(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		version := st.Version
		if version == "" {
			version = "-"
		}

		switch {
		case st.Healthy:
			out.Success("%s %s: %s", name, version, st.Message)
		case st.Installed:
			out.Warn("%s %s: %s", name, version, st.Message)
		default:
			out.Fail("%s: %s", name, st.Message)
		}
	}
	return nil
}
