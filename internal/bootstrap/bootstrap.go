// Package bootstrap runs the full dev cluster setup from tool install to Hubble.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/catalystcommunity/devcluster/v1/internal/component"
	"github.com/catalystcommunity/devcluster/v1/internal/output"
	"github.com/catalystcommunity/devcluster/v1/internal/tools"
	"github.com/catalystcommunity/devcluster/v1/internal/versions"
)

// DefaultComponents are installed on every bootstrap
var DefaultComponents = []string{"cilium", "hubble"}

// Resolver resolves the versions for a run
type Resolver interface {
	ResolveAll(ctx context.Context) *versions.Set
}

// ToolInstaller installs a single CLI tool
type ToolInstaller interface {
	Ensure(ctx context.Context, tool tools.Tool, version string, update bool) (*tools.Result, error)
}

// ClusterManager recreates the Kind cluster
type ClusterManager interface {
	Name() string
	Delete(ctx context.Context) error
	Create(ctx context.Context) error
	Kubeconfig(ctx context.Context) ([]byte, error)
}

// Components holds the components built for a cluster and releases their clients
type Components struct {
	Registry *component.Registry
	Close    func() error
}

// ComponentFactory builds the components for a cluster from its kubeconfig
type ComponentFactory func(kubeconfig []byte) (*Components, error)

// Options are the per-run flags
type Options struct {
	// Update reinstalls tools that are already present
	Update bool
}

// Summary describes what a run did
type Summary struct {
	Versions   *versions.Set
	Tools      []*tools.Result
	Cluster    string
	Components []string
	Duration   time.Duration
}

// Bootstrapper runs the steps in order, stopping at the first error
type Bootstrapper struct {
	Resolver      Resolver
	Installer     ToolInstaller
	Tools         []tools.Tool
	Cluster       ClusterManager
	NewComponents ComponentFactory
	// CiliumValues are user Helm values merged under the fixed Cilium values
	CiliumValues map[string]interface{}
	Out          *output.Printer
}

// Run resolves versions, installs tools, recreates the cluster and installs
// the components
func (b *Bootstrapper) Run(ctx context.Context, opts Options) (*Summary, error) {
	start := time.Now()
	summary := &Summary{Cluster: b.Cluster.Name()}

	b.Out.Step("Resolving versions")
	set := b.Resolver.ResolveAll(ctx)
	summary.Versions = set
	rateLimited := false
	for _, r := range set.All() {
		if r.Origin == versions.OriginDefault {
			b.Out.Warn("%s %s (default: %v)", r.Name, r.Version, r.Err)
			rateLimited = rateLimited || versions.IsRateLimitError(r.Err)
			continue
		}
		b.Out.Success("%s %s", r.Name, r.Version)
	}
	if rateLimited {
		b.Out.Info("GitHub rate limit reached; set GITHUB_TOKEN or run `devcluster token set` to use the latest versions")
	}

	b.Out.Step("Installing tools")
	toolVersions := map[string]string{
		versions.Kind:    set.Kind.Version,
		versions.Helm:    set.Helm.Version,
		versions.Kubectl: set.Kubectl.Version,
	}
	for _, tool := range b.Tools {
		version, ok := toolVersions[tool.Name]
		if !ok {
			return nil, fmt.Errorf("no version resolved for tool %s", tool.Name)
		}
		result, err := b.Installer.Ensure(ctx, tool, version, opts.Update)
		if err != nil {
			return nil, err
		}
		summary.Tools = append(summary.Tools, result)
	}

	b.Out.Step("Recreating cluster %s", b.Cluster.Name())
	if err := b.Cluster.Delete(ctx); err != nil {
		return nil, err
	}
	if err := b.Cluster.Create(ctx); err != nil {
		return nil, err
	}

	kubeconfig, err := b.Cluster.Kubeconfig(ctx)
	if err != nil {
		return nil, err
	}

	comps, err := b.NewComponents(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to set up cluster clients: %w", err)
	}
	defer comps.Close()

	order, err := component.ResolveInstallationOrder(comps.Registry, DefaultComponents)
	if err != nil {
		return nil, err
	}

	configs := map[string]component.ComponentConfig{
		"cilium": {Version: set.Cilium.Version, Values: b.CiliumValues},
		"hubble": {Version: set.Cilium.Version},
	}

	for _, name := range order {
		b.Out.Step("Installing %s", name)
		if err := comps.Registry.Get(name).Install(ctx, configs[name]); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		summary.Components = append(summary.Components, name)
	}

	summary.Duration = time.Since(start)
	b.Out.Step("Cluster %s is ready (%s)", summary.Cluster, summary.Duration.Round(time.Second))
	return summary, nil
}
