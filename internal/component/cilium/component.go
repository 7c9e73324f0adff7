package cilium

import (
	"context"
	"errors"
	"fmt"

	"github.com/catalystcommunity/devcluster/v1/internal/component"
	"github.com/catalystcommunity/devcluster/v1/internal/helm"
	"github.com/catalystcommunity/devcluster/v1/internal/output"
)

// Component implements the component.Component interface for Cilium
type Component struct {
	helmClient HelmClient
	checker    StatusChecker
	out        *output.Printer
	policy     Policy
}

var _ component.Component = (*Component)(nil)

// NewComponent creates a new Cilium component instance
func NewComponent(helmClient HelmClient, checker StatusChecker, out *output.Printer, policy Policy) *Component {
	return &Component{
		helmClient: helmClient,
		checker:    checker,
		out:        out,
		policy:     policy,
	}
}

// Name returns the component name
func (c *Component) Name() string {
	return ComponentName
}

// Install installs Cilium via Helm and waits for it to become ready
func (c *Component) Install(ctx context.Context, cfg component.ComponentConfig) error {
	if cfg.Version == "" {
		return fmt.Errorf("cilium chart version is required")
	}
	return Install(ctx, c.helmClient, c.checker, c.out, cfg.Version, cfg.Values, c.policy)
}

// Status returns the current status of Cilium
func (c *Component) Status(ctx context.Context) (*component.ComponentStatus, error) {
	rel, err := c.helmClient.GetRelease(ctx, Namespace, ReleaseName)
	if err != nil {
		if errors.Is(err, helm.ErrReleaseNotFound) {
			return &component.ComponentStatus{Message: "cilium release not found"}, nil
		}
		return &component.ComponentStatus{Message: fmt.Sprintf("failed to get release: %v", err)}, nil
	}

	status := &component.ComponentStatus{
		Installed: true,
		Version:   rel.Version,
	}

	if !rel.Deployed() {
		status.Message = fmt.Sprintf("release status: %s", rel.Status)
		return status, nil
	}

	if err := c.checker.Check(ctx); err != nil {
		status.Message = err.Error()
		return status, nil
	}

	status.Healthy = true
	status.Message = "agent and operator ready"
	return status, nil
}

// Dependencies returns the list of dependencies
func (c *Component) Dependencies() []string {
	return nil
}
