// Package hubble enables Hubble on an existing, healthy Cilium release.
package hubble

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/catalystcommunity/devcluster/v1/internal/component"
	"github.com/catalystcommunity/devcluster/v1/internal/component/cilium"
	"github.com/catalystcommunity/devcluster/v1/internal/helm"
	"github.com/catalystcommunity/devcluster/v1/internal/k8s"
	"github.com/catalystcommunity/devcluster/v1/internal/output"
)

const (
	ComponentName = "hubble"
	RelaySelector = "k8s-app=hubble-relay"

	DefaultWaitTimeout = 300 * time.Second
)

// ErrCiliumUnhealthy is returned when the Cilium status check fails before enabling Hubble
var ErrCiliumUnhealthy = errors.New("cilium is not healthy, skipping hubble")

// HelmClient defines the Helm operations needed for Hubble
type HelmClient interface {
	Upgrade(ctx context.Context, opts helm.UpgradeOptions) error
	GetRelease(ctx context.Context, namespace, name string) (*helm.Release, error)
}

// K8sClient defines the Kubernetes operations needed for Hubble
type K8sClient interface {
	GetPodsBySelector(ctx context.Context, namespace, selector string) ([]*k8s.Pod, error)
	WaitForPodsReady(ctx context.Context, namespace, selector string, timeout time.Duration) error
}

// Values are the chart values that turn on Hubble, relay and UI
func Values() map[string]interface{} {
	return map[string]interface{}{
		"hubble": map[string]interface{}{
			"enabled": true,
			"relay": map[string]interface{}{
				"enabled": true,
			},
			"ui": map[string]interface{}{
				"enabled": true,
			},
		},
	}
}

// Component implements the component.Component interface for Hubble
type Component struct {
	helmClient  HelmClient
	k8sClient   K8sClient
	cilium      cilium.StatusChecker
	out         *output.Printer
	waitTimeout time.Duration
}

var _ component.Component = (*Component)(nil)

// NewComponent creates a new Hubble component instance
func NewComponent(helmClient HelmClient, k8sClient K8sClient, ciliumChecker cilium.StatusChecker, out *output.Printer, waitTimeout time.Duration) *Component {
	if waitTimeout <= 0 {
		waitTimeout = DefaultWaitTimeout
	}
	return &Component{
		helmClient:  helmClient,
		k8sClient:   k8sClient,
		cilium:      ciliumChecker,
		out:         out,
		waitTimeout: waitTimeout,
	}
}

// Name returns the component name
func (c *Component) Name() string {
	return ComponentName
}

// Dependencies returns the list of dependencies
func (c *Component) Dependencies() []string {
	return []string{cilium.ComponentName}
}

// Install enables Hubble when Cilium is healthy and waits for the relay
func (c *Component) Install(ctx context.Context, cfg component.ComponentConfig) error {
	if err := c.cilium.Check(ctx); err != nil {
		c.out.Fail("Cilium status check failed: %v", err)
		return fmt.Errorf("%w: %v", ErrCiliumUnhealthy, err)
	}
	c.out.Success("Cilium is healthy")

	if err := c.helmClient.Upgrade(ctx, helm.UpgradeOptions{
		ReleaseName: cilium.ReleaseName,
		Namespace:   cilium.Namespace,
		Chart:       cilium.Chart,
		Version:     cfg.Version,
		Values:      Values(),
		ReuseValues: true,
	}); err != nil {
		return fmt.Errorf("failed to enable hubble: %w", err)
	}
	c.out.Success("Enabled Hubble relay and UI")

	c.out.Info("Waiting up to %s for hubble-relay to be ready...", c.waitTimeout)
	if err := c.k8sClient.WaitForPodsReady(ctx, cilium.Namespace, RelaySelector, c.waitTimeout); err != nil {
		return fmt.Errorf("hubble relay not ready: %w", err)
	}
	c.out.Success("Hubble relay is ready")

	return nil
}

// Status reports whether the relay pods are running and ready
func (c *Component) Status(ctx context.Context) (*component.ComponentStatus, error) {
	rel, err := c.helmClient.GetRelease(ctx, cilium.Namespace, cilium.ReleaseName)
	if err != nil {
		if errors.Is(err, helm.ErrReleaseNotFound) {
			return &component.ComponentStatus{Message: "cilium release not found"}, nil
		}
		return &component.ComponentStatus{Message: fmt.Sprintf("failed to get release: %v", err)}, nil
	}

	pods, err := c.k8sClient.GetPodsBySelector(ctx, cilium.Namespace, RelaySelector)
	if err != nil {
		return &component.ComponentStatus{Message: fmt.Sprintf("failed to get pods: %v", err)}, nil
	}

	if len(pods) == 0 {
		return &component.ComponentStatus{Message: "hubble relay not deployed"}, nil
	}

	ready := 0
	var pending []string
	for _, pod := range pods {
		if pod.Ready {
			ready++
			continue
		}
		pending = append(pending, fmt.Sprintf("%s %s", pod.Name, pod.State()))
	}

	msg := fmt.Sprintf("%d/%d relay pods ready", ready, len(pods))
	if len(pending) > 0 {
		msg += " (" + strings.Join(pending, ", ") + ")"
	}

	return &component.ComponentStatus{
		Installed: true,
		Version:   rel.Version,
		Healthy:   ready == len(pods),
		Message:   msg,
	}, nil
}
