package cilium

import (
	"context"
	"fmt"

	"github.com/catalystcommunity/devcluster/v1/internal/config"
	"github.com/catalystcommunity/devcluster/v1/internal/k8s"
	"github.com/catalystcommunity/devcluster/v1/internal/shell"
)

// StatusChecker reports whether Cilium is currently healthy.
// A nil error means healthy.
type StatusChecker interface {
	Check(ctx context.Context) error
}

// NewStatusChecker returns the checker for a config status_check mode
func NewStatusChecker(mode string, k8sClient K8sClient, runner shell.Runner) (StatusChecker, error) {
	switch mode {
	case "", config.StatusCheckAPI:
		if k8sClient == nil {
			return nil, fmt.Errorf("k8s client cannot be nil")
		}
		return &APIChecker{client: k8sClient}, nil
	case config.StatusCheckCLI:
		if runner == nil {
			return nil, fmt.Errorf("runner cannot be nil")
		}
		return &CLIChecker{runner: runner}, nil
	default:
		return nil, fmt.Errorf("unknown status check mode %q", mode)
	}
}

// APIChecker reads the agent DaemonSet and operator Deployment from the API server
type APIChecker struct {
	client K8sClient
}

// NewAPIChecker creates a checker backed by the Kubernetes API
func NewAPIChecker(client K8sClient) *APIChecker {
	return &APIChecker{client: client}
}

// Check succeeds when every agent pod is ready and every operator replica is available
func (c *APIChecker) Check(ctx context.Context) error {
	ds, err := c.client.GetDaemonSetStatus(ctx, Namespace, DaemonSetName)
	if k8s.IsNotFound(err) {
		return fmt.Errorf("daemonset %s/%s not found, cilium is not deployed", Namespace, DaemonSetName)
	}
	if err != nil {
		return err
	}
	if !ds.Healthy() {
		return fmt.Errorf("daemonset %s: %d/%d pods ready", DaemonSetName, ds.Ready, ds.Desired)
	}

	op, err := c.client.GetDeploymentStatus(ctx, Namespace, OperatorName)
	if k8s.IsNotFound(err) {
		return fmt.Errorf("deployment %s/%s not found, cilium operator is not deployed", Namespace, OperatorName)
	}
	if err != nil {
		return err
	}
	if !op.Healthy() {
		return fmt.Errorf("deployment %s: %d/%d replicas available", OperatorName, op.Available, op.Replicas)
	}

	return nil
}

// CLIChecker runs `cilium status` and uses its exit code
type CLIChecker struct {
	runner shell.Runner
}

// NewCLIChecker creates a checker that shells out to the cilium CLI
func NewCLIChecker(runner shell.Runner) *CLIChecker {
	return &CLIChecker{runner: runner}
}

// Check succeeds when `cilium status` exits 0
func (c *CLIChecker) Check(ctx context.Context) error {
	_, err := shell.Run(ctx, c.runner, "cilium", "status")
	return err
}
