package bootstrap

import (
	"fmt"

	"github.com/catalystcommunity/devcluster/v1/internal/component"
	"github.com/catalystcommunity/devcluster/v1/internal/component/cilium"
	"github.com/catalystcommunity/devcluster/v1/internal/component/hubble"
	"github.com/catalystcommunity/devcluster/v1/internal/config"
	"github.com/catalystcommunity/devcluster/v1/internal/helm"
	"github.com/catalystcommunity/devcluster/v1/internal/k8s"
	"github.com/catalystcommunity/devcluster/v1/internal/output"
	"github.com/catalystcommunity/devcluster/v1/internal/shell"
)

// NewComponentFactory returns a factory that wires Helm and Kubernetes
// clients for a kubeconfig into the Cilium and Hubble components
func NewComponentFactory(cfg *config.Config, runner shell.Runner, out *output.Printer) ComponentFactory {
	return func(kubeconfig []byte) (*Components, error) {
		helmClient, err := helm.NewClient(kubeconfig, cilium.Namespace)
		if err != nil {
			return nil, fmt.Errorf("failed to create helm client: %w", err)
		}
		if out.Verbose() {
			helmClient.SetDebugLog(out.Debugf)
		}

		k8sClient, err := k8s.NewClientFromKubeconfig(kubeconfig)
		if err != nil {
			helmClient.Close()
			return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
		}

		checker, err := cilium.NewStatusChecker(cfg.Cilium.StatusCheck, k8sClient, runner)
		if err != nil {
			helmClient.Close()
			return nil, err
		}

		registry, err := component.NewRegistry(
			cilium.NewComponent(helmClient, checker, out, cilium.Policy{
				MaxAttempts: cfg.Cilium.MaxAttempts,
				Step:        cfg.Cilium.BackoffStep,
			}),
			hubble.NewComponent(helmClient, k8sClient, checker, out, cfg.Hubble.WaitTimeout),
		)
		if err != nil {
			helmClient.Close()
			return nil, err
		}

		return &Components{Registry: registry, Close: helmClient.Close}, nil
	}
}
