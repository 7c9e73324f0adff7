package cluster

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/catalystcommunity/devcluster/v1/internal/config"
	"github.com/catalystcommunity/devcluster/v1/internal/output"
	"sigs.k8s.io/kind/pkg/apis/config/v1alpha4"
	"sigs.k8s.io/kind/pkg/cluster"
	"sigs.k8s.io/yaml"
)

const kindAPIVersion = "kind.x-k8s.io/v1alpha4"

// Manager deletes and creates a single named Kind cluster
type Manager struct {
	provider     Provider
	name         string
	configPath   string
	waitForReady time.Duration
	out          *output.Printer
}

// NewManager creates a manager for the cluster described by cfg
func NewManager(provider Provider, cfg config.ClusterConfig, out *output.Printer) *Manager {
	return &Manager{
		provider:     provider,
		name:         cfg.Name,
		configPath:   cfg.KindConfig,
		waitForReady: cfg.WaitForReady,
		out:          out,
	}
}

// Name returns the cluster name
func (m *Manager) Name() string {
	return m.name
}

// List returns the names of all Kind clusters
func (m *Manager) List(ctx context.Context) ([]string, error) {
	clusters, err := m.provider.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list kind clusters: %w", err)
	}
	return clusters, nil
}

// Exists reports whether the managed cluster exists
func (m *Manager) Exists(ctx context.Context) (bool, error) {
	clusters, err := m.List(ctx)
	if err != nil {
		return false, err
	}

	for _, name := range clusters {
		if name == m.name {
			return true, nil
		}
	}
	return false, nil
}

// Delete removes the cluster. A cluster that does not exist is not an error.
func (m *Manager) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	exists, err := m.Exists(ctx)
	if err != nil {
		m.out.Warn("Could not list clusters, deleting %s anyway: %v", m.name, err)
		exists = true
	}

	if !exists {
		m.out.Success("Cluster %s does not exist, nothing to delete", m.name)
		return nil
	}

	if err := m.provider.Delete(m.name, ""); err != nil {
		return fmt.Errorf("failed to delete cluster %s: %w", m.name, err)
	}

	m.out.Success("Deleted cluster %s", m.name)
	return nil
}

// Create creates the cluster from the static Kind config file
func (m *Manager) Create(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	kindCfg, raw, err := LoadKindConfig(m.configPath)
	if err != nil {
		return err
	}

	if !kindCfg.Networking.DisableDefaultCNI {
		m.out.Warn("%s does not set networking.disableDefaultCNI: true, Cilium will run alongside the default CNI", m.configPath)
	}
	if kindCfg.Name != "" && kindCfg.Name != m.name {
		m.out.Warn("%s names the cluster %q, using %q", m.configPath, kindCfg.Name, m.name)
	}

	m.out.Info("Creating cluster %s from %s (%d nodes)...", m.name, m.configPath, nodeCount(kindCfg))

	opts := []cluster.CreateOption{
		cluster.CreateWithRawConfig(raw),
		cluster.CreateWithDisplayUsage(false),
		cluster.CreateWithDisplaySalutation(false),
	}
	// Nodes without a CNI stay NotReady until Cilium is installed, and kind
	// treats a wait timeout as success
	if wait := m.readyWait(kindCfg); wait > 0 {
		opts = append(opts, cluster.CreateWithWaitForReady(wait))
	}

	if err := m.provider.Create(m.name, opts...); err != nil {
		return fmt.Errorf("failed to create cluster %s: %w", m.name, err)
	}

	m.out.Success("Created cluster %s", m.name)
	return nil
}

// readyWait returns how long kind should wait for the control plane
func (m *Manager) readyWait(kindCfg *v1alpha4.Cluster) time.Duration {
	if kindCfg.Networking.DisableDefaultCNI && m.waitForReady > 0 {
		m.out.Debugf("skipping wait_for_ready: nodes cannot become Ready before a CNI is installed")
		return 0
	}
	return m.waitForReady
}

// Kubeconfig returns the external kubeconfig for the cluster
func (m *Manager) Kubeconfig(ctx context.Context) ([]byte, error) {
	kubeconfig, err := m.provider.KubeConfig(m.name, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get kubeconfig for cluster %s: %w", m.name, err)
	}
	if kubeconfig == "" {
		return nil, fmt.Errorf("kubeconfig for cluster %s is empty", m.name)
	}
	return []byte(kubeconfig), nil
}

// LoadKindConfig reads and parses a Kind cluster config file.
// It returns the parsed config and the raw bytes passed on to Kind.
func LoadKindConfig(path string) (*v1alpha4.Cluster, []byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("kind config not found: %s", path)
		}
		return nil, nil, fmt.Errorf("failed to read kind config %s: %w", path, err)
	}

	cfg := &v1alpha4.Cluster{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse kind config %s: %w", path, err)
	}

	if cfg.Kind != "Cluster" {
		return nil, nil, fmt.Errorf("invalid kind config %s: kind must be Cluster, got %q", path, cfg.Kind)
	}
	if cfg.APIVersion != kindAPIVersion {
		return nil, nil, fmt.Errorf("invalid kind config %s: apiVersion must be %s, got %q", path, kindAPIVersion, cfg.APIVersion)
	}

	return cfg, raw, nil
}

func nodeCount(cfg *v1alpha4.Cluster) int {
	// Kind creates a single control-plane node when none are listed
	if len(cfg.Nodes) == 0 {
		return 1
	}
	return len(cfg.Nodes)
}
