// Package cilium installs the Cilium CNI with Helm and polls it until ready.
package cilium

import (
	"context"
	"errors"
	"time"

	"github.com/catalystcommunity/devcluster/v1/internal/helm"
	"github.com/catalystcommunity/devcluster/v1/internal/k8s"
)

const (
	ComponentName = "cilium"
	ReleaseName   = "cilium"
	Namespace     = "kube-system"
	RepoName      = "cilium"
	RepoURL       = "https://helm.cilium.io/"
	Chart         = "cilium/cilium"

	DaemonSetName  = "cilium"
	OperatorName   = "cilium-operator"
	installTimeout = 10 * time.Minute
)

// ErrNotReady is returned when Cilium is still unhealthy after the last poll
var ErrNotReady = errors.New("cilium did not become ready")

// HelmClient defines the Helm operations needed for Cilium
type HelmClient interface {
	AddRepo(ctx context.Context, opts helm.RepoAddOptions) error
	Install(ctx context.Context, opts helm.InstallOptions) error
	GetRelease(ctx context.Context, namespace, name string) (*helm.Release, error)
}

// K8sClient defines the Kubernetes operations needed to check Cilium health
type K8sClient interface {
	GetDaemonSetStatus(ctx context.Context, namespace, name string) (*k8s.DaemonSetStatus, error)
	GetDeploymentStatus(ctx context.Context, namespace, name string) (*k8s.DeploymentStatus, error)
}

// Policy controls the readiness poll after install
type Policy struct {
	MaxAttempts int
	// Step is the delay unit; failed attempt n is followed by n*Step
	Step time.Duration
	// Sleep replaces the real sleep in tests
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultPolicy polls 10 times with a 20s step
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 10, Step: 20 * time.Second}
}
