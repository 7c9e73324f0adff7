package hubble

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/catalystcommunity/devcluster/v1/internal/component"
	"github.com/catalystcommunity/devcluster/v1/internal/helm"
	"github.com/catalystcommunity/devcluster/v1/internal/k8s"
	"github.com/catalystcommunity/devcluster/v1/internal/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockHelmClient struct {
	upgradeErr error
	release    *helm.Release
	releaseErr error
	upgrades   []helm.UpgradeOptions
}

func (m *mockHelmClient) Upgrade(ctx context.Context, opts helm.UpgradeOptions) error {
	m.upgrades = append(m.upgrades, opts)
	return m.upgradeErr
}

func (m *mockHelmClient) GetRelease(ctx context.Context, namespace, name string) (*helm.Release, error) {
	return m.release, m.releaseErr
}

type waitCall struct {
	namespace string
	selector  string
	timeout   time.Duration
}

type mockK8sClient struct {
	pods    []*k8s.Pod
	podsErr error
	waitErr error
	waits   []waitCall
}

func (m *mockK8sClient) GetPodsBySelector(ctx context.Context, namespace, selector string) ([]*k8s.Pod, error) {
	return m.pods, m.podsErr
}

func (m *mockK8sClient) WaitForPodsReady(ctx context.Context, namespace, selector string, timeout time.Duration) error {
	m.waits = append(m.waits, waitCall{namespace, selector, timeout})
	return m.waitErr
}

type fixedChecker struct {
	err   error
	calls int
}

func (f *fixedChecker) Check(ctx context.Context) error {
	f.calls++
	return f.err
}

func newComponent(h *mockHelmClient, k *mockK8sClient, c *fixedChecker, timeout time.Duration) (*Component, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewComponent(h, k, c, output.New(&buf), timeout), &buf
}

func TestInstall(t *testing.T) {
	h := &mockHelmClient{}
	k := &mockK8sClient{}
	checker := &fixedChecker{}
	c, _ := newComponent(h, k, checker, 0)

	err := c.Install(context.Background(), component.ComponentConfig{Version: "1.17.2"})
	require.NoError(t, err)

	assert.Equal(t, 1, checker.calls)

	require.Len(t, h.upgrades, 1)
	opts := h.upgrades[0]
	assert.Equal(t, "cilium", opts.ReleaseName)
	assert.Equal(t, "kube-system", opts.Namespace)
	assert.Equal(t, "cilium/cilium", opts.Chart)
	assert.Equal(t, "1.17.2", opts.Version)
	assert.True(t, opts.ReuseValues)
	assert.Equal(t, Values(), opts.Values)

	require.Len(t, k.waits, 1)
	assert.Equal(t, waitCall{"kube-system", "k8s-app=hubble-relay", 300 * time.Second}, k.waits[0])
}

func TestInstall_SkippedWhenCiliumUnhealthy(t *testing.T) {
	h := &mockHelmClient{}
	k := &mockK8sClient{}
	checker := &fixedChecker{err: errors.New("daemonset cilium: 1/3 pods ready")}
	c, buf := newComponent(h, k, checker, 0)

	err := c.Install(context.Background(), component.ComponentConfig{Version: "1.17.2"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCiliumUnhealthy)
	assert.Contains(t, err.Error(), "1/3 pods ready")

	assert.Equal(t, 1, checker.calls, "gate is checked once, not retried")
	assert.Empty(t, h.upgrades)
	assert.Empty(t, k.waits)
	assert.Contains(t, buf.String(), "Cilium status check failed")
}

func TestInstall_UpgradeFails(t *testing.T) {
	h := &mockHelmClient{upgradeErr: errors.New("release locked")}
	k := &mockK8sClient{}
	c, _ := newComponent(h, k, &fixedChecker{}, 0)

	err := c.Install(context.Background(), component.ComponentConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to enable hubble")
	assert.Empty(t, k.waits)
}

func TestInstall_WaitTimesOut(t *testing.T) {
	h := &mockHelmClient{}
	k := &mockK8sClient{waitErr: context.DeadlineExceeded}
	c, _ := newComponent(h, k, &fixedChecker{}, time.Minute)

	err := c.Install(context.Background(), component.ComponentConfig{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, time.Minute, k.waits[0].timeout)
}

func TestComponentMetadata(t *testing.T) {
	c, _ := newComponent(&mockHelmClient{}, &mockK8sClient{}, &fixedChecker{}, 0)
	assert.Equal(t, "hubble", c.Name())
	assert.Equal(t, []string{"cilium"}, c.Dependencies())
}

func TestStatus(t *testing.T) {
	deployed := &helm.Release{Name: "cilium", Status: "deployed", Version: "1.17.2"}

	tests := []struct {
		name        string
		helm        *mockHelmClient
		k8s         *mockK8sClient
		installed   bool
		healthy     bool
		wantMessage string
	}{
		{
			name:        "no cilium release",
			helm:        &mockHelmClient{releaseErr: helm.ErrReleaseNotFound},
			k8s:         &mockK8sClient{},
			wantMessage: "cilium release not found",
		},
		{
			name:        "relay not deployed",
			helm:        &mockHelmClient{release: deployed},
			k8s:         &mockK8sClient{},
			wantMessage: "hubble relay not deployed",
		},
		{
			name:        "pod listing fails",
			helm:        &mockHelmClient{release: deployed},
			k8s:         &mockK8sClient{podsErr: errors.New("forbidden")},
			wantMessage: "forbidden",
		},
		{
			name:        "relay not ready",
			helm:        &mockHelmClient{release: deployed},
			k8s:         &mockK8sClient{pods: []*k8s.Pod{{Name: "hubble-relay-1", Ready: false}}},
			installed:   true,
			wantMessage: "0/1 relay pods ready",
		},
		{
			name:        "relay stuck pulling",
			helm:        &mockHelmClient{release: deployed},
			k8s:         &mockK8sClient{pods: []*k8s.Pod{{Name: "hubble-relay-1", Reason: "ImagePullBackOff"}}},
			installed:   true,
			wantMessage: "hubble-relay-1 ImagePullBackOff",
		},
		{
			name:        "relay ready",
			helm:        &mockHelmClient{release: deployed},
			k8s:         &mockK8sClient{pods: []*k8s.Pod{{Name: "hubble-relay-1", Ready: true}}},
			installed:   true,
			healthy:     true,
			wantMessage: "1/1 relay pods ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newComponent(tt.helm, tt.k8s, &fixedChecker{}, 0)
			status, err := c.Status(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.installed, status.Installed)
			assert.Equal(t, tt.healthy, status.Healthy)
			assert.Contains(t, status.Message, tt.wantMessage)
		})
	}
}
