package cilium

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/catalystcommunity/devcluster/v1/internal/component"
	"github.com/catalystcommunity/devcluster/v1/internal/config"
	"github.com/catalystcommunity/devcluster/v1/internal/helm"
	"github.com/catalystcommunity/devcluster/v1/internal/k8s"
	"github.com/catalystcommunity/devcluster/v1/internal/output"
	"github.com/catalystcommunity/devcluster/v1/internal/shell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// mockHelmClient records Helm calls
type mockHelmClient struct {
	addRepoErr error
	installErr error
	release    *helm.Release
	releaseErr error

	repos    []helm.RepoAddOptions
	installs []helm.InstallOptions
}

func (m *mockHelmClient) AddRepo(ctx context.Context, opts helm.RepoAddOptions) error {
	m.repos = append(m.repos, opts)
	return m.addRepoErr
}

func (m *mockHelmClient) Install(ctx context.Context, opts helm.InstallOptions) error {
	m.installs = append(m.installs, opts)
	return m.installErr
}

func (m *mockHelmClient) GetRelease(ctx context.Context, namespace, name string) (*helm.Release, error) {
	return m.release, m.releaseErr
}

// scriptedChecker fails until readyAfter checks have been made
type scriptedChecker struct {
	readyAfter int
	calls      int
}

func (s *scriptedChecker) Check(ctx context.Context) error {
	s.calls++
	if s.readyAfter > 0 && s.calls >= s.readyAfter {
		return nil
	}
	return errors.New("daemonset cilium: 0/1 pods ready")
}

// recordingSleep captures requested delays without sleeping
type recordingSleep struct {
	delays []time.Duration
}

func (r *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func newPrinter() (*output.Printer, *bytes.Buffer) {
	var buf bytes.Buffer
	return output.New(&buf), &buf
}

func TestBuildValues(t *testing.T) {
	values := BuildValues(nil)

	assert.Equal(t, "partial", values["kubeProxyReplacement"])
	assert.Equal(t, map[string]interface{}{"enabled": false}, values["hostServices"])
	assert.Equal(t, map[string]interface{}{"enabled": true}, values["externalIPs"])
	assert.Equal(t, map[string]interface{}{"enabled": true}, values["nodePort"])
	assert.Equal(t, map[string]interface{}{"enabled": true}, values["hostPort"])
	assert.Equal(t, map[string]interface{}{"masquerade": false}, values["bpf"])
	assert.Equal(t, map[string]interface{}{"pullPolicy": "IfNotPresent"}, values["image"])
	assert.Equal(t, map[string]interface{}{"mode": "kubernetes"}, values["ipam"])
}

func TestBuildValues_UserValuesMergeUnderneath(t *testing.T) {
	user := map[string]interface{}{
		"kubeProxyReplacement": "true",
		"image": map[string]interface{}{
			"pullPolicy": "Always",
			"repository": "mirror.local/cilium",
		},
		"operator": map[string]interface{}{
			"replicas": 1,
		},
	}

	values := BuildValues(user)

	assert.Equal(t, "partial", values["kubeProxyReplacement"])
	assert.Equal(t, map[string]interface{}{
		"pullPolicy": "IfNotPresent",
		"repository": "mirror.local/cilium",
	}, values["image"])
	assert.Equal(t, map[string]interface{}{"replicas": 1}, values["operator"])

	// caller's map is untouched
	assert.Equal(t, "Always", user["image"].(map[string]interface{})["pullPolicy"])
}

func TestWaitReady_ExhaustsAfterTenAttempts(t *testing.T) {
	checker := &scriptedChecker{}
	sleeper := &recordingSleep{}
	out, buf := newPrinter()

	err := WaitReady(context.Background(), checker, out, Policy{
		MaxAttempts: 10,
		Step:        20 * time.Second,
		Sleep:       sleeper.sleep,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, 10, checker.calls)

	want := make([]time.Duration, 0, 10)
	for attempt := 1; attempt <= 10; attempt++ {
		want = append(want, time.Duration(attempt)*20*time.Second)
	}
	assert.Equal(t, want, sleeper.delays)
	assert.Equal(t, 200*time.Second, sleeper.delays[9])

	assert.Contains(t, buf.String(), "attempt 1/10")
	assert.Contains(t, buf.String(), "attempt 10/10")
	assert.Contains(t, buf.String(), "retrying in 3m20s")
}

func TestWaitReady_SucceedsOnThirdAttempt(t *testing.T) {
	checker := &scriptedChecker{readyAfter: 3}
	sleeper := &recordingSleep{}
	out, buf := newPrinter()

	err := WaitReady(context.Background(), checker, out, Policy{
		MaxAttempts: 10,
		Step:        20 * time.Second,
		Sleep:       sleeper.sleep,
	})

	require.NoError(t, err)
	assert.Equal(t, 3, checker.calls)
	assert.Equal(t, []time.Duration{20 * time.Second, 40 * time.Second}, sleeper.delays)
	assert.Contains(t, buf.String(), "Cilium is ready")
}

func TestWaitReady_ZeroPolicyUsesDefaults(t *testing.T) {
	checker := &scriptedChecker{}
	sleeper := &recordingSleep{}
	out, _ := newPrinter()

	err := WaitReady(context.Background(), checker, out, Policy{Sleep: sleeper.sleep})
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, 10, checker.calls)
	assert.Equal(t, 20*time.Second, sleeper.delays[0])
}

func TestWaitReady_Cancelled(t *testing.T) {
	checker := &scriptedChecker{}
	out, _ := newPrinter()
	ctx, cancel := context.WithCancel(context.Background())

	err := WaitReady(ctx, checker, out, Policy{
		MaxAttempts: 10,
		Step:        time.Second,
		Sleep: func(ctx context.Context, d time.Duration) error {
			cancel()
			return ctx.Err()
		},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrNotReady)
	assert.Equal(t, 1, checker.calls)
}

func TestInstall(t *testing.T) {
	helmClient := &mockHelmClient{}
	checker := &scriptedChecker{readyAfter: 1}
	out, _ := newPrinter()

	err := Install(context.Background(), helmClient, checker, out, "1.17.2", nil, DefaultPolicy())
	require.NoError(t, err)

	require.Len(t, helmClient.repos, 1)
	assert.Equal(t, "cilium", helmClient.repos[0].Name)
	assert.Equal(t, "https://helm.cilium.io/", helmClient.repos[0].URL)

	require.Len(t, helmClient.installs, 1)
	opts := helmClient.installs[0]
	assert.Equal(t, "cilium", opts.ReleaseName)
	assert.Equal(t, "kube-system", opts.Namespace)
	assert.Equal(t, "cilium/cilium", opts.Chart)
	assert.Equal(t, "1.17.2", opts.Version)
	assert.Equal(t, "partial", opts.Values["kubeProxyReplacement"])
	assert.False(t, opts.Wait)

	assert.Equal(t, 1, checker.calls)
}

func TestInstall_WarnsWhenChartIgnoresLegacyValues(t *testing.T) {
	tests := []struct {
		version string
		warn    bool
	}{
		{version: "1.14.19", warn: false},
		{version: "1.15.0", warn: true},
		{version: "v1.17.2", warn: true},
		{version: "1.16.0-rc.1", warn: true},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			out, buf := newPrinter()
			err := Install(context.Background(), &mockHelmClient{}, &scriptedChecker{readyAfter: 1}, out, tt.version, nil, DefaultPolicy())
			require.NoError(t, err)
			if tt.warn {
				assert.Contains(t, buf.String(), "ignores kubeProxyReplacement=partial")
			} else {
				assert.NotContains(t, buf.String(), "ignores kubeProxyReplacement")
			}
		})
	}
}

func TestLegacyValuesIgnored(t *testing.T) {
	assert.False(t, LegacyValuesIgnored("1.14.0"))
	assert.True(t, LegacyValuesIgnored("1.15.0"))
	assert.True(t, LegacyValuesIgnored("2.0.0"))
	assert.False(t, LegacyValuesIgnored("latest"))
}

func TestInstall_Errors(t *testing.T) {
	out, _ := newPrinter()
	ctx := context.Background()

	err := Install(ctx, nil, &scriptedChecker{}, out, "1.17.2", nil, DefaultPolicy())
	assert.ErrorContains(t, err, "helm client cannot be nil")

	err = Install(ctx, &mockHelmClient{}, nil, out, "1.17.2", nil, DefaultPolicy())
	assert.ErrorContains(t, err, "status checker cannot be nil")

	helmClient := &mockHelmClient{addRepoErr: errors.New("no network")}
	err = Install(ctx, helmClient, &scriptedChecker{}, out, "1.17.2", nil, DefaultPolicy())
	assert.ErrorContains(t, err, "failed to add helm repository")
	assert.Empty(t, helmClient.installs)

	checker := &scriptedChecker{}
	helmClient = &mockHelmClient{installErr: errors.New("chart not found")}
	err = Install(ctx, helmClient, checker, out, "1.17.2", nil, DefaultPolicy())
	assert.ErrorContains(t, err, "failed to install cilium")
	assert.Zero(t, checker.calls)
}

// mockK8sClient returns fixed workload status
type mockK8sClient struct {
	ds     *k8s.DaemonSetStatus
	deploy *k8s.DeploymentStatus
	err    error
}

func (m *mockK8sClient) GetDaemonSetStatus(ctx context.Context, namespace, name string) (*k8s.DaemonSetStatus, error) {
	return m.ds, m.err
}

func (m *mockK8sClient) GetDeploymentStatus(ctx context.Context, namespace, name string) (*k8s.DeploymentStatus, error) {
	return m.deploy, m.err
}

func TestAPIChecker(t *testing.T) {
	tests := []struct {
		name    string
		client  *mockK8sClient
		wantErr string
	}{
		{
			name: "healthy",
			client: &mockK8sClient{
				ds:     &k8s.DaemonSetStatus{Desired: 3, Ready: 3},
				deploy: &k8s.DeploymentStatus{Replicas: 2, Available: 2},
			},
		},
		{
			name: "agents not ready",
			client: &mockK8sClient{
				ds:     &k8s.DaemonSetStatus{Desired: 3, Ready: 1},
				deploy: &k8s.DeploymentStatus{Replicas: 2, Available: 2},
			},
			wantErr: "1/3 pods ready",
		},
		{
			name: "nothing scheduled",
			client: &mockK8sClient{
				ds:     &k8s.DaemonSetStatus{},
				deploy: &k8s.DeploymentStatus{Replicas: 2, Available: 2},
			},
			wantErr: "0/0 pods ready",
		},
		{
			name: "operator unavailable",
			client: &mockK8sClient{
				ds:     &k8s.DaemonSetStatus{Desired: 1, Ready: 1},
				deploy: &k8s.DeploymentStatus{Replicas: 2, Available: 1},
			},
			wantErr: "1/2 replicas available",
		},
		{
			name:    "api error",
			client:  &mockK8sClient{err: errors.New("connection refused")},
			wantErr: "connection refused",
		},
		{
			name: "agent daemonset missing",
			client: &mockK8sClient{
				err: fmt.Errorf("failed to get daemonset: %w", apierrors.NewNotFound(schema.GroupResource{Group: "apps", Resource: "daemonsets"}, "cilium")),
			},
			wantErr: "daemonset kube-system/cilium not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAPIChecker(tt.client).Check(context.Background())
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// fakeRunner returns a fixed result for every command
type fakeRunner struct {
	result *shell.Result
	calls  [][]string
}

func (f *fakeRunner) Exec(ctx context.Context, name string, args ...string) (*shell.Result, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.result, nil
}

func TestCLIChecker(t *testing.T) {
	runner := &fakeRunner{result: &shell.Result{ExitCode: 0}}
	require.NoError(t, NewCLIChecker(runner).Check(context.Background()))
	assert.Equal(t, [][]string{{"cilium", "status"}}, runner.calls)

	runner = &fakeRunner{result: &shell.Result{ExitCode: 1, Stderr: "cilium-operator: 0/1 available"}}
	err := NewCLIChecker(runner).Check(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0/1 available")
}

func TestNewStatusChecker(t *testing.T) {
	client := &mockK8sClient{}
	runner := &fakeRunner{}

	c, err := NewStatusChecker(config.StatusCheckAPI, client, runner)
	require.NoError(t, err)
	assert.IsType(t, &APIChecker{}, c)

	c, err = NewStatusChecker("", client, nil)
	require.NoError(t, err)
	assert.IsType(t, &APIChecker{}, c)

	c, err = NewStatusChecker(config.StatusCheckCLI, nil, runner)
	require.NoError(t, err)
	assert.IsType(t, &CLIChecker{}, c)

	_, err = NewStatusChecker("grpc", client, runner)
	assert.ErrorContains(t, err, "unknown status check mode")

	_, err = NewStatusChecker(config.StatusCheckAPI, nil, runner)
	assert.Error(t, err)
}

func TestComponent(t *testing.T) {
	out, _ := newPrinter()
	c := NewComponent(&mockHelmClient{}, &scriptedChecker{readyAfter: 1}, out, DefaultPolicy())

	assert.Equal(t, "cilium", c.Name())
	assert.Empty(t, c.Dependencies())

	err := c.Install(context.Background(), component.ComponentConfig{})
	assert.ErrorContains(t, err, "chart version is required")

	require.NoError(t, c.Install(context.Background(), component.ComponentConfig{Version: "1.17.2"}))
}

func TestComponent_Status(t *testing.T) {
	out, _ := newPrinter()
	deployed := &helm.Release{Name: "cilium", Status: "deployed", Version: "1.17.2"}

	tests := []struct {
		name        string
		helm        *mockHelmClient
		checker     StatusChecker
		installed   bool
		healthy     bool
		wantMessage string
	}{
		{
			name:        "not installed",
			helm:        &mockHelmClient{releaseErr: helm.ErrReleaseNotFound},
			checker:     &scriptedChecker{readyAfter: 1},
			wantMessage: "cilium release not found",
		},
		{
			name:        "helm error",
			helm:        &mockHelmClient{releaseErr: errors.New("unreachable")},
			checker:     &scriptedChecker{readyAfter: 1},
			wantMessage: "unreachable",
		},
		{
			name:        "failed release",
			helm:        &mockHelmClient{release: &helm.Release{Name: "cilium", Status: "failed"}},
			checker:     &scriptedChecker{readyAfter: 1},
			installed:   true,
			wantMessage: "release status: failed",
		},
		{
			name:        "deployed but unhealthy",
			helm:        &mockHelmClient{release: deployed},
			checker:     &scriptedChecker{},
			installed:   true,
			wantMessage: "0/1 pods ready",
		},
		{
			name:        "healthy",
			helm:        &mockHelmClient{release: deployed},
			checker:     &scriptedChecker{readyAfter: 1},
			installed:   true,
			healthy:     true,
			wantMessage: "agent and operator ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := NewComponent(tt.helm, tt.checker, out, DefaultPolicy()).Status(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.installed, status.Installed)
			assert.Equal(t, tt.healthy, status.Healthy)
			assert.Contains(t, status.Message, tt.wantMessage)
		})
	}
}
