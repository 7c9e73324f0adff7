package config

import "time"

// Fallback versions used when the release endpoints cannot be reached
const (
	DefaultKindVersion    = "v0.27.0"
	DefaultKubectlVersion = "v1.32.3"
	DefaultHelmVersion    = "v3.17.2"
	DefaultCiliumVersion  = "1.17.2"
)

// Release-metadata endpoints
const (
	DefaultKindEndpoint    = "https://api.github.com/repos/kubernetes-sigs/kind/releases/latest"
	DefaultKubectlEndpoint = "https://dl.k8s.io/release/stable.txt"
	DefaultHelmEndpoint    = "https://api.github.com/repos/helm/helm/releases/latest"
	DefaultCiliumEndpoint  = "https://api.github.com/repos/cilium/cilium/releases/latest"
)

// DefaultWaitForReady is zero: nodes only become Ready once Cilium is installed
const DefaultWaitForReady time.Duration = 0

const (
	DefaultClusterName       = "devcluster"
	DefaultKindConfig        = "kind-config.yaml"
	DefaultInstallDir        = "/usr/local/bin"
	DefaultCiliumMaxAttempts = 10
	DefaultCiliumBackoffStep = 20 * time.Second
	DefaultHubbleWaitTimeout = 300 * time.Second
)

// Default returns a Config populated with the built-in defaults
func Default() *Config {
	return &Config{
		Cluster: ClusterConfig{
			Name:         DefaultClusterName,
			KindConfig:   DefaultKindConfig,
			WaitForReady: DefaultWaitForReady,
		},
		Tools: ToolsConfig{
			InstallDir: DefaultInstallDir,
		},
		Versions: VersionsConfig{
			Kind:    DefaultKindVersion,
			Kubectl: DefaultKubectlVersion,
			Helm:    DefaultHelmVersion,
			Cilium:  DefaultCiliumVersion,
		},
		Endpoints: EndpointsConfig{
			Kind:    DefaultKindEndpoint,
			Kubectl: DefaultKubectlEndpoint,
			Helm:    DefaultHelmEndpoint,
			Cilium:  DefaultCiliumEndpoint,
		},
		Cilium: CiliumConfig{
			MaxAttempts: DefaultCiliumMaxAttempts,
			BackoffStep: DefaultCiliumBackoffStep,
			StatusCheck: StatusCheckAPI,
		},
		Hubble: HubbleConfig{
			WaitTimeout: DefaultHubbleWaitTimeout,
		},
	}
}
