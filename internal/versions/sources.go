package versions

import "github.com/catalystcommunity/devcluster/v1/internal/config"

// SourcesFromConfig builds the four release-metadata sources from cfg
func SourcesFromConfig(cfg *config.Config) []Source {
	return []Source{
		{Name: Kind, URL: cfg.Endpoints.Kind, Format: FormatGitHubRelease, Fallback: cfg.Versions.Kind},
		{Name: Kubectl, URL: cfg.Endpoints.Kubectl, Format: FormatPlainText, Fallback: cfg.Versions.Kubectl},
		{Name: Helm, URL: cfg.Endpoints.Helm, Format: FormatGitHubRelease, Fallback: cfg.Versions.Helm},
		{Name: Cilium, URL: cfg.Endpoints.Cilium, Format: FormatGitHubRelease, Fallback: cfg.Versions.Cilium, StripPrefix: true},
	}
}
