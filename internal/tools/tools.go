// Package tools installs the kind, helm and kubectl command-line tools.
package tools

import (
	"fmt"
	"runtime"
)

// Platform identifies the target operating system and architecture
type Platform struct {
	OS   string
	Arch string
}

// CurrentPlatform returns the platform devcluster is running on
func CurrentPlatform() Platform {
	return Platform{OS: runtime.GOOS, Arch: runtime.GOARCH}
}

func (p Platform) String() string {
	return p.OS + "/" + p.Arch
}

// Tool describes where a CLI tool is published
type Tool struct {
	Name    string
	BaseURL string
	// ChecksumSuffix is appended to the download URL to get the SHA-256 file
	ChecksumSuffix string

	url         func(base, version string, p Platform) string
	archivePath func(p Platform) string
}

// DownloadURL returns the artifact URL for version on platform p
func (t Tool) DownloadURL(version string, p Platform) string {
	return t.url(t.BaseURL, version, p)
}

// ChecksumURL returns the URL of the published SHA-256 for the artifact
func (t Tool) ChecksumURL(version string, p Platform) string {
	return t.DownloadURL(version, p) + t.ChecksumSuffix
}

// ArchivePath returns the binary's path inside a .tar.gz artifact, or "" for a bare binary
func (t Tool) ArchivePath(p Platform) string {
	if t.archivePath == nil {
		return ""
	}
	return t.archivePath(p)
}

// WithBaseURL returns a copy of t that downloads from base
func (t Tool) WithBaseURL(base string) Tool {
	t.BaseURL = base
	return t
}

var (
	// Kind is published as a bare binary per platform
	Kind = Tool{
		Name:           "kind",
		BaseURL:        "https://kind.sigs.k8s.io/dl",
		ChecksumSuffix: ".sha256sum",
		url: func(base, version string, p Platform) string {
			return fmt.Sprintf("%s/%s/kind-%s-%s", base, version, p.OS, p.Arch)
		},
	}

	// Kubectl is published as a bare binary per platform
	Kubectl = Tool{
		Name:           "kubectl",
		BaseURL:        "https://dl.k8s.io/release",
		ChecksumSuffix: ".sha256",
		url: func(base, version string, p Platform) string {
			return fmt.Sprintf("%s/%s/bin/%s/%s/kubectl", base, version, p.OS, p.Arch)
		},
	}

	// Helm is published as a tarball with the binary under <os>-<arch>/
	Helm = Tool{
		Name:           "helm",
		BaseURL:        "https://get.helm.sh",
		ChecksumSuffix: ".sha256sum",
		url: func(base, version string, p Platform) string {
			return fmt.Sprintf("%s/helm-%s-%s-%s.tar.gz", base, version, p.OS, p.Arch)
		},
		archivePath: func(p Platform) string {
			return fmt.Sprintf("%s-%s/helm", p.OS, p.Arch)
		},
	}
)

// All returns the tools in install order
func All() []Tool {
	return []Tool{Kind, Helm, Kubectl}
}
