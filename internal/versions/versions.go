// Package versions resolves the latest release versions of the tools and
// charts devcluster installs, falling back to pinned defaults.
package versions

import (
	"context"
	"fmt"
	"strings"

	"github.com/blang/semver/v4"
)

// Format selects how an endpoint response is decoded
type Format int

const (
	// FormatGitHubRelease decodes a GitHub "latest release" JSON document
	FormatGitHubRelease Format = iota
	// FormatPlainText reads the first line of a plain-text body
	FormatPlainText
)

// Origin records where a resolved version came from
type Origin string

const (
	OriginRemote  Origin = "remote"
	OriginDefault Origin = "default"
)

// Tool names
const (
	Kind    = "kind"
	Kubectl = "kubectl"
	Helm    = "helm"
	Cilium  = "cilium"
)

// Source describes one release-metadata endpoint and its fallback
type Source struct {
	Name     string
	URL      string
	Format   Format
	Fallback string
	// StripPrefix removes the leading "v" from the result (Helm chart versions)
	StripPrefix bool
}

// Resolved is the outcome of resolving a single source
type Resolved struct {
	Name    string
	Version string
	Origin  Origin
	// Err is the lookup failure that caused a fallback, if any
	Err error
}

// Set is the full set of versions used by a bootstrap run
type Set struct {
	Kind    Resolved
	Kubectl Resolved
	Helm    Resolved
	Cilium  Resolved
}

// All returns the resolved entries in install order
func (s *Set) All() []Resolved {
	return []Resolved{s.Kind, s.Helm, s.Kubectl, s.Cilium}
}

// Fetcher retrieves the raw version string for a source
type Fetcher interface {
	Fetch(ctx context.Context, src Source) (string, error)
}

// Resolver resolves versions for a fixed list of sources
type Resolver struct {
	fetcher Fetcher
	sources map[string]Source
}

// NewResolver creates a resolver over the given sources
func NewResolver(fetcher Fetcher, sources ...Source) *Resolver {
	m := make(map[string]Source, len(sources))
	for _, src := range sources {
		m[src.Name] = src
	}
	return &Resolver{fetcher: fetcher, sources: m}
}

// Resolve looks up a single source by name. Lookup failures are never
// returned as errors; they produce the fallback with Origin set to default.
func (r *Resolver) Resolve(ctx context.Context, name string) Resolved {
	src, ok := r.sources[name]
	if !ok {
		return Resolved{Name: name, Origin: OriginDefault, Err: fmt.Errorf("no source configured for %s", name)}
	}

	fallback := Resolved{Name: name, Version: Normalize(src.Fallback, src.StripPrefix), Origin: OriginDefault}

	raw, err := r.fetcher.Fetch(ctx, src)
	if err != nil {
		fallback.Err = err
		return fallback
	}

	version, err := validate(raw)
	if err != nil {
		fallback.Err = err
		return fallback
	}

	return Resolved{Name: name, Version: Normalize(version, src.StripPrefix), Origin: OriginRemote}
}

// ResolveAll resolves kind, kubectl, helm and cilium in sequence
func (r *Resolver) ResolveAll(ctx context.Context) *Set {
	return &Set{
		Kind:    r.Resolve(ctx, Kind),
		Kubectl: r.Resolve(ctx, Kubectl),
		Helm:    r.Resolve(ctx, Helm),
		Cilium:  r.Resolve(ctx, Cilium),
	}
}

// validate rejects empty or non-semver responses
func validate(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", fmt.Errorf("empty version")
	}
	if _, err := semver.ParseTolerant(v); err != nil {
		return "", fmt.Errorf("invalid version %q: %w", v, err)
	}
	return v, nil
}

// Normalize returns version with a leading "v", or without one when strip is set
func Normalize(version string, strip bool) string {
	v := strings.TrimPrefix(strings.TrimSpace(version), "v")
	if strip || v == "" {
		return v
	}
	return "v" + v
}
