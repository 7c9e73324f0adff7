package helm

import (
	"errors"
	"time"
)

// ErrReleaseNotFound is returned when a release does not exist in the namespace
var ErrReleaseNotFound = errors.New("release not found")

// Release is the subset of a Helm release devcluster reports on
type Release struct {
	Name       string
	Namespace  string
	Revision   int
	Status     string
	Chart      string
	Version    string
	AppVersion string
	Updated    time.Time
}

// Deployed reports whether the release is in the deployed state
func (r *Release) Deployed() bool {
	return r.Status == "deployed"
}

// InstallOptions describes a chart install. Chart is a "repo/chart" reference.
type InstallOptions struct {
	ReleaseName string
	Namespace   string
	Chart       string
	Version     string
	Values      map[string]interface{}
	Wait        bool
	Timeout     time.Duration
}

// UpgradeOptions describes an upgrade of an existing release
type UpgradeOptions struct {
	ReleaseName string
	Namespace   string
	Chart       string
	Version     string
	Values      map[string]interface{}
	// ReuseValues merges Values over the values of the current release
	ReuseValues bool
	Wait        bool
	Timeout     time.Duration
}

// RepoAddOptions names a chart repository
type RepoAddOptions struct {
	Name string
	URL  string
	// ForceUpdate replaces an existing entry that points elsewhere
	ForceUpdate bool
}
