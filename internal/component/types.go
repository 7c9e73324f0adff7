package component

import (
	"context"
	"fmt"
)

// Component is something devcluster installs into the cluster (Cilium, Hubble)
type Component interface {
	// Name returns the unique identifier for this component
	Name() string

	// Install installs the component with the given configuration
	Install(ctx context.Context, cfg ComponentConfig) error

	// Status queries the current status of the component
	Status(ctx context.Context) (*ComponentStatus, error)

	// Dependencies returns the names of components that must be installed first
	Dependencies() []string
}

// ComponentStatus represents the runtime status of a component
type ComponentStatus struct {
	// Installed indicates whether the component is installed
	Installed bool

	// Version is the currently installed version (empty if not installed)
	Version string

	// Healthy indicates whether the component is functioning correctly
	Healthy bool

	// Message provides additional status information
	Message string
}

// ComponentConfig carries the per-run install settings for a component
type ComponentConfig struct {
	// Version is the chart version to install, when the component has one
	Version string

	// Values are user-supplied Helm values
	Values map[string]interface{}
}

// ErrComponentNotFound returns an error indicating that a component was not found
func ErrComponentNotFound(name string) error {
	return fmt.Errorf("component %q not found in registry", name)
}
