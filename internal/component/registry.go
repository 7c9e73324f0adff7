package component

import (
	"fmt"
	"sort"
)

// Registry holds the components available to a run
type Registry struct {
	components map[string]Component
}

// NewRegistry creates a registry with the given components
func NewRegistry(components ...Component) (*Registry, error) {
	r := &Registry{components: make(map[string]Component)}
	for _, c := range components {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a component to the registry
// Returns an error if a component with the same name already exists
func (r *Registry) Register(component Component) error {
	name := component.Name()
	if _, exists := r.components[name]; exists {
		return fmt.Errorf("component %q is already registered", name)
	}

	r.components[name] = component
	return nil
}

// Get retrieves a component by name, or nil
func (r *Registry) Get(name string) Component {
	return r.components[name]
}

// Has checks if a component is registered
func (r *Registry) Has(name string) bool {
	_, exists := r.components[name]
	return exists
}

// List returns all registered component names, sorted
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
