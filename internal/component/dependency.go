package component

import (
	"errors"
	"fmt"
)

// ErrCircularDependency is returned when components depend on each other in a cycle
var ErrCircularDependency = errors.New("circular dependency")

// ResolveInstallationOrder returns the requested components and all of their
// dependencies, each dependency before its dependents. Components without an
// ordering constraint keep the order they were requested in.
func ResolveInstallationOrder(registry *Registry, componentNames []string) ([]string, error) {
	order := make([]string, 0, len(componentNames))
	visited := make(map[string]bool)
	visiting := make(map[string]bool)

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		if visiting[name] {
			return fmt.Errorf("%w: %v", ErrCircularDependency, append(path, name))
		}
		if visited[name] {
			return nil
		}

		comp := registry.Get(name)
		if comp == nil {
			if len(path) > 0 {
				return fmt.Errorf("component %q depends on %q: %w", path[len(path)-1], name, ErrComponentNotFound(name))
			}
			return ErrComponentNotFound(name)
		}

		visiting[name] = true
		for _, dep := range comp.Dependencies() {
			if err := visit(dep, append(path, name)); err != nil {
				return err
			}
		}
		visiting[name] = false

		visited[name] = true
		order = append(order, name)
		return nil
	}

	for _, name := range componentNames {
		if err := visit(name, nil); err != nil {
			return nil, err
		}
	}

	return order, nil
}
