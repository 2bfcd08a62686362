package transport

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-fmc/core"
)

type AdapterFactory func(config core.TransportConfig) (core.TransportAdapter, error)

// Registry maps a configured transport kind to the factory that builds it.
type Registry struct {
	factories map[string]AdapterFactory
}

func NewRegistry() *Registry {
	return &Registry{factories: map[string]AdapterFactory{}}
}

func NewDefaultRegistry() *Registry {
	registry := NewRegistry()
	_ = registry.RegisterFactory(KindREST, func(config core.TransportConfig) (core.TransportAdapter, error) {
		return NewRESTAdapterFromConfig(config), nil
	})
	return registry
}

func (r *Registry) RegisterFactory(kind string, factory AdapterFactory) error {
	if r == nil {
		return fmt.Errorf("transport: registry is nil")
	}
	kind = normalizeKind(kind)
	if kind == "" {
		return fmt.Errorf("transport: adapter kind is required")
	}
	if factory == nil {
		return fmt.Errorf("transport: adapter factory is nil")
	}
	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("transport: adapter factory kind %q already registered", kind)
	}
	r.factories[kind] = factory
	return nil
}

// Build returns the adapter for config.Kind, defaulting to rest.
func (r *Registry) Build(config core.TransportConfig) (core.TransportAdapter, error) {
	if r == nil {
		return nil, fmt.Errorf("transport: registry is nil")
	}
	kind := normalizeKind(config.Kind)
	if kind == "" {
		kind = KindREST
	}

	factory := r.factories[kind]
	if factory == nil {
		return nil, fmt.Errorf("transport: adapter kind %q not registered (known: %s)", kind, strings.Join(r.kinds(), ", "))
	}
	built, err := factory(config)
	if err != nil {
		return nil, err
	}
	if built == nil {
		return nil, fmt.Errorf("transport: factory for %q returned nil adapter", kind)
	}
	return built, nil
}

func (r *Registry) kinds() []string {
	kinds := make([]string, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

func normalizeKind(kind string) string {
	return strings.TrimSpace(strings.ToLower(kind))
}
