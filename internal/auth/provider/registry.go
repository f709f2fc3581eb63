package provider

import (
	"context"
	"fmt"
	"sort"
)

// Factory builds a provider variant from the shared client options.
type Factory func(ctx context.Context, opts Options) (OAuthProvider, error)

// Registry holds the known provider variants by name. Exactly one of
// them is built at startup, picked by configuration.
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a variant. Names must be unique.
func (r *Registry) Register(name string, f Factory) {
	if _, dup := r.factories[name]; dup {
		panic("provider: duplicate registration for " + name)
	}
	r.factories[name] = f
}

// Build constructs the named variant or returns an error if it is not
// registered.
func (r *Registry) Build(ctx context.Context, name string, opts Options) (OAuthProvider, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown oauth provider: %s (known: %v)", name, r.Names())
	}
	return f(ctx, opts)
}

// Names lists the registered variants in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
