// Package plugin provides a registry of generative model providers (LLM,
// TTS, STT, image) keyed by kind and name. Provider packages register
// themselves from init so the service selects them purely by configuration.
package plugin

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Provider kinds.
const (
	KindLLM   = "llm"
	KindTTS   = "tts"
	KindSTT   = "stt"
	KindImage = "image"
)

var (
	// ErrNotFound is returned by Create when nothing is registered under the
	// requested kind and name.
	ErrNotFound = errors.New("plugin not found")

	// ErrWrongType is returned by Create when a factory builds a value that
	// does not implement the requested provider interface.
	ErrWrongType = errors.New("plugin has wrong type")
)

// Factory builds a provider from its options map. The result is asserted to
// llm.LLM, tts.TTS, stt.STT or image.Generator by Create.
type Factory func(cfg map[string]any) (any, error)

// Plugin is a registered factory and its metadata.
type Plugin struct {
	Kind        string
	Name        string
	Factory     Factory
	Description string
	Version     string
	Config      map[string]any // option keys and their defaults, for display
}

type key struct{ kind, name string }

func (k key) String() string { return k.kind + "/" + k.name }

// Registry maps kind/name pairs to plugins. The zero value is not usable;
// call NewRegistry.
type Registry struct {
	mu      sync.RWMutex
	plugins map[key]*Plugin
}

// NewRegistry creates an empty registry, independent of the global one.
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[key]*Plugin)}
}

var global = NewRegistry()

// Register adds a bare factory to the global registry. It panics on a
// duplicate kind/name, which can only happen through a programming error in
// an init function.
func Register(kind, name string, factory Factory) {
	global.Register(kind, name, factory)
}

// RegisterWithMetadata adds p to the global registry.
func RegisterWithMetadata(p *Plugin) {
	global.RegisterWithMetadata(p)
}

// Get returns the factory registered globally as kind/name.
func Get(kind, name string) (Factory, bool) {
	return global.Get(kind, name)
}

// Lookup returns the globally registered plugin with its metadata.
func Lookup(kind, name string) (*Plugin, bool) {
	return global.Lookup(kind, name)
}

// List returns the global plugins of kind, or all of them when kind is
// empty, sorted by kind then name.
func List(kind string) []*Plugin {
	return global.List(kind)
}

// Names returns the sorted names registered globally for kind.
func Names(kind string) []string {
	return global.Names(kind)
}

// Create instantiates the plugin registered as kind/name in the global
// registry and asserts it to T.
func Create[T any](kind, name string, cfg map[string]any) (T, error) {
	return CreateFrom[T](global, kind, name, cfg)
}

// CreateFrom is Create against a specific registry. A missing plugin
// error names the alternatives so a misconfigured provider is easy to fix.
func CreateFrom[T any](r *Registry, kind, name string, cfg map[string]any) (T, error) {
	var zero T

	factory, ok := r.Get(kind, name)
	if !ok {
		if names := r.Names(kind); len(names) > 0 {
			return zero, fmt.Errorf("%w: %s/%s (available: %s)", ErrNotFound, kind, name, strings.Join(names, ", "))
		}
		return zero, fmt.Errorf("%w: %s/%s", ErrNotFound, kind, name)
	}

	if cfg == nil {
		cfg = map[string]any{}
	}
	instance, err := factory(cfg)
	if err != nil {
		return zero, fmt.Errorf("create %s/%s: %w", kind, name, err)
	}

	provider, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s/%s built %T, not a %s provider", ErrWrongType, kind, name, instance, kind)
	}
	return provider, nil
}

// Register adds a bare factory to r.
func (r *Registry) Register(kind, name string, factory Factory) {
	r.RegisterWithMetadata(&Plugin{Kind: kind, Name: name, Factory: factory})
}

// RegisterWithMetadata adds p to r. It panics on an incomplete plugin or a
// duplicate kind/name.
func (r *Registry) RegisterWithMetadata(p *Plugin) {
	switch {
	case p.Kind == "":
		panic("plugin kind cannot be empty")
	case p.Name == "":
		panic("plugin name cannot be empty")
	case p.Factory == nil:
		panic(fmt.Sprintf("plugin %s/%s has a nil factory", p.Kind, p.Name))
	}

	k := key{p.Kind, p.Name}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[k]; exists {
		panic(fmt.Sprintf("plugin %s already registered", k))
	}
	r.plugins[k] = p
}

// Get returns the factory registered as kind/name.
func (r *Registry) Get(kind, name string) (Factory, bool) {
	p, ok := r.Lookup(kind, name)
	if !ok {
		return nil, false
	}
	return p.Factory, true
}

// Lookup returns the plugin registered as kind/name.
func (r *Registry) Lookup(kind, name string) (*Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plugins[key{kind, name}]
	return p, ok
}

// List returns the plugins of kind, or every plugin when kind is empty,
// sorted by kind then name.
func (r *Registry) List(kind string) []*Plugin {
	r.mu.RLock()
	var out []*Plugin
	for k, p := range r.plugins {
		if kind == "" || k.kind == kind {
			out = append(out, p)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Plugin) int {
		return cmp.Or(cmp.Compare(a.Kind, b.Kind), cmp.Compare(a.Name, b.Name))
	})
	return out
}

// Names returns the sorted plugin names registered for kind.
func (r *Registry) Names(kind string) []string {
	plugins := r.List(kind)
	names := make([]string, len(plugins))
	for i, p := range plugins {
		names[i] = p.Name
	}
	return names
}
