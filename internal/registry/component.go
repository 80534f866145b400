// Package registry holds the named component templates that tag expansion
// draws from.
//
// A Registry is built from scratch by scanning a directory tree and is never
// patched afterwards: a reload builds a new Registry and publishes it through
// a Store, which readers load once per expansion.
package registry

import (
	"regexp"
	"sync/atomic"
)

// ComponentDefinition is a named component template.
type ComponentDefinition struct {
	// Name is the template file's base name without extension.
	Name string
	// Body is the template text containing placeholders.
	Body string
	// FilePath is the file the definition was read from.
	FilePath string
}

var placeholderPattern = regexp.MustCompile(`<<(\w+)>>|\{(\w+)\}`)

// Placeholders returns the distinct placeholder names referenced by the body,
// in order of first appearance. Both `<<name>>` and `{name}` forms count.
func (d *ComponentDefinition) Placeholders() []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(d.Body, -1) {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// Registry maps component names to definitions and remembers the order in
// which names were first registered. Expansion iterates in that order, so a
// pass over the same content is deterministic.
//
// A Registry is not safe for concurrent mutation. Build it, then publish it
// with Store.Replace.
type Registry struct {
	names      []string
	components map[string]*ComponentDefinition
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		components: make(map[string]*ComponentDefinition),
	}
}

// Register adds a definition. A later definition with the same name replaces
// the earlier one but keeps its original position in Names.
func (r *Registry) Register(def *ComponentDefinition) {
	if _, exists := r.components[def.Name]; !exists {
		r.names = append(r.names, def.Name)
	}
	r.components[def.Name] = def
}

// Get retrieves a component by name
func (r *Registry) Get(name string) (*ComponentDefinition, bool) {
	def, ok := r.components[name]
	return def, ok
}

// Body returns the template body registered under name.
func (r *Registry) Body(name string) (string, bool) {
	def, ok := r.components[name]
	if !ok {
		return "", false
	}
	return def.Body, true
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// All returns the definitions in registration order.
func (r *Registry) All() []*ComponentDefinition {
	defs := make([]*ComponentDefinition, 0, len(r.names))
	for _, name := range r.names {
		defs = append(defs, r.components[name])
	}
	return defs
}

// Count returns the number of registered components
func (r *Registry) Count() int {
	return len(r.names)
}

// Store publishes the current registry to concurrent readers. Reloading
// swaps the whole registry in one step.
type Store struct {
	current atomic.Pointer[Registry]
}

// NewStore creates a store holding an empty registry.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(New())
	return s
}

// Load returns the current registry.
func (s *Store) Load() *Registry {
	return s.current.Load()
}

// Replace publishes reg as the current registry.
func (s *Store) Replace(reg *Registry) {
	s.current.Store(reg)
}
