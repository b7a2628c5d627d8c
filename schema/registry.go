package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Registry maps reference ids to their definitions. It is read-only once
// built and safe for concurrent use.
type Registry struct {
	defs map[string]Node
}

// NewRegistry returns a registry holding a copy of defs.
func NewRegistry(defs map[string]Node) *Registry {
	r := &Registry{defs: make(map[string]Node, len(defs))}
	for id, n := range defs {
		r.defs[id] = n
	}
	return r
}

// Lookup returns the definition registered under id.
func (r *Registry) Lookup(id string) (Node, bool) {
	if r == nil {
		return nil, false
	}
	n, ok := r.defs[id]
	return n, ok
}

// IDs returns every registered id in sorted order.
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	ids := make([]string, 0, len(r.defs))
	for id := range r.defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len reports the number of definitions.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.defs)
}

// Missing returns the sorted, de-duplicated ids referenced from roots or from
// any definition in r that r does not define.
func (r *Registry) Missing(roots ...Node) []string {
	seen := map[string]struct{}{}
	var out []string
	check := func(n Node) {
		for _, id := range Refs(n) {
			if _, ok := r.Lookup(id); ok {
				continue
			}
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	for _, n := range roots {
		check(n)
	}
	for _, id := range r.IDs() {
		check(r.defs[id])
	}
	sort.Strings(out)
	return out
}

// Builder accumulates registry entries during compilation. An id is first
// reserved as a placeholder so that references to it can be emitted while its
// body is still being expanded, and later defined.
type Builder struct {
	defs    map[string]Node
	pending map[string]struct{}
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{defs: map[string]Node{}, pending: map[string]struct{}{}}
}

// Reserve registers id as a placeholder. It reports false when id is already
// reserved or defined.
func (b *Builder) Reserve(id string) bool {
	if b.Has(id) {
		return false
	}
	b.pending[id] = struct{}{}
	return true
}

// Define sets the body for id and clears its placeholder.
func (b *Builder) Define(id string, n Node) {
	delete(b.pending, id)
	b.defs[id] = n
}

// Release drops a placeholder whose expansion failed.
func (b *Builder) Release(id string) { delete(b.pending, id) }

// Has reports whether id is reserved or defined.
func (b *Builder) Has(id string) bool {
	if _, ok := b.defs[id]; ok {
		return true
	}
	_, ok := b.pending[id]
	return ok
}

// Pending reports whether id is reserved but not yet defined.
func (b *Builder) Pending(id string) bool {
	_, ok := b.pending[id]
	return ok
}

// Lookup returns a defined body.
func (b *Builder) Lookup(id string) (Node, bool) {
	n, ok := b.defs[id]
	return n, ok
}

// Build freezes the accumulated definitions. Every placeholder must have been
// defined.
func (b *Builder) Build() (*Registry, error) {
	if len(b.pending) > 0 {
		ids := make([]string, 0, len(b.pending))
		for id := range b.pending {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		return nil, fmt.Errorf("schema: undefined placeholders: %s", strings.Join(ids, ", "))
	}
	return NewRegistry(b.defs), nil
}
