// Package manifest assembles compiled RPC signatures and the shared schema
// registry into one immutable, serializable artifact.
package manifest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/reoring/schemarpc/compiler"
	"github.com/reoring/schemarpc/schema"
)

// Parameter is one declared parameter of an RPC function.
type Parameter struct {
	Name     string     `json:"name" yaml:"name"`
	Position int        `json:"position" yaml:"position"`
	Schema   schema.Box `json:"schema" yaml:"schema"`
	Optional bool       `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// Function is the manifest entry of an RPC function.
type Function struct {
	Name          string      `json:"name" yaml:"name"`
	NamespacePath []string    `json:"namespacePath" yaml:"namespacePath"`
	Parameters    []Parameter `json:"parameters" yaml:"parameters"`
	ReturnSchema  schema.Box  `json:"returnSchema" yaml:"returnSchema"`
}

// QualifiedName returns "ns.sub.name".
func (f *Function) QualifiedName() string {
	return strings.Join(append(append([]string{}, f.NamespacePath...), f.Name), ".")
}

// Manifest is the aggregated schema artifact. It must not be modified after
// Assemble or Decode returns; it is then safe for concurrent use.
type Manifest struct {
	RPCFunctions []Function       `json:"rpcFunctions" yaml:"rpcFunctions"`
	Registry     *schema.Registry `json:"registry" yaml:"registry"`

	index map[string]int
}

// CollisionError reports two different schema bodies registered under one id.
type CollisionError struct {
	ID     string
	First  schema.Node
	Second schema.Node
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("ambiguous shared type %q: %s vs %s", e.ID, schema.Format(e.First), schema.Format(e.Second))
}

// DuplicateFunctionError reports two functions with the same qualified name.
type DuplicateFunctionError struct {
	Name string
}

func (e *DuplicateFunctionError) Error() string {
	return fmt.Sprintf("duplicate rpc function %q", e.Name)
}

// UnresolvedRefError reports a reference id that no registry defines.
type UnresolvedRefError struct {
	ID string
}

func (e *UnresolvedRefError) Error() string {
	return fmt.Sprintf("unresolved schema reference %q", e.ID)
}

// Assemble builds a manifest from compiled functions and one or more
// registries. Identical definitions under one id are merged. Every problem
// found (colliding ids, duplicate function names, unresolved references) is
// reported together; no manifest is returned in that case.
func Assemble(fns []compiler.Function, regs ...*schema.Registry) (*Manifest, error) {
	var result *multierror.Error
	defs := map[string]schema.Node{}
	for _, r := range regs {
		for _, id := range r.IDs() {
			n, _ := r.Lookup(id)
			if prev, ok := defs[id]; ok {
				if !schema.Equal(prev, n) {
					result = multierror.Append(result, &CollisionError{ID: id, First: prev, Second: n})
				}
				continue
			}
			defs[id] = n
		}
	}
	m := &Manifest{RPCFunctions: []Function{}, Registry: schema.NewRegistry(defs)}
	for _, fn := range fns {
		mf := Function{
			Name:          fn.Name,
			NamespacePath: append([]string{}, fn.Namespace...),
			Parameters:    []Parameter{},
			ReturnSchema:  schema.Box{Node: fn.Returns},
		}
		for _, p := range fn.Params {
			mf.Parameters = append(mf.Parameters, Parameter{Name: p.Name, Position: p.Position, Schema: schema.Box{Node: p.Node}, Optional: p.Optional})
		}
		m.RPCFunctions = append(m.RPCFunctions, mf)
	}
	if errs := m.check(); errs != nil {
		result = multierror.Append(result, errs.Errors...)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return m, nil
}

// check indexes functions by qualified name and verifies that every reference
// resolves.
func (m *Manifest) check() *multierror.Error {
	var result *multierror.Error
	if m.Registry == nil {
		m.Registry = schema.NewRegistry(nil)
	}
	m.index = make(map[string]int, len(m.RPCFunctions))
	var roots []schema.Node
	for i := range m.RPCFunctions {
		f := &m.RPCFunctions[i]
		name := f.QualifiedName()
		if _, dup := m.index[name]; dup {
			result = multierror.Append(result, &DuplicateFunctionError{Name: name})
			continue
		}
		m.index[name] = i
		for _, p := range f.Parameters {
			if p.Schema.Node == nil {
				result = multierror.Append(result, fmt.Errorf("%s: parameter %q has no schema", name, p.Name))
				continue
			}
			roots = append(roots, p.Schema.Node)
		}
		if f.ReturnSchema.Node == nil {
			result = multierror.Append(result, fmt.Errorf("%s: missing return schema", name))
			continue
		}
		roots = append(roots, f.ReturnSchema.Node)
	}
	for _, id := range m.Registry.Missing(roots...) {
		result = multierror.Append(result, &UnresolvedRefError{ID: id})
	}
	return result
}

// Function returns the entry for a qualified name, or nil.
func (m *Manifest) Function(name string) *Function {
	f, _ := m.Lookup(name)
	return f
}

// Lookup returns the entry for a qualified name.
func (m *Manifest) Lookup(name string) (*Function, bool) {
	i, ok := m.index[name]
	if !ok {
		return nil, false
	}
	return &m.RPCFunctions[i], true
}

// Names returns the sorted qualified names of all functions.
func (m *Manifest) Names() []string {
	out := make([]string, 0, len(m.index))
	for name := range m.index {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
