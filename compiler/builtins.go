package compiler

import (
	"github.com/reoring/schemarpc/decl"
	"github.com/reoring/schemarpc/schema"
)

// builtin compiles the global generic and nominal types that have a
// structural wire representation.
func (c *Compiler) builtin(name string, args []schema.Node, argTypes []*decl.Type, at site, t *decl.Type) (schema.Node, error) {
	arity := func(n int) error {
		if len(args) != n {
			return at.errorf(t, "%s expects %d type arguments, got %d", name, n, len(args))
		}
		return nil
	}
	switch name {
	case "Date":
		if err := arity(0); err != nil {
			return nil, err
		}
		return &schema.Date{}, nil
	case "Array", "ReadonlyArray":
		if err := arity(1); err != nil {
			return nil, err
		}
		return &schema.Array{Element: args[0]}, nil
	case "Promise":
		if err := arity(1); err != nil {
			return nil, err
		}
		return args[0], nil
	case "Record":
		if err := arity(2); err != nil {
			return nil, err
		}
		if keys, ok := c.literalKeys(args[0]); ok {
			obj := &schema.Object{}
			for _, k := range keys {
				obj.Members = append(obj.Members, schema.Member{Name: k, Node: args[1]})
			}
			return obj, nil
		}
		return &schema.Index{Key: args[0], Value: args[1]}, nil
	case "Partial", "Required":
		if err := arity(1); err != nil {
			return nil, err
		}
		sh, ok := c.shapeOf(args[0])
		if !ok || len(sh.indexes) > 0 {
			return nil, at.errorf(t, "%s requires an object type, got %s", name, describe(args[0]))
		}
		obj := &schema.Object{}
		for _, m := range sh.members {
			m.Optional = name == "Partial"
			obj.Members = append(obj.Members, m)
		}
		return obj, nil
	case "Pick", "Omit":
		if err := arity(2); err != nil {
			return nil, err
		}
		sh, ok := c.shapeOf(args[0])
		if !ok {
			return nil, at.errorf(t, "%s requires an object type, got %s", name, describe(args[0]))
		}
		keys, ok := c.literalKeys(args[1])
		if !ok {
			return nil, at.errorf(argTypes[1], "%s requires a union of string literal keys", name)
		}
		want := map[string]bool{}
		for _, k := range keys {
			want[k] = true
			if _, found := sh.member(k); name == "Pick" && !found {
				return nil, at.errorf(argTypes[1], "Pick: %q is not a member of %s", k, describe(args[0]))
			}
		}
		obj := &schema.Object{}
		for _, m := range sh.members {
			if want[m.Name] == (name == "Pick") {
				obj.Members = append(obj.Members, m)
			}
		}
		return obj, nil
	}
	return nil, at.errorf(t, "unknown type reference %q", name)
}

// shape is the flattened member view of an object-like node.
type shape struct {
	members []schema.Member
	indexes []*schema.Index
}

func (s shape) member(name string) (schema.Member, bool) {
	for _, m := range s.members {
		if m.Name == name {
			return m, true
		}
	}
	return schema.Member{}, false
}

// shapeOf flattens an Object, an Index or an Intersection of those into its
// members. A member repeated by a later branch replaces the earlier one in
// place.
func (c *Compiler) shapeOf(n schema.Node) (shape, bool) {
	switch v := c.resolve(n).(type) {
	case *schema.Object:
		return shape{members: append([]schema.Member(nil), v.Members...)}, true
	case *schema.Index:
		return shape{indexes: []*schema.Index{v}}, true
	case *schema.Intersection:
		var out shape
		for _, b := range v.Branches {
			sh, ok := c.shapeOf(b)
			if !ok {
				return shape{}, false
			}
			for _, m := range sh.members {
				replaced := false
				for i := range out.members {
					if out.members[i].Name == m.Name {
						out.members[i] = m
						replaced = true
					}
				}
				if !replaced {
					out.members = append(out.members, m)
				}
			}
			out.indexes = append(out.indexes, sh.indexes...)
		}
		return out, true
	}
	return shape{}, false
}

// literalKeys returns the values of a string literal or a union of string
// literals, in order.
func (c *Compiler) literalKeys(n schema.Node) ([]string, bool) {
	switch v := c.resolve(n).(type) {
	case *schema.Literal:
		s, ok := v.Value.(string)
		if !ok {
			return nil, false
		}
		return []string{s}, true
	case *schema.Union:
		var out []string
		for _, a := range v.Alternatives {
			ks, ok := c.literalKeys(a)
			if !ok {
				return nil, false
			}
			out = append(out, ks...)
		}
		return out, true
	case *schema.Enum:
		var out []string
		for _, x := range v.Values {
			s, ok := x.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func stringLiteral(s string) *schema.Literal { return &schema.Literal{Value: s} }

// unionOf collapses a single alternative and drops structural duplicates.
func unionOf(nodes []schema.Node) schema.Node {
	var out []schema.Node
	for _, n := range nodes {
		dup := false
		for _, o := range out {
			if schema.Equal(n, o) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, n)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return &schema.Union{Alternatives: out}
}

// keyOf compiles `keyof T`: the member names as string literals plus the key
// schema of every index signature.
func (c *Compiler) keyOf(t *decl.Type, sc scope, at site) (schema.Node, error) {
	target, err := c.typ(t.KeyOf, sc, at)
	if err != nil {
		return nil, err
	}
	sh, ok := c.shapeOf(target)
	if !ok {
		return nil, at.errorf(t, "keyof requires an object type, got %s", describe(target))
	}
	var keys []schema.Node
	for _, m := range sh.members {
		keys = append(keys, stringLiteral(m.Name))
	}
	for _, ix := range sh.indexes {
		keys = append(keys, ix.Key)
	}
	if len(keys) == 0 {
		return &schema.Union{}, nil
	}
	return unionOf(keys), nil
}

// mapped compiles `{[P in Keys as Remap]?: Template}` over a known set of
// string literal keys. When Keys is `keyof X` the optionality of X's members
// is preserved unless a modifier overrides it.
func (c *Compiler) mapped(t *decl.Type, sc scope, at site) (schema.Node, error) {
	m := t.Mapped
	if m.Param == "" || m.In == nil || m.Template == nil {
		return nil, at.errorf(t, "mapped type needs a parameter, a key set and a template")
	}
	in, err := c.typ(m.In, sc, at)
	if err != nil {
		return nil, err
	}
	keys, ok := c.literalKeys(in)
	if !ok {
		return nil, at.errorf(t, "mapped type keys must be a known set of string literals, got %s", describe(in))
	}
	var source shape
	homomorphic := false
	if m.In.KeyOf != nil {
		target, err := c.typ(m.In.KeyOf, sc, at)
		if err != nil {
			return nil, err
		}
		source, homomorphic = c.shapeOf(target)
	}
	obj := &schema.Object{}
	seen := map[string]bool{}
	for _, k := range keys {
		inner := sc.with(m.Param, stringLiteral(k))
		name := k
		if m.As != nil {
			remap, err := c.typ(m.As, inner, at)
			if err != nil {
				return nil, err
			}
			switch r := c.resolve(remap).(type) {
			case *schema.Union:
				if len(r.Alternatives) == 0 {
					continue
				}
				return nil, at.errorf(m.As, "key remapping must produce a string literal or never, got %s", describe(remap))
			case *schema.Literal:
				s, isStr := r.Value.(string)
				if !isStr {
					return nil, at.errorf(m.As, "key remapping must produce a string literal, got %s", describe(remap))
				}
				name = s
			default:
				return nil, at.errorf(m.As, "key remapping must produce a string literal or never, got %s", describe(remap))
			}
		}
		if seen[name] {
			return nil, at.errorf(t, "mapped type produces duplicate key %q", name)
		}
		seen[name] = true
		val, err := c.typ(m.Template, inner, at)
		if err != nil {
			return nil, err
		}
		optional := false
		switch m.Optional {
		case "+", "?":
			optional = true
		case "-":
		case "":
			if homomorphic {
				if src, found := source.member(k); found {
					optional = src.Optional
				}
			}
		default:
			return nil, at.errorf(t, "unknown mapped type modifier %q", m.Optional)
		}
		if optional {
			val = stripUndefined(val)
		}
		obj.Members = append(obj.Members, schema.Member{Name: name, Node: val, Optional: optional})
	}
	return obj, nil
}

// stripUndefined undoes the `| undefined` added by an indexed access on an
// optional member, so optional members keep their declared schema.
func stripUndefined(n schema.Node) schema.Node {
	if r, ok := reduceOptional(n); ok {
		return r
	}
	return n
}

// indexedAccess compiles `T[K]` for string literal keys of object types and
// `T[number]` for arrays and tuples. Reading an optional member yields
// `T | undefined`.
func (c *Compiler) indexedAccess(t *decl.Type, sc scope, at site) (schema.Node, error) {
	ia := t.IndexedAccess
	if ia.Object == nil || ia.Index == nil {
		return nil, at.errorf(t, "indexed access needs an object and an index")
	}
	obj, err := c.typ(ia.Object, sc, at)
	if err != nil {
		return nil, err
	}
	key, err := c.typ(ia.Index, sc, at)
	if err != nil {
		return nil, err
	}
	if p, ok := c.resolve(key).(*schema.Primitive); ok {
		switch p.Type {
		case schema.Number:
			switch o := c.resolve(obj).(type) {
			case *schema.Array:
				return o.Element, nil
			case *schema.Tuple:
				var els []schema.Node
				for _, e := range o.Elements {
					els = append(els, e.Node)
				}
				if len(els) == 0 {
					return &schema.Union{}, nil
				}
				return unionOf(els), nil
			}
		case schema.String:
			if sh, ok := c.shapeOf(obj); ok && len(sh.indexes) > 0 {
				var vals []schema.Node
				for _, ix := range sh.indexes {
					vals = append(vals, ix.Value)
				}
				return unionOf(vals), nil
			}
		}
		return nil, at.errorf(t, "cannot index %s with %s", describe(obj), describe(key))
	}
	keys, ok := c.literalKeys(key)
	if !ok {
		return nil, at.errorf(ia.Index, "index must be a string literal, a union of string literals, number or string")
	}
	sh, ok := c.shapeOf(obj)
	if !ok {
		return nil, at.errorf(ia.Object, "cannot index %s", describe(obj))
	}
	var vals []schema.Node
	for _, k := range keys {
		m, found := sh.member(k)
		switch {
		case found && m.Optional:
			vals = append(vals, &schema.Union{Alternatives: []schema.Node{m.Node, &schema.Undefined{}}})
		case found:
			vals = append(vals, m.Node)
		case len(sh.indexes) > 0:
			for _, ix := range sh.indexes {
				vals = append(vals, ix.Value)
			}
		default:
			return nil, at.errorf(ia.Index, "property %q does not exist on %s", k, describe(obj))
		}
	}
	if len(vals) == 0 {
		return &schema.Union{}, nil
	}
	return unionOf(vals), nil
}
