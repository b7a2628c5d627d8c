package schema

import (
	"fmt"
	"sort"
)

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the current node. Ref targets are not followed.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch v := n.(type) {
	case *Array:
		Walk(v.Element, fn)
	case *Tuple:
		for _, e := range v.Elements {
			Walk(e.Node, fn)
		}
	case *Object:
		for _, m := range v.Members {
			Walk(m.Node, fn)
		}
	case *Index:
		Walk(v.Key, fn)
		Walk(v.Value, fn)
	case *Union:
		for _, a := range v.Alternatives {
			Walk(a, fn)
		}
	case *Intersection:
		for _, b := range v.Branches {
			Walk(b, fn)
		}
	}
}

// Refs returns the sorted set of reference ids that appear in n.
func Refs(n Node) []string {
	set := map[string]struct{}{}
	Walk(n, func(x Node) bool {
		if r, ok := x.(*Ref); ok {
			set[r.ID] = struct{}{}
		}
		return true
	})
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Equal reports structural equality of two trees. Refs compare by id.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case *Primitive:
		return x.Type == b.(*Primitive).Type
	case *Literal:
		return literalEqual(x.Value, b.(*Literal).Value)
	case *Null, *Undefined, *Date, *Any:
		return true
	case *Array:
		return Equal(x.Element, b.(*Array).Element)
	case *Tuple:
		y := b.(*Tuple)
		if len(x.Elements) != len(y.Elements) {
			return false
		}
		for i := range x.Elements {
			ex, ey := x.Elements[i], y.Elements[i]
			if ex.Position != ey.Position || ex.Rest != ey.Rest || !Equal(ex.Node, ey.Node) {
				return false
			}
		}
		return true
	case *Object:
		y := b.(*Object)
		if len(x.Members) != len(y.Members) {
			return false
		}
		for i := range x.Members {
			mx, my := x.Members[i], y.Members[i]
			if mx.Name != my.Name || mx.Optional != my.Optional || !Equal(mx.Node, my.Node) {
				return false
			}
		}
		return true
	case *Index:
		y := b.(*Index)
		return Equal(x.Key, y.Key) && Equal(x.Value, y.Value)
	case *Union:
		return equalList(x.Alternatives, b.(*Union).Alternatives)
	case *Intersection:
		return equalList(x.Branches, b.(*Intersection).Branches)
	case *Enum:
		y := b.(*Enum)
		if len(x.Values) != len(y.Values) {
			return false
		}
		for i := range x.Values {
			if !literalEqual(x.Values[i], y.Values[i]) {
				return false
			}
		}
		return true
	case *Ref:
		return x.ID == b.(*Ref).ID
	}
	panic(fmt.Sprintf("schema: unknown node type %T", a))
}

func equalList(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func literalEqual(a, b any) bool {
	return normalizeScalar(a) == normalizeScalar(b)
}
