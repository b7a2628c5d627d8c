// Package schema defines the structural schema tree that describes RPC
// parameter and return types, and the registry that holds named (shared or
// recursive) definitions referenced from it.
package schema

import "fmt"

// Kind identifies a schema node variant.
type Kind int

const (
	KindPrimitive Kind = iota
	KindLiteral
	KindNull
	KindUndefined
	KindDate
	KindAny
	KindArray
	KindTuple
	KindObject
	KindIndex
	KindUnion
	KindIntersection
	KindEnum
	KindRef
)

var kindNames = [...]string{
	KindPrimitive:    "primitive",
	KindLiteral:      "literal",
	KindNull:         "null",
	KindUndefined:    "undefined",
	KindDate:         "date",
	KindAny:          "any",
	KindArray:        "array",
	KindTuple:        "tuple",
	KindObject:       "object",
	KindIndex:        "index",
	KindUnion:        "union",
	KindIntersection: "intersection",
	KindEnum:         "enum",
	KindRef:          "ref",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), true
		}
	}
	return 0, false
}

// Node is the schema tree interface. Concrete variants are the pointer types
// declared in this file; Ref is the only indirection.
type Node interface {
	Kind() Kind
}

// PrimitiveType names a JSON primitive.
type PrimitiveType string

const (
	String  PrimitiveType = "string"
	Number  PrimitiveType = "number"
	Boolean PrimitiveType = "boolean"
)

type Primitive struct {
	Type PrimitiveType
}

func (*Primitive) Kind() Kind { return KindPrimitive }

// BigInt is a bigint literal value in base-10 notation.
type BigInt string

// Literal matches exactly one value. Value holds a string, float64, bool or BigInt.
type Literal struct {
	Value any
}

func (*Literal) Kind() Kind { return KindLiteral }

type Null struct{}

func (*Null) Kind() Kind { return KindNull }

// Undefined matches an absent value (a missing member or tuple slot).
type Undefined struct{}

func (*Undefined) Kind() Kind { return KindUndefined }

// Date matches a time value or its exact millisecond ISO-8601 UTC rendering.
type Date struct{}

func (*Date) Kind() Kind { return KindDate }

// Any accepts every value unchanged.
type Any struct{}

func (*Any) Kind() Kind { return KindAny }

type Array struct {
	Element Node
}

func (*Array) Kind() Kind { return KindArray }

// TupleElement is one position of a tuple. A Rest element matches every
// remaining input element against Node.
type TupleElement struct {
	Position int
	Node     Node
	Rest     bool
}

type Tuple struct {
	Elements []TupleElement
}

func (*Tuple) Kind() Kind { return KindTuple }

// RestIndex returns the index of the rest element or -1.
func (t *Tuple) RestIndex() int {
	for i, e := range t.Elements {
		if e.Rest {
			return i
		}
	}
	return -1
}

type Member struct {
	Name     string
	Node     Node
	Optional bool
}

// Object lists declared members in declaration order. Undeclared keys are
// permitted.
type Object struct {
	Members []Member
}

func (*Object) Kind() Kind { return KindObject }

// Member returns the named member.
func (o *Object) Member(name string) (Member, bool) {
	for _, m := range o.Members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

// Index is an index signature: every key matches Key and every value Value.
type Index struct {
	Key   Node
	Value Node
}

func (*Index) Kind() Kind { return KindIndex }

// Union is an ordered list of alternatives; the first that matches wins.
// An empty union matches nothing.
type Union struct {
	Alternatives []Node
}

func (*Union) Kind() Kind { return KindUnion }

type Intersection struct {
	Branches []Node
}

func (*Intersection) Kind() Kind { return KindIntersection }

// Enum matches membership of Values (strings or float64 numbers).
type Enum struct {
	Values []any
}

func (*Enum) Kind() Kind { return KindEnum }

type Ref struct {
	ID string
}

func (*Ref) Kind() Kind { return KindRef }

// normalizeScalar maps decoded numeric scalars onto float64 so literal and
// enum values compare equal regardless of the codec that produced them.
func normalizeScalar(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	}
	return v
}
