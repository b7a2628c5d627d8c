package schema

import (
	"fmt"
	"strconv"

	j "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Wire is the serialized form of a node: a "kind" discriminator plus the
// fields of that variant. It round-trips through both JSON and YAML.
type Wire struct {
	Kind         string        `json:"kind" yaml:"kind"`
	Type         string        `json:"type,omitempty" yaml:"type,omitempty"`
	Value        any           `json:"value,omitempty" yaml:"value,omitempty"`
	ID           string        `json:"id,omitempty" yaml:"id,omitempty"`
	Element      *Wire         `json:"element,omitempty" yaml:"element,omitempty"`
	Elements     []WireElement `json:"elements,omitempty" yaml:"elements,omitempty"`
	Members      []WireMember  `json:"members,omitempty" yaml:"members,omitempty"`
	Key          *Wire         `json:"key,omitempty" yaml:"key,omitempty"`
	ValueSchema  *Wire         `json:"valueSchema,omitempty" yaml:"valueSchema,omitempty"`
	Alternatives []*Wire       `json:"alternatives,omitempty" yaml:"alternatives,omitempty"`
	Branches     []*Wire       `json:"branches,omitempty" yaml:"branches,omitempty"`
	Values       []any         `json:"values,omitempty" yaml:"values,omitempty"`
}

type WireElement struct {
	Position int   `json:"position" yaml:"position"`
	Rest     bool  `json:"rest,omitempty" yaml:"rest,omitempty"`
	Schema   *Wire `json:"schema" yaml:"schema"`
}

type WireMember struct {
	Name     string `json:"name" yaml:"name"`
	Optional bool   `json:"optional,omitempty" yaml:"optional,omitempty"`
	Schema   *Wire  `json:"schema" yaml:"schema"`
}

// ToWire converts a tree into its serialized form.
func ToWire(n Node) *Wire {
	if n == nil {
		return nil
	}
	w := &Wire{Kind: n.Kind().String()}
	switch v := n.(type) {
	case *Primitive:
		w.Type = string(v.Type)
	case *Literal:
		w.Type, w.Value = literalWire(v.Value)
	case *Array:
		w.Element = ToWire(v.Element)
	case *Tuple:
		for _, e := range v.Elements {
			w.Elements = append(w.Elements, WireElement{Position: e.Position, Rest: e.Rest, Schema: ToWire(e.Node)})
		}
	case *Object:
		for _, m := range v.Members {
			w.Members = append(w.Members, WireMember{Name: m.Name, Optional: m.Optional, Schema: ToWire(m.Node)})
		}
	case *Index:
		w.Key = ToWire(v.Key)
		w.ValueSchema = ToWire(v.Value)
	case *Union:
		for _, a := range v.Alternatives {
			w.Alternatives = append(w.Alternatives, ToWire(a))
		}
	case *Intersection:
		for _, b := range v.Branches {
			w.Branches = append(w.Branches, ToWire(b))
		}
	case *Enum:
		w.Values = append(w.Values, v.Values...)
	case *Ref:
		w.ID = v.ID
	}
	return w
}

func literalWire(v any) (string, any) {
	switch x := normalizeScalar(v).(type) {
	case string:
		return "string", x
	case float64:
		return "number", x
	case bool:
		return "boolean", x
	case BigInt:
		return "bigint", string(x)
	}
	return "", v
}

// FromWire converts a serialized node back into a tree.
func FromWire(w *Wire) (Node, error) {
	if w == nil {
		return nil, fmt.Errorf("schema: missing node")
	}
	k, ok := ParseKind(w.Kind)
	if !ok {
		return nil, fmt.Errorf("schema: unknown kind %q", w.Kind)
	}
	switch k {
	case KindPrimitive:
		switch t := PrimitiveType(w.Type); t {
		case String, Number, Boolean:
			return &Primitive{Type: t}, nil
		}
		return nil, fmt.Errorf("schema: unknown primitive type %q", w.Type)
	case KindLiteral:
		v, err := literalFromWire(w.Type, w.Value)
		if err != nil {
			return nil, err
		}
		return &Literal{Value: v}, nil
	case KindNull:
		return &Null{}, nil
	case KindUndefined:
		return &Undefined{}, nil
	case KindDate:
		return &Date{}, nil
	case KindAny:
		return &Any{}, nil
	case KindArray:
		el, err := FromWire(w.Element)
		if err != nil {
			return nil, fmt.Errorf("array element: %w", err)
		}
		return &Array{Element: el}, nil
	case KindTuple:
		t := &Tuple{}
		for i, e := range w.Elements {
			n, err := FromWire(e.Schema)
			if err != nil {
				return nil, fmt.Errorf("tuple element %d: %w", i, err)
			}
			t.Elements = append(t.Elements, TupleElement{Position: e.Position, Node: n, Rest: e.Rest})
		}
		return t, nil
	case KindObject:
		o := &Object{}
		for _, m := range w.Members {
			n, err := FromWire(m.Schema)
			if err != nil {
				return nil, fmt.Errorf("member %q: %w", m.Name, err)
			}
			o.Members = append(o.Members, Member{Name: m.Name, Node: n, Optional: m.Optional})
		}
		return o, nil
	case KindIndex:
		key, err := FromWire(w.Key)
		if err != nil {
			return nil, fmt.Errorf("index key: %w", err)
		}
		val, err := FromWire(w.ValueSchema)
		if err != nil {
			return nil, fmt.Errorf("index value: %w", err)
		}
		return &Index{Key: key, Value: val}, nil
	case KindUnion:
		alts, err := fromWireList(w.Alternatives, "alternative")
		if err != nil {
			return nil, err
		}
		return &Union{Alternatives: alts}, nil
	case KindIntersection:
		brs, err := fromWireList(w.Branches, "branch")
		if err != nil {
			return nil, err
		}
		return &Intersection{Branches: brs}, nil
	case KindEnum:
		e := &Enum{}
		for _, v := range w.Values {
			switch x := normalizeScalar(v).(type) {
			case string, float64:
				e.Values = append(e.Values, x)
			default:
				return nil, fmt.Errorf("schema: enum value %v must be a string or number", v)
			}
		}
		return e, nil
	case KindRef:
		if w.ID == "" {
			return nil, fmt.Errorf("schema: ref without id")
		}
		return &Ref{ID: w.ID}, nil
	}
	return nil, fmt.Errorf("schema: unhandled kind %s", k)
}

func fromWireList(ws []*Wire, what string) ([]Node, error) {
	out := make([]Node, 0, len(ws))
	for i, w := range ws {
		n, err := FromWire(w)
		if err != nil {
			return nil, fmt.Errorf("%s %d: %w", what, i, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// A literal whose value is the zero value of its type may have been dropped by
// omitempty encoders; nil is read back as that zero value.
func literalFromWire(typ string, v any) (any, error) {
	v = normalizeScalar(v)
	if v == nil {
		switch typ {
		case "string":
			return "", nil
		case "number":
			return float64(0), nil
		case "boolean":
			return false, nil
		}
	}
	switch typ {
	case "string":
		if s, ok := v.(string); ok {
			return s, nil
		}
	case "number":
		switch x := v.(type) {
		case float64:
			return x, nil
		case j.Number:
			return strconv.ParseFloat(string(x), 64)
		}
	case "boolean":
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case "bigint":
		if s, ok := v.(string); ok {
			return BigInt(s), nil
		}
	}
	return nil, fmt.Errorf("schema: literal of type %q has value %v", typ, v)
}

// Box wraps a Node so it can be embedded in JSON or YAML documents.
type Box struct {
	Node Node
}

func (b Box) MarshalJSON() ([]byte, error) { return j.Marshal(ToWire(b.Node)) }

func (b *Box) UnmarshalJSON(data []byte) error {
	var w Wire
	if err := j.Unmarshal(data, &w); err != nil {
		return err
	}
	n, err := FromWire(&w)
	if err != nil {
		return err
	}
	b.Node = n
	return nil
}

func (b Box) MarshalYAML() (interface{}, error) { return ToWire(b.Node), nil }

func (b *Box) UnmarshalYAML(value *yaml.Node) error {
	var w Wire
	if err := value.Decode(&w); err != nil {
		return err
	}
	n, err := FromWire(&w)
	if err != nil {
		return err
	}
	b.Node = n
	return nil
}

// Marshal encodes a tree as JSON.
func Marshal(n Node) ([]byte, error) { return j.Marshal(ToWire(n)) }

// Unmarshal decodes a tree from JSON.
func Unmarshal(data []byte) (Node, error) {
	var b Box
	if err := b.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return b.Node, nil
}

// MarshalJSON encodes the registry as an object keyed by id.
func (r *Registry) MarshalJSON() ([]byte, error) { return j.Marshal(r.wire()) }

func (r *Registry) UnmarshalJSON(data []byte) error {
	var m map[string]*Wire
	if err := j.Unmarshal(data, &m); err != nil {
		return err
	}
	return r.fromWire(m)
}

func (r *Registry) MarshalYAML() (interface{}, error) { return r.wire(), nil }

func (r *Registry) UnmarshalYAML(value *yaml.Node) error {
	var m map[string]*Wire
	if err := value.Decode(&m); err != nil {
		return err
	}
	return r.fromWire(m)
}

func (r *Registry) wire() map[string]*Wire {
	m := make(map[string]*Wire, r.Len())
	for _, id := range r.IDs() {
		m[id] = ToWire(r.defs[id])
	}
	return m
}

func (r *Registry) fromWire(m map[string]*Wire) error {
	defs := make(map[string]Node, len(m))
	for id, w := range m {
		n, err := FromWire(w)
		if err != nil {
			return fmt.Errorf("registry %q: %w", id, err)
		}
		defs[id] = n
	}
	r.defs = defs
	return nil
}
