// Package jsonschema projects schema trees and manifests into JSON Schema.
package jsonschema

import (
	"encoding/json"
	"net/url"
	"sort"
	"strings"

	j "github.com/goccy/go-json"

	"github.com/reoring/schemarpc/manifest"
	"github.com/reoring/schemarpc/schema"
)

// Draft is the $schema of documents produced by FromManifest.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// DatePattern mirrors the textual form accepted for dates.
const DatePattern = `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`

// Document describes every function of a manifest. References point into
// Defs.
type Document struct {
	Schema    string               `json:"$schema"`
	Defs      map[string]*Schema   `json:"$defs,omitempty"`
	Functions map[string]*Function `json:"functions"`
}

// Function holds the parameter object and return schema of one function.
type Function struct {
	Params  *Schema `json:"params"`
	Returns *Schema `json:"returns"`
}

// JSON encodes the document with indentation.
func (d *Document) JSON() ([]byte, error) { return j.MarshalIndent(d, "", "  ") }

// RefPath is the $ref used for a registry id.
func RefPath(id string) string {
	tok := strings.ReplaceAll(strings.ReplaceAll(id, "~", "~0"), "/", "~1")
	return "#/$defs/" + url.PathEscape(tok)
}

// FromManifest builds a Document from m.
func FromManifest(m *manifest.Manifest) *Document {
	doc := &Document{Schema: Draft, Defs: FromRegistry(m.Registry), Functions: map[string]*Function{}}
	for _, name := range m.Names() {
		fn := m.Function(name)
		params := &Schema{Type: "object", Properties: map[string]*Schema{}}
		for _, p := range fn.Parameters {
			params.Properties[p.Name] = FromNode(p.Schema.Node)
			if !p.Optional {
				params.Required = append(params.Required, p.Name)
			}
		}
		sort.Strings(params.Required)
		doc.Functions[name] = &Function{Params: params, Returns: FromNode(fn.ReturnSchema.Node)}
	}
	return doc
}

// FromRegistry projects every registry entry.
func FromRegistry(reg *schema.Registry) map[string]*Schema {
	out := make(map[string]*Schema, reg.Len())
	for _, id := range reg.IDs() {
		n, _ := reg.Lookup(id)
		out[id] = FromNode(n)
	}
	return out
}

// FromNode projects a single node. Undefined cannot occur in JSON and maps
// to a schema nothing satisfies, as does an empty union.
func FromNode(n schema.Node) *Schema {
	switch x := n.(type) {
	case *schema.Primitive:
		return &Schema{Type: string(x.Type)}
	case *schema.Literal:
		return literal(x.Value)
	case *schema.Null:
		return &Schema{Type: "null"}
	case *schema.Undefined:
		return &Schema{Not: &Schema{}}
	case *schema.Date:
		return &Schema{Type: "string", Format: "date-time", Pattern: DatePattern}
	case *schema.Any:
		return &Schema{}
	case *schema.Enum:
		vals := make([]any, len(x.Values))
		for i, v := range x.Values {
			vals[i] = value(v)
		}
		return &Schema{Enum: vals}
	case *schema.Array:
		return &Schema{Type: "array", Items: FromNode(x.Element)}
	case *schema.Tuple:
		return tuple(x)
	case *schema.Object:
		out := &Schema{Type: "object", Properties: map[string]*Schema{}}
		for _, m := range x.Members {
			out.Properties[m.Name] = FromNode(m.Node)
			if !m.Optional {
				out.Required = append(out.Required, m.Name)
			}
		}
		sort.Strings(out.Required)
		return out
	case *schema.Index:
		out := &Schema{Type: "object", AdditionalProperties: FromNode(x.Value)}
		if p, isPrim := x.Key.(*schema.Primitive); !isPrim || p.Type != schema.String {
			out.PropertyNames = FromNode(x.Key)
		}
		return out
	case *schema.Union:
		if len(x.Alternatives) == 0 {
			return &Schema{Not: &Schema{}}
		}
		return &Schema{AnyOf: list(x.Alternatives)}
	case *schema.Intersection:
		return &Schema{AllOf: list(x.Branches)}
	case *schema.Ref:
		return &Schema{Ref: RefPath(x.ID)}
	}
	return &Schema{}
}

func list(ns []schema.Node) []*Schema {
	out := make([]*Schema, len(ns))
	for i, n := range ns {
		out[i] = FromNode(n)
	}
	return out
}

// tuple uses prefixItems for the fixed positions. A trailing rest element
// becomes items; a rest element in the middle only bounds the length.
func tuple(t *schema.Tuple) *Schema {
	out := &Schema{Type: "array"}
	rest := t.RestIndex()
	fixed := 0
	for i, e := range t.Elements {
		if e.Rest {
			continue
		}
		fixed++
		if rest < 0 || i < rest {
			out.PrefixItems = append(out.PrefixItems, FromNode(e.Node))
		}
	}
	minItems := fixed
	out.MinItems = &minItems
	switch {
	case rest < 0:
		maxItems := fixed
		out.MaxItems = &maxItems
	case rest == len(t.Elements)-1:
		out.Items = FromNode(t.Elements[rest].Node)
	}
	return out
}

func literal(v any) *Schema {
	switch x := v.(type) {
	case string:
		return &Schema{Type: "string", Const: x}
	case bool:
		return &Schema{Type: "boolean", Const: x}
	case schema.BigInt:
		return &Schema{Type: "integer", Const: json.Number(x)}
	}
	return &Schema{Type: "number", Const: value(v)}
}

func value(v any) any {
	if b, isBig := v.(schema.BigInt); isBig {
		return json.Number(b)
	}
	return v
}
