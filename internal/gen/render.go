// Package gen renders Go source that validates RPC payloads with the same
// combinators the validator package composes at run time.
package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/reoring/schemarpc/manifest"
	"github.com/reoring/schemarpc/schema"
)

// File describes one generated source file.
type File struct {
	Package  string
	Manifest *manifest.Manifest
	// Source names the input shown in the header comment.
	Source string
}

type definition struct {
	ID   string
	Expr string
}

type param struct {
	Name     string
	Optional bool
	Expr     string
}

type function struct {
	Name    string
	Params  []param
	Returns string
	Void    bool
}

type fileData struct {
	Package     string
	Source      string
	ImportsSch  bool
	Definitions []definition
	Functions   []function
}

var fileTmpl = template.Must(template.New("file").Parse(`// Code generated by schemarpc gen{{if .Source}} from {{.Source}}{{end}}. DO NOT EDIT.

package {{.Package}}

import (
{{- if .ImportsSch}}
	"github.com/reoring/schemarpc/schema"
{{- end}}
	"github.com/reoring/schemarpc/validator"
)

var definitions = map[string]validator.Parser{}

func ref(id string) validator.Parser {
	return validator.Lazy(func() validator.Parser {
		p, ok := definitions[id]
		if !ok {
			panic(&validator.IntegrityError{ID: id, Reason: "unresolved reference"})
		}
		return p
	})
}

func init() {
{{- range .Definitions}}
	definitions[{{printf "%q" .ID}}] = {{.Expr}}
{{- end}}
}

// Signatures holds the parsers of every RPC function by qualified name.
var Signatures = map[string]*validator.Signature{
{{- range .Functions}}
	{{printf "%q" .Name}}: {
		Name: {{printf "%q" .Name}},
		Params: []validator.Param{
{{- range .Params}}
			{Name: {{printf "%q" .Name}}, {{if .Optional}}Optional: true, {{end}}Parser: {{.Expr}}},
{{- end}}
		},
		Returns: {{.Returns}},
{{- if .Void}}
		Void: true,
{{- end}}
	},
{{- end}}
}
`))

// RenderFile renders a gofmt-formatted Go file declaring a parser for every
// registry entry and a validator.Signature for every function of the
// manifest.
func RenderFile(f File) ([]byte, error) {
	if f.Package == "" {
		return nil, fmt.Errorf("gen: package name is required")
	}
	if f.Manifest == nil {
		return nil, fmt.Errorf("gen: manifest is required")
	}
	r := &renderer{}
	data := fileData{Package: f.Package, Source: f.Source}
	for _, id := range f.Manifest.Registry.IDs() {
		n, _ := f.Manifest.Registry.Lookup(id)
		expr, err := r.expr(n)
		if err != nil {
			return nil, fmt.Errorf("gen: %s: %w", id, err)
		}
		data.Definitions = append(data.Definitions, definition{ID: id, Expr: expr})
	}
	for _, name := range f.Manifest.Names() {
		fn := f.Manifest.Function(name)
		out := function{Name: name}
		params := append([]manifest.Parameter(nil), fn.Parameters...)
		sort.SliceStable(params, func(i, j int) bool { return params[i].Position < params[j].Position })
		for _, p := range params {
			expr, err := r.expr(p.Schema.Node)
			if err != nil {
				return nil, fmt.Errorf("gen: %s(%s): %w", name, p.Name, err)
			}
			out.Params = append(out.Params, param{Name: p.Name, Optional: p.Optional, Expr: expr})
		}
		expr, err := r.expr(fn.ReturnSchema.Node)
		if err != nil {
			return nil, fmt.Errorf("gen: %s return: %w", name, err)
		}
		out.Returns = expr
		_, out.Void = fn.ReturnSchema.Node.(*schema.Undefined)
		data.Functions = append(data.Functions, out)
	}
	data.ImportsSch = r.bigint
	var buf bytes.Buffer
	if err := fileTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("gen: format: %w", err)
	}
	return src, nil
}

type renderer struct {
	bigint bool
}

// Expr renders the combinator expression for a single node.
func Expr(n schema.Node) (string, error) {
	return (&renderer{}).expr(n)
}

func (r *renderer) expr(n schema.Node) (string, error) {
	switch x := n.(type) {
	case *schema.Primitive:
		switch x.Type {
		case schema.String:
			return "validator.String()", nil
		case schema.Number:
			return "validator.Number()", nil
		case schema.Boolean:
			return "validator.Boolean()", nil
		}
		return "", fmt.Errorf("unknown primitive %q", x.Type)
	case *schema.Literal:
		v, err := r.value(x.Value)
		if err != nil {
			return "", err
		}
		return "validator.Literal(" + v + ")", nil
	case *schema.Null:
		return "validator.Null()", nil
	case *schema.Undefined:
		return "validator.Void()", nil
	case *schema.Date:
		return "validator.Date()", nil
	case *schema.Any:
		return "validator.Any()", nil
	case *schema.Enum:
		vals := make([]string, len(x.Values))
		for i, v := range x.Values {
			s, err := r.value(v)
			if err != nil {
				return "", err
			}
			vals[i] = s
		}
		return "validator.Enum(" + strings.Join(vals, ", ") + ")", nil
	case *schema.Array:
		e, err := r.expr(x.Element)
		if err != nil {
			return "", err
		}
		return "validator.Array(" + e + ")", nil
	case *schema.Tuple:
		slots := make([]string, len(x.Elements))
		for i, el := range x.Elements {
			e, err := r.expr(el.Node)
			if err != nil {
				return "", err
			}
			if el.Rest {
				slots[i] = "validator.Rest(" + e + ")"
			} else {
				slots[i] = "validator.Elem(" + e + ")"
			}
		}
		return "validator.Tuple(" + strings.Join(slots, ", ") + ")", nil
	case *schema.Object:
		fields := make([]string, len(x.Members))
		for i, m := range x.Members {
			e, err := r.expr(m.Node)
			if err != nil {
				return "", err
			}
			ctor := "validator.Required"
			if m.Optional {
				ctor = "validator.Optional"
			}
			fields[i] = ctor + "(" + strconv.Quote(m.Name) + ", " + e + ")"
		}
		return "validator.Object(" + strings.Join(fields, ", ") + ")", nil
	case *schema.Index:
		k, err := r.expr(x.Key)
		if err != nil {
			return "", err
		}
		v, err := r.expr(x.Value)
		if err != nil {
			return "", err
		}
		return "validator.Index(" + k + ", " + v + ")", nil
	case *schema.Union:
		alts, err := r.list(x.Alternatives)
		if err != nil {
			return "", err
		}
		return "validator.Union(" + alts + ")", nil
	case *schema.Intersection:
		branches, err := r.list(x.Branches)
		if err != nil {
			return "", err
		}
		return "validator.Intersection(" + branches + ")", nil
	case *schema.Ref:
		return "ref(" + strconv.Quote(x.ID) + ")", nil
	}
	return "", fmt.Errorf("unsupported node %T", n)
}

func (r *renderer) list(ns []schema.Node) (string, error) {
	out := make([]string, len(ns))
	for i, n := range ns {
		e, err := r.expr(n)
		if err != nil {
			return "", err
		}
		out[i] = e
	}
	return strings.Join(out, ", "), nil
}

func (r *renderer) value(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x), nil
	case bool:
		return strconv.FormatBool(x), nil
	case float64:
		s := strconv.FormatFloat(x, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEn") {
			s += ".0"
		}
		return s, nil
	case int:
		return strconv.Itoa(x), nil
	case schema.BigInt:
		r.bigint = true
		return "schema.BigInt(" + strconv.Quote(string(x)) + ")", nil
	}
	return "", fmt.Errorf("unsupported literal %T", v)
}
