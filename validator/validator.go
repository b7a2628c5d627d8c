package validator

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	schemarpc "github.com/reoring/schemarpc"
	"github.com/reoring/schemarpc/manifest"
	"github.com/reoring/schemarpc/schema"
)

// IntegrityError reports a corrupted schema: a reference the registry does
// not define or a node the validator does not know. It is never a validation
// result. Verify returns it up front; at validation time it is raised with
// panic.
type IntegrityError struct {
	ID     string
	Reason string
}

func (e *IntegrityError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("schema integrity: %s %q", e.Reason, e.ID)
	}
	return "schema integrity: " + e.Reason
}

// Verify checks that every node under roots and in reg is well formed and
// that every reference resolves.
func Verify(reg *schema.Registry, roots ...schema.Node) error {
	if reg == nil {
		reg = schema.NewRegistry(nil)
	}
	var result *multierror.Error
	for i, n := range roots {
		for _, err := range verifyNode(n, fmt.Sprintf("root %d", i)) {
			result = multierror.Append(result, err)
		}
	}
	for _, id := range reg.IDs() {
		n, _ := reg.Lookup(id)
		for _, err := range verifyNode(n, fmt.Sprintf("definition %q", id)) {
			result = multierror.Append(result, err)
		}
	}
	for _, id := range reg.Missing(roots...) {
		result = multierror.Append(result, &IntegrityError{ID: id, Reason: "unresolved reference"})
	}
	return result.ErrorOrNil()
}

func verifyNode(n schema.Node, where string) []error {
	var errs []error
	var visit func(n schema.Node)
	visit = func(n schema.Node) {
		switch v := n.(type) {
		case nil:
			errs = append(errs, &IntegrityError{Reason: where + ": missing node"})
		case *schema.Primitive:
			switch v.Type {
			case schema.String, schema.Number, schema.Boolean:
			default:
				errs = append(errs, &IntegrityError{Reason: fmt.Sprintf("%s: unknown primitive %q", where, v.Type)})
			}
		case *schema.Literal, *schema.Null, *schema.Undefined, *schema.Date, *schema.Any, *schema.Enum, *schema.Ref:
		case *schema.Array:
			visit(v.Element)
		case *schema.Tuple:
			for _, e := range v.Elements {
				visit(e.Node)
			}
		case *schema.Object:
			for _, m := range v.Members {
				visit(m.Node)
			}
		case *schema.Index:
			visit(v.Key)
			visit(v.Value)
		case *schema.Union:
			for _, a := range v.Alternatives {
				visit(a)
			}
		case *schema.Intersection:
			for _, b := range v.Branches {
				visit(b)
			}
		default:
			errs = append(errs, &IntegrityError{Reason: fmt.Sprintf("%s: unknown node %T", where, n)})
		}
	}
	visit(n)
	return errs
}

// Validator compiles schema nodes into parsers, resolving references from a
// registry on first use. It is safe for concurrent use.
type Validator struct {
	reg  *schema.Registry
	log  logrus.FieldLogger
	refs sync.Map // id -> Parser
	fns  sync.Map // qualified name -> *Signature
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger used for debug output.
func WithLogger(l logrus.FieldLogger) Option {
	return func(v *Validator) { v.log = l }
}

// New verifies reg and returns a validator over it.
func New(reg *schema.Registry, opts ...Option) (*Validator, error) {
	if reg == nil {
		reg = schema.NewRegistry(nil)
	}
	if err := Verify(reg); err != nil {
		return nil, err
	}
	v := &Validator{reg: reg, log: logrus.StandardLogger()}
	for _, o := range opts {
		o(v)
	}
	return v, nil
}

// ForManifest returns a validator over m's registry after verifying every
// function signature.
func ForManifest(m *manifest.Manifest, opts ...Option) (*Validator, error) {
	var roots []schema.Node
	for _, f := range m.RPCFunctions {
		for _, p := range f.Parameters {
			roots = append(roots, p.Schema.Node)
		}
		roots = append(roots, f.ReturnSchema.Node)
	}
	if err := Verify(m.Registry, roots...); err != nil {
		return nil, err
	}
	return New(m.Registry, opts...)
}

// Registry returns the registry references are resolved against.
func (v *Validator) Registry() *schema.Registry { return v.reg }

// Compile turns a node into a parser. References become lazy lookups, so
// compiling a recursive schema terminates.
func (v *Validator) Compile(n schema.Node) Parser {
	switch x := n.(type) {
	case *schema.Primitive:
		switch x.Type {
		case schema.String:
			return String()
		case schema.Number:
			return Number()
		case schema.Boolean:
			return Boolean()
		}
	case *schema.Literal:
		return Literal(x.Value)
	case *schema.Null:
		return Null()
	case *schema.Undefined:
		return Void()
	case *schema.Date:
		return Date()
	case *schema.Any:
		return Any()
	case *schema.Enum:
		return Enum(x.Values...)
	case *schema.Array:
		return Array(v.Compile(x.Element))
	case *schema.Tuple:
		slots := make([]Slot, len(x.Elements))
		for i, e := range x.Elements {
			slots[i] = Slot{Parser: v.Compile(e.Node), Rest: e.Rest}
		}
		return Tuple(slots...)
	case *schema.Object:
		fields := make([]Field, len(x.Members))
		for i, m := range x.Members {
			fields[i] = Field{Name: m.Name, Parser: v.Compile(m.Node), Optional: m.Optional}
		}
		return Object(fields...)
	case *schema.Index:
		return Index(v.Compile(x.Key), v.Compile(x.Value))
	case *schema.Union:
		alts := make([]Parser, len(x.Alternatives))
		for i, a := range x.Alternatives {
			alts[i] = v.Compile(a)
		}
		return Union(alts...)
	case *schema.Intersection:
		branches := make([]Parser, len(x.Branches))
		for i, b := range x.Branches {
			branches[i] = v.Compile(b)
		}
		return Intersection(branches...)
	case *schema.Ref:
		return v.ref(x.ID)
	}
	panic(&IntegrityError{Reason: fmt.Sprintf("unknown node %T", n)})
}

func (v *Validator) ref(id string) Parser {
	return func(in any, at schemarpc.Path) result {
		return v.resolve(id)(in, at)
	}
}

func (v *Validator) resolve(id string) Parser {
	if p, found := v.refs.Load(id); found {
		return p.(Parser)
	}
	n, found := v.reg.Lookup(id)
	if !found {
		panic(&IntegrityError{ID: id, Reason: "unresolved reference"})
	}
	p, _ := v.refs.LoadOrStore(id, v.Compile(n))
	return p.(Parser)
}

// Validate checks in against n.
func (v *Validator) Validate(n schema.Node, in any) schemarpc.ParseResult[any] {
	return v.Compile(n).Parse(Normalize(in))
}

// Signature returns the compiled parsers of fn. Signatures are cached by
// qualified name.
func (v *Validator) Signature(fn *manifest.Function) *Signature {
	name := fn.QualifiedName()
	if s, found := v.fns.Load(name); found {
		return s.(*Signature)
	}
	params := append([]manifest.Parameter(nil), fn.Parameters...)
	sort.SliceStable(params, func(i, j int) bool { return params[i].Position < params[j].Position })
	s := &Signature{Name: name, Returns: v.Compile(fn.ReturnSchema.Node), log: v.log}
	_, s.Void = fn.ReturnSchema.Node.(*schema.Undefined)
	for _, p := range params {
		s.Params = append(s.Params, Param{Name: p.Name, Optional: p.Optional, Parser: v.Compile(p.Schema.Node)})
	}
	actual, _ := v.fns.LoadOrStore(name, s)
	return actual.(*Signature)
}

// ValidateParameters checks a request body against fn's parameters.
func (v *Validator) ValidateParameters(fn *manifest.Function, body any) schemarpc.ParseResult[[]any] {
	return v.Signature(fn).ValidateParameters(body)
}

// ValidateReturn checks a handler's result against fn's return schema.
func (v *Validator) ValidateReturn(fn *manifest.Function, value any) schemarpc.ParseResult[any] {
	return v.Signature(fn).ValidateReturn(value)
}
