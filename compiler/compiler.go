// Package compiler turns declared types (package decl) into schema trees.
//
// Every named declaration is compiled once into the registry and referenced
// through schema.Ref. A placeholder id is reserved before a declaration body
// is expanded, so a declaration that refers to itself (directly or through
// other declarations) compiles to a finite tree with Ref back-edges.
package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/reoring/schemarpc/decl"
	"github.com/reoring/schemarpc/schema"
)

// Function is a compiled RPC signature.
type Function struct {
	Name      string
	Namespace []string
	Params    []Param
	Returns   schema.Node
	Pos       decl.Pos
}

// QualifiedName returns "ns.sub.name".
func (f Function) QualifiedName() string {
	return strings.Join(append(append([]string{}, f.Namespace...), f.Name), ".")
}

// Param is a compiled parameter at its declared position.
type Param struct {
	Name     string
	Position int
	Node     schema.Node
	Optional bool
}

// Result is the output of compiling a File.
type Result struct {
	Functions []Function
	Registry  *schema.Registry
}

// Compiler compiles the declarations of one File. It is not safe for
// concurrent use.
type Compiler struct {
	decls map[string]*decl.Declaration
	reg   *schema.Builder
	log   logrus.FieldLogger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger used for debug output.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Compiler) {
		if l != nil {
			c.log = l
		}
	}
}

// scope binds generic parameter names for one instantiation.
type scope map[string]schema.Node

func (s scope) with(name string, n schema.Node) scope {
	out := make(scope, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	out[name] = n
	return out
}

// New indexes the declarations of f.
func New(f *decl.File, opts ...Option) (*Compiler, error) {
	c := &Compiler{
		decls: map[string]*decl.Declaration{},
		reg:   schema.NewBuilder(),
		log:   logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(c)
	}
	if f == nil {
		return c, nil
	}
	for i := range f.Types {
		d := &f.Types[i]
		at := site{name: d.Name, pos: d.Pos}
		if d.Name == "" {
			return nil, at.errorf(nil, "declaration without a name")
		}
		if _, dup := c.decls[d.Name]; dup {
			return nil, at.errorf(nil, "duplicate declaration %q", d.Name)
		}
		switch d.EffectiveKind() {
		case decl.Alias, decl.Interface, decl.Enum:
		default:
			return nil, at.errorf(nil, "unknown declaration kind %q", d.Kind)
		}
		c.decls[d.Name] = d
	}
	return c, nil
}

// Compile compiles every non-generic declaration and every function of f.
// Any error aborts the build; no partial result is returned.
func Compile(f *decl.File, opts ...Option) (*Result, error) {
	c, err := New(f, opts...)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(c.decls))
	for name, d := range c.decls {
		if len(d.TypeParams) == 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		d := c.decls[name]
		if _, err := c.named(name, nil, nil, site{name: name, pos: d.Pos}, nil); err != nil {
			return nil, err
		}
	}
	res := &Result{}
	for i := range f.Functions {
		fn, err := c.CompileFunction(&f.Functions[i])
		if err != nil {
			return nil, err
		}
		res.Functions = append(res.Functions, fn)
	}
	reg, err := c.Registry()
	if err != nil {
		return nil, err
	}
	res.Registry = reg
	return res, nil
}

// Registry freezes the definitions compiled so far.
func (c *Compiler) Registry() (*schema.Registry, error) { return c.reg.Build() }

// CompileType compiles a standalone type expression.
func (c *Compiler) CompileType(t *decl.Type) (schema.Node, error) {
	if t == nil {
		return nil, &Error{Message: "missing type"}
	}
	return c.typ(t, nil, site{pos: t.Pos})
}

// CompileFunction compiles a function signature. A missing return type
// compiles to undefined; Promise<T> is unwrapped.
func (c *Compiler) CompileFunction(fn *decl.Function) (Function, error) {
	at := site{name: fn.QualifiedName(), pos: fn.Pos}
	if fn.Name == "" {
		return Function{}, at.errorf(nil, "function without a name")
	}
	out := Function{Name: fn.Name, Namespace: append([]string(nil), fn.Namespace...), Pos: fn.Pos}
	seen := map[string]bool{}
	for i, p := range fn.Params {
		if p.Name == "" {
			return Function{}, at.errorf(p.Type, "parameter %d has no name", i)
		}
		if seen[p.Name] {
			return Function{}, at.errorf(p.Type, "duplicate parameter %q", p.Name)
		}
		seen[p.Name] = true
		n, err := c.typ(p.Type, nil, at)
		if err != nil {
			return Function{}, err
		}
		n, opt := reduceOptional(n)
		out.Params = append(out.Params, Param{Name: p.Name, Position: i, Node: n, Optional: opt || p.Optional})
	}
	if fn.Returns == nil {
		out.Returns = &schema.Undefined{}
	} else {
		n, err := c.typ(fn.Returns, nil, at)
		if err != nil {
			return Function{}, err
		}
		out.Returns = n
	}
	c.log.WithFields(logrus.Fields{"function": at.name, "params": len(out.Params)}).Debug("compiled function")
	return out, nil
}

// reduceOptional recognizes exactly `T | undefined` (either order) and
// returns T with optional set. Every other shape is returned unchanged.
func reduceOptional(n schema.Node) (schema.Node, bool) {
	u, ok := n.(*schema.Union)
	if !ok || len(u.Alternatives) != 2 {
		return n, false
	}
	a, b := u.Alternatives[0], u.Alternatives[1]
	if _, undef := b.(*schema.Undefined); undef {
		if _, both := a.(*schema.Undefined); !both {
			return a, true
		}
	}
	if _, undef := a.(*schema.Undefined); undef {
		if _, both := b.(*schema.Undefined); !both {
			return b, true
		}
	}
	return n, false
}

// named compiles a reference to a declaration (or builtin) and returns a Ref
// to its registry entry. args are already compiled in the caller's scope.
func (c *Compiler) named(name string, args []schema.Node, argTypes []*decl.Type, at site, t *decl.Type) (schema.Node, error) {
	d, ok := c.decls[name]
	if !ok {
		return c.builtin(name, args, argTypes, at, t)
	}
	sc := scope{}
	if len(args) > len(d.TypeParams) {
		return nil, at.errorf(t, "%s expects %d type arguments, got %d", name, len(d.TypeParams), len(args))
	}
	bound := make([]schema.Node, 0, len(d.TypeParams))
	for i, tp := range d.TypeParams {
		var arg schema.Node
		if i < len(args) {
			arg = args[i]
		} else if tp.Default != nil {
			var err error
			// defaults may refer to earlier parameters of the same declaration
			arg, err = c.typ(tp.Default, sc, site{name: name, pos: d.Pos})
			if err != nil {
				return nil, err
			}
		} else {
			return nil, at.errorf(t, "%s expects %d type arguments, got %d", name, len(d.TypeParams), len(args))
		}
		sc = sc.with(tp.Name, arg)
		bound = append(bound, arg)
	}
	id := name
	if len(bound) > 0 {
		id = schema.InstanceID(name, bound)
	}
	if c.reg.Has(id) {
		return &schema.Ref{ID: id}, nil
	}
	c.reg.Reserve(id)
	body, err := c.declBody(d, sc)
	if err != nil {
		c.reg.Release(id)
		return nil, err
	}
	c.reg.Define(id, body)
	c.log.WithFields(logrus.Fields{"type": id, "kind": body.Kind().String()}).Debug("registered schema")
	return &schema.Ref{ID: id}, nil
}

func (c *Compiler) declBody(d *decl.Declaration, sc scope) (schema.Node, error) {
	at := site{name: d.Name, pos: d.Pos}
	switch d.EffectiveKind() {
	case decl.Enum:
		return enumBody(d, at)
	case decl.Interface:
		if d.Object == nil {
			return nil, at.errorf(nil, "interface %s has no body", d.Name)
		}
		own, err := c.object(d.Object, sc, at, nil)
		if err != nil {
			return nil, err
		}
		if len(d.Extends) == 0 {
			return own, nil
		}
		branches := make([]schema.Node, 0, len(d.Extends)+1)
		for _, base := range d.Extends {
			n, err := c.typ(base, sc, at)
			if err != nil {
				return nil, err
			}
			branches = append(branches, n)
		}
		return &schema.Intersection{Branches: append(branches, own)}, nil
	default:
		if d.Type == nil {
			return nil, at.errorf(nil, "type alias %s has no type", d.Name)
		}
		return c.typ(d.Type, sc, at)
	}
}

func enumBody(d *decl.Declaration, at site) (schema.Node, error) {
	e := &schema.Enum{}
	next, numeric := 0.0, true
	seen := map[string]bool{}
	for _, m := range d.Members {
		if seen[m.Name] {
			return nil, at.errorf(nil, "duplicate enum member %q", m.Name)
		}
		seen[m.Name] = true
		switch {
		case m.Value == nil:
			if !numeric {
				return nil, at.errorf(nil, "enum member %q needs an initializer", m.Name)
			}
			e.Values = append(e.Values, next)
			next++
		case m.Value.String != nil:
			e.Values = append(e.Values, *m.Value.String)
			numeric = false
		case m.Value.Number != nil:
			e.Values = append(e.Values, *m.Value.Number)
			next, numeric = *m.Value.Number+1, true
		default:
			return nil, at.errorf(nil, "enum member %q must be a string or number", m.Name)
		}
	}
	return e, nil
}

// typ compiles a type expression in scope sc.
func (c *Compiler) typ(t *decl.Type, sc scope, at site) (schema.Node, error) {
	form, err := t.Form()
	if err != nil {
		return nil, at.errorf(t, "%v", err)
	}
	switch form {
	case decl.FormKeyword:
		return keyword(t, at)
	case decl.FormLiteral:
		return literal(t, at)
	case decl.FormRef:
		if bound, ok := sc[t.Ref]; ok {
			if len(t.Args) > 0 {
				return nil, at.errorf(t, "type parameter %s is not generic", t.Ref)
			}
			return bound, nil
		}
		args := make([]schema.Node, 0, len(t.Args))
		for _, a := range t.Args {
			n, err := c.typ(a, sc, at)
			if err != nil {
				return nil, err
			}
			args = append(args, n)
		}
		return c.named(t.Ref, args, t.Args, at, t)
	case decl.FormArray:
		el, err := c.typ(t.Array, sc, at)
		if err != nil {
			return nil, err
		}
		return &schema.Array{Element: el}, nil
	case decl.FormTuple:
		return c.tuple(t, sc, at)
	case decl.FormObject:
		return c.object(t.Object, sc, at, t)
	case decl.FormUnion:
		alts, err := c.list(t.Union, sc, at)
		if err != nil {
			return nil, err
		}
		return &schema.Union{Alternatives: alts}, nil
	case decl.FormIntersection:
		brs, err := c.list(t.Intersection, sc, at)
		if err != nil {
			return nil, err
		}
		return &schema.Intersection{Branches: brs}, nil
	case decl.FormKeyOf:
		return c.keyOf(t, sc, at)
	case decl.FormMapped:
		return c.mapped(t, sc, at)
	case decl.FormIndexedAccess:
		return c.indexedAccess(t, sc, at)
	case decl.FormConditional:
		return nil, at.errorf(t, "conditional types are not supported")
	}
	return nil, at.errorf(t, "unsupported type form %q", form)
}

func (c *Compiler) list(ts []*decl.Type, sc scope, at site) ([]schema.Node, error) {
	out := make([]schema.Node, 0, len(ts))
	for _, x := range ts {
		n, err := c.typ(x, sc, at)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func keyword(t *decl.Type, at site) (schema.Node, error) {
	switch t.Keyword {
	case "string":
		return &schema.Primitive{Type: schema.String}, nil
	case "number":
		return &schema.Primitive{Type: schema.Number}, nil
	case "boolean":
		return &schema.Primitive{Type: schema.Boolean}, nil
	case "null":
		return &schema.Null{}, nil
	case "undefined", "void":
		return &schema.Undefined{}, nil
	case "any", "unknown":
		return &schema.Any{}, nil
	case "never":
		return &schema.Union{}, nil
	case "object":
		return &schema.Object{}, nil
	case "bigint", "symbol":
		return nil, at.errorf(t, "%s is not representable on the wire", t.Keyword)
	}
	return nil, at.errorf(t, "unknown keyword %q", t.Keyword)
}

func literal(t *decl.Type, at site) (schema.Node, error) {
	l := t.Literal
	var vals []any
	if l.String != nil {
		vals = append(vals, *l.String)
	}
	if l.Number != nil {
		vals = append(vals, *l.Number)
	}
	if l.Boolean != nil {
		vals = append(vals, *l.Boolean)
	}
	if l.BigInt != "" {
		if !isDecimal(l.BigInt) {
			return nil, at.errorf(t, "invalid bigint literal %q", l.BigInt)
		}
		vals = append(vals, schema.BigInt(l.BigInt))
	}
	if len(vals) != 1 {
		return nil, at.errorf(t, "literal must set exactly one value")
	}
	return &schema.Literal{Value: vals[0]}, nil
}

func isDecimal(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// tuple compiles a tuple type. A rest member that resolves to an array adds
// one rest element with the array's element schema; one that resolves to a
// tuple is spliced in place; anything else becomes a rest element as is.
func (c *Compiler) tuple(t *decl.Type, sc scope, at site) (schema.Node, error) {
	out := &schema.Tuple{Elements: []schema.TupleElement{}}
	rests := 0
	for _, m := range t.Tuple {
		n, err := c.typ(m.Type, sc, at)
		if err != nil {
			return nil, err
		}
		if !m.Rest {
			out.Elements = append(out.Elements, schema.TupleElement{Position: len(out.Elements), Node: n})
			continue
		}
		switch r := c.resolve(n).(type) {
		case *schema.Array:
			out.Elements = append(out.Elements, schema.TupleElement{Position: len(out.Elements), Node: r.Element, Rest: true})
			rests++
		case *schema.Tuple:
			for _, e := range r.Elements {
				out.Elements = append(out.Elements, schema.TupleElement{Position: len(out.Elements), Node: e.Node, Rest: e.Rest})
				if e.Rest {
					rests++
				}
			}
		default:
			out.Elements = append(out.Elements, schema.TupleElement{Position: len(out.Elements), Node: n, Rest: true})
			rests++
		}
	}
	if rests > 1 {
		return nil, at.errorf(t, "a tuple may contain at most one rest element")
	}
	return out, nil
}

// object compiles members and index signatures. Members alone yield an
// Object, a single index signature alone an Index, and a mix an Intersection
// of the Object followed by each Index.
func (c *Compiler) object(o *decl.ObjectType, sc scope, at site, t *decl.Type) (schema.Node, error) {
	obj := &schema.Object{}
	seen := map[string]bool{}
	for _, m := range o.Members {
		mt := m.Type
		if mt != nil && !mt.Pos.IsValid() && m.Pos.IsValid() {
			mt = withPos(mt, m.Pos)
		}
		switch {
		case m.Computed:
			return nil, at.errorf(mt, "computed member name %q is not supported", m.Name)
		case strings.HasPrefix(m.Name, "#"):
			return nil, at.errorf(mt, "private member %q is not supported", m.Name)
		case m.Name == "":
			return nil, at.errorf(mt, "member without a name")
		case seen[m.Name]:
			return nil, at.errorf(mt, "duplicate member %q", m.Name)
		}
		seen[m.Name] = true
		n, err := c.typ(m.Type, sc, at)
		if err != nil {
			return nil, err
		}
		n, opt := reduceOptional(n)
		obj.Members = append(obj.Members, schema.Member{Name: m.Name, Node: n, Optional: opt || m.Optional})
	}
	var indexes []schema.Node
	for _, ix := range o.Index {
		if len(ix.Params) != 1 {
			return nil, at.errorf(t, "an index signature must have exactly one parameter, got %d", len(ix.Params))
		}
		key, err := c.typ(ix.Params[0].Type, sc, at)
		if err != nil {
			return nil, err
		}
		val, err := c.typ(ix.Type, sc, at)
		if err != nil {
			return nil, err
		}
		indexes = append(indexes, &schema.Index{Key: key, Value: val})
	}
	switch {
	case len(indexes) == 0:
		return obj, nil
	case len(obj.Members) == 0 && len(indexes) == 1:
		return indexes[0], nil
	case len(obj.Members) == 0:
		return &schema.Intersection{Branches: indexes}, nil
	}
	return &schema.Intersection{Branches: append([]schema.Node{obj}, indexes...)}, nil
}

func withPos(t *decl.Type, p decl.Pos) *decl.Type {
	cp := *t
	cp.Pos = p
	return &cp
}

// resolve follows Refs through the registry built so far. A Ref whose
// declaration is still being expanded is returned unchanged.
func (c *Compiler) resolve(n schema.Node) schema.Node {
	seen := map[string]bool{}
	for {
		r, ok := n.(*schema.Ref)
		if !ok || seen[r.ID] {
			return n
		}
		seen[r.ID] = true
		body, ok := c.reg.Lookup(r.ID)
		if !ok {
			return n
		}
		n = body
	}
}

// describe renders a node for diagnostics.
func describe(n schema.Node) string {
	s := schema.Format(n)
	if len(s) > 60 {
		s = s[:57] + "..."
	}
	return fmt.Sprintf("%s (%s)", s, n.Kind())
}
