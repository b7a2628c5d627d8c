// Package decl describes declared RPC signatures and the named types they
// use, in the form handed over by a language front-end. The schema compiler
// consumes a File; loaders read one from YAML, JSON or CUE.
package decl

import (
	"fmt"
	"strings"
)

// Pos is a source location. The zero value means unknown.
type Pos struct {
	File   string `json:"-" yaml:"-"`
	Line   int    `json:"-" yaml:"-"`
	Column int    `json:"-" yaml:"-"`
}

func (p Pos) IsValid() bool { return p.Line > 0 }

func (p Pos) String() string {
	if !p.IsValid() {
		if p.File != "" {
			return p.File
		}
		return "-"
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// File is one unit of declarations.
type File struct {
	Types     []Declaration `json:"types,omitempty" yaml:"types,omitempty"`
	Functions []Function    `json:"functions,omitempty" yaml:"functions,omitempty"`
}

// DeclKind selects how a Declaration is read.
type DeclKind string

const (
	Alias     DeclKind = "alias"
	Interface DeclKind = "interface"
	Enum      DeclKind = "enum"
)

// Declaration is a named type. Alias uses Type; Interface uses Object and
// Extends; Enum uses Members.
type Declaration struct {
	Name       string       `json:"name" yaml:"name"`
	Kind       DeclKind     `json:"kind,omitempty" yaml:"kind,omitempty"`
	TypeParams []TypeParam  `json:"typeParams,omitempty" yaml:"typeParams,omitempty"`
	Type       *Type        `json:"type,omitempty" yaml:"type,omitempty"`
	Object     *ObjectType  `json:"object,omitempty" yaml:"object,omitempty"`
	Extends    []*Type      `json:"extends,omitempty" yaml:"extends,omitempty"`
	Members    []EnumMember `json:"members,omitempty" yaml:"members,omitempty"`
	Pos        Pos          `json:"-" yaml:"-"`
}

// EffectiveKind defaults an empty Kind to Alias.
func (d *Declaration) EffectiveKind() DeclKind {
	if d.Kind == "" {
		return Alias
	}
	return d.Kind
}

type TypeParam struct {
	Name    string `json:"name" yaml:"name"`
	Default *Type  `json:"default,omitempty" yaml:"default,omitempty"`
}

// EnumMember has an explicit Value or, when nil, the next number after the
// previous numeric member.
type EnumMember struct {
	Name  string   `json:"name" yaml:"name"`
	Value *Literal `json:"value,omitempty" yaml:"value,omitempty"`
}

// Function is an RPC function signature. Namespace holds the enclosing
// namespace path; the qualified name is Namespace joined with Name by dots.
type Function struct {
	Name      string   `json:"name" yaml:"name"`
	Namespace []string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Params    []Param  `json:"params,omitempty" yaml:"params,omitempty"`
	Returns   *Type    `json:"returns,omitempty" yaml:"returns,omitempty"`
	Pos       Pos      `json:"-" yaml:"-"`
}

// QualifiedName returns "ns.sub.name".
func (f *Function) QualifiedName() string {
	return strings.Join(append(append([]string{}, f.Namespace...), f.Name), ".")
}

type Param struct {
	Name     string `json:"name" yaml:"name"`
	Type     *Type  `json:"type" yaml:"type"`
	Optional bool   `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// Type is a type expression. Exactly one form field is set.
type Type struct {
	Keyword       string         `json:"keyword,omitempty" yaml:"keyword,omitempty"`
	Literal       *Literal       `json:"literal,omitempty" yaml:"literal,omitempty"`
	Ref           string         `json:"ref,omitempty" yaml:"ref,omitempty"`
	Args          []*Type        `json:"args,omitempty" yaml:"args,omitempty"`
	Array         *Type          `json:"array,omitempty" yaml:"array,omitempty"`
	Tuple         []TupleMember  `json:"tuple,omitempty" yaml:"tuple,omitempty"`
	Object        *ObjectType    `json:"object,omitempty" yaml:"object,omitempty"`
	Union         []*Type        `json:"union,omitempty" yaml:"union,omitempty"`
	Intersection  []*Type        `json:"intersection,omitempty" yaml:"intersection,omitempty"`
	KeyOf         *Type          `json:"keyof,omitempty" yaml:"keyof,omitempty"`
	Mapped        *MappedType    `json:"mapped,omitempty" yaml:"mapped,omitempty"`
	IndexedAccess *IndexedAccess `json:"indexedAccess,omitempty" yaml:"indexedAccess,omitempty"`
	Conditional   *Conditional   `json:"conditional,omitempty" yaml:"conditional,omitempty"`
	Pos           Pos            `json:"-" yaml:"-"`
}

// Form names the form field that is set.
type Form string

const (
	FormKeyword       Form = "keyword"
	FormLiteral       Form = "literal"
	FormRef           Form = "ref"
	FormArray         Form = "array"
	FormTuple         Form = "tuple"
	FormObject        Form = "object"
	FormUnion         Form = "union"
	FormIntersection  Form = "intersection"
	FormKeyOf         Form = "keyof"
	FormMapped        Form = "mapped"
	FormIndexedAccess Form = "indexedAccess"
	FormConditional   Form = "conditional"
)

// Form reports which form t uses. Zero or several forms is an error.
func (t *Type) Form() (Form, error) {
	if t == nil {
		return "", fmt.Errorf("missing type")
	}
	var set []Form
	add := func(ok bool, f Form) {
		if ok {
			set = append(set, f)
		}
	}
	add(t.Keyword != "", FormKeyword)
	add(t.Literal != nil, FormLiteral)
	add(t.Ref != "", FormRef)
	add(t.Array != nil, FormArray)
	add(t.Tuple != nil, FormTuple)
	add(t.Object != nil, FormObject)
	add(t.Union != nil, FormUnion)
	add(t.Intersection != nil, FormIntersection)
	add(t.KeyOf != nil, FormKeyOf)
	add(t.Mapped != nil, FormMapped)
	add(t.IndexedAccess != nil, FormIndexedAccess)
	add(t.Conditional != nil, FormConditional)
	switch len(set) {
	case 1:
		if len(t.Args) > 0 && set[0] != FormRef {
			return "", fmt.Errorf("type arguments require a ref")
		}
		return set[0], nil
	case 0:
		return "", fmt.Errorf("empty type expression")
	}
	return "", fmt.Errorf("type expression mixes forms %v", set)
}

// Literal is a literal type. Exactly one field is set; BigInt holds base-10 digits.
type Literal struct {
	String  *string  `json:"string,omitempty" yaml:"string,omitempty"`
	Number  *float64 `json:"number,omitempty" yaml:"number,omitempty"`
	Boolean *bool    `json:"boolean,omitempty" yaml:"boolean,omitempty"`
	BigInt  string   `json:"bigint,omitempty" yaml:"bigint,omitempty"`
}

type TupleMember struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	Type *Type  `json:"type" yaml:"type"`
	Rest bool   `json:"rest,omitempty" yaml:"rest,omitempty"`
}

type ObjectType struct {
	Members []Member         `json:"members,omitempty" yaml:"members,omitempty"`
	Index   []IndexSignature `json:"index,omitempty" yaml:"index,omitempty"`
}

// Member is a property signature. Computed marks a `[expr]: T` name; a name
// starting with '#' is a private identifier.
type Member struct {
	Name     string `json:"name" yaml:"name"`
	Type     *Type  `json:"type" yaml:"type"`
	Optional bool   `json:"optional,omitempty" yaml:"optional,omitempty"`
	Computed bool   `json:"computed,omitempty" yaml:"computed,omitempty"`
	Pos      Pos    `json:"-" yaml:"-"`
}

// IndexSignature is `[key: K]: V`. Params lists the key parameters as written.
type IndexSignature struct {
	Params []Param `json:"params" yaml:"params"`
	Type   *Type   `json:"type" yaml:"type"`
}

// Modifier is a mapped-type optionality modifier: "", "+", "?" or "-".
type Modifier string

// MappedType is `{[Param in In as As]?: Template}`.
type MappedType struct {
	Param    string   `json:"param" yaml:"param"`
	In       *Type    `json:"in" yaml:"in"`
	As       *Type    `json:"as,omitempty" yaml:"as,omitempty"`
	Template *Type    `json:"template" yaml:"template"`
	Optional Modifier `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// IndexedAccess is `Object[Index]`.
type IndexedAccess struct {
	Object *Type `json:"object" yaml:"object"`
	Index  *Type `json:"index" yaml:"index"`
}

// Conditional is `Check extends Extends ? Then : Else`. It is parsed so that
// it can be reported with a location; the compiler does not support it.
type Conditional struct {
	Check   *Type `json:"check" yaml:"check"`
	Extends *Type `json:"extends" yaml:"extends"`
	Then    *Type `json:"then" yaml:"then"`
	Else    *Type `json:"else" yaml:"else"`
}

// Keywords is the set of recognized keyword types.
var Keywords = map[string]bool{
	"string": true, "number": true, "boolean": true, "null": true,
	"undefined": true, "void": true, "any": true, "unknown": true,
	"never": true, "object": true, "bigint": true, "symbol": true,
}

// Shorthand builds a type from a bare name: a keyword or a reference.
func Shorthand(name string) *Type {
	if Keywords[name] {
		return &Type{Keyword: name}
	}
	return &Type{Ref: name}
}

// SetFile stamps name onto every position in f.
func (f *File) SetFile(name string) {
	for i := range f.Types {
		d := &f.Types[i]
		d.Pos.File = name
		d.Type.setFile(name)
		d.Object.setFile(name)
		for _, e := range d.Extends {
			e.setFile(name)
		}
		for _, tp := range d.TypeParams {
			tp.Default.setFile(name)
		}
	}
	for i := range f.Functions {
		fn := &f.Functions[i]
		fn.Pos.File = name
		for _, p := range fn.Params {
			p.Type.setFile(name)
		}
		fn.Returns.setFile(name)
	}
}

func (o *ObjectType) setFile(name string) {
	if o == nil {
		return
	}
	for i := range o.Members {
		o.Members[i].Pos.File = name
		o.Members[i].Type.setFile(name)
	}
	for _, ix := range o.Index {
		for _, p := range ix.Params {
			p.Type.setFile(name)
		}
		ix.Type.setFile(name)
	}
}

func (t *Type) setFile(name string) {
	if t == nil {
		return
	}
	t.Pos.File = name
	for _, x := range t.Args {
		x.setFile(name)
	}
	t.Array.setFile(name)
	for _, m := range t.Tuple {
		m.Type.setFile(name)
	}
	t.Object.setFile(name)
	for _, x := range t.Union {
		x.setFile(name)
	}
	for _, x := range t.Intersection {
		x.setFile(name)
	}
	t.KeyOf.setFile(name)
	if m := t.Mapped; m != nil {
		m.In.setFile(name)
		m.As.setFile(name)
		m.Template.setFile(name)
	}
	if ia := t.IndexedAccess; ia != nil {
		ia.Object.setFile(name)
		ia.Index.setFile(name)
	}
	if c := t.Conditional; c != nil {
		c.Check.setFile(name)
		c.Extends.setFile(name)
		c.Then.setFile(name)
		c.Else.setFile(name)
	}
}
