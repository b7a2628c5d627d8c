package gen

import (
	"go/parser"
	"go/token"
	"regexp"
	"strings"
	"testing"

	"github.com/reoring/schemarpc/compiler"
	"github.com/reoring/schemarpc/manifest"
	"github.com/reoring/schemarpc/schema"
)

func testManifest(t *testing.T) *manifest.Manifest {
	t.Helper()
	str := &schema.Primitive{Type: schema.String}
	tree := &schema.Ref{ID: "Tree"}
	reg := schema.NewRegistry(map[string]schema.Node{
		"Tree": &schema.Union{Alternatives: []schema.Node{
			&schema.Object{Members: []schema.Member{{Name: "kind", Node: &schema.Literal{Value: "leaf"}}}},
			&schema.Object{Members: []schema.Member{{Name: "left", Node: tree}, {Name: "right", Node: tree}}},
		}},
		"Big": &schema.Literal{Value: schema.BigInt("10")},
	})
	m, err := manifest.Assemble([]compiler.Function{
		{
			Name:      "plant",
			Namespace: []string{"garden"},
			Params: []compiler.Param{
				{Name: "size", Position: 1, Node: &schema.Primitive{Type: schema.Number}, Optional: true},
				{Name: "name", Position: 0, Node: str},
			},
			Returns: tree,
		},
		{Name: "reset", Returns: &schema.Undefined{}},
		{Name: "big", Returns: &schema.Ref{ID: "Big"}},
	}, reg)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	return m
}

func TestRenderFile(t *testing.T) {
	out, err := RenderFile(File{Package: "validators", Manifest: testManifest(t), Source: "api.yaml"})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	src := string(out)
	if _, err := parser.ParseFile(token.NewFileSet(), "validators_gen.go", out, parser.AllErrors); err != nil {
		t.Fatalf("generated source does not parse: %v\n%s", err, src)
	}
	for _, want := range []string{
		"// Code generated by schemarpc gen from api.yaml. DO NOT EDIT.",
		"package validators",
		`"github.com/reoring/schemarpc/schema"`,
		`definitions["Big"] = validator.Literal(schema.BigInt("10"))`,
		`definitions["Tree"] = validator.Union(validator.Object(validator.Required("kind", validator.Literal("leaf"))), validator.Object(validator.Required("left", ref("Tree")), validator.Required("right", ref("Tree"))))`,
		`{Name: "name", Parser: validator.String()},`,
		`{Name: "size", Optional: true, Parser: validator.Number()},`,
	} {
		if !strings.Contains(src, want) {
			t.Errorf("missing %q in:\n%s", want, src)
		}
	}
	for _, re := range []string{`"garden\.plant":\s+\{`, `Void:\s+true,`} {
		if !regexp.MustCompile(re).MatchString(src) {
			t.Errorf("missing %s in:\n%s", re, src)
		}
	}
	if strings.Index(src, `"name"`) > strings.Index(src, `"size"`) {
		t.Errorf("parameters not ordered by position")
	}
}

func TestRenderFileWithoutBigIntSkipsSchemaImport(t *testing.T) {
	m, err := manifest.Assemble([]compiler.Function{{Name: "ping", Returns: &schema.Undefined{}}})
	if err != nil {
		t.Fatal(err)
	}
	out, err := RenderFile(File{Package: "p", Manifest: m})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(out), "schemarpc/schema") {
		t.Fatalf("unexpected schema import:\n%s", out)
	}
	if _, err := parser.ParseFile(token.NewFileSet(), "p.go", out, 0); err != nil {
		t.Fatal(err)
	}
}

func TestRenderFileRequiresPackage(t *testing.T) {
	if _, err := RenderFile(File{Manifest: testManifest(t)}); err == nil {
		t.Fatal("expected error")
	}
}

func TestExpr(t *testing.T) {
	num := &schema.Primitive{Type: schema.Number}
	cases := []struct {
		node schema.Node
		want string
	}{
		{&schema.Primitive{Type: schema.Boolean}, "validator.Boolean()"},
		{&schema.Literal{Value: float64(3)}, "validator.Literal(3.0)"},
		{&schema.Literal{Value: 1.5}, "validator.Literal(1.5)"},
		{&schema.Literal{Value: false}, "validator.Literal(false)"},
		{&schema.Null{}, "validator.Null()"},
		{&schema.Date{}, "validator.Date()"},
		{&schema.Any{}, "validator.Any()"},
		{&schema.Enum{Values: []any{"a", float64(2)}}, `validator.Enum("a", 2.0)`},
		{&schema.Array{Element: num}, "validator.Array(validator.Number())"},
		{&schema.Tuple{Elements: []schema.TupleElement{{Position: 0, Node: num}, {Position: 1, Node: num, Rest: true}}},
			"validator.Tuple(validator.Elem(validator.Number()), validator.Rest(validator.Number()))"},
		{&schema.Object{Members: []schema.Member{{Name: "a b", Node: num, Optional: true}}},
			`validator.Object(validator.Optional("a b", validator.Number()))`},
		{&schema.Index{Key: &schema.Primitive{Type: schema.String}, Value: num}, "validator.Index(validator.String(), validator.Number())"},
		{&schema.Intersection{Branches: []schema.Node{&schema.Object{}, &schema.Ref{ID: "X<string>"}}},
			`validator.Intersection(validator.Object(), ref("X<string>"))`},
		{&schema.Union{}, "validator.Union()"},
	}
	for _, c := range cases {
		got, err := Expr(c.node)
		if err != nil {
			t.Fatalf("%s: %v", schema.Format(c.node), err)
		}
		if got != c.want {
			t.Errorf("%s: got %s, want %s", schema.Format(c.node), got, c.want)
		}
	}
}
