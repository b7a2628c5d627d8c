package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/reoring/schemarpc/schema"
)

func sample() schema.Node {
	return &schema.Object{Members: []schema.Member{
		{Name: "id", Node: &schema.Primitive{Type: schema.String}},
		{Name: "role", Node: &schema.Union{Alternatives: []schema.Node{
			&schema.Literal{Value: "admin"},
			&schema.Literal{Value: false},
			&schema.Literal{Value: 0.0},
			&schema.Literal{Value: schema.BigInt("10")},
			&schema.Null{},
		}}},
		{Name: "tags", Node: &schema.Array{Element: &schema.Primitive{Type: schema.String}}, Optional: true},
		{Name: "pair", Node: &schema.Tuple{Elements: []schema.TupleElement{
			{Position: 0, Node: &schema.Primitive{Type: schema.Number}},
			{Position: 1, Node: &schema.Date{}, Rest: true},
		}}},
		{Name: "meta", Node: &schema.Index{Key: &schema.Primitive{Type: schema.String}, Value: &schema.Any{}}},
		{Name: "both", Node: &schema.Intersection{Branches: []schema.Node{&schema.Ref{ID: "A"}, &schema.Ref{ID: "B"}}}},
		{Name: "color", Node: &schema.Enum{Values: []any{"red", 1.0}}},
		{Name: "gone", Node: &schema.Undefined{}, Optional: true},
	}}
}

func TestWire_JSONRoundTrip(t *testing.T) {
	n := sample()
	data, err := schema.Marshal(n)
	require.NoError(t, err)
	back, err := schema.Unmarshal(data)
	require.NoError(t, err)
	assert.True(t, schema.Equal(n, back), "round trip changed the tree:\n%s\n%s", schema.Format(n), schema.Format(back))
}

func TestWire_YAMLRoundTrip(t *testing.T) {
	n := sample()
	out, err := yaml.Marshal(schema.Box{Node: n})
	require.NoError(t, err)
	var back schema.Box
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.True(t, schema.Equal(n, back.Node))
}

func TestWire_RejectsUnknownKind(t *testing.T) {
	_, err := schema.Unmarshal([]byte(`{"kind":"mystery"}`))
	assert.Error(t, err)
	_, err = schema.Unmarshal([]byte(`{"kind":"ref"}`))
	assert.Error(t, err)
}

func TestPrinter(t *testing.T) {
	assert.Equal(t,
		`{id: string; role: "admin" | false | 0 | 10n | null; tags?: string[]; pair: [number, ...Date[]]; meta: {[key: string]: any}; both: A & B; color: enum("red", 1); gone?: undefined}`,
		schema.Format(sample()))
	arr := &schema.Array{Element: &schema.Union{Alternatives: []schema.Node{&schema.Primitive{Type: schema.String}, &schema.Null{}}}}
	assert.Equal(t, "(string | null)[]", schema.Format(arr))
	assert.Equal(t, "never", schema.Format(&schema.Union{}))
	assert.Equal(t, "Box<string,number[]>", schema.InstanceID("Box", []schema.Node{
		&schema.Primitive{Type: schema.String},
		&schema.Array{Element: &schema.Primitive{Type: schema.Number}},
	}))
}

func TestEqual(t *testing.T) {
	a := &schema.Literal{Value: 1}
	b := &schema.Literal{Value: 1.0}
	assert.True(t, schema.Equal(a, b), "int and float literal of same value")
	assert.False(t, schema.Equal(&schema.Literal{Value: "1"}, b))
	assert.False(t, schema.Equal(
		&schema.Object{Members: []schema.Member{{Name: "a", Node: &schema.Null{}}}},
		&schema.Object{Members: []schema.Member{{Name: "a", Node: &schema.Null{}, Optional: true}}},
	))
}

func TestRefsAndMissing(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, schema.Refs(sample()))

	reg := schema.NewRegistry(map[string]schema.Node{
		"A": &schema.Object{Members: []schema.Member{{Name: "next", Node: &schema.Ref{ID: "A"}}}},
		"C": &schema.Ref{ID: "Z"},
	})
	assert.Equal(t, []string{"B", "Z"}, reg.Missing(sample()))
}

func TestBuilder(t *testing.T) {
	b := schema.NewBuilder()
	require.True(t, b.Reserve("Tree"))
	assert.False(t, b.Reserve("Tree"))
	assert.True(t, b.Pending("Tree"))
	_, err := b.Build()
	assert.Error(t, err, "pending placeholder must fail the build")

	b.Define("Tree", &schema.Union{Alternatives: []schema.Node{&schema.Null{}, &schema.Ref{ID: "Tree"}}})
	assert.False(t, b.Pending("Tree"))
	assert.True(t, b.Has("Tree"))
	reg, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"Tree"}, reg.IDs())
	assert.Empty(t, reg.Missing())
}

func TestRegistry_JSONRoundTrip(t *testing.T) {
	reg := schema.NewRegistry(map[string]schema.Node{
		"User": &schema.Object{Members: []schema.Member{{Name: "id", Node: &schema.Primitive{Type: schema.String}}}},
	})
	data, err := reg.MarshalJSON()
	require.NoError(t, err)
	var back schema.Registry
	require.NoError(t, back.UnmarshalJSON(data))
	n, ok := back.Lookup("User")
	require.True(t, ok)
	u, _ := reg.Lookup("User")
	assert.True(t, schema.Equal(u, n))
}

func TestKindString(t *testing.T) {
	for k := schema.KindPrimitive; k <= schema.KindRef; k++ {
		back, ok := schema.ParseKind(k.String())
		require.True(t, ok)
		assert.Equal(t, k, back)
	}
}
