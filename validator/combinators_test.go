package validator_test

import (
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	schemarpc "github.com/reoring/schemarpc"
	"github.com/reoring/schemarpc/schema"
	v "github.com/reoring/schemarpc/validator"
)

func paths(errs schemarpc.ValidationErrors) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Path
	}
	return out
}

func codes(errs schemarpc.ValidationErrors) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestPrimitives(t *testing.T) {
	assert.True(t, v.String().Parse("x").OK())
	assert.False(t, v.String().Parse(json.Number("1")).OK())
	assert.True(t, v.Number().Parse(json.Number("1.5")).OK())
	assert.True(t, v.Number().Parse(3).OK())
	assert.False(t, v.Number().Parse("3").OK())
	assert.True(t, v.Boolean().Parse(false).OK())
	assert.False(t, v.Boolean().Parse(nil).OK())
	assert.True(t, v.Null().Parse(nil).OK())
	assert.False(t, v.Null().Parse(v.Undefined).OK())
	assert.True(t, v.Void().Parse(v.Undefined).OK())
	assert.False(t, v.Void().Parse(nil).OK())
	assert.True(t, v.Any().Parse(v.Undefined).OK())

	r := v.String().Parse(json.Number("1"))
	require.Len(t, r.Errors, 1)
	assert.Equal(t, schemarpc.CodeInvalidType, r.Errors[0].Code)
	assert.Equal(t, "", r.Errors[0].Path)
	assert.Equal(t, "expected string, received number", r.Errors[0].Message)
}

func TestNumberOutOfRange(t *testing.T) {
	r := v.Number().Parse(json.Number("1e400"))
	require.Len(t, r.Errors, 1)
	assert.Equal(t, schemarpc.CodeOutOfRange, r.Errors[0].Code)
	assert.Equal(t, "number 1e400 is out of range", r.Errors[0].Message)

	r = v.Number().Parse(json.Number("-1e400"))
	require.Len(t, r.Errors, 1)
	assert.Equal(t, schemarpc.CodeOutOfRange, r.Errors[0].Code)

	assert.True(t, v.Number().Parse(json.Number("1e-400")).OK())
	assert.True(t, v.Number().Parse(json.Number("1.7976931348623157e308")).OK())
}

func TestLiteralAndEnum(t *testing.T) {
	ten := v.Literal(10)
	assert.True(t, ten.Parse(json.Number("10")).OK())
	assert.True(t, ten.Parse(10.0).OK())
	assert.False(t, ten.Parse("10").OK())
	assert.False(t, ten.Parse(json.Number("11")).OK())

	assert.True(t, v.Literal("x").Parse("x").OK())
	assert.False(t, v.Literal(true).Parse(false).OK())

	big10 := v.Literal(schema.BigInt("10"))
	assert.True(t, big10.Parse(json.Number("10")).OK())
	assert.True(t, big10.Parse(big.NewInt(10)).OK())
	assert.False(t, big10.Parse(json.Number("10.5")).OK())

	color := v.Enum("red", "green", 1)
	assert.True(t, color.Parse("green").OK())
	assert.True(t, color.Parse(json.Number("1")).OK())
	r := color.Parse("blue")
	require.Len(t, r.Errors, 1)
	assert.Equal(t, schemarpc.CodeInvalidEnum, r.Errors[0].Code)
	assert.Contains(t, r.Errors[0].Message, `"red", "green", 1`)
}

func TestDate(t *testing.T) {
	r := v.Date().Parse("2024-01-01T00:00:00.000Z")
	require.True(t, r.OK())
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), r.Value)

	for _, bad := range []string{
		"2024-01-01T00:00:00.26Z",
		"2024-01-01T00:00:00Z",
		"2024-01-01T00:00:00.0000Z",
		"2024-01-01T00:00:00.000+00:00",
		"2024-13-01T00:00:00.000Z",
		"2024-01-01",
	} {
		r := v.Date().Parse(bad)
		require.False(t, r.OK(), bad)
		assert.Equal(t, schemarpc.CodeInvalidFormat, r.Errors[0].Code, bad)
	}

	now := time.Now()
	assert.Equal(t, now, v.Date().Parse(now).Value)
	assert.Equal(t, schemarpc.CodeInvalidType, v.Date().Parse(json.Number("0")).Errors[0].Code)
}

func TestObjectReportsEveryMember(t *testing.T) {
	p := v.Object(
		v.Required("a", v.String()),
		v.Required("b", v.Number()),
		v.Required("c", v.Boolean()),
		v.Optional("d", v.String()),
	)
	r := p.Parse(map[string]any{"a": json.Number("1"), "b": "x", "c": nil})
	require.False(t, r.OK())
	assert.Equal(t, []string{"a", "b", "c"}, paths(r.Errors))
	assert.Equal(t, []string{"invalid_type", "invalid_type", "invalid_type"}, codes(r.Errors))

	r = p.Parse(map[string]any{"a": "x", "b": 1, "c": true, "extra": "kept"})
	require.True(t, r.OK())
	assert.Equal(t, map[string]any{"a": "x", "b": 1, "c": true, "extra": "kept"}, r.Value)

	r = p.Parse(map[string]any{"a": "x"})
	assert.Equal(t, []string{"b", "c"}, paths(r.Errors))
	assert.Equal(t, []string{"required", "required"}, codes(r.Errors))

	assert.Equal(t, "invalid_type", p.Parse([]any{}).Errors[0].Code)
}

func TestObjectMissingMemberAcceptingUndefined(t *testing.T) {
	p := v.Object(v.Required("u", v.Union(v.String(), v.Void())), v.Required("x", v.Any()))
	assert.True(t, p.Parse(map[string]any{}).OK())
}

func TestNestedErrorsCollapse(t *testing.T) {
	p := v.Object(v.Required("user", v.Object(
		v.Required("name", v.String()),
		v.Required("age", v.Number()),
	)), v.Required("tag", v.Object(v.Required("id", v.String()))))

	r := p.Parse(map[string]any{
		"user": map[string]any{"name": 1, "age": "x"},
		"tag":  map[string]any{"id": 2},
	})
	require.Len(t, r.Errors, 2)
	user := r.Errors[0]
	assert.Equal(t, "user", user.Path)
	assert.Equal(t, schemarpc.CodeInvalidValue, user.Code)
	assert.Equal(t, []string{"user.name", "user.age"}, paths(user.Errors))
	assert.Equal(t, "tag.id", r.Errors[1].Path)
	assert.Equal(t, []string{"user.name", "user.age", "tag.id"}, paths(r.Errors.Leaves()))
}

func TestArray(t *testing.T) {
	p := v.Array(v.Number())
	r := p.Parse([]any{json.Number("1"), "x", json.Number("3"), true})
	assert.Equal(t, []string{"[1]", "[3]"}, paths(r.Errors))

	r = p.Parse(map[string]any{})
	require.Len(t, r.Errors, 1)
	assert.Equal(t, "", r.Errors[0].Path)

	r = p.Parse([]any{})
	require.True(t, r.OK())
	assert.Equal(t, []any{}, r.Value)
}

func TestTuple(t *testing.T) {
	p := v.Tuple(v.Elem(v.String()), v.Elem(v.Number()))

	r := p.Parse([]any{"a"})
	require.Len(t, r.Errors, 1)
	assert.Equal(t, schemarpc.CodeInvalidLength, r.Errors[0].Code)

	r = p.Parse([]any{"a", "b"})
	require.Len(t, r.Errors, 1)
	assert.Equal(t, "[1]", r.Errors[0].Path)
	assert.Equal(t, schemarpc.CodeInvalidType, r.Errors[0].Code)

	r = p.Parse([]any{"a", json.Number("2")})
	require.True(t, r.OK())
	assert.Equal(t, []any{"a", json.Number("2")}, r.Value)

	r = p.Parse([]any{json.Number("1"), json.Number("2"), "extra"})
	assert.Equal(t, []string{"invalid_length", "invalid_type"}, codes(r.Errors))
	assert.Equal(t, []string{"", "[0]"}, paths(r.Errors))
}

func TestTupleRest(t *testing.T) {
	p := v.Tuple(v.Elem(v.String()), v.Rest(v.Number()))
	assert.True(t, p.Parse([]any{"a"}).OK())
	assert.True(t, p.Parse([]any{"a", 1, 2, 3}).OK())
	r := p.Parse([]any{"a", 1, "x", 3})
	assert.Equal(t, []string{"[2]"}, paths(r.Errors))
	assert.Equal(t, []string{"invalid_length"}, codes(p.Parse([]any{}).Errors))

	mid := v.Tuple(v.Elem(v.Number()), v.Rest(v.String()), v.Elem(v.Boolean()))
	assert.True(t, mid.Parse([]any{1, true}).OK())
	assert.True(t, mid.Parse([]any{1, "a", "b", false}).OK())
	r = mid.Parse([]any{1, "a", 2, "b"})
	assert.Equal(t, []string{"[2]", "[3]"}, paths(r.Errors))
	r = mid.Parse([]any{true})
	assert.Equal(t, []string{"invalid_length", "invalid_type"}, codes(r.Errors))
}

func TestIndex(t *testing.T) {
	p := v.Index(v.String(), v.Number())
	r := p.Parse(map[string]any{"a": 1, "b": "x", "c": true})
	assert.Equal(t, []string{"b", "c"}, paths(r.Errors))

	num := v.Index(v.Number(), v.String())
	assert.True(t, num.Parse(map[string]any{"1": "a", "2.5": "b"}).OK())
	r = num.Parse(map[string]any{"1": "a", "x y": "b"})
	require.Len(t, r.Errors, 1)
	assert.Equal(t, `["x y"]`, r.Errors[0].Path)
	assert.Equal(t, schemarpc.CodeInvalidKey, r.Errors[0].Code)

	lit := v.Index(v.Union(v.Literal("a"), v.Literal("b")), v.Any())
	assert.True(t, lit.Parse(map[string]any{"a": 1}).OK())
	assert.False(t, lit.Parse(map[string]any{"c": 1}).OK())
}

func TestUnionFirstMatchWins(t *testing.T) {
	assert.Equal(t, "x", v.Union(v.Literal("x"), v.String()).Parse("x").Value)

	const ts = "2024-01-01T00:00:00.000Z"
	dateFirst := v.Union(v.Date(), v.String()).Parse(ts)
	stringFirst := v.Union(v.String(), v.Date()).Parse(ts)
	require.True(t, dateFirst.OK())
	require.True(t, stringFirst.OK())
	assert.IsType(t, time.Time{}, dateFirst.Value)
	assert.Equal(t, ts, stringFirst.Value)
}

func TestUnionReportsEveryAlternative(t *testing.T) {
	p := v.Object(v.Required("role", v.Union(v.Literal("admin"), v.Object(v.Required("name", v.String())))))
	r := p.Parse(map[string]any{"role": map[string]any{"name": 1}})
	require.Len(t, r.Errors, 1)
	e := r.Errors[0]
	assert.Equal(t, "role", e.Path)
	assert.Equal(t, schemarpc.CodeNoAlternative, e.Code)
	assert.Equal(t, []string{"role@0", "role@1.name"}, paths(e.Errors))
}

func TestIntersectionKeepsRewrittenMembers(t *testing.T) {
	const ts = "2024-05-06T07:08:09.010Z"
	asString := v.Object(v.Required("d", v.String()))
	asDate := v.Object(v.Required("d", v.Date()), v.Required("n", v.Number()))
	in := map[string]any{"d": ts, "n": 1, "extra": true}

	for _, p := range []v.Parser{v.Intersection(asString, asDate), v.Intersection(asDate, asString)} {
		r := p.Parse(in)
		require.True(t, r.OK())
		out := r.Value.(map[string]any)
		assert.IsType(t, time.Time{}, out["d"])
		assert.Equal(t, 1, out["n"])
		assert.Equal(t, true, out["extra"])
	}

	r := v.Intersection(asString, asDate).Parse(map[string]any{"d": 5})
	assert.Equal(t, []string{"d", "d", "n"}, paths(r.Errors))
}

func TestIntersectionLaterRewriteWins(t *testing.T) {
	rewrite := func(to string) v.Parser {
		return v.Object(v.Required("k", func(in any, at schemarpc.Path) schemarpc.ParseResult[any] {
			return schemarpc.Ok[any](to)
		}))
	}
	r := v.Intersection(rewrite("first"), rewrite("second")).Parse(map[string]any{"k": "raw"})
	require.True(t, r.OK())
	assert.Equal(t, "second", r.Value.(map[string]any)["k"])

	r = v.Intersection(rewrite("first"), v.Index(v.String(), v.Any())).Parse(map[string]any{"k": "raw"})
	require.True(t, r.OK())
	assert.Equal(t, "first", r.Value.(map[string]any)["k"])
}

func TestLazyBuildsOnce(t *testing.T) {
	calls := 0
	p := v.Lazy(func() v.Parser { calls++; return v.String() })
	assert.Equal(t, 0, calls)
	p.Parse("a")
	p.Parse("b")
	assert.Equal(t, 1, calls)
}
