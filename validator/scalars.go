package validator

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strings"
	"time"

	schemarpc "github.com/reoring/schemarpc"
	"github.com/reoring/schemarpc/schema"
)

// String accepts strings.
func String() Parser {
	return func(in any, at schemarpc.Path) result {
		if _, isStr := in.(string); !isStr {
			return invalidType(at, "string", in)
		}
		return ok(in)
	}
}

// Number accepts json.Number and Go numeric values. The value is returned
// unchanged. Numbers that do not fit a float64 fail with out_of_range.
func Number() Parser {
	return func(in any, at schemarpc.Path) result {
		f, isNum := toFloat(in)
		if !isNum || math.IsNaN(f) {
			return invalidType(at, "number", in)
		}
		if math.IsInf(f, 0) {
			return fail(at, schemarpc.CodeOutOfRange, map[string]string{"got": fmt.Sprint(in)})
		}
		return ok(in)
	}
}

// Boolean accepts true and false.
func Boolean() Parser {
	return func(in any, at schemarpc.Path) result {
		if _, isBool := in.(bool); !isBool {
			return invalidType(at, "boolean", in)
		}
		return ok(in)
	}
}

// Null accepts only nil.
func Null() Parser {
	return func(in any, at schemarpc.Path) result {
		if in != nil {
			return invalidType(at, "null", in)
		}
		return ok(nil)
	}
}

// Void accepts only Undefined.
func Void() Parser {
	return func(in any, at schemarpc.Path) result {
		if in != Undefined {
			return invalidType(at, "undefined", in)
		}
		return ok(Undefined)
	}
}

// Any accepts every value unchanged.
func Any() Parser {
	return func(in any, _ schemarpc.Path) result { return ok(in) }
}

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`)

// DateLayout is the only accepted textual date form.
const DateLayout = "2006-01-02T15:04:05.000Z"

// Date accepts time.Time or a string in DateLayout and yields time.Time.
// Other precisions or offsets are rejected.
func Date() Parser {
	return func(in any, at schemarpc.Path) result {
		switch x := in.(type) {
		case time.Time:
			return ok(x)
		case *time.Time:
			if x != nil {
				return ok(*x)
			}
		case string:
			if !datePattern.MatchString(x) {
				return fail(at, schemarpc.CodeInvalidFormat, map[string]string{"expected": "YYYY-MM-DDTHH:mm:ss.sssZ"})
			}
			t, err := time.Parse(DateLayout, x)
			if err != nil {
				return fail(at, schemarpc.CodeInvalidFormat, map[string]string{"expected": "YYYY-MM-DDTHH:mm:ss.sssZ"})
			}
			return ok(t)
		}
		return invalidType(at, "date", in)
	}
}

// Literal accepts exactly one string, number, boolean or bigint value.
func Literal(v any) Parser {
	want := literalValue(v)
	expected := schema.FormatValue(want)
	return func(in any, at schemarpc.Path) result {
		if !literalEqual(want, in) {
			return fail(at, schemarpc.CodeInvalidLiteral, map[string]string{"expected": expected, "got": typeName(in)})
		}
		return ok(in)
	}
}

// Enum accepts any of the given literal values.
func Enum(values ...any) Parser {
	wants := make([]any, len(values))
	names := make([]string, len(values))
	for i, v := range values {
		wants[i] = literalValue(v)
		names[i] = schema.FormatValue(wants[i])
	}
	expected := strings.Join(names, ", ")
	return func(in any, at schemarpc.Path) result {
		for _, w := range wants {
			if literalEqual(w, in) {
				return ok(in)
			}
		}
		return fail(at, schemarpc.CodeInvalidEnum, map[string]string{"expected": expected, "got": typeName(in)})
	}
}

func literalValue(v any) any {
	switch v.(type) {
	case string, bool, schema.BigInt:
		return v
	}
	if f, isNum := toFloat(v); isNum {
		return f
	}
	return v
}

func literalEqual(want, got any) bool {
	switch w := want.(type) {
	case string:
		g, isStr := got.(string)
		return isStr && g == w
	case bool:
		g, isBool := got.(bool)
		return isBool && g == w
	case float64:
		if _, isBig := got.(*big.Int); isBig {
			return false
		}
		f, isNum := toFloat(got)
		return isNum && f == w
	case schema.BigInt:
		wb, valid := new(big.Int).SetString(string(w), 10)
		if !valid {
			return false
		}
		switch g := got.(type) {
		case *big.Int:
			return g != nil && g.Cmp(wb) == 0
		case json.Number:
			gb, isInt := new(big.Int).SetString(string(g), 10)
			return isInt && gb.Cmp(wb) == 0
		}
	}
	return false
}
