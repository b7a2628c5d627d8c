// Package validator checks values in the JSON data model against schema
// trees. Parsers are plain functions composed by combinators; a Validator
// compiles schema nodes into such compositions and resolves references
// lazily from a registry. Validation is exhaustive: every position is checked
// and every failure is reported.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	schemarpc "github.com/reoring/schemarpc"
	"github.com/reoring/schemarpc/i18n"
)

// Parser validates in, located at path at, and returns the parsed value or
// the errors found.
type Parser func(in any, at schemarpc.Path) schemarpc.ParseResult[any]

// Parse runs p at the root path.
func (p Parser) Parse(in any) schemarpc.ParseResult[any] { return p(in, schemarpc.Root) }

type undefined struct{}

func (undefined) String() string { return "undefined" }

// Undefined stands for an absent value: a missing object member or tuple
// slot. It is distinct from nil, which is JSON null.
var Undefined any = undefined{}

type result = schemarpc.ParseResult[any]

func ok(v any) result { return schemarpc.Ok(v) }

func fail(at schemarpc.Path, code string, data map[string]string) result {
	return schemarpc.Fail[any](issue(at, code, data))
}

func issue(at schemarpc.Path, code string, data map[string]string) schemarpc.ValidationError {
	return schemarpc.ValidationError{Path: at.String(), Code: code, Message: i18n.T(code, data)}
}

func invalidType(at schemarpc.Path, expected string, got any) result {
	return fail(at, schemarpc.CodeInvalidType, map[string]string{"expected": expected, "got": typeName(got)})
}

// collapse turns the errors of one child position into a single error. A
// lone error is kept as is; several are nested under an invalid_value error
// at the child's path.
func collapse(at schemarpc.Path, errs schemarpc.ValidationErrors) schemarpc.ValidationError {
	if len(errs) == 1 {
		return errs[0]
	}
	e := issue(at, schemarpc.CodeInvalidValue, nil)
	e.Errors = errs
	return e
}

func typeName(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case undefined:
		return "undefined"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "number"
	case *big.Int:
		return "bigint"
	case time.Time:
		return "date"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", x)
	}
}

// toFloat reports the numeric value of v in the data model. A json.Number
// beyond float64 range reports ±Inf.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(string(x), 64)
		return f, err == nil || errors.Is(err, strconv.ErrRange)
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}
