package validator

import (
	"encoding/json"
	"reflect"
	"sort"
	"strconv"
	"sync"

	schemarpc "github.com/reoring/schemarpc"
)

// Array checks every element and reports one error per failing index.
func Array(elem Parser) Parser {
	return func(in any, at schemarpc.Path) result {
		arr, isArr := in.([]any)
		if !isArr {
			return invalidType(at, "array", in)
		}
		out := make([]any, len(arr))
		var errs schemarpc.ValidationErrors
		for i, v := range arr {
			p := at.Index(i)
			r := elem(v, p)
			if !r.OK() {
				errs = append(errs, collapse(p, r.Errors))
				continue
			}
			out[i] = r.Value
		}
		if len(errs) > 0 {
			return schemarpc.Fail[any](errs...)
		}
		return ok(out)
	}
}

// Slot is one position of a tuple.
type Slot struct {
	Parser Parser
	Rest   bool
}

// Elem is a fixed tuple position.
func Elem(p Parser) Slot { return Slot{Parser: p} }

// Rest matches any number of elements, each checked with p.
func Rest(p Parser) Slot { return Slot{Parser: p, Rest: true} }

// Tuple checks positional elements. Without a rest slot the length must
// match exactly; with one, the fixed slots before and after it bound the
// minimum length. A length mismatch is reported in addition to the checks
// of the positions that are present.
func Tuple(slots ...Slot) Parser {
	rest := -1
	for i, s := range slots {
		if s.Rest {
			rest = i
			break
		}
	}
	var prefix, suffix []Parser
	for i, s := range slots {
		switch {
		case rest < 0 || i < rest:
			prefix = append(prefix, s.Parser)
		case i > rest:
			suffix = append(suffix, s.Parser)
		}
	}
	fixed := len(prefix) + len(suffix)
	return func(in any, at schemarpc.Path) result {
		arr, isArr := in.([]any)
		if !isArr {
			return invalidType(at, "array", in)
		}
		var errs schemarpc.ValidationErrors
		if (rest < 0 && len(arr) != fixed) || (rest >= 0 && len(arr) < fixed) {
			want := strconv.Itoa(fixed)
			if rest >= 0 {
				want = "at least " + want
			}
			errs = append(errs, issue(at, schemarpc.CodeInvalidLength, map[string]string{"expected": want, "got": strconv.Itoa(len(arr))}))
		}
		parserAt := func(i int) Parser {
			if len(arr) < fixed {
				if i < len(prefix) {
					return prefix[i]
				}
				return suffix[i-len(prefix)]
			}
			switch tail := len(arr) - len(suffix); {
			case i < len(prefix):
				return prefix[i]
			case i >= tail:
				return suffix[i-tail]
			case rest >= 0:
				return slots[rest].Parser
			}
			return nil
		}
		out := make([]any, 0, len(arr))
		for i, v := range arr {
			p := parserAt(i)
			if p == nil {
				break
			}
			pos := at.Index(i)
			r := p(v, pos)
			if !r.OK() {
				errs = append(errs, collapse(pos, r.Errors))
				continue
			}
			out = append(out, r.Value)
		}
		if len(errs) > 0 {
			return schemarpc.Fail[any](errs...)
		}
		return ok(out)
	}
}

// Field is a declared object member.
type Field struct {
	Name     string
	Parser   Parser
	Optional bool
}

// Required declares a member that must be present.
func Required(name string, p Parser) Field { return Field{Name: name, Parser: p} }

// Optional declares a member that may be absent.
func Optional(name string, p Parser) Field { return Field{Name: name, Parser: p, Optional: true} }

// Object checks every declared member and keeps undeclared keys. A missing
// required member is checked as Undefined and reported as required when
// that fails.
func Object(fields ...Field) Parser {
	return func(in any, at schemarpc.Path) result {
		obj, isObj := in.(map[string]any)
		if !isObj {
			return invalidType(at, "object", in)
		}
		out := make(map[string]any, len(obj))
		for k, v := range obj {
			out[k] = v
		}
		var errs schemarpc.ValidationErrors
		for _, f := range fields {
			p := at.Field(f.Name)
			v, present := obj[f.Name]
			if !present {
				if f.Optional {
					continue
				}
				if r := f.Parser(Undefined, p); !r.OK() {
					errs = append(errs, issue(p, schemarpc.CodeRequired, nil))
				}
				continue
			}
			r := f.Parser(v, p)
			if !r.OK() {
				errs = append(errs, collapse(p, r.Errors))
				continue
			}
			out[f.Name] = r.Value
		}
		if len(errs) > 0 {
			return schemarpc.Fail[any](errs...)
		}
		return ok(out)
	}
}

// Index checks every key against key and every value against value. Keys
// that fail as strings are retried as numbers so numeric key schemas work
// with JSON object keys.
func Index(key, value Parser) Parser {
	return func(in any, at schemarpc.Path) result {
		obj, isObj := in.(map[string]any)
		if !isObj {
			return invalidType(at, "object", in)
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]any, len(obj))
		var errs schemarpc.ValidationErrors
		for _, k := range keys {
			p := at.Field(k)
			if kr := key(k, p); !kr.OK() {
				if _, numErr := strconv.ParseFloat(k, 64); numErr != nil || !key(json.Number(k), p).OK() {
					e := issue(p, schemarpc.CodeInvalidKey, map[string]string{"key": strconv.Quote(k)})
					e.Errors = kr.Errors
					errs = append(errs, e)
					continue
				}
			}
			r := value(obj[k], p)
			if !r.OK() {
				errs = append(errs, collapse(p, r.Errors))
				continue
			}
			out[k] = r.Value
		}
		if len(errs) > 0 {
			return schemarpc.Fail[any](errs...)
		}
		return ok(out)
	}
}

// Union tries alternatives in order and returns the first success. When none
// succeeds the error nests one entry per alternative, tagged with its index.
func Union(alternatives ...Parser) Parser {
	return func(in any, at schemarpc.Path) result {
		nested := make(schemarpc.ValidationErrors, 0, len(alternatives))
		for i, alt := range alternatives {
			p := at.Alternative(i)
			r := alt(in, p)
			if r.OK() {
				return r
			}
			nested = append(nested, collapse(p, r.Errors))
		}
		e := issue(at, schemarpc.CodeNoAlternative, nil)
		e.Errors = nested
		return schemarpc.Fail[any](e)
	}
}

// Intersection checks every branch against the same input. Object results
// are merged in two passes: keys every branch returned unchanged are taken
// from the input, then each branch's rewritten members are laid over them in
// order, so a later branch wins only where it changed a value. Otherwise the
// last branch's value is returned.
func Intersection(branches ...Parser) Parser {
	return func(in any, at schemarpc.Path) result {
		var errs schemarpc.ValidationErrors
		values := make([]any, 0, len(branches))
		for _, b := range branches {
			r := b(in, at)
			if !r.OK() {
				errs = append(errs, r.Errors...)
				continue
			}
			values = append(values, r.Value)
		}
		if len(errs) > 0 {
			return schemarpc.Fail[any](errs...)
		}
		if len(values) == 0 {
			return ok(in)
		}
		results := make([]map[string]any, len(values))
		for i, v := range values {
			m, isObj := v.(map[string]any)
			if !isObj {
				return ok(values[len(values)-1])
			}
			results[i] = m
		}
		raw, _ := in.(map[string]any)
		merged := map[string]any{}
		for _, m := range results {
			for k, x := range m {
				if _, seen := merged[k]; !seen {
					merged[k] = x
				}
			}
		}
		for _, m := range results {
			for k, x := range m {
				if orig, had := raw[k]; had && reflect.DeepEqual(orig, x) {
					continue
				}
				merged[k] = x
			}
		}
		return ok(merged)
	}
}

// Lazy defers building a parser until its first use. It lets recursive
// schemas refer to themselves without recursing at construction time.
func Lazy(build func() Parser) Parser {
	var (
		once sync.Once
		p    Parser
	)
	return func(in any, at schemarpc.Path) result {
		once.Do(func() { p = build() })
		return p(in, at)
	}
}
