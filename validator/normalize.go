package validator

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"time"

	schemarpc "github.com/reoring/schemarpc"
)

var timeType = reflect.TypeOf(time.Time{})

// Normalize converts a Go value into the JSON data model understood by the
// parsers: map[string]any, []any, string, numbers, bool and nil. Structs use
// their json tags (see schemarpc.ResolveStructKey), pointers are followed and
// time.Time values are kept as dates.
func Normalize(v any) any {
	switch x := v.(type) {
	case nil, undefined, string, bool, json.Number, float64, float32,
		int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
		time.Time, *big.Int:
		return v
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = Normalize(e)
		}
		return out
	}
	return normalizeValue(reflect.ValueOf(v))
}

func normalizeValue(rv reflect.Value) any {
	switch rv.Kind() {
	case reflect.Invalid:
		return nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return Normalize(rv.Elem().Interface())
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		fallthrough
	case reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[mapKey(iter.Key())] = Normalize(iter.Value().Interface())
		}
		return out
	case reflect.Struct:
		if rv.Type().ConvertibleTo(timeType) {
			return rv.Convert(timeType).Interface()
		}
		out := map[string]any{}
		structFields(rv, out)
		return out
	}
	return rv.Interface()
}

func mapKey(k reflect.Value) string {
	switch k.Kind() {
	case reflect.String:
		return k.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(k.Uint(), 10)
	}
	return fmt.Sprint(k.Interface())
}

// structFields copies exported fields into out. Untagged exported embedded
// structs are flattened.
func structFields(rv reflect.Value, out map[string]any) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		fv := rv.Field(i)
		if !sf.IsExported() {
			continue
		}
		if sf.Anonymous && sf.Tag.Get("json") == "" && sf.Tag.Get("schemarpc") == "" {
			t := sf.Type
			if t.Kind() == reflect.Pointer {
				if fv.IsNil() {
					continue
				}
				t, fv = t.Elem(), fv.Elem()
			}
			if t.Kind() == reflect.Struct {
				structFields(fv, out)
				continue
			}
		}
		key, omitEmpty := schemarpc.ResolveStructKey(sf)
		if key == "-" || (omitEmpty && fv.IsZero()) {
			continue
		}
		out[key] = Normalize(fv.Interface())
	}
}
