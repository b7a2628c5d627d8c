package schemarpc

import (
	"reflect"
	"strings"
)

// ResolveStructKey applies the repository-wide rule to resolve a struct field's
// external key when Go values are converted into the JSON data model.
// Priority: schemarpc:"name=..." > json tag name > field name; "-" disables the field.
// omitEmpty reports the json ",omitempty" option.
func ResolveStructKey(sf reflect.StructField) (key string, omitEmpty bool) {
	jt := sf.Tag.Get("json")
	if i := strings.IndexByte(jt, ','); i >= 0 {
		omitEmpty = strings.Contains(jt[i:], ",omitempty")
	}
	if gt := sf.Tag.Get("schemarpc"); gt != "" {
		for _, p := range strings.Split(gt, ",") {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(p, "name=") {
				return strings.TrimPrefix(p, "name="), omitEmpty
			}
		}
	}
	if jt != "" {
		if jt == "-" {
			return "-", false
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			if jt[:i] != "" {
				return jt[:i], omitEmpty
			}
			return sf.Name, omitEmpty
		}
		return jt, omitEmpty
	}
	return sf.Name, omitEmpty
}
