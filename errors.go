package schemarpc

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType    = "invalid_type"
	CodeInvalidLiteral = "invalid_literal"
	CodeInvalidEnum    = "invalid_enum"
	CodeInvalidFormat  = "invalid_format"
	CodeInvalidLength  = "invalid_length"
	CodeInvalidKey     = "invalid_key"
	CodeInvalidValue   = "invalid_value"
	CodeOutOfRange     = "out_of_range"
	CodeRequired       = "required"
	CodeNoAlternative  = "no_alternative"
	CodeDuplicateKey   = "duplicate_key"
	CodeParseError     = "parse_error"
	CodeTruncated      = "truncated"
)

// ValidationError describes one failure at a location within the input value.
// Errors nests the failures of a composite position (object member, array
// index, tuple position, union alternative) when more than one occurred there.
type ValidationError struct {
	Path    string            `json:"path" yaml:"path"`
	Code    string            `json:"code,omitempty" yaml:"code,omitempty"`
	Message string            `json:"message" yaml:"message"`
	Errors  []ValidationError `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func (e ValidationError) String() string {
	if e.Path == "" {
		return e.Code + " at <root>"
	}
	return e.Code + " at " + e.Path
}

// ValidationErrors is an ordered list of validation errors that implements error.
type ValidationErrors []ValidationError

// Error summarizes the first few errors.
func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := len(errs)
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(errs[i].String())
	}
	if len(errs) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(errs))
	}
	return b.String()
}

// Leaves flattens nested errors into the list of innermost failures, in order.
func (errs ValidationErrors) Leaves() ValidationErrors {
	var out ValidationErrors
	for _, e := range errs {
		if len(e.Errors) == 0 {
			out = append(out, e)
			continue
		}
		out = append(out, ValidationErrors(e.Errors).Leaves()...)
	}
	return out
}

// AsValidationErrors extracts ValidationErrors from an error using errors.As.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	if err == nil {
		return nil, false
	}
	var errs ValidationErrors
	if errors.As(err, &errs) {
		return errs, true
	}
	return nil, false
}
