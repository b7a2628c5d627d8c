package schemarpc

// ParseResult is the outcome of validating a value: either Ok (Errors is empty
// and Value holds the typed result) or Fail (Errors holds at least one error).
type ParseResult[T any] struct {
	Value  T
	Errors ValidationErrors
}

// Ok returns a successful result.
func Ok[T any](v T) ParseResult[T] { return ParseResult[T]{Value: v} }

// Fail returns a failed result carrying errs.
func Fail[T any](errs ...ValidationError) ParseResult[T] {
	return ParseResult[T]{Errors: errs}
}

// OK reports whether the result is a success.
func (r ParseResult[T]) OK() bool { return len(r.Errors) == 0 }

// Unwrap converts the result into Go's (value, error) convention. The error is
// a ValidationErrors on failure.
func (r ParseResult[T]) Unwrap() (T, error) {
	if len(r.Errors) > 0 {
		var zero T
		return zero, r.Errors
	}
	return r.Value, nil
}

// MapResult transforms the value of a successful result and passes failures through.
func MapResult[T, U any](r ParseResult[T], f func(T) U) ParseResult[U] {
	if !r.OK() {
		return ParseResult[U]{Errors: r.Errors}
	}
	return Ok(f(r.Value))
}
