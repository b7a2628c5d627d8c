package compiler

import (
	"errors"
	"fmt"

	"github.com/reoring/schemarpc/decl"
)

// Error is a compile-time schema error. It always carries the location of the
// offending declaration or type expression and aborts the whole build.
type Error struct {
	Pos     decl.Pos
	Name    string // declaration or function being compiled
	Message string
}

func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Name, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// AsError extracts a *Error using errors.As.
func AsError(err error) (*Error, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// site is the declaration currently being compiled, used to locate errors
// for type expressions without their own position.
type site struct {
	name string
	pos  decl.Pos
}

func (s site) errorf(t *decl.Type, format string, args ...any) error {
	pos := s.pos
	if t != nil && t.Pos.IsValid() {
		pos = t.Pos
	}
	return &Error{Pos: pos, Name: s.name, Message: fmt.Sprintf(format, args...)}
}
