package validator

import (
	"github.com/sirupsen/logrus"

	schemarpc "github.com/reoring/schemarpc"
)

// Param is one compiled parameter.
type Param struct {
	Name     string
	Optional bool
	Parser   Parser
}

// Signature holds the parsers of one RPC function, parameters ordered by
// position. Generated code builds the same value from literals.
type Signature struct {
	Name    string
	Params  []Param
	Returns Parser
	// Void marks a function declared to return undefined.
	Void bool

	log logrus.FieldLogger
}

func (s *Signature) logger() logrus.FieldLogger {
	if s.log == nil {
		return logrus.StandardLogger()
	}
	return s.log
}

// ValidateParameters checks a request body, an object keyed by parameter
// name, and returns the arguments ordered by position. An absent optional
// parameter yields nil. A nil body counts as an empty object.
func (s *Signature) ValidateParameters(body any) schemarpc.ParseResult[[]any] {
	body = Normalize(body)
	if body == nil || body == Undefined {
		body = map[string]any{}
	}
	obj, isObj := body.(map[string]any)
	if !isObj {
		return schemarpc.Fail[[]any](invalidType(schemarpc.Root, "object", body).Errors...)
	}
	args := make([]any, len(s.Params))
	var errs schemarpc.ValidationErrors
	for i, p := range s.Params {
		at := schemarpc.Root.Field(p.Name)
		raw, present := obj[p.Name]
		if !present {
			if p.Optional {
				continue
			}
			if r := p.Parser(Undefined, at); !r.OK() {
				errs = append(errs, issue(at, schemarpc.CodeRequired, nil))
			}
			continue
		}
		r := p.Parser(raw, at)
		if !r.OK() {
			errs = append(errs, collapse(at, r.Errors))
			continue
		}
		args[i] = r.Value
	}
	if len(errs) > 0 {
		s.logger().WithFields(logrus.Fields{"function": s.Name, "errors": len(errs)}).Debug("parameters rejected")
		return schemarpc.Fail[[]any](errs...)
	}
	return schemarpc.Ok(args)
}

// ValidateReturn checks a handler's result. Go values are normalized first;
// a nil result of a void function counts as Undefined.
func (s *Signature) ValidateReturn(value any) schemarpc.ParseResult[any] {
	if s.Void && value == nil {
		value = Undefined
	}
	r := s.Returns.Parse(Normalize(value))
	if !r.OK() {
		s.logger().WithFields(logrus.Fields{"function": s.Name, "errors": len(r.Errors)}).Debug("return value rejected")
	}
	return r
}
