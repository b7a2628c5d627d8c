// Package middleware runs an ordered chain of stages around a handler. Each
// stage sees the context accumulated so far and a continuation; calling the
// continuation runs the rest of the chain and returns its result, after
// which the stage resumes. Pre phases therefore run in stage order and post
// phases in reverse.
package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	schemarpc "github.com/reoring/schemarpc"
)

// Context is the value map accumulated by stages.
type Context map[string]any

// Next runs the remainder of the chain with partial merged into the
// context. It may be called at most once per stage.
type Next func(partial Context) (any, error)

// StageFunc is the body of a stage.
type StageFunc func(ctx context.Context, mc Context, next Next) (any, error)

// Stage is a named StageFunc.
type Stage struct {
	Name string
	Run  StageFunc
}

// Func names a StageFunc.
func Func(name string, fn StageFunc) Stage { return Stage{Name: name, Run: fn} }

// Handler terminates the chain.
type Handler func(ctx context.Context, mc Context) (any, error)

// ErrNextCalledTwice is returned by a continuation invoked a second time.
var ErrNextCalledTwice = errors.New("middleware: next called more than once")

// StageError wraps an error raised by a stage itself, as opposed to one
// propagated from downstream.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("middleware %s: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }

// Chain is an immutable sequence of stages. It is safe for concurrent use.
type Chain struct {
	stages []Stage
	log    logrus.FieldLogger
}

// Option configures a Chain.
type Option func(*Chain)

// WithLogger sets the logger used for debug output.
func WithLogger(l logrus.FieldLogger) Option { return func(c *Chain) { c.log = l } }

// New returns a chain running stages in order.
func New(stages []Stage, opts ...Option) *Chain {
	c := &Chain{stages: append([]Stage(nil), stages...), log: logrus.StandardLogger()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stages returns the stage names in order.
func (c *Chain) Stages() []string {
	out := make([]string, len(c.stages))
	for i, s := range c.stages {
		out[i] = s.Name
	}
	return out
}

// Execute runs the chain and then h, starting from initial. The result is
// the value and error of the outermost stage. Cancellation of ctx is checked
// before every stage and before the handler.
func (c *Chain) Execute(ctx context.Context, initial Context, h Handler) (any, error) {
	return c.run(ctx, 0, merge(initial, nil), h)
}

func (c *Chain) run(ctx context.Context, i int, mc Context, h Handler) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if i == len(c.stages) {
		return h(ContextWithValues(ctx, mc), mc)
	}
	st := c.stages[i]
	log := c.log.WithFields(logrus.Fields{"stage": st.Name, "request_id": mc[RequestIDKey]})
	called := false
	var downstream error
	next := func(partial Context) (any, error) {
		if called {
			return nil, ErrNextCalledTwice
		}
		called = true
		res, err := c.run(ctx, i+1, merge(mc, partial), h)
		downstream = err
		return res, err
	}
	log.Debug("stage enter")
	res, err := st.Run(ctx, mc, next)
	if !called {
		log.Debug("stage short-circuited")
	}
	log.Debug("stage exit")
	if err == nil {
		return res, nil
	}
	if called && errors.Is(err, downstream) {
		return res, err
	}
	return res, &StageError{Stage: st.Name, Err: err}
}

// merge copies base and then partial into a fresh map; later keys win.
func merge(base, partial Context) Context {
	out := make(Context, len(base)+len(partial))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range partial {
		out[k] = v
	}
	return out
}

// RequestIDKey holds the request id in the middleware context.
const RequestIDKey = "requestId"

// FunctionKey holds the qualified function name in the middleware context.
const FunctionKey = "function"

// ctxKeyValues is a typed context key for the middleware context.
type ctxKeyValues struct{}

// ContextWithValues attaches the middleware context to ctx.
func ContextWithValues(ctx context.Context, mc Context) context.Context {
	return context.WithValue(ctx, ctxKeyValues{}, mc)
}

// ValuesFromContext retrieves the middleware context seen by the handler.
func ValuesFromContext(ctx context.Context) (Context, bool) {
	v, ok := ctx.Value(ctxKeyValues{}).(Context)
	return v, ok
}

// ErrorPayload shapes validation errors for JSON responses:
// {"errors": [{path, code, message, errors?}]}.
func ErrorPayload(errs schemarpc.ValidationErrors) map[string]any {
	if errs == nil {
		errs = schemarpc.ValidationErrors{}
	}
	return map[string]any{"errors": errs}
}
