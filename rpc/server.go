// Package rpc dispatches calls to handlers by qualified function name,
// validating parameters before and results after the middleware chain.
package rpc

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	schemarpc "github.com/reoring/schemarpc"
	"github.com/reoring/schemarpc/manifest"
	"github.com/reoring/schemarpc/middleware"
	"github.com/reoring/schemarpc/validator"
)

// HandlerFunc implements one RPC function. args are the validated
// parameters ordered by position; absent optional parameters are nil.
type HandlerFunc func(ctx context.Context, args []any) (any, error)

// Server binds handlers to the functions of a manifest. Register handlers
// before serving; Call is then safe for concurrent use.
type Server struct {
	manifest  *manifest.Manifest
	validator *validator.Validator
	chain     *middleware.Chain
	handlers  map[string]HandlerFunc
	decode    schemarpc.DecodeOpt
	log       logrus.FieldLogger
	newID     func() (uuid.UUID, error)

	stages []middleware.Stage
}

// Option configures a Server.
type Option func(*Server)

// WithStages sets the middleware stages run around every handler.
func WithStages(stages ...middleware.Stage) Option {
	return func(s *Server) { s.stages = append(s.stages, stages...) }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option { return func(s *Server) { s.log = l } }

// WithDecodeOptions sets request body decoding limits.
func WithDecodeOptions(opt schemarpc.DecodeOpt) Option { return func(s *Server) { s.decode = opt } }

// WithValidator uses v instead of building one from the manifest.
func WithValidator(v *validator.Validator) Option { return func(s *Server) { s.validator = v } }

// NewServer returns a server for m. The manifest is verified unless a
// validator is supplied.
func NewServer(m *manifest.Manifest, opts ...Option) (*Server, error) {
	s := &Server{
		manifest: m,
		handlers: map[string]HandlerFunc{},
		decode:   schemarpc.DecodeOpt{OnDuplicateKey: schemarpc.Error},
		log:      logrus.StandardLogger(),
		newID:    uuid.NewV7,
	}
	for _, o := range opts {
		o(s)
	}
	if s.decode.Logger == nil {
		s.decode.Logger = s.log
	}
	if s.validator == nil {
		v, err := validator.ForManifest(m, validator.WithLogger(s.log))
		if err != nil {
			return nil, fmt.Errorf("rpc: %w", err)
		}
		s.validator = v
	}
	s.chain = middleware.New(s.stages, middleware.WithLogger(s.log))
	return s, nil
}

// Handle registers h for the qualified function name.
func (s *Server) Handle(name string, h HandlerFunc) error {
	if _, ok := s.manifest.Lookup(name); !ok {
		return &UnknownFunctionError{Function: name}
	}
	s.handlers[name] = h
	return nil
}

// Manifest returns the served manifest.
func (s *Server) Manifest() *manifest.Manifest { return s.manifest }

// Call decodes a raw JSON body and invokes the function.
func (s *Server) Call(ctx context.Context, name string, body []byte) (any, error) {
	if _, ok := s.manifest.Lookup(name); !ok {
		return nil, &UnknownFunctionError{Function: name}
	}
	var in any
	if len(body) > 0 {
		v, err := schemarpc.DecodeJSON(body, s.decode)
		if err != nil {
			errs, _ := schemarpc.AsValidationErrors(err)
			return nil, &InvalidRequestError{Function: name, Errors: errs}
		}
		in = v
	}
	return s.Invoke(ctx, name, in)
}

// Invoke runs the function with an already decoded body.
func (s *Server) Invoke(ctx context.Context, name string, body any) (any, error) {
	fn, ok := s.manifest.Lookup(name)
	if !ok {
		return nil, &UnknownFunctionError{Function: name}
	}
	h, ok := s.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotImplemented, name)
	}
	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("rpc: request id: %w", err)
	}
	log := s.log.WithFields(logrus.Fields{"request_id": id.String(), "function": name})

	sig := s.validator.Signature(fn)
	args := sig.ValidateParameters(body)
	if !args.OK() {
		log.WithField("errors", len(args.Errors)).Debug("request rejected")
		return nil, &InvalidRequestError{Function: name, Errors: args.Errors}
	}

	initial := middleware.Context{middleware.RequestIDKey: id.String(), middleware.FunctionKey: name}
	res, err := s.chain.Execute(ctx, initial, func(ctx context.Context, _ middleware.Context) (any, error) {
		out, err := h(ctx, args.Value)
		if err != nil {
			return nil, err
		}
		r := sig.ValidateReturn(out)
		if !r.OK() {
			log.WithField("errors", r.Errors.Error()).Warn("handler returned an invalid response")
			return nil, &InvalidResponseError{Function: name, Errors: r.Errors}
		}
		if r.Value == validator.Undefined {
			return nil, nil
		}
		return r.Value, nil
	})
	if err != nil {
		log.WithError(err).Debug("call failed")
		return nil, err
	}
	log.Debug("call completed")
	return res, nil
}
