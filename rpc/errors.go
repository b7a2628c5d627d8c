package rpc

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	schemarpc "github.com/reoring/schemarpc"
	"github.com/reoring/schemarpc/middleware"
)

// InvalidRequestError reports a body that failed decoding or parameter
// validation.
type InvalidRequestError struct {
	Function string
	Errors   schemarpc.ValidationErrors
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("rpc %s: invalid request: %v", e.Function, e.Errors)
}

func (e *InvalidRequestError) Unwrap() error { return e.Errors }

// InvalidResponseError reports a handler result that does not match the
// declared return schema.
type InvalidResponseError struct {
	Function string
	Errors   schemarpc.ValidationErrors
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("rpc %s: invalid response: %v", e.Function, e.Errors)
}

func (e *InvalidResponseError) Unwrap() error { return e.Errors }

// UnknownFunctionError reports a name the manifest does not declare.
type UnknownFunctionError struct {
	Function string
}

func (e *UnknownFunctionError) Error() string { return fmt.Sprintf("rpc: unknown function %q", e.Function) }

// ErrNotImplemented is returned for declared functions without a handler.
var ErrNotImplemented = errors.New("rpc: function not implemented")

// StatusOf maps an error returned by Call to an HTTP status code.
func StatusOf(err error) int {
	var (
		ireq *InvalidRequestError
		ires *InvalidResponseError
		unk  *UnknownFunctionError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &ireq):
		return http.StatusBadRequest
	case errors.As(err, &unk):
		return http.StatusNotFound
	case errors.Is(err, ErrNotImplemented):
		return http.StatusNotImplemented
	case errors.As(err, &ires):
		return http.StatusInternalServerError
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// Response returns the status and JSON body for an error returned by Call.
// Request validation failures carry the error list; everything else is
// reduced to a message so server-side details stay private.
func Response(err error) (int, map[string]any) {
	status := StatusOf(err)
	var ireq *InvalidRequestError
	if errors.As(err, &ireq) {
		return status, middleware.ErrorPayload(ireq.Errors)
	}
	if status == http.StatusInternalServerError {
		return status, map[string]any{"error": http.StatusText(status)}
	}
	return status, map[string]any{"error": err.Error()}
}
