// Package schemarpc provides:
//
// - A structural schema model for RPC function signatures (package schema)
// - A compiler from declared types to schema trees (package compiler)
// - A manifest that bundles every function's parameter/return schemas with the
//   shared model registry (package manifest)
// - Exhaustive runtime validators built from the schema tree (package validator),
//   either as live closures or as generated Go source (internal/gen)
// - An onion middleware chain and a validated call dispatcher (packages middleware, rpc)
//
// The root package holds the error model shared by all of them: ParseResult,
// ValidationError (path-addressed, nested) and JSON body decoding.
//
// Typical usage:
//
//	res, err := compiler.Compile(file)
//	m, err := manifest.Assemble(res.Functions, res.Registry)
//	v, err := validator.New(m.Registry)
//	body, err := schemarpc.DecodeJSON(data, schemarpc.DecodeOpt{})
//	args := v.ValidateParameters(m.Function("notes.create"), body)
package schemarpc
