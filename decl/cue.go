package decl

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"
)

// LoadCUE evaluates a CUE document whose concrete value has the shape of a
// File, e.g.
//
//	types: [{name: "Note", type: object: members: [{name: "id", type: "string"}]}]
//	functions: [{name: "get", namespace: ["notes"], params: [{name: "id", type: "string"}], returns: "Note"}]
//
// CUE definitions and references may be used to share fragments; the result
// must be concrete. Declaration and function positions point into the CUE source.
func LoadCUE(name string, data []byte) (*File, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(name))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("decl: compiling %s: %w", name, err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("decl: %s is not concrete: %w", name, err)
	}
	js, err := v.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("decl: exporting %s: %w", name, err)
	}
	f, err := LoadJSON(name, js)
	if err != nil {
		return nil, err
	}
	if err := stampCUEPositions(v, f); err != nil {
		return nil, err
	}
	return f, nil
}

func stampCUEPositions(v cue.Value, f *File) error {
	types, err := listPositions(v.LookupPath(cue.ParsePath("types")))
	if err != nil {
		return err
	}
	for i := range f.Types {
		if i < len(types) {
			f.Types[i].Pos = types[i]
		}
	}
	fns, err := listPositions(v.LookupPath(cue.ParsePath("functions")))
	if err != nil {
		return err
	}
	for i := range f.Functions {
		if i < len(fns) {
			f.Functions[i].Pos = fns[i]
		}
	}
	return nil
}

func listPositions(v cue.Value) ([]Pos, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, fmt.Errorf("decl: %w", err)
	}
	var out []Pos
	for iter.Next() {
		out = append(out, fromToken(iter.Value().Pos()))
	}
	return out, nil
}

func fromToken(p token.Pos) Pos {
	if !p.IsValid() {
		return Pos{}
	}
	return Pos{File: p.Filename(), Line: p.Line(), Column: p.Column()}
}
