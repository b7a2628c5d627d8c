package decl

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	j "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a declaration file, choosing the format from its extension
// (.yaml/.yml, .json or .cue).
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path, data)
	case ".json":
		return LoadJSON(path, data)
	case ".cue":
		return LoadCUE(path, data)
	}
	return nil, fmt.Errorf("decl: unsupported file extension %q", filepath.Ext(path))
}

// LoadYAML decodes a File from YAML. Positions carry YAML line/column.
func LoadYAML(name string, data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decl: %s: %w", name, err)
	}
	f.SetFile(name)
	return &f, nil
}

// LoadJSON decodes a File from JSON. Unknown fields are rejected.
func LoadJSON(name string, data []byte) (*File, error) {
	var f File
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decl: %s: %w", name, err)
	}
	f.SetFile(name)
	return &f, nil
}

func yamlPos(n *yaml.Node) Pos { return Pos{Line: n.Line, Column: n.Column} }

// nullAsKeyword retags plain `null` scalars as strings so that they decode
// as the null keyword type instead of an absent type.
func nullAsKeyword(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" && n.Value == "null" {
		n.Tag = "!!str"
		return
	}
	for _, c := range n.Content {
		nullAsKeyword(c)
	}
}

// UnmarshalYAML accepts a bare scalar as keyword/reference shorthand.
func (t *Type) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*t = *Shorthand(n.Value)
		t.Pos = yamlPos(n)
		return nil
	}
	nullAsKeyword(n)
	type plain Type
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	*t = Type(p)
	t.Pos = yamlPos(n)
	return nil
}

func (m *Member) UnmarshalYAML(n *yaml.Node) error {
	nullAsKeyword(n)
	type plain Member
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	*m = Member(p)
	m.Pos = yamlPos(n)
	return nil
}

func (d *Declaration) UnmarshalYAML(n *yaml.Node) error {
	nullAsKeyword(n)
	type plain Declaration
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	*d = Declaration(p)
	d.Pos = yamlPos(n)
	return nil
}

func (f *Function) UnmarshalYAML(n *yaml.Node) error {
	nullAsKeyword(n)
	type plain Function
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	*f = Function(p)
	f.Pos = yamlPos(n)
	return nil
}

// UnmarshalJSON accepts a bare string as keyword/reference shorthand.
func (t *Type) UnmarshalJSON(data []byte) error {
	var name string
	if err := j.Unmarshal(data, &name); err == nil {
		*t = *Shorthand(name)
		return nil
	}
	type plain Type
	var p plain
	if err := j.Unmarshal(data, &p); err != nil {
		return err
	}
	*t = Type(p)
	return nil
}
