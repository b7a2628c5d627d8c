package manifest

import (
	"bytes"
	"fmt"

	j "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// JSON encodes the manifest as indented JSON.
func (m *Manifest) JSON() ([]byte, error) {
	return j.MarshalIndent(m, "", "  ")
}

// YAML encodes the manifest as YAML.
func (m *Manifest) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads a JSON manifest and checks it the same way Assemble does.
func Decode(data []byte) (*Manifest, error) {
	var m Manifest
	if err := j.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return finish(&m)
}

// DecodeYAML reads a YAML manifest.
func DecodeYAML(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return finish(&m)
}

func finish(m *Manifest) (*Manifest, error) {
	if m.RPCFunctions == nil {
		m.RPCFunctions = []Function{}
	}
	if errs := m.check(); errs != nil {
		return nil, errs
	}
	return m, nil
}
