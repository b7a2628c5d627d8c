package main

import (
	"bytes"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gardenDecl = `
types:
  - name: Plant
    type:
      object:
        members:
          - {name: name, type: string}
          - {name: height, type: number, optional: true}
functions:
  - name: plant
    namespace: [garden]
    params:
      - {name: plant, type: Plant}
      - {name: at, type: Date, optional: true}
    returns: Plant
`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func compileGarden(t *testing.T, name string) string {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "garden.yaml")
	require.NoError(t, os.WriteFile(src, []byte(gardenDecl), 0o644))
	out := filepath.Join(dir, name)
	_, err := run(t, "", "compile", src, "-o", out)
	require.NoError(t, err)
	return out
}

func TestCommandPresence(t *testing.T) {
	cmd := newRootCommand()
	for _, name := range []string{"compile", "validate", "gen", "jsonschema"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("log-level"))
}

func TestCompile(t *testing.T) {
	for _, name := range []string{"manifest.json", "manifest.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := compileGarden(t, name)
			m, err := loadManifest(path)
			require.NoError(t, err)
			assert.Equal(t, []string{"garden.plant"}, m.Names())
		})
	}
}

func TestCompileToStdout(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "garden.yaml")
	require.NoError(t, os.WriteFile(src, []byte(gardenDecl), 0o644))
	out, err := run(t, "", "compile", src)
	require.NoError(t, err)
	assert.Contains(t, out, `"rpcFunctions"`)
}

func TestCompileRejectsUnknownType(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(src, []byte("functions:\n  - name: f\n    params:\n      - {name: x, type: Missing}\n"), 0o644))
	_, err := run(t, "", "compile", src)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	m := compileGarden(t, "manifest.json")

	out, err := run(t, `{"plant": {"name": "fern"}}`, "validate", "-m", m, "-f", "garden.plant")
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)

	out, err = run(t, `{"plant": {"height": "tall"}}`, "validate", "-m", m, "-f", "garden.plant")
	assert.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, `"errors"`)
	assert.Contains(t, out, `"plant"`)

	out, err = run(t, `{"a": 1, "a": 2}`, "validate", "-m", m, "-f", "garden.plant")
	assert.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, "duplicate_key")

	body := filepath.Join(t.TempDir(), "ret.json")
	require.NoError(t, os.WriteFile(body, []byte(`{"name": "fern", "height": 3}`), 0o644))
	out, err = run(t, "", "validate", "-m", m, "-f", "garden.plant", "--return", body)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)

	_, err = run(t, "{}", "validate", "-m", m, "-f", "garden.water")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, errInvalid)
}

func TestGen(t *testing.T) {
	m := compileGarden(t, "manifest.yaml")
	out, err := run(t, "", "gen", "-m", m, "-p", "gardenrpc")
	require.NoError(t, err)
	f, err := parser.ParseFile(token.NewFileSet(), "gen.go", out, 0)
	require.NoError(t, err)
	assert.Equal(t, "gardenrpc", f.Name.Name)
	assert.Contains(t, out, `"garden.plant"`)
}

func TestJSONSchema(t *testing.T) {
	m := compileGarden(t, "manifest.json")
	path := filepath.Join(t.TempDir(), "out", "schema.json")
	_, err := run(t, "", "jsonschema", "-m", m, "-o", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"$defs"`)
	assert.Contains(t, string(data), `"garden.plant"`)
}

func TestInvalidConfig(t *testing.T) {
	_, err := run(t, "", "--log-level", "loud", "jsonschema", "-m", "x.json")
	assert.Error(t, err)
	_, err = run(t, "", "--config", filepath.Join(t.TempDir(), "none.yaml"), "jsonschema", "-m", "x.json")
	assert.Error(t, err)
}
