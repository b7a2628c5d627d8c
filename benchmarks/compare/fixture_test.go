package compare_test

import (
	"bytes"
	"encoding/json"
	"strconv"
	"testing"

	gojson "github.com/goccy/go-json"

	"github.com/reoring/schemarpc/compiler"
	"github.com/reoring/schemarpc/decl"
	"github.com/reoring/schemarpc/jsonschema"
	"github.com/reoring/schemarpc/manifest"
)

const ordersAPI = `
types:
  - name: Line
    type:
      object:
        members:
          - {name: sku, type: string}
          - {name: qty, type: number}
  - name: Order
    type:
      object:
        members:
          - {name: id, type: string}
          - {name: status, type: {union: [{literal: {string: open}}, {literal: {string: closed}}]}}
          - {name: lines, type: {array: Line}}
          - {name: note, type: string, optional: true}
functions:
  - name: submit
    namespace: [orders]
    params:
      - {name: order, type: Order}
    returns: boolean
`

func ordersManifest(tb testing.TB) *manifest.Manifest {
	tb.Helper()
	f, err := decl.LoadYAML("orders.yaml", []byte(ordersAPI))
	if err != nil {
		tb.Fatalf("load: %v", err)
	}
	res, err := compiler.Compile(f)
	if err != nil {
		tb.Fatalf("compile: %v", err)
	}
	m, err := manifest.Assemble(res.Functions, res.Registry)
	if err != nil {
		tb.Fatalf("assemble: %v", err)
	}
	return m
}

// paramsDocument turns the parameter schema of fn into a standalone JSON
// Schema resource that carries the shared definitions.
func paramsDocument(tb testing.TB, m *manifest.Manifest, fn string) []byte {
	tb.Helper()
	doc := jsonschema.FromManifest(m)
	params, err := gojson.Marshal(doc.Functions[fn].Params)
	if err != nil {
		tb.Fatal(err)
	}
	root := map[string]any{}
	if err := json.Unmarshal(params, &root); err != nil {
		tb.Fatal(err)
	}
	root["$schema"] = doc.Schema
	root["$defs"] = doc.Defs
	out, err := gojson.Marshal(root)
	if err != nil {
		tb.Fatal(err)
	}
	return out
}

func smallOrder() []byte {
	return []byte(`{"order":{"id":"o_1","status":"open","lines":[{"sku":"a","qty":1}]}}`)
}

// hugeOrder returns one order with n lines of extra unknown members each.
func hugeOrder(n, extra int) []byte {
	var buf bytes.Buffer
	buf.Grow(n * (48 + extra*16))
	buf.WriteString(`{"order":{"id":"o_huge","status":"closed","lines":[`)
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		is := strconv.Itoa(i)
		buf.WriteString(`{"sku":"s` + is + `","qty":` + is)
		for k := 0; k < extra; k++ {
			ks := strconv.Itoa(k)
			buf.WriteString(`,"k` + ks + `":"v` + ks + `"`)
		}
		buf.WriteByte('}')
	}
	buf.WriteString(`]}}`)
	return buf.Bytes()
}

const (
	cmpHugeN = 10000
	cmpHugeK = 8
)

// bytesToAny decodes JSON with the stdlib for jsonschema/v5 input.
func bytesToAny(b []byte) any {
	var v any
	_ = json.Unmarshal(b, &v)
	return v
}
