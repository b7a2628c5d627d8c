package benchmarks_test

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/reoring/schemarpc/compiler"
	"github.com/reoring/schemarpc/decl"
	"github.com/reoring/schemarpc/manifest"
)

const usersAPI = `
types:
  - name: User
    type:
      object:
        members:
          - {name: id, type: string}
          - {name: name, type: string}
          - {name: age, type: number}
          - {name: active, type: boolean}
          - name: meta
            type: {object: {members: [{name: score, type: number}]}}
functions:
  - name: get
    namespace: [users]
    params:
      - {name: id, type: string}
      - {name: name, type: string, optional: true}
    returns: User
  - name: import
    namespace: [users]
    params:
      - {name: users, type: {array: User}}
    returns: number
`

func usersManifest(tb testing.TB) *manifest.Manifest {
	tb.Helper()
	f, err := decl.LoadYAML("users.yaml", []byte(usersAPI))
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

func smallBody() []byte { return []byte(`{"id":"u_1","name":"alice"}`) }

// importBody returns {"users":[...]} with n users, each carrying extra
// unknown members k0..k(extra-1).
func importBody(n, extra int) []byte {
	var buf bytes.Buffer
	buf.Grow(n * (96 + extra*16))
	buf.WriteString(`{"users":[`)
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		is := strconv.Itoa(i)
		buf.WriteString(`{"id":"u_` + is + `","name":"n` + is + `","age":` + is)
		buf.WriteString(`,"active":` + strconv.FormatBool(i%2 == 0))
		buf.WriteString(`,"meta":{"score":` + is + `}`)
		for k := 0; k < extra; k++ {
			ks := strconv.Itoa(k)
			buf.WriteString(`,"k` + ks + `":"v` + is + `_` + ks + `"`)
		}
		buf.WriteByte('}')
	}
	buf.WriteString(`]}`)
	return buf.Bytes()
}

const (
	hugeN = 10000
	hugeK = 8
)
