package echomw

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/reoring/schemarpc/compiler"
	"github.com/reoring/schemarpc/manifest"
	"github.com/reoring/schemarpc/rpc"
	"github.com/reoring/schemarpc/schema"
)

func testServer(t *testing.T) *rpc.Server {
	t.Helper()
	str := &schema.Primitive{Type: schema.String}
	m, err := manifest.Assemble([]compiler.Function{{
		Name:    "echo",
		Params:  []compiler.Param{{Name: "text", Position: 0, Node: str}},
		Returns: str,
	}})
	if err != nil {
		t.Fatal(err)
	}
	srv, err := rpc.NewServer(m)
	if err != nil {
		t.Fatal(err)
	}
	if err := srv.Handle("echo", func(ctx context.Context, args []any) (any, error) { return args[0], nil }); err != nil {
		t.Fatal(err)
	}
	return srv
}

func TestHandler(t *testing.T) {
	e := echo.New()
	Mount(e, "/rpc", testServer(t))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rpc/echo", strings.NewReader(`{"text":"hi"}`)))
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `"hi"` {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rpc/echo", strings.NewReader(`{"text":1}`)))
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), `"path":"text"`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rpc/nope", strings.NewReader(`{}`)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
