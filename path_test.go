package schemarpc_test

import (
	"testing"

	schemarpc "github.com/reoring/schemarpc"
)

func TestPath_Rendering(t *testing.T) {
	cases := []struct {
		got  schemarpc.Path
		want string
	}{
		{schemarpc.Root, ""},
		{schemarpc.Root.Field("user").Field("name"), "user.name"},
		{schemarpc.Root.Field("items").Index(2), "items[2]"},
		{schemarpc.Root.Field("a b"), `["a b"]`},
		{schemarpc.Root.Field("m").Field("0x"), "m[\"0x\"]"},
		{schemarpc.Root.Field("role").Alternative(1), "role@1"},
		{schemarpc.Root.Index(0).Field("id"), "[0].id"},
	}
	for _, c := range cases {
		if c.got.String() != c.want {
			t.Errorf("got %q want %q", c.got, c.want)
		}
	}
}

func TestFromPointer(t *testing.T) {
	cases := map[string]string{
		"":          "",
		"/":         "",
		"/a/0/b":    "a[0].b",
		"/a~1b/c":   `["a/b"].c`,
		"/x/01":     `x["01"]`,
		"/items/10": "items[10]",
	}
	for in, want := range cases {
		if got := schemarpc.FromPointer(in).String(); got != want {
			t.Errorf("FromPointer(%q)=%q want %q", in, got, want)
		}
	}
}
