package prelude

import "testing"

func TestNames(t *testing.T) {
	got := Names()
	for _, want := range []string{"Any", "Int", "Float", "Bool", "Str", "int_add", "bool_not"} {
		if _, ok := got[want]; !ok {
			t.Fatalf("prelude name %q missing", want)
		}
	}
	if _, ok := got["a"]; ok {
		t.Fatalf("parameter names must not leak into the prelude set")
	}
}

func TestScanNamesSkipsNested(t *testing.T) {
	got := scanNames([]byte("trait T { fn m(); }\nfn top() {}\n"))
	if _, ok := got["m"]; ok {
		t.Fatalf("nested member leaked: %v", got)
	}
	if _, ok := got["T"]; !ok {
		t.Fatalf("trait missing: %v", got)
	}
	if _, ok := got["top"]; !ok {
		t.Fatalf("function missing: %v", got)
	}
}
