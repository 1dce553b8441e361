package stdlib_test

import (
	"testing"

	"git.lolli.tech/lollipopkit/lua54/rt"
	"git.lolli.tech/lollipopkit/lua54/stdlib"
)

func run(t *testing.T, src string) []rt.Value {
	t.Helper()
	r := rt.NewRuntime()
	stdlib.OpenAll(r)
	results, err := rt.RunMain(r, []byte(src), "=test", nil)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	return results
}

func TestStringFormat(t *testing.T) {
	got := run(t, `return string.format("%d-%s-%5.2f", 3, "x", 1.5)`)
	if got[0] != "3-x- 1.50" {
		t.Fatalf("got %q", got[0])
	}
}

func TestStringFindAndGsub(t *testing.T) {
	got := run(t, `
		local s, e = string.find("hello world", "wor")
		local r, n = string.gsub("banana", "a", "o")
		return s, e, r, n
	`)
	want := []rt.Value{int64(7), int64(9), "bonono", int64(3)}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("index %d: got %v want %v", i, got[i], w)
		}
	}
}

func TestTableSortAndConcat(t *testing.T) {
	got := run(t, `
		local t = {3, 1, 2}
		table.sort(t)
		return table.concat(t, ",")
	`)
	if got[0] != "1,2,3" {
		t.Fatalf("got %v", got[0])
	}
}

func TestMathLibrary(t *testing.T) {
	got := run(t, `return math.floor(3.7), math.max(1, 5, 2), math.type(1), math.type(1.0)`)
	want := []rt.Value{int64(3), int64(5), "integer", "float"}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("index %d: got %v want %v", i, got[i], w)
		}
	}
}

func TestUTF8Library(t *testing.T) {
	got := run(t, `return utf8.len("héllo"), utf8.char(104, 233)`)
	if got[0] != int64(5) {
		t.Fatalf("len = %v", got[0])
	}
	if got[1] != "h\xc3\xa9" {
		t.Fatalf("char = %q", got[1])
	}
}
