package pattern

import (
	"reflect"
	"testing"
)

func TestMatchLiteralAndClasses(t *testing.T) {
	cases := []struct {
		src, pat   string
		wantStart  int
		wantEnd    int
		wantCaps   []any
	}{
		{"hello world", "wor", 6, 9, []any{"wor"}},
		{"  123abc", "%d+", 2, 5, []any{"123"}},
		{"key=value", "(%w+)=(%w+)", 0, 9, []any{"key", "value"}},
		{"abc", "^%a+$", 0, 3, []any{"abc"}},
	}
	for _, c := range cases {
		start, end, caps, ok, err := Match(c.src, c.pat, 0)
		if err != nil {
			t.Fatalf("%q/%q: %v", c.src, c.pat, err)
		}
		if !ok {
			t.Fatalf("%q/%q: expected match", c.src, c.pat)
		}
		if start != c.wantStart || end != c.wantEnd {
			t.Fatalf("%q/%q: got [%d,%d) want [%d,%d)", c.src, c.pat, start, end, c.wantStart, c.wantEnd)
		}
		if !reflect.DeepEqual(caps, c.wantCaps) {
			t.Fatalf("%q/%q: captures got %v want %v", c.src, c.pat, caps, c.wantCaps)
		}
	}
}

func TestMatchSetsAndBalanced(t *testing.T) {
	_, _, _, ok, err := Match("[hello]", "%b[]", 0)
	if err != nil || !ok {
		t.Fatalf("balanced match failed: ok=%v err=%v", ok, err)
	}

	_, _, caps, ok, err := Match("foo-bar_baz", "[%w_]+", 0)
	if err != nil || !ok {
		t.Fatalf("set match failed: %v", err)
	}
	if caps[0] != "foo" {
		t.Fatalf("got %v", caps)
	}
}

func TestPositionCapture(t *testing.T) {
	_, _, caps, ok, err := Match("abc", "a()b", 0)
	if err != nil || !ok {
		t.Fatalf("position capture match failed: %v", err)
	}
	if pos, ok := caps[0].(CapturePos); !ok || pos != 2 {
		t.Fatalf("got %v", caps)
	}
}

func TestGsub(t *testing.T) {
	out, n, err := Gsub("hello world", "o", -1, func(whole string, caps []any) (string, bool, error) {
		return "0", true, nil
	})
	if err != nil {
		t.Fatalf("gsub error: %v", err)
	}
	if out != "hell0 w0rld" || n != 2 {
		t.Fatalf("got %q n=%d", out, n)
	}
}

func TestFindPlain(t *testing.T) {
	start, end, _, ok, err := Find("a.b.c", ".", 0, true)
	if err != nil || !ok {
		t.Fatalf("plain find failed: %v", err)
	}
	if start != 1 || end != 2 {
		t.Fatalf("got [%d,%d)", start, end)
	}
}
