package rt_test

import (
	"strings"
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

func TestArithmetic(t *testing.T) {
	cases := []struct {
		src  string
		want rt.Value
	}{
		{"return 1 + 2", int64(3)},
		{"return 7 // 2", int64(3)},
		{"return 7 % 2", int64(1)},
		{"return 2 ^ 10", float64(1024)},
		{"return 1 / 2", float64(0.5)},
		{"return 5 & 3", int64(1)},
		{"return 1 << 4", int64(16)},
		{"return 9223372036854775807 + 1", int64(-9223372036854775808)},
	}
	for _, c := range cases {
		got := run(t, c.src)
		if len(got) != 1 || got[0] != c.want {
			t.Errorf("%s: got %v, want %v", c.src, got, c.want)
		}
	}
}

func TestStringConcatAndCoercion(t *testing.T) {
	got := run(t, `return "a" .. 1 .. "b"`)
	if got[0] != "a1b" {
		t.Fatalf("got %v", got)
	}
}

func TestClosuresInLoopsCaptureFreshLocal(t *testing.T) {
	got := run(t, `
		local fns = {}
		for i = 1, 3 do
			local x = i
			fns[i] = function() return x end
		end
		return fns[1](), fns[2](), fns[3]()
	`)
	want := []rt.Value{int64(1), int64(2), int64(3)}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("iteration %d: got %v want %v", i, got[i], w)
		}
	}
}

func TestMetatableIndexChain(t *testing.T) {
	got := run(t, `
		local base = {greet = "hi"}
		local mid = setmetatable({}, {__index = base})
		local top = setmetatable({}, {__index = mid})
		return top.greet
	`)
	if got[0] != "hi" {
		t.Fatalf("got %v", got)
	}
}

func TestPcallCatchesError(t *testing.T) {
	got := run(t, `
		local ok, msg = pcall(function() error("boom") end)
		return ok, msg
	`)
	if got[0] != false {
		t.Fatalf("expected failure, got %v", got)
	}
	msg, ok := got[1].(string)
	if !ok || !strings.Contains(msg, "boom") {
		t.Fatalf("expected message containing boom, got %v", got[1])
	}
}

func TestGotoSkipsForward(t *testing.T) {
	got := run(t, `
		local x = 0
		goto skip
		x = 100
		::skip::
		x = x + 1
		return x
	`)
	if got[0] != int64(1) {
		t.Fatalf("got %v", got)
	}
}

func TestCoroutineYieldResume(t *testing.T) {
	got := run(t, `
		local co = coroutine.create(function(a)
			local b = coroutine.yield(a + 1)
			return b + 1
		end)
		local ok1, v1 = coroutine.resume(co, 10)
		local ok2, v2 = coroutine.resume(co, 20)
		return ok1, v1, ok2, v2
	`)
	want := []rt.Value{true, int64(11), true, int64(21)}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("index %d: got %v want %v", i, got[i], w)
		}
	}
}

func TestToBeCLosedVariable(t *testing.T) {
	got := run(t, `
		local log = {}
		do
			local closer <close> = setmetatable({}, {__close = function() log[#log+1] = "closed" end})
			log[#log+1] = "inside"
		end
		return log[1], log[2]
	`)
	if got[0] != "inside" || got[1] != "closed" {
		t.Fatalf("got %v", got)
	}
}
