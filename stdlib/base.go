package stdlib

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"git.lolli.tech/lollipopkit/lua54/rt"
)

var stdout = bufio.NewWriter(os.Stdout)

func openBase(r *rt.Runtime) {
	g := r.Globals
	_ = g.Set("_G", g)
	_ = g.Set("_VERSION", "Lua 5.4")

	reg(g, "print", basePrint)
	reg(g, "tostring", baseToString)
	reg(g, "tonumber", baseToNumber)
	reg(g, "type", baseType)
	reg(g, "assert", baseAssert)
	reg(g, "error", baseError)
	reg(g, "pcall", basePcall)
	reg(g, "xpcall", baseXpcall)
	reg(g, "pairs", basePairs)
	reg(g, "ipairs", baseIpairs)
	reg(g, "next", baseNext)
	reg(g, "select", baseSelect)
	reg(g, "rawget", baseRawget)
	reg(g, "rawset", baseRawset)
	reg(g, "rawequal", baseRawequal)
	reg(g, "rawlen", baseRawlen)
	reg(g, "setmetatable", baseSetmetatable)
	reg(g, "getmetatable", baseGetmetatable)
	reg(g, "unpack", baseUnpack)
	reg(g, "load", baseLoad)
	reg(g, "loadstring", baseLoad)
	reg(g, "dofile", baseDofile)
	reg(g, "collectgarbage", baseCollectgarbage)
}

func basePrint(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = rt.ToStringMeta(r, a)
	}
	stdout.WriteString(strings.Join(parts, "\t"))
	stdout.WriteString("\n")
	stdout.Flush()
	return nil, nil
}

func baseToString(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	return []rt.Value{rt.ToStringMeta(r, arg(args, 0))}, nil
}

func baseToNumber(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	v := arg(args, 0)
	if base := arg(args, 1); base != nil {
		n, _ := rt.ToInteger(base)
		s, ok := v.(string)
		if !ok {
			return []rt.Value{nil}, nil
		}
		i, ok := parseIntBase(strings.TrimSpace(s), int(n))
		if !ok {
			return []rt.Value{nil}, nil
		}
		return []rt.Value{i}, nil
	}
	switch v.(type) {
	case int64, float64:
		return []rt.Value{v}, nil
	}
	if s, ok := v.(string); ok {
		if i, ok := rt.ParseIntString(s); ok {
			return []rt.Value{i}, nil
		}
		if f, ok := rt.ParseFloatString(s); ok {
			return []rt.Value{f}, nil
		}
	}
	return []rt.Value{nil}, nil
}

func parseIntBase(s string, base int) (int64, bool) {
	if s == "" || base < 2 || base > 36 {
		return 0, false
	}
	neg := false
	if s[0] == '+' || s[0] == '-' {
		neg = s[0] == '-'
		s = s[1:]
	}
	if s == "" {
		return 0, false
	}
	var n int64
	for _, c := range strings.ToLower(s) {
		var d int
		switch {
		case c >= '0' && c <= '9':
			d = int(c - '0')
		case c >= 'a' && c <= 'z':
			d = int(c-'a') + 10
		default:
			return 0, false
		}
		if d >= base {
			return 0, false
		}
		n = n*int64(base) + int64(d)
	}
	if neg {
		n = -n
	}
	return n, true
}

func baseType(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	return []rt.Value{rt.TypeOf(arg(args, 0)).String()}, nil
}

func baseAssert(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	if len(args) == 0 || !rt.Truthy(args[0]) {
		if len(args) >= 2 {
			rt.Raise(r, 1, args[1])
		}
		rt.Raisef(r, "assertion failed!")
	}
	return args, nil
}

func baseError(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	v := arg(args, 0)
	level := optInt(args, 1, 1)
	rt.Raise(r, int(level), v)
	return nil, nil
}

func basePcall(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	if len(args) == 0 {
		return []rt.Value{false, "bad argument #1 to 'pcall' (value expected)"}, nil
	}
	res, err := rt.Call(r, args[0], args[1:])
	if err != nil {
		le, _ := err.(*rt.LuaError)
		var v rt.Value = err.Error()
		if le != nil {
			v = le.Value
		}
		return []rt.Value{false, v}, nil
	}
	return append([]rt.Value{true}, res...), nil
}

func baseXpcall(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("bad argument #2 to 'xpcall' (value expected)")
	}
	handler := args[1]
	res, err := rt.Call(r, args[0], args[2:])
	if err != nil {
		le, _ := err.(*rt.LuaError)
		var v rt.Value = err.Error()
		if le != nil {
			v = le.Value
		}
		hres, herr := rt.Call(r, handler, []rt.Value{v})
		if herr != nil {
			return []rt.Value{false, v}, nil
		}
		return append([]rt.Value{false}, hres...), nil
	}
	return append([]rt.Value{true}, res...), nil
}

func basePairs(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	t := arg(args, 0)
	if tbl, ok := t.(*rt.Table); ok {
		if mt := tbl.Metatable(); mt != nil {
			if h := mt.Get("__pairs"); h != nil {
				return rt.Call(r, h, args)
			}
		}
	}
	return []rt.Value{rt.NewGoFunc("next", baseNext), t, nil}, nil
}

func baseIpairs(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	t := arg(args, 0)
	iter := rt.NewGoFunc("inext", func(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
		tbl := args[0]
		i, _ := rt.ToInteger(args[1])
		i++
		v := rt.Index(r, tbl, i)
		if v == nil {
			return []rt.Value{nil}, nil
		}
		return []rt.Value{i, v}, nil
	})
	return []rt.Value{iter, t, int64(0)}, nil
}

func baseNext(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	t := checkTable(r, "next", args, 0)
	key := arg(args, 1)
	k, v, ok := t.Next(key)
	if !ok {
		rt.Raisef(r, "invalid key to 'next'")
	}
	if k == nil {
		return []rt.Value{nil}, nil
	}
	return []rt.Value{k, v}, nil
}

func baseSelect(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	sel := arg(args, 0)
	if s, ok := sel.(string); ok && s == "#" {
		return []rt.Value{int64(len(args) - 1)}, nil
	}
	n, ok := rt.ToInteger(sel)
	if !ok {
		argErrorf(r, "select", 1, "number expected, got %s", rt.TypeOf(sel).String())
	}
	rest := args[1:]
	if n < 0 {
		n = int64(len(rest)) + n + 1
	}
	if n < 1 {
		rt.Raisef(r, "bad argument #1 to 'select' (index out of range)")
	}
	if int(n) > len(rest) {
		return nil, nil
	}
	return rest[n-1:], nil
}

func baseRawget(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	t := checkTable(r, "rawget", args, 0)
	return []rt.Value{t.Get(arg(args, 1))}, nil
}

func baseRawset(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	t := checkTable(r, "rawset", args, 0)
	if err := t.Set(arg(args, 1), arg(args, 2)); err != nil {
		rt.Raisef(r, "%s", err.Error())
	}
	return []rt.Value{t}, nil
}

func baseRawequal(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	return []rt.Value{rt.RawEq(arg(args, 0), arg(args, 1))}, nil
}

func baseRawlen(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	v := arg(args, 0)
	if t, ok := v.(*rt.Table); ok {
		return []rt.Value{t.Len()}, nil
	}
	if s, ok := v.(string); ok {
		return []rt.Value{int64(len(s))}, nil
	}
	rt.Raisef(r, "table or string expected")
	return nil, nil
}

func baseSetmetatable(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	t := checkTable(r, "setmetatable", args, 0)
	if t.Metatable() != nil && t.Metatable().Get("__metatable") != nil {
		rt.Raisef(r, "cannot change a protected metatable")
	}
	m := arg(args, 1)
	if m == nil {
		t.SetMetatable(nil)
		return []rt.Value{t}, nil
	}
	mt, ok := m.(*rt.Table)
	if !ok {
		argErrorf(r, "setmetatable", 2, "nil or table expected")
	}
	t.SetMetatable(mt)
	return []rt.Value{t}, nil
}

func baseGetmetatable(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	v := arg(args, 0)
	t, ok := v.(*rt.Table)
	if !ok || t.Metatable() == nil {
		return []rt.Value{nil}, nil
	}
	mt := t.Metatable()
	if protected := mt.Get("__metatable"); protected != nil {
		return []rt.Value{protected}, nil
	}
	return []rt.Value{mt}, nil
}

func baseUnpack(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	return tableUnpack(r, args)
}

func baseLoad(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	chunk := arg(args, 0)
	name := optString(args, 1, "=(load)")
	src, ok := chunk.(string)
	if !ok {
		return []rt.Value{nil, "load: only string chunks are supported"}, nil
	}
	c, err := rt.Load([]byte(src), name)
	if err != nil {
		return []rt.Value{nil, err.Error()}, nil
	}
	return []rt.Value{c}, nil
}

func baseDofile(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	path := checkString(r, "dofile", args, 0)
	data, err := os.ReadFile(path)
	if err != nil {
		rt.Raisef(r, "cannot open %s", path)
	}
	c, lerr := rt.Load(data, "@"+path)
	if lerr != nil {
		rt.Raisef(r, "%s", lerr.Error())
	}
	return rt.Call(r, c, nil)
}

func baseCollectgarbage(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	opt := optString(args, 0, "collect")
	if opt == "count" {
		return []rt.Value{float64(0), float64(0)}, nil
	}
	return []rt.Value{int64(0)}, nil
}
