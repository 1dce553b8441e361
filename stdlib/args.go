package stdlib

import "git.lolli.tech/lollipopkit/lua54/rt"

func argErrorf(r *rt.Runtime, fname string, n int, format string, a ...any) {
	msg := append([]any{n, fname}, a...)
	rt.Raisef(r, "bad argument #%d to '%s' ("+format+")", msg...)
}

func checkString(r *rt.Runtime, fname string, args []rt.Value, i int) string {
	v := arg(args, i)
	switch x := v.(type) {
	case string:
		return x
	case int64, float64:
		return rt.NumberToString(x)
	}
	argErrorf(r, fname, i+1, "string expected, got %s", rt.TypeOf(v).String())
	return ""
}

func optString(args []rt.Value, i int, def string) string {
	v := arg(args, i)
	if v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

func checkInt(r *rt.Runtime, fname string, args []rt.Value, i int) int64 {
	v := arg(args, i)
	n, ok := rt.ToInteger(v)
	if !ok {
		argErrorf(r, fname, i+1, "number expected, got %s", rt.TypeOf(v).String())
	}
	return n
}

func optInt(args []rt.Value, i int, def int64) int64 {
	v := arg(args, i)
	if v == nil {
		return def
	}
	n, ok := rt.ToInteger(v)
	if !ok {
		return def
	}
	return n
}

func checkNumber(r *rt.Runtime, fname string, args []rt.Value, i int) float64 {
	v := arg(args, i)
	f, ok := rt.ToFloat(v)
	if !ok {
		argErrorf(r, fname, i+1, "number expected, got %s", rt.TypeOf(v).String())
	}
	return f
}

func optNumber(args []rt.Value, i int, def float64) float64 {
	v := arg(args, i)
	if v == nil {
		return def
	}
	f, ok := rt.ToFloat(v)
	if !ok {
		return def
	}
	return f
}

func checkTable(r *rt.Runtime, fname string, args []rt.Value, i int) *rt.Table {
	v := arg(args, i)
	t, ok := v.(*rt.Table)
	if !ok {
		argErrorf(r, fname, i+1, "table expected, got %s", rt.TypeOf(v).String())
	}
	return t
}

func checkFunction(r *rt.Runtime, fname string, args []rt.Value, i int) rt.Value {
	v := arg(args, i)
	switch v.(type) {
	case *rt.Closure, *rt.GoFunc:
		return v
	}
	argErrorf(r, fname, i+1, "function expected, got %s", rt.TypeOf(v).String())
	return nil
}
