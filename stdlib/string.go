package stdlib

import (
	"strings"

	"git.lolli.tech/lollipopkit/lua54/pack"
	"git.lolli.tech/lollipopkit/lua54/pattern"
	"git.lolli.tech/lollipopkit/lua54/rt"
)

func openString(r *rt.Runtime) {
	t := newLibTable(r, "string")
	reg(t, "len", strLen)
	reg(t, "sub", strSub)
	reg(t, "upper", strFn(strings.ToUpper))
	reg(t, "lower", strFn(strings.ToLower))
	reg(t, "rep", strRep)
	reg(t, "reverse", strReverse)
	reg(t, "byte", strByte)
	reg(t, "char", strChar)
	reg(t, "format", strFormat)
	reg(t, "find", strFind)
	reg(t, "match", strMatch)
	reg(t, "gmatch", strGmatch)
	reg(t, "gsub", strGsub)
	reg(t, "pack", strPack)
	reg(t, "unpack", strUnpack)
	reg(t, "packsize", strPacksize)

	// strings share a metatable so that ("x"):upper() style method calls
	// work, per §4.4.1's note that the string type carries one.
	mt := rt.NewTable()
	_ = mt.Set("__index", t)
	r.SetStringMetatable(mt)
}

func strFn(f func(string) string) func(*rt.Runtime, []rt.Value) ([]rt.Value, error) {
	return func(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
		s := checkString(r, "string", args, 0)
		return []rt.Value{f(s)}, nil
	}
}

func strLen(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	s := checkString(r, "len", args, 0)
	return []rt.Value{int64(len(s))}, nil
}

// strIndex converts a Lua 1-based, possibly-negative string index into a
// 0-based byte offset clamped to [0,len], per §4.5's indexing rules.
func strIndex(i int64, length int) int {
	if i >= 0 {
		return int(i)
	}
	r := length + int(i) + 1
	if r < 0 {
		return 0
	}
	return r
}

func strSub(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	s := checkString(r, "sub", args, 0)
	l := len(s)
	i := posRelat(optInt(args, 1, 1), l)
	j := posRelat(optInt(args, 2, -1), l)
	if i < 1 {
		i = 1
	}
	if j > int64(l) {
		j = int64(l)
	}
	if i > j {
		return []rt.Value{""}, nil
	}
	return []rt.Value{s[i-1 : j]}, nil
}

func posRelat(pos int64, length int) int64 {
	if pos >= 0 {
		return pos
	}
	if -pos > int64(length) {
		return 0
	}
	return int64(length) + pos + 1
}

func strRep(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	s := checkString(r, "rep", args, 0)
	n := checkInt(r, "rep", args, 1)
	sep := optString(args, 2, "")
	if n <= 0 {
		return []rt.Value{""}, nil
	}
	parts := make([]string, n)
	for i := range parts {
		parts[i] = s
	}
	return []rt.Value{strings.Join(parts, sep)}, nil
}

func strReverse(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	s := checkString(r, "reverse", args, 0)
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return []rt.Value{string(b)}, nil
}

func strByte(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	s := checkString(r, "byte", args, 0)
	l := len(s)
	i := posRelat(optInt(args, 1, 1), l)
	j := posRelat(optInt(args, 2, i), l)
	if i < 1 {
		i = 1
	}
	if j > int64(l) {
		j = int64(l)
	}
	if i > j {
		return nil, nil
	}
	out := make([]rt.Value, 0, j-i+1)
	for k := i; k <= j; k++ {
		out = append(out, int64(s[k-1]))
	}
	return out, nil
}

func strChar(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	b := make([]byte, len(args))
	for i := range args {
		n := checkInt(r, "char", args, i)
		if n < 0 || n > 255 {
			argErrorf(r, "char", i+1, "value out of range")
		}
		b[i] = byte(n)
	}
	return []rt.Value{string(b)}, nil
}

func strFind(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	s := checkString(r, "find", args, 0)
	pat := checkString(r, "find", args, 1)
	init := strInit(optInt(args, 2, 1), len(s))
	plain := len(args) > 3 && rt.Truthy(args[3])

	start, end, caps, ok, err := pattern.Find(s, pat, init, plain)
	if err != nil {
		rt.Raisef(r, "%s", err.Error())
	}
	if !ok {
		return []rt.Value{nil}, nil
	}
	out := []rt.Value{int64(start + 1), int64(end)}
	out = append(out, capsToValues(caps)...)
	return out, nil
}

func strInit(i int64, length int) int {
	if i > 0 {
		if int(i) > length+1 {
			return length + 1
		}
		return int(i - 1)
	}
	if i == 0 {
		return 0
	}
	p := length + int(i)
	if p < 0 {
		p = 0
	}
	return p
}

func capsToValues(caps []any) []rt.Value {
	out := make([]rt.Value, len(caps))
	for i, c := range caps {
		if cp, ok := c.(pattern.CapturePos); ok {
			out[i] = int64(cp)
		} else {
			out[i] = c
		}
	}
	return out
}

func strMatch(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	s := checkString(r, "match", args, 0)
	pat := checkString(r, "match", args, 1)
	init := strInit(optInt(args, 2, 1), len(s))

	caps, ok, err := pattern.Match1(s, pat, init)
	if err != nil {
		rt.Raisef(r, "%s", err.Error())
	}
	if !ok {
		return []rt.Value{nil}, nil
	}
	return capsToValues(caps), nil
}

func strGmatch(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	s := checkString(r, "gmatch", args, 0)
	pat := checkString(r, "gmatch", args, 1)
	pos := 0
	iter := rt.NewGoFunc("gmatch-iterator", func(r *rt.Runtime, _ []rt.Value) ([]rt.Value, error) {
		for pos <= len(s) {
			start, end, caps, ok, err := pattern.Match(s, pat, pos)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, nil
			}
			if end == pos {
				pos = end + 1
			} else {
				pos = end
			}
			_ = start
			return capsToValues(caps), nil
		}
		return nil, nil
	})
	return []rt.Value{iter}, nil
}

func strGsub(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	s := checkString(r, "gsub", args, 0)
	pat := checkString(r, "gsub", args, 1)
	repl := arg(args, 2)
	maxN := int(optInt(args, 3, -1))

	out, n, err := pattern.Gsub(s, pat, maxN, func(whole string, caps []any) (string, bool, error) {
		vals := capsToValues(caps)
		switch rv := repl.(type) {
		case string:
			return expandReplString(rv, whole, vals), true, nil
		case int64, float64:
			return expandReplString(rt.NumberToString(rv), whole, vals), true, nil
		case *rt.Table:
			v := rv.Get(vals[0])
			return replValueToString(r, v)
		case *rt.Closure, *rt.GoFunc:
			res, cerr := rt.Call(r, rv, vals)
			if cerr != nil {
				return "", false, cerr
			}
			if len(res) == 0 {
				return "", false, nil
			}
			return replValueToString(r, res[0])
		}
		return "", false, nil
	})
	if err != nil {
		rt.Raisef(r, "%s", err.Error())
	}
	return []rt.Value{out, int64(n)}, nil
}

func replValueToString(r *rt.Runtime, v rt.Value) (string, bool, error) {
	if v == nil || v == false {
		return "", false, nil
	}
	switch x := v.(type) {
	case string:
		return x, true, nil
	case int64, float64:
		return rt.NumberToString(x), true, nil
	}
	return "", false, &rt.LuaError{Value: "invalid replacement value (a " + rt.TypeOf(v).String() + ")"}
}

func expandReplString(repl, whole string, caps []rt.Value) string {
	var b strings.Builder
	for i := 0; i < len(repl); i++ {
		c := repl[i]
		if c != '%' || i+1 >= len(repl) {
			b.WriteByte(c)
			continue
		}
		i++
		d := repl[i]
		switch {
		case d == '%':
			b.WriteByte('%')
		case d == '0':
			b.WriteString(whole)
		case d >= '1' && d <= '9':
			idx := int(d - '1')
			if idx < len(caps) {
				if s, ok := caps[idx].(string); ok {
					b.WriteString(s)
				} else {
					b.WriteString(rt.NumberToString(caps[idx]))
				}
			}
		default:
			b.WriteByte(d)
		}
	}
	return b.String()
}

func strPack(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	format := checkString(r, "pack", args, 0)
	vals := make([]any, len(args)-1)
	for i := 1; i < len(args); i++ {
		vals[i-1] = args[i]
	}
	out, err := pack.Pack(format, vals)
	if err != nil {
		rt.Raisef(r, "%s", err.Error())
	}
	return []rt.Value{string(out)}, nil
}

func strUnpack(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	format := checkString(r, "unpack", args, 0)
	data := checkString(r, "unpack", args, 1)
	init := int(optInt(args, 2, 1)) - 1
	vals, pos, err := pack.Unpack(format, []byte(data), init)
	if err != nil {
		rt.Raisef(r, "%s", err.Error())
	}
	out := make([]rt.Value, len(vals)+1)
	for i, v := range vals {
		out[i] = v
	}
	out[len(vals)] = int64(pos + 1)
	return out, nil
}

func strPacksize(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	format := checkString(r, "packsize", args, 0)
	n, err := pack.Size(format)
	if err != nil {
		rt.Raisef(r, "%s", err.Error())
	}
	return []rt.Value{int64(n)}, nil
}
