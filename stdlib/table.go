package stdlib

import (
	"sort"
	"strings"

	"git.lolli.tech/lollipopkit/lua54/rt"
)

func openTable(r *rt.Runtime) {
	t := newLibTable(r, "table")
	reg(t, "insert", tableInsert)
	reg(t, "remove", tableRemove)
	reg(t, "concat", tableConcat)
	reg(t, "sort", tableSort)
	reg(t, "pack", tablePack)
	reg(t, "unpack", tableUnpack)
	reg(t, "move", tableMove)
}

func tableInsert(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	t := checkTable(r, "insert", args, 0)
	n := t.Len()
	switch len(args) {
	case 2:
		_ = t.Set(n+1, args[1])
	case 3:
		pos := checkInt(r, "insert", args, 1)
		if pos < 1 || pos > n+1 {
			rt.Raisef(r, "bad argument #2 to 'insert' (position out of bounds)")
		}
		for i := n + 1; i > pos; i-- {
			_ = t.Set(i, t.Get(i-1))
		}
		_ = t.Set(pos, args[2])
	default:
		rt.Raisef(r, "wrong number of arguments to 'insert'")
	}
	return nil, nil
}

func tableRemove(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	t := checkTable(r, "remove", args, 0)
	n := t.Len()
	pos := optInt(args, 1, n)
	if n == 0 {
		return []rt.Value{nil}, nil
	}
	if pos < 1 || pos > n+1 {
		rt.Raisef(r, "bad argument #2 to 'remove' (position out of bounds)")
	}
	v := t.Get(pos)
	for i := pos; i < n; i++ {
		_ = t.Set(i, t.Get(i+1))
	}
	_ = t.Set(n, nil)
	return []rt.Value{v}, nil
}

func tableConcat(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	t := checkTable(r, "concat", args, 0)
	sep := optString(args, 1, "")
	i := optInt(args, 2, 1)
	j := optInt(args, 3, t.Len())
	var b strings.Builder
	for k := i; k <= j; k++ {
		v := t.Get(k)
		s, ok := concatElem(v)
		if !ok {
			rt.Raisef(r, "invalid value (%s) at index %d in table for 'concat'", rt.TypeOf(v).String(), k)
		}
		b.WriteString(s)
		if k < j {
			b.WriteString(sep)
		}
	}
	return []rt.Value{b.String()}, nil
}

func concatElem(v rt.Value) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case int64, float64:
		return rt.NumberToString(x), true
	}
	return "", false
}

func tableSort(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	t := checkTable(r, "sort", args, 0)
	n := int(t.Len())
	cmp := arg(args, 1)

	vals := make([]rt.Value, n)
	for i := 0; i < n; i++ {
		vals[i] = t.Get(int64(i + 1))
	}

	var sortErr error
	sort.SliceStable(vals, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		if cmp != nil {
			res, err := rt.Call(r, cmp, []rt.Value{vals[i], vals[j]})
			if err != nil {
				sortErr = err
				return false
			}
			return len(res) > 0 && rt.Truthy(res[0])
		}
		return rt.Lt(r, vals[i], vals[j])
	})
	if sortErr != nil {
		return nil, sortErr
	}
	for i := 0; i < n; i++ {
		_ = t.Set(int64(i+1), vals[i])
	}
	return nil, nil
}

func tablePack(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	t := rt.NewTableSize(len(args), 1)
	for i, v := range args {
		_ = t.Set(int64(i+1), v)
	}
	_ = t.Set("n", int64(len(args)))
	return []rt.Value{t}, nil
}

func tableUnpack(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	t := checkTable(r, "unpack", args, 0)
	i := optInt(args, 1, 1)
	j := optInt(args, 2, t.Len())
	if i > j {
		return nil, nil
	}
	out := make([]rt.Value, 0, j-i+1)
	for k := i; k <= j; k++ {
		out = append(out, t.Get(k))
	}
	return out, nil
}

func tableMove(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	a1 := checkTable(r, "move", args, 0)
	f := checkInt(r, "move", args, 1)
	e := checkInt(r, "move", args, 2)
	tpos := checkInt(r, "move", args, 3)
	a2 := a1
	if len(args) > 4 && args[4] != nil {
		a2 = checkTable(r, "move", args, 4)
	}
	if e >= f {
		if tpos > f || tpos > e || a1 != a2 {
			for i := int64(0); i <= e-f; i++ {
				_ = a2.Set(tpos+i, a1.Get(f+i))
			}
		} else {
			for i := e - f; i >= 0; i-- {
				_ = a2.Set(tpos+i, a1.Get(f+i))
			}
		}
	}
	return []rt.Value{a2}, nil
}
