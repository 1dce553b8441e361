package stdlib

import (
	"math"

	"git.lolli.tech/lollipopkit/lua54/rt"
)

func openMath(r *rt.Runtime) {
	t := newLibTable(r, "math")
	_ = t.Set("pi", math.Pi)
	_ = t.Set("huge", math.Inf(1))
	_ = t.Set("maxinteger", int64(math.MaxInt64))
	_ = t.Set("mininteger", int64(math.MinInt64))

	reg(t, "abs", mathAbs)
	reg(t, "ceil", mathCeil)
	reg(t, "floor", mathFloor)
	reg(t, "sqrt", mathFn1(math.Sqrt))
	reg(t, "sin", mathFn1(math.Sin))
	reg(t, "cos", mathFn1(math.Cos))
	reg(t, "tan", mathFn1(math.Tan))
	reg(t, "asin", mathFn1(math.Asin))
	reg(t, "acos", mathFn1(math.Acos))
	reg(t, "atan", mathAtan)
	reg(t, "exp", mathFn1(math.Exp))
	reg(t, "log", mathLog)
	reg(t, "fmod", mathFmod)
	reg(t, "modf", mathModf)
	reg(t, "max", mathMax)
	reg(t, "min", mathMin)
	reg(t, "random", mathRandom)
	reg(t, "randomseed", mathRandomseed)
	reg(t, "tointeger", mathToInteger)
	reg(t, "type", mathType)
	reg(t, "ult", mathUlt)
}

func mathFn1(f func(float64) float64) func(*rt.Runtime, []rt.Value) ([]rt.Value, error) {
	return func(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
		x := checkNumber(r, "math", args, 0)
		return []rt.Value{f(x)}, nil
	}
}

func mathAbs(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	v := arg(args, 0)
	if i, ok := v.(int64); ok {
		if i < 0 {
			i = -i
		}
		return []rt.Value{i}, nil
	}
	f := checkNumber(r, "abs", args, 0)
	return []rt.Value{math.Abs(f)}, nil
}

func mathCeil(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	v := arg(args, 0)
	if i, ok := v.(int64); ok {
		return []rt.Value{i}, nil
	}
	f := checkNumber(r, "ceil", args, 0)
	i, ok := rt.FloatToInteger(math.Ceil(f))
	if !ok {
		rt.Raisef(r, "number has no integer representation")
	}
	return []rt.Value{i}, nil
}

func mathFloor(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	v := arg(args, 0)
	if i, ok := v.(int64); ok {
		return []rt.Value{i}, nil
	}
	f := checkNumber(r, "floor", args, 0)
	i, ok := rt.FloatToInteger(math.Floor(f))
	if !ok {
		rt.Raisef(r, "number has no integer representation")
	}
	return []rt.Value{i}, nil
}

func mathAtan(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	y := checkNumber(r, "atan", args, 0)
	x := optNumber(args, 1, 1)
	return []rt.Value{math.Atan2(y, x)}, nil
}

func mathLog(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	x := checkNumber(r, "log", args, 0)
	if len(args) > 1 {
		base := checkNumber(r, "log", args, 1)
		switch base {
		case 2:
			return []rt.Value{math.Log2(x)}, nil
		case 10:
			return []rt.Value{math.Log10(x)}, nil
		}
		return []rt.Value{math.Log(x) / math.Log(base)}, nil
	}
	return []rt.Value{math.Log(x)}, nil
}

func mathFmod(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	a := arg(args, 0)
	b := arg(args, 1)
	if ai, ok := a.(int64); ok {
		if bi, ok := b.(int64); ok {
			if bi == 0 {
				argErrorf(r, "fmod", 2, "zero")
			}
			return []rt.Value{ai % bi}, nil
		}
	}
	x := checkNumber(r, "fmod", args, 0)
	y := checkNumber(r, "fmod", args, 1)
	return []rt.Value{math.Mod(x, y)}, nil
}

func mathModf(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	x := checkNumber(r, "modf", args, 0)
	ip, fp := math.Modf(x)
	return []rt.Value{ip, fp}, nil
}

func mathMax(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	if len(args) == 0 {
		argErrorf(r, "max", 1, "value expected")
	}
	best := args[0]
	for _, v := range args[1:] {
		if rt.Lt(r, best, v) {
			best = v
		}
	}
	return []rt.Value{best}, nil
}

func mathMin(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	if len(args) == 0 {
		argErrorf(r, "min", 1, "value expected")
	}
	best := args[0]
	for _, v := range args[1:] {
		if rt.Lt(r, v, best) {
			best = v
		}
	}
	return []rt.Value{best}, nil
}

func mathToInteger(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	v := arg(args, 0)
	switch x := v.(type) {
	case int64:
		return []rt.Value{x}, nil
	case float64:
		if i, ok := rt.FloatToInteger(x); ok {
			return []rt.Value{i}, nil
		}
	}
	return []rt.Value{nil}, nil
}

func mathType(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	mt := rt.MathType(arg(args, 0))
	if mt == "" {
		return []rt.Value{nil}, nil
	}
	return []rt.Value{mt}, nil
}

func mathUlt(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	a := checkInt(r, "ult", args, 0)
	b := checkInt(r, "ult", args, 1)
	return []rt.Value{uint64(a) < uint64(b)}, nil
}
