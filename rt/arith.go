package rt

import "math"

// arith implements §3.2: integer arithmetic wraps on overflow (Go's native
// int64 semantics already do this), float arithmetic follows IEEE 754,
// and mixed integer/float operands promote the integer to float except
// where noted below.

func arithAdd(a, b Value) (Value, bool) {
	if x, y, ok := bothInt(a, b); ok {
		return x + y, true
	}
	if x, y, ok := bothFloat(a, b); ok {
		return x + y, true
	}
	return nil, false
}

func arithSub(a, b Value) (Value, bool) {
	if x, y, ok := bothInt(a, b); ok {
		return x - y, true
	}
	if x, y, ok := bothFloat(a, b); ok {
		return x - y, true
	}
	return nil, false
}

func arithMul(a, b Value) (Value, bool) {
	if x, y, ok := bothInt(a, b); ok {
		return x * y, true
	}
	if x, y, ok := bothFloat(a, b); ok {
		return x * y, true
	}
	return nil, false
}

// arithDiv is always float division per §3.2, even for two integers.
func arithDiv(a, b Value) (Value, bool) {
	x, y, ok := bothFloat(a, b)
	if !ok {
		return nil, false
	}
	return x / y, true
}

// arithIDiv is floor division: truncates toward negative infinity, and for
// two integers with a zero divisor raises rather than returning Inf/NaN.
func arithIDiv(rt *Runtime, a, b Value) (Value, bool) {
	if x, y, ok := bothInt(a, b); ok {
		if y == 0 {
			Raisef(rt, "attempt to perform 'n//0'")
		}
		q := x / y
		if (x%y != 0) && ((x < 0) != (y < 0)) {
			q--
		}
		return q, true
	}
	if x, y, ok := bothFloat(a, b); ok {
		return math.Floor(x / y), true
	}
	return nil, false
}

// arithMod: result has the same sign as the divisor (§3.2), unlike Go's %.
func arithMod(rt *Runtime, a, b Value) (Value, bool) {
	if x, y, ok := bothInt(a, b); ok {
		if y == 0 {
			Raisef(rt, "attempt to perform 'n%%0'")
		}
		m := x % y
		if m != 0 && (m < 0) != (y < 0) {
			m += y
		}
		return m, true
	}
	if x, y, ok := bothFloat(a, b); ok {
		if math.IsInf(y, 0) && !math.IsInf(x, 0) {
			if (x < 0) != (y < 0) && x != 0 {
				return y, true
			}
			return x, true
		}
		m := math.Mod(x, y)
		if m != 0 && (m < 0) != (y < 0) {
			m += y
		}
		return m, true
	}
	return nil, false
}

// arithPow is always float, using math.Pow, per §3.2.
func arithPow(a, b Value) (Value, bool) {
	x, y, ok := bothFloat(a, b)
	if !ok {
		return nil, false
	}
	return math.Pow(x, y), true
}

func arithUnm(a Value) (Value, bool) {
	switch v := a.(type) {
	case int64:
		return -v, true
	case float64:
		return -v, true
	}
	return nil, false
}

// Bitwise operators (§3.2): both operands must have an exact integer
// representation; floats with a fractional part or out of int64 range
// raise "number has no integer representation".
func toIntOperand(v Value) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case float64:
		return FloatToInteger(x)
	case string:
		if n, ok := stringToInteger(x); ok {
			return n, true
		}
		if f, ok := ParseFloatString(x); ok {
			return FloatToInteger(f)
		}
	}
	return 0, false
}

func arithBAnd(a, b Value) (Value, bool) {
	x, ok1 := toIntOperand(a)
	y, ok2 := toIntOperand(b)
	if !ok1 || !ok2 {
		return nil, false
	}
	return x & y, true
}

func arithBOr(a, b Value) (Value, bool) {
	x, ok1 := toIntOperand(a)
	y, ok2 := toIntOperand(b)
	if !ok1 || !ok2 {
		return nil, false
	}
	return x | y, true
}

func arithBXor(a, b Value) (Value, bool) {
	x, ok1 := toIntOperand(a)
	y, ok2 := toIntOperand(b)
	if !ok1 || !ok2 {
		return nil, false
	}
	return x ^ y, true
}

func arithBNot(a Value) (Value, bool) {
	x, ok := toIntOperand(a)
	if !ok {
		return nil, false
	}
	return ^x, true
}

// arithShl/Shr: shifts by >=64 (either direction) yield 0, and a negative
// shift count shifts the other way, per §3.2.
func arithShl(a, b Value) (Value, bool) {
	x, ok1 := toIntOperand(a)
	n, ok2 := toIntOperand(b)
	if !ok1 || !ok2 {
		return nil, false
	}
	return shiftLeft(x, n), true
}

func arithShr(a, b Value) (Value, bool) {
	x, ok1 := toIntOperand(a)
	n, ok2 := toIntOperand(b)
	if !ok1 || !ok2 {
		return nil, false
	}
	return shiftLeft(x, -n), true
}

func shiftLeft(x int64, n int64) int64 {
	if n <= -64 || n >= 64 {
		return 0
	}
	if n >= 0 {
		return int64(uint64(x) << uint(n))
	}
	return int64(uint64(x) >> uint(-n))
}

func bothInt(a, b Value) (int64, int64, bool) {
	x, ok1 := a.(int64)
	y, ok2 := b.(int64)
	return x, y, ok1 && ok2
}

func bothFloat(a, b Value) (float64, float64, bool) {
	x, ok1 := ToFloat(a)
	y, ok2 := ToFloat(b)
	return x, y, ok1 && ok2
}

// coerceArithOperand applies §3.2's "strings convertible to numbers
// participate in arithmetic" rule ahead of calling the arith* helpers.
func coerceArithOperand(v Value) Value {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if n, ok := stringToInteger(s); ok {
		return n
	}
	if f, ok := ParseFloatString(s); ok {
		return f
	}
	return v
}
