// Package rt is the interpreter core: the Value model (§3), the
// tree-walking evaluator (§4.4), the metatable dispatch protocol (§4.4.1),
// and the coroutine scheduler (§4.7). It plays the role the teacher
// repository split across "state" (value model + C-API) and "vm"
// (bytecode dispatch); a tree-walker has no separate bytecode layer, so
// both concerns live together here, same as lk's state package kept the
// value model and the metamethod call path in one package.
package rt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is the tagged union of §3.1. The concrete Go types used are:
//
//	nil        -> Nil
//	bool       -> Boolean
//	int64      -> Integer
//	float64    -> Float
//	string     -> String
//	*Table     -> Table
//	*Closure   -> Function (Lua closure)
//	*GoFunc    -> Function (native callable)
//	*Coroutine -> Thread
//	*Userdata  -> Userdata
type Value = any

type Userdata struct {
	Data any
	Meta *Table
}

// Type is the runtime type tag returned by the `type` builtin.
type Type int

const (
	TypeNil Type = iota
	TypeBoolean
	TypeNumber
	TypeString
	TypeTable
	TypeFunction
	TypeUserdata
	TypeThread
)

func (t Type) String() string {
	switch t {
	case TypeNil:
		return "nil"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeTable:
		return "table"
	case TypeFunction:
		return "function"
	case TypeUserdata:
		return "userdata"
	case TypeThread:
		return "thread"
	default:
		return "unknown"
	}
}

func TypeOf(v Value) Type {
	switch v.(type) {
	case nil:
		return TypeNil
	case bool:
		return TypeBoolean
	case int64, float64:
		return TypeNumber
	case string:
		return TypeString
	case *Table:
		return TypeTable
	case *Closure, *GoFunc:
		return TypeFunction
	case *Coroutine:
		return TypeThread
	case *Userdata:
		return TypeUserdata
	default:
		panic(fmt.Sprintf("rt: value of unhandled Go type %T", v))
	}
}

// Truthy implements §3.1: everything but nil and false is truthy.
func Truthy(v Value) bool {
	if v == nil {
		return false
	}
	b, ok := v.(bool)
	return !ok || b
}

// MathType implements math.type: "integer", "float" or "" (nil) for
// non-numbers.
func MathType(v Value) string {
	switch v.(type) {
	case int64:
		return "integer"
	case float64:
		return "float"
	default:
		return ""
	}
}

// ToFloat implements the coercion rules of §3.2 used by arithmetic and by
// tonumber.
func ToFloat(v Value) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case string:
		return ParseFloatString(x)
	default:
		return 0, false
	}
}

// ToInteger converts a value to an integer, raising (returning ok=false)
// when a float isn't exactly representable (§3.2).
func ToInteger(v Value) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case float64:
		return FloatToInteger(x)
	case string:
		return stringToInteger(x)
	default:
		return 0, false
	}
}

// FloatToInteger succeeds only when f has no fractional part and fits in
// an int64.
func FloatToInteger(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f != math.Trunc(f) {
		return 0, false
	}
	if f < -9223372036854775808.0 || f >= 9223372036854775808.0 {
		return 0, false
	}
	return int64(f), true
}

func stringToInteger(s string) (int64, bool) {
	if i, ok := ParseIntString(s); ok {
		return i, true
	}
	if f, ok := ParseFloatString(s); ok {
		return FloatToInteger(f)
	}
	return 0, false
}

// ParseIntString implements the decimal/hex integer half of §3.2's
// string-to-number coercion (whitespace-trimmed, optional sign, optional
// 0x prefix; hex wraps mod 2^64 like a literal does).
func ParseIntString(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	neg := false
	body := s
	if body[0] == '+' || body[0] == '-' {
		neg = body[0] == '-'
		body = body[1:]
	}
	if len(body) > 2 && body[0] == '0' && (body[1] == 'x' || body[1] == 'X') {
		u, err := strconv.ParseUint(body[2:], 16, 64)
		if err != nil {
			return 0, false
		}
		v := int64(u)
		if neg {
			v = -v
		}
		return v, true
	}
	i, err := strconv.ParseInt(body, 10, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		i = -i
	}
	return i, true
}

// ParseFloatString implements the float half of §3.2's coercion.
// "inf"/"nan" are rejected, matching reference Lua (§9 Open Questions).
func ParseFloatString(s string) (float64, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, false
	}
	low := strings.ToLower(trimmed)
	body := low
	if len(body) > 0 && (body[0] == '+' || body[0] == '-') {
		body = body[1:]
	}
	if strings.HasPrefix(body, "inf") || strings.HasPrefix(body, "nan") {
		return 0, false
	}
	if i, ok := ParseIntString(trimmed); ok {
		return float64(i), true
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// NumberToString implements the default float-to-string / integer-to-
// string conversion (§3.2): %.14g for floats, decimal for integers.
func NumberToString(v Value) string {
	switch x := v.(type) {
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return formatFloat14g(x)
	default:
		panic("rt: NumberToString of non-number")
	}
}

func formatFloat14g(f float64) string {
	if math.IsNaN(f) {
		return "nan"
	}
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', 14, 64)
	// Lua always marks floats that look integral with a trailing ".0".
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	// Lua/C spell the exponent with at least two digits ("e+05");
	// normalizeExponent enforces that form on Go's output.
	return normalizeExponent(s)
}

func normalizeExponent(s string) string {
	idx := strings.IndexAny(s, "eE")
	if idx < 0 {
		return s
	}
	mantissa, exp := s[:idx], s[idx+1:]
	sign := "+"
	if len(exp) > 0 && (exp[0] == '+' || exp[0] == '-') {
		if exp[0] == '-' {
			sign = "-"
		}
		exp = exp[1:]
	}
	for len(exp) < 2 {
		exp = "0" + exp
	}
	return mantissa + "e" + sign + exp
}
