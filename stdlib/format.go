package stdlib

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"git.lolli.tech/lollipopkit/lua54/rt"
)

// strFormat implements string.format's C-printf-derived specifier set
// (§4.5): %d %i %u %o %x %X %c %f %F %e %E %g %G %q %s %%, with the
// standard flags/width/precision grammar.
func strFormat(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	format := checkString(r, "format", args, 0)
	var out strings.Builder
	argi := 1

	i := 0
	for i < len(format) {
		c := format[i]
		if c != '%' {
			out.WriteByte(c)
			i++
			continue
		}
		spec, next := scanSpec(format, i)
		i = next
		if spec == "%%" {
			out.WriteByte('%')
			continue
		}
		verb := spec[len(spec)-1]
		if verb == 'q' {
			v := arg(args, argi)
			argi++
			out.WriteString(quoteValue(v))
			continue
		}
		v := arg(args, argi)
		argi++
		s, err := formatOne(r, spec, verb, v)
		if err != nil {
			rt.Raisef(r, "%s", err.Error())
		}
		out.WriteString(s)
	}
	return []rt.Value{out.String()}, nil
}

// scanSpec reads one "%...verb" specifier starting at format[i] (the
// '%'), returning it and the index just past the verb.
func scanSpec(format string, i int) (string, int) {
	start := i
	i++
	if i < len(format) && format[i] == '%' {
		return "%%", i + 1
	}
	for i < len(format) && strings.ContainsRune("-+ #0", rune(format[i])) {
		i++
	}
	for i < len(format) && format[i] >= '0' && format[i] <= '9' {
		i++
	}
	if i < len(format) && format[i] == '.' {
		i++
		for i < len(format) && format[i] >= '0' && format[i] <= '9' {
			i++
		}
	}
	if i < len(format) {
		i++
	}
	return format[start:i], i
}

func formatOne(r *rt.Runtime, spec string, verb byte, v rt.Value) (string, error) {
	goSpec := spec
	switch verb {
	case 'i':
		goSpec = spec[:len(spec)-1] + "d"
		n, ok := rt.ToInteger(v)
		if !ok {
			return "", fmt.Errorf("bad argument to 'format' (number expected, got %s)", rt.TypeOf(v).String())
		}
		return fmt.Sprintf(goSpec, n), nil
	case 'd':
		n, ok := rt.ToInteger(v)
		if !ok {
			return "", fmt.Errorf("bad argument to 'format' (number has no integer representation)")
		}
		return fmt.Sprintf(goSpec, n), nil
	case 'u':
		n, ok := rt.ToInteger(v)
		if !ok {
			return "", fmt.Errorf("bad argument to 'format' (number expected, got %s)", rt.TypeOf(v).String())
		}
		goSpec = spec[:len(spec)-1] + "d"
		return fmt.Sprintf(goSpec, uint64(n)), nil
	case 'o', 'x', 'X':
		n, ok := rt.ToInteger(v)
		if !ok {
			return "", fmt.Errorf("bad argument to 'format' (number expected, got %s)", rt.TypeOf(v).String())
		}
		return fmt.Sprintf(goSpec, uint64(n)), nil
	case 'c':
		n, ok := rt.ToInteger(v)
		if !ok {
			return "", fmt.Errorf("bad argument to 'format' (number expected, got %s)", rt.TypeOf(v).String())
		}
		return string(rune(byte(n))), nil
	case 'f', 'F', 'e', 'E', 'g', 'G':
		f, ok := rt.ToFloat(v)
		if !ok {
			return "", fmt.Errorf("bad argument to 'format' (number expected, got %s)", rt.TypeOf(v).String())
		}
		return fmt.Sprintf(goSpec, f), nil
	case 'a':
		f, ok := rt.ToFloat(v)
		if !ok {
			return "", fmt.Errorf("bad argument to 'format' (number expected, got %s)", rt.TypeOf(v).String())
		}
		goSpec = spec[:len(spec)-1] + "x"
		return fmt.Sprintf(goSpec, f), nil
	case 'A':
		f, ok := rt.ToFloat(v)
		if !ok {
			return "", fmt.Errorf("bad argument to 'format' (number expected, got %s)", rt.TypeOf(v).String())
		}
		goSpec = spec[:len(spec)-1] + "X"
		return fmt.Sprintf(goSpec, f), nil
	case 'p':
		return rt.PointerString(v), nil
	case 's':
		s := rt.ToStringMeta(r, v)
		return fmt.Sprintf(goSpec, s), nil
	default:
		return "", fmt.Errorf("invalid conversion '%s' to 'format'", spec)
	}
}

// quoteValue implements %q: a literal Lua can read back, per §4.5.
func quoteValue(v rt.Value) string {
	switch x := v.(type) {
	case string:
		return quoteString(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		switch {
		case math.IsInf(x, 1):
			return "1e9999"
		case math.IsInf(x, -1):
			return "-1e9999"
		case math.IsNaN(x):
			return "(0/0)"
		}
		return strconv.FormatFloat(x, 'x', -1, 64)
	case nil:
		return "nil"
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		return rt.NumberToString(v)
	}
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteByte('\\')
			b.WriteByte('\n')
		case '\r':
			b.WriteString(`\r`)
		default:
			if c < 32 || c == 127 {
				if i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9' {
					b.WriteString(fmt.Sprintf(`\%03d`, c))
				} else {
					b.WriteString(fmt.Sprintf(`\%d`, c))
				}
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
