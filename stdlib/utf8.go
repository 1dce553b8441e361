package stdlib

import (
	"unicode/utf8"

	"git.lolli.tech/lollipopkit/lua54/rt"
)

func openUTF8(r *rt.Runtime) {
	t := newLibTable(r, "utf8")
	_ = t.Set("charpattern", "[\x00-\x7F\xC2-\xFD][\x80-\xBF]*")
	reg(t, "char", utf8Char)
	reg(t, "codepoint", utf8Codepoint)
	reg(t, "len", utf8Len)
	reg(t, "offset", utf8Offset)
	reg(t, "codes", utf8Codes)
}

func utf8Char(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	buf := make([]byte, 0, len(args)*4)
	for i := range args {
		n := checkInt(r, "char", args, i)
		buf = utf8.AppendRune(buf, rune(n))
	}
	return []rt.Value{string(buf)}, nil
}

func utf8Codepoint(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	s := checkString(r, "codepoint", args, 0)
	l := len(s)
	i := int(posRelat(optInt(args, 1, 1), l))
	j := int(posRelat(optInt(args, 2, int64(i)), l))
	lax := optBool(args, 3, false)
	if i < 1 || j > l {
		argErrorf(r, "codepoint", 2, "out of bounds")
	}
	var out []rt.Value
	pos := i - 1
	for pos < j {
		rn, size, ok := decodeUTF8(s[pos:], lax)
		if !ok {
			rt.Raisef(r, "invalid UTF-8 code")
		}
		out = append(out, rn)
		pos += size
	}
	return out, nil
}

func utf8Len(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	s := checkString(r, "len", args, 0)
	l := len(s)
	i := int(posRelat(optInt(args, 1, 1), l))
	j := int(posRelat(optInt(args, 2, -1), l))
	lax := optBool(args, 3, false)
	if i < 1 {
		i = 1
	}
	pos := i - 1
	count := int64(0)
	for pos < j {
		_, size, ok := decodeUTF8(s[pos:], lax)
		if !ok {
			return []rt.Value{nil, int64(pos + 1)}, nil
		}
		count++
		pos += size
	}
	return []rt.Value{count}, nil
}

func utf8Offset(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	s := checkString(r, "offset", args, 0)
	l := len(s)
	n := checkInt(r, "offset", args, 1)
	var def int64
	if n >= 0 {
		def = 1
	} else {
		def = int64(l) + 1
	}
	i := int(posRelat(optInt(args, 2, def), l))

	pos := i - 1
	if n != 0 && pos >= 0 && pos < l && isCont(s[pos]) {
		rt.Raisef(r, "initial position is a continuation byte")
	}
	if n > 0 {
		if pos < l && n > 0 {
			n--
		}
		for n > 0 && pos < l {
			pos++
			for pos < l && isCont(s[pos]) {
				pos++
			}
			n--
		}
		if n > 0 {
			return []rt.Value{nil}, nil
		}
	} else if n < 0 {
		for n < 0 && pos > 0 {
			pos--
			for pos > 0 && isCont(s[pos]) {
				pos--
			}
			n++
		}
		if n < 0 {
			return []rt.Value{nil}, nil
		}
	} else {
		for pos > 0 && isCont(s[pos]) {
			pos--
		}
	}
	return []rt.Value{int64(pos + 1)}, nil
}

func isCont(b byte) bool { return b&0xC0 == 0x80 }

func utf8Codes(r *rt.Runtime, args []rt.Value) ([]rt.Value, error) {
	s := checkString(r, "codes", args, 0)
	lax := optBool(args, 1, false)
	iter := rt.NewGoFunc("utf8.codes-iterator", func(r *rt.Runtime, iargs []rt.Value) ([]rt.Value, error) {
		prev := iargs[1].(int64)
		pos := int(prev)
		if pos > 0 {
			_, size, ok := decodeUTF8(s[pos-1:], lax)
			if !ok {
				rt.Raisef(r, "invalid UTF-8 code")
			}
			pos += size - 1
		}
		if pos >= len(s) {
			return []rt.Value{nil}, nil
		}
		rn, _, ok := decodeUTF8(s[pos:], lax)
		if !ok {
			rt.Raisef(r, "invalid UTF-8 code")
		}
		return []rt.Value{int64(pos + 1), rn}, nil
	})
	return []rt.Value{iter, s, int64(0)}, nil
}

func optBool(args []rt.Value, i int, def bool) bool {
	if i >= len(args) || args[i] == nil {
		return def
	}
	b, ok := args[i].(bool)
	if !ok {
		return def
	}
	return b
}

const maxUTF8Codepoint = 0x7FFFFFFF

var utf8ByteLimits = [...]int64{0, 0x80, 0x800, 0x10000, 0x200000, 0x4000000}

// decodeUTF8 decodes one codepoint from the start of s, following reference
// Lua's utf8_decode. Strict mode rejects sequences longer than 4 bytes,
// codepoints above 0x10FFFF and surrogate halves; lax mode accepts the full
// 6-byte encoding up to 0x7FFFFFFF, matching utf8.*'s trailing lax argument.
func decodeUTF8(s string, lax bool) (rn rt.Value, size int, ok bool) {
	if len(s) == 0 {
		return nil, 0, false
	}
	c := s[0]
	if c < 0x80 {
		return int64(c), 1, true
	}
	count := 0
	res := int64(0)
	cc := c
	for cc&0x40 != 0 {
		count++
		if count >= len(s) {
			return nil, 0, false
		}
		b := s[count]
		if b&0xC0 != 0x80 {
			return nil, 0, false
		}
		res = (res << 6) | int64(b&0x3F)
		cc <<= 1
	}
	res |= int64(cc&0x7F) << uint(count*5)
	if count > 5 || res > maxUTF8Codepoint || res < utf8ByteLimits[count] {
		return nil, 0, false
	}
	if !lax && (res > 0x10FFFF || (res >= 0xD800 && res <= 0xDFFF)) {
		return nil, 0, false
	}
	return res, count + 1, true
}
