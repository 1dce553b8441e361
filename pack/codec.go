package pack

import "math"

// Pack encodes values against format, in the teacher-independent
// interface{} currency shared with rt.Value (int64/float64/string),
// avoiding a dependency from this package back onto the value model.
func Pack(format string, values []any) ([]byte, error) {
	p := newParser(format)
	var out []byte
	total := 0
	vi := 0
	nextVal := func() (any, error) {
		if vi >= len(values) {
			return nil, errf("bad argument #%d to 'pack' (no value)", vi+2)
		}
		v := values[vi]
		vi++
		return v, nil
	}

	for {
		o, ok, err := p.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		align := alignFor(o, p.maxAlig)
		if align > 1 {
			pad := (-len(out)) % align
			if pad < 0 {
				pad += align
			}
			total, err = addSize(total, pad)
			if err != nil {
				return nil, err
			}
			for len(out)%align != 0 {
				out = append(out, 0)
			}
		}
		if o.code != 'X' {
			total, err = addSize(total, o.size)
			if err != nil {
				return nil, err
			}
		}
		switch o.code {
		case 'x':
			out = append(out, 0)
		case 'X':
			// alignment-only: consume no bytes, handled by the align
			// computation above for the option that follows it in practice;
			// here it simply contributes no payload.
		case 'b', 'B', 'h', 'H', 'i', 'I', 'l', 'L', 'j', 'J', 'T':
			v, err := nextVal()
			if err != nil {
				return nil, err
			}
			n, ok := toInt64(v)
			if !ok {
				return nil, errf("bad argument to 'pack' (number expected)")
			}
			if o.size < 8 {
				bits := uint(o.size) * 8
				if o.code >= 'A' && o.code <= 'Z' {
					if uint64(n) >= uint64(1)<<bits {
						return nil, errf("bad argument to 'pack' (unsigned overflow: integer does not fit in %d bytes)", o.size)
					}
				} else if lim := int64(1) << (bits - 1); n < -lim || n >= lim {
					return nil, errf("bad argument to 'pack' (integer overflow: integer does not fit in %d bytes)", o.size)
				}
			}
			out = append(out, encodeInt(n, o.size, p.order)...)
		case 'f':
			v, err := nextVal()
			if err != nil {
				return nil, err
			}
			f, _ := toFloat64(v)
			var b [4]byte
			bo := p.order.order()
			bo.PutUint32(b[:], math.Float32bits(float32(f)))
			out = append(out, b[:]...)
		case 'd', 'n':
			v, err := nextVal()
			if err != nil {
				return nil, err
			}
			f, _ := toFloat64(v)
			var b [8]byte
			bo := p.order.order()
			bo.PutUint64(b[:], math.Float64bits(f))
			out = append(out, b[:]...)
		case 'c':
			v, err := nextVal()
			if err != nil {
				return nil, err
			}
			s, _ := v.(string)
			if len(s) > o.size {
				return nil, errf("string longer than given size")
			}
			out = append(out, s...)
			for i := len(s); i < o.size; i++ {
				out = append(out, 0)
			}
		case 'z':
			v, err := nextVal()
			if err != nil {
				return nil, err
			}
			s, _ := v.(string)
			total, err = addSize(total, len(s)+1)
			if err != nil {
				return nil, err
			}
			out = append(out, s...)
			out = append(out, 0)
		case 's':
			v, err := nextVal()
			if err != nil {
				return nil, err
			}
			s, _ := v.(string)
			if o.size < 8 && uint64(len(s)) >= uint64(1)<<(uint(o.size)*8) {
				return nil, errf("bad argument to 'pack' (string length does not fit in given size)")
			}
			total, err = addSize(total, len(s))
			if err != nil {
				return nil, err
			}
			out = append(out, encodeInt(int64(len(s)), o.size, p.order)...)
			out = append(out, s...)
		}
	}
	return out, nil
}

func encodeInt(n int64, size int, e endian) []byte {
	b := make([]byte, size)
	u := uint64(n)
	for i := 0; i < size; i++ {
		b[i] = byte(u)
		u >>= 8
	}
	if e == big {
		for i, j := 0, size-1; i < j; i, j = i+1, j-1 {
			b[i], b[j] = b[j], b[i]
		}
	}
	return b
}

func decodeInt(b []byte, e endian, signed bool) int64 {
	buf := make([]byte, len(b))
	copy(buf, b)
	if e == big {
		for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
			buf[i], buf[j] = buf[j], buf[i]
		}
	}
	var u uint64
	for i := len(buf) - 1; i >= 0; i-- {
		u = u<<8 | uint64(buf[i])
	}
	if signed && len(buf) < 8 {
		shift := uint(64 - 8*len(buf))
		return int64(u<<shift) >> shift
	}
	return int64(u)
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case float64:
		return int64(x), true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

// Unpack decodes format starting at byte offset init (0-based) from
// data, returning the decoded values and the offset just past the last
// one consumed.
func Unpack(format string, data []byte, init int) ([]any, int, error) {
	p := newParser(format)
	pos := init
	total := 0
	var out []any

	for {
		o, ok, err := p.next()
		if err != nil {
			return nil, 0, err
		}
		if !ok {
			break
		}
		align := alignFor(o, p.maxAlig)
		if align > 1 {
			pad := (-total) % align
			if pad < 0 {
				pad += align
			}
			total, err = addSize(total, pad)
			if err != nil {
				return nil, 0, err
			}
			for pos%align != 0 {
				pos++
			}
		}
		if o.code != 'X' {
			total, err = addSize(total, o.size)
			if err != nil {
				return nil, 0, err
			}
		}
		switch o.code {
		case 'x':
			pos++
		case 'X':
		case 'b', 'h', 'i', 'l', 'j':
			if pos+o.size > len(data) {
				return nil, 0, errf("data string too short")
			}
			out = append(out, decodeInt(data[pos:pos+o.size], p.order, true))
			pos += o.size
		case 'B', 'H', 'I', 'L', 'J', 'T':
			if pos+o.size > len(data) {
				return nil, 0, errf("data string too short")
			}
			out = append(out, decodeInt(data[pos:pos+o.size], p.order, false))
			pos += o.size
		case 'f':
			if pos+4 > len(data) {
				return nil, 0, errf("data string too short")
			}
			bo := p.order.order()
			bits := bo.Uint32(data[pos : pos+4])
			out = append(out, float64(math.Float32frombits(bits)))
			pos += 4
		case 'd', 'n':
			if pos+8 > len(data) {
				return nil, 0, errf("data string too short")
			}
			bo := p.order.order()
			bits := bo.Uint64(data[pos : pos+8])
			out = append(out, math.Float64frombits(bits))
			pos += 8
		case 'c':
			if pos+o.size > len(data) {
				return nil, 0, errf("data string too short")
			}
			out = append(out, string(data[pos:pos+o.size]))
			pos += o.size
		case 'z':
			end := pos
			for end < len(data) && data[end] != 0 {
				end++
			}
			if end >= len(data) {
				return nil, 0, errf("unfinished string for format 'z'")
			}
			total, err = addSize(total, end-pos+1)
			if err != nil {
				return nil, 0, err
			}
			out = append(out, string(data[pos:end]))
			pos = end + 1
		case 's':
			if pos+o.size > len(data) {
				return nil, 0, errf("data string too short")
			}
			n := decodeInt(data[pos:pos+o.size], p.order, false)
			pos += o.size
			if pos+int(n) > len(data) {
				return nil, 0, errf("data string too short")
			}
			total, err = addSize(total, int(n))
			if err != nil {
				return nil, 0, err
			}
			out = append(out, string(data[pos:pos+int(n)]))
			pos += int(n)
		}
	}
	return out, pos, nil
}
