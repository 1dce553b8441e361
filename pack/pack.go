// Package pack implements the binary data format read by string.pack,
// string.unpack, and string.packsize: a small format-string language
// describing integer widths, endianness, alignment, and string encodings.
package pack

import (
	"encoding/binary"
	"fmt"
)

// PackError is raised for a malformed format string or an out-of-range
// value (an integer that doesn't fit the requested width, a variable
// string longer than its length prefix can encode, and so on).
type PackError struct{ Msg string }

func (e *PackError) Error() string { return e.Msg }

func errf(format string, a ...any) error {
	return &PackError{Msg: fmt.Sprintf(format, a...)}
}

type endian int

const (
	native endian = iota
	little
	big
)

func (e endian) order() binary.ByteOrder {
	if e == big {
		return binary.BigEndian
	}
	return binary.LittleEndian // this module targets little-endian hosts, same as the reference manual's "native" default on x86/ARM
}

type opt struct {
	code  byte
	size  int // byte width, 0 when not applicable
	align int
}

// parser walks a pack/unpack format string, tracking current endianness
// and alignment per §4.8's directive rules ( <, >, =, ! , sizes ).
type parser struct {
	fmt     string
	pos     int
	order   endian
	maxAlig int
	pending *opt // option already consumed while resolving an 'X' lookahead
}

func newParser(format string) *parser {
	return &parser{fmt: format, maxAlig: 1}
}

func (p *parser) done() bool { return p.pos >= len(p.fmt) }

func (p *parser) peek() byte {
	if p.done() {
		return 0
	}
	return p.fmt[p.pos]
}

// readNum reads an optional decimal size suffix (e.g. "i4", "s8"),
// defaulting when absent.
func (p *parser) readNum(def int) int {
	start := p.pos
	for p.pos < len(p.fmt) && p.fmt[p.pos] >= '0' && p.fmt[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return def
	}
	n := 0
	for _, c := range p.fmt[start:p.pos] {
		n = n*10 + int(c-'0')
	}
	return n
}

const maxIntSize = 16

// next returns the next option in the format string, advancing past it,
// along with the byte width it occupies (0 for options with no fixed
// width of their own, like alignment/endianness directives, which next
// consumes internally and loops to the option after).
func (p *parser) next() (opt, bool, error) {
	if p.pending != nil {
		o := *p.pending
		p.pending = nil
		return o, true, nil
	}
	for !p.done() {
		c := p.fmt[p.pos]
		p.pos++
		switch c {
		case ' ':
			continue
		case '<':
			p.order = little
			continue
		case '>':
			p.order = big
			continue
		case '=':
			p.order = native
			continue
		case '!':
			n := p.readNum(8)
			if n < 1 || n&(n-1) != 0 {
				return opt{}, false, errf("format asks for alignment not power of 2")
			}
			p.maxAlig = n
			continue
		case 'b', 'B':
			return opt{code: c, size: 1}, true, nil
		case 'h', 'H':
			return opt{code: c, size: 2}, true, nil
		case 'i', 'I':
			n := p.readNum(4)
			if n < 1 || n > maxIntSize {
				return opt{}, false, errf("integral size (%d) out of limits [1,%d]", n, maxIntSize)
			}
			return opt{code: c, size: n}, true, nil
		case 'l', 'L', 'j', 'J', 'T':
			return opt{code: c, size: 8}, true, nil
		case 'f':
			return opt{code: c, size: 4}, true, nil
		case 'd', 'n':
			return opt{code: c, size: 8}, true, nil
		case 's':
			n := p.readNum(8)
			return opt{code: 's', size: n}, true, nil
		case 'c':
			n := p.readNum(-1)
			if n < 0 {
				return opt{}, false, errf("missing size for format option 'c'")
			}
			return opt{code: 'c', size: n}, true, nil
		case 'z':
			return opt{code: 'z'}, true, nil
		case 'x':
			return opt{code: 'x', size: 1}, true, nil
		case 'X':
			nxt, ok, err := p.next()
			if err != nil {
				return opt{}, false, err
			}
			if !ok || nxt.code == 's' || nxt.code == 'z' || nxt.code == 'X' {
				return opt{}, false, errf("invalid next option for option 'X'")
			}
			p.pending = &nxt
			return opt{code: 'X', size: nxt.size}, true, nil
		default:
			return opt{}, false, errf("invalid format option '%c'", c)
		}
	}
	return opt{}, false, nil
}

// maxPackSize is the largest running total §4.8 allows: a signed 32-bit
// value. Pack, Unpack and Size all raise on crossing it.
const maxPackSize = 0x7fffffff

func addSize(total, n int) (int, error) {
	sum := total + n
	if sum < total || sum > maxPackSize {
		return 0, errf("format result too large")
	}
	return sum, nil
}

func alignFor(o opt, maxAlig int) int {
	n := o.size
	if n > maxAlig {
		n = maxAlig
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Size computes string.packsize's result: the total byte length a format
// describes. It errors on variable-length options (s, z), which packsize
// itself rejects.
func Size(format string) (int, error) {
	p := newParser(format)
	total := 0
	for {
		o, ok, err := p.next()
		if err != nil {
			return 0, err
		}
		if !ok {
			break
		}
		if o.code == 's' || o.code == 'z' {
			return 0, errf("variable-size format in packsize")
		}
		align := alignFor(o, p.maxAlig)
		if align > 1 {
			pad := (-total) % align
			if pad < 0 {
				pad += align
			}
			total, err = addSize(total, pad)
			if err != nil {
				return 0, err
			}
		}
		if o.code != 'X' {
			total, err = addSize(total, o.size)
			if err != nil {
				return 0, err
			}
		}
	}
	return total, nil
}
