package parser

import (
	"strconv"
	"strings"

	"git.lolli.tech/lollipopkit/lua54/compiler/ast"
	"git.lolli.tech/lollipopkit/lua54/compiler/lexer"
)

// binop priority: {left, right}; right < left means right-associative.
var binopPriority = map[int][2]int{
	lexer.TOKEN_OP_OR:     {1, 1},
	lexer.TOKEN_OP_AND:    {2, 2},
	lexer.TOKEN_OP_LT:     {3, 3},
	lexer.TOKEN_OP_GT:     {3, 3},
	lexer.TOKEN_OP_LE:     {3, 3},
	lexer.TOKEN_OP_GE:     {3, 3},
	lexer.TOKEN_OP_NE:     {3, 3},
	lexer.TOKEN_OP_EQ:     {3, 3},
	lexer.TOKEN_OP_BOR:    {4, 4},
	lexer.TOKEN_OP_BXOR:   {5, 5},
	lexer.TOKEN_OP_BAND:   {6, 6},
	lexer.TOKEN_OP_SHL:    {7, 7},
	lexer.TOKEN_OP_SHR:    {7, 7},
	lexer.TOKEN_SEP_DOTS2: {9, 8}, // right-associative
	lexer.TOKEN_OP_ADD:    {10, 10},
	lexer.TOKEN_OP_MINUS:  {10, 10},
	lexer.TOKEN_OP_MUL:    {11, 11},
	lexer.TOKEN_OP_DIV:    {11, 11},
	lexer.TOKEN_OP_IDIV:   {11, 11},
	lexer.TOKEN_OP_MOD:    {11, 11},
	lexer.TOKEN_OP_POW:    {14, 13}, // right-associative, binds tighter than unary
}

const unaryPriority = 12

func (p *parser) parseExpList() []ast.Exp {
	exps := []ast.Exp{p.parseExp()}
	for p.optional(lexer.TOKEN_SEP_COMMA) {
		exps = append(exps, p.parseExp())
	}
	return exps
}

func (p *parser) parseExp() ast.Exp {
	return p.parseSubExp(0)
}

func (p *parser) parseSubExp(limit int) ast.Exp {
	var left ast.Exp
	if isUnop(p.peek()) {
		line := p.peek2Line()
		op := p.next().Kind
		operand := p.parseSubExp(unaryPriority)
		left = &ast.UnopExp{Line: line, Op: op, Exp: operand}
	} else {
		left = p.parseSimpleExp()
	}
	for {
		pri, ok := binopPriority[p.peek()]
		if !ok || pri[0] <= limit {
			break
		}
		line := p.peek2Line()
		op := p.next().Kind
		right := p.parseSubExp(pri[1])
		left = &ast.BinopExp{Line: line, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *parser) peek2Line() int {
	p.fill(1)
	return p.pending[0].Line
}

func isUnop(kind int) bool {
	switch kind {
	case lexer.TOKEN_OP_MINUS, lexer.TOKEN_OP_NOT, lexer.TOKEN_OP_LEN, lexer.TOKEN_OP_BXOR:
		return true
	}
	return false
}

func (p *parser) parseSimpleExp() ast.Exp {
	switch p.peek() {
	case lexer.TOKEN_NUMBER:
		return p.parseNumberExp()
	case lexer.TOKEN_STRING:
		tok := p.next()
		return &ast.StringExp{Line: tok.Line, Str: tok.Str}
	case lexer.TOKEN_KW_NIL:
		return &ast.NilExp{Line: p.next().Line}
	case lexer.TOKEN_KW_TRUE:
		return &ast.TrueExp{Line: p.next().Line}
	case lexer.TOKEN_KW_FALSE:
		return &ast.FalseExp{Line: p.next().Line}
	case lexer.TOKEN_VARARG:
		return &ast.VarargExp{Line: p.next().Line}
	case lexer.TOKEN_SEP_LCURLY:
		return p.parseTableConstructorExp()
	case lexer.TOKEN_KW_FUNCTION:
		p.next()
		return p.parseFuncBody()
	default:
		return p.parseSuffixedExp()
	}
}

func (p *parser) parseNumberExp() ast.Exp {
	tok := p.next()
	s := tok.Str
	if i, ok := parseInteger(s); ok {
		return &ast.IntegerExp{Line: tok.Line, Int: i}
	}
	f, ok := parseFloat(s)
	if !ok {
		p.errorf("malformed number near '%s'", s)
	}
	return &ast.FloatExp{Line: tok.Line, Float: f}
}

func parseInteger(s string) (int64, bool) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		if strings.ContainsAny(s, ".pP") {
			return 0, false
		}
		u, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return 0, false
		}
		return int64(u), true
	}
	i, err := strconv.ParseInt(s, 10, 64)
	return i, err == nil
}

func parseFloat(s string) (float64, bool) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return parseHexFloat(s[2:])
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

// parseHexFloat parses the body (after "0x") of a Lua hex float literal
// such as "1.8p3" or "A" (a bare hex mantissa with no binary exponent,
// which Go's strconv.ParseFloat rejects but Lua treats as exponent 0).
func parseHexFloat(body string) (float64, bool) {
	mantissa := body
	exp := 0
	if i := strings.IndexAny(body, "pP"); i >= 0 {
		mantissa = body[:i]
		e, err := strconv.Atoi(body[i+1:])
		if err != nil {
			return 0, false
		}
		exp = e
	}
	intPart := mantissa
	fracPart := ""
	if i := strings.IndexByte(mantissa, '.'); i >= 0 {
		intPart = mantissa[:i]
		fracPart = mantissa[i+1:]
	}
	if intPart == "" && fracPart == "" {
		return 0, false
	}
	var val float64
	for i := 0; i < len(intPart); i++ {
		d, ok := hexDigitVal(intPart[i])
		if !ok {
			return 0, false
		}
		val = val*16 + float64(d)
	}
	scale := 1.0
	for i := 0; i < len(fracPart); i++ {
		d, ok := hexDigitVal(fracPart[i])
		if !ok {
			return 0, false
		}
		scale /= 16
		val += float64(d) * scale
	}
	return val * pow2(exp), true
}

func hexDigitVal(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	default:
		return 0, false
	}
}

func pow2(e int) float64 {
	result := 1.0
	neg := e < 0
	if neg {
		e = -e
	}
	base := 2.0
	for i := 0; i < e; i++ {
		result *= base
	}
	if neg {
		return 1 / result
	}
	return result
}

func (p *parser) parseTableConstructorExp() ast.Exp {
	line := p.expect(lexer.TOKEN_SEP_LCURLY).Line
	var keys, vals []ast.Exp
	for p.peek() != lexer.TOKEN_SEP_RCURLY {
		k, v := p.parseField()
		keys = append(keys, k)
		vals = append(vals, v)
		if p.peek() == lexer.TOKEN_SEP_COMMA || p.peek() == lexer.TOKEN_SEP_SEMI {
			p.next()
		} else {
			break
		}
	}
	last := p.expect(lexer.TOKEN_SEP_RCURLY).Line
	return &ast.TableConstructorExp{Line: line, LastLine: last, KeyExps: keys, ValExps: vals}
}

func (p *parser) parseField() (ast.Exp, ast.Exp) {
	if p.peek() == lexer.TOKEN_SEP_LBRACK {
		p.next()
		k := p.parseExp()
		p.expect(lexer.TOKEN_SEP_RBRACK)
		p.expect(lexer.TOKEN_OP_ASSIGN)
		v := p.parseExp()
		return k, v
	}
	if p.peek() == lexer.TOKEN_IDENTIFIER && p.twoAheadIsAssign() {
		tok := p.next()
		p.expect(lexer.TOKEN_OP_ASSIGN)
		v := p.parseExp()
		return &ast.StringExp{Line: tok.Line, Str: tok.Str}, v
	}
	return nil, p.parseExp()
}
