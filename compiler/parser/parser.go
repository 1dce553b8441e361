// Package parser is a recursive-descent Lua 5.4 parser producing the AST
// in compiler/ast. It does not resolve names or validate goto targets;
// that is compiler/resolver's job (§4.3), run as a separate pass over the
// tree this package returns.
package parser

import (
	"fmt"

	"git.lolli.tech/lollipopkit/lua54/compiler/ast"
	"git.lolli.tech/lollipopkit/lua54/compiler/lexer"
)

type parser struct {
	lx        *lexer.Lexer
	chunkName string
	pending   []lexer.Token // 2-token lookahead buffer
}

// Parse parses a full chunk into a Block. Panics with *lexer.SyntaxError
// on failure; callers recover at the chunk-load boundary.
func Parse(chunk, chunkName string) *ast.Block {
	p := &parser{lx: lexer.NewLexer(chunk, chunkName), chunkName: chunkName}
	b := p.parseBlock()
	p.expect(lexer.TOKEN_EOF)
	return b
}

func (p *parser) errorf(format string, a ...any) {
	panic(&lexer.SyntaxError{Chunk: p.chunkName, Line: p.lx.Line(), Msg: fmt.Sprintf(format, a...)})
}

func (p *parser) fill(n int) {
	for len(p.pending) < n {
		p.pending = append(p.pending, p.lx.NextToken())
	}
}

func (p *parser) peek() int {
	p.fill(1)
	return p.pending[0].Kind
}

func (p *parser) peekAt(n int) int {
	p.fill(n)
	return p.pending[n-1].Kind
}

func (p *parser) next() lexer.Token {
	p.fill(1)
	tok := p.pending[0]
	p.pending = p.pending[1:]
	return tok
}

func (p *parser) expect(kind int) lexer.Token {
	tok := p.next()
	if tok.Kind != kind {
		p.errorf("syntax error near '%s'", tok.Str)
	}
	return tok
}

func (p *parser) optional(kind int) bool {
	if p.peek() == kind {
		p.next()
		return true
	}
	return false
}

func (p *parser) twoAheadIsAssign() bool {
	return p.peekAt(2) == lexer.TOKEN_OP_ASSIGN
}

func blockEnd(kind int) bool {
	switch kind {
	case lexer.TOKEN_EOF, lexer.TOKEN_KW_END, lexer.TOKEN_KW_ELSE,
		lexer.TOKEN_KW_ELSEIF, lexer.TOKEN_KW_UNTIL:
		return true
	}
	return false
}
