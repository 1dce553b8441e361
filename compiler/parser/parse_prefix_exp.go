package parser

import (
	"git.lolli.tech/lollipopkit/lua54/compiler/ast"
	"git.lolli.tech/lollipopkit/lua54/compiler/lexer"
)

// prefixexp ::= Name | '(' exp ')' | prefixexp '[' exp ']' | prefixexp '.' Name
//             | prefixexp ':' Name args | prefixexp args
func (p *parser) parseSuffixedExp() ast.Exp {
	exp := p.parsePrimaryExp()
	for {
		switch p.peek() {
		case lexer.TOKEN_SEP_DOT:
			p.next()
			name := p.expect(lexer.TOKEN_IDENTIFIER)
			exp = &ast.TableAccessExp{
				Line: name.Line, LastLine: name.Line, PrefixExp: exp,
				KeyExp: &ast.StringExp{Line: name.Line, Str: name.Str},
			}
		case lexer.TOKEN_SEP_LBRACK:
			p.next()
			key := p.parseExp()
			last := p.expect(lexer.TOKEN_SEP_RBRACK)
			exp = &ast.TableAccessExp{Line: last.Line, LastLine: last.Line, PrefixExp: exp, KeyExp: key}
		case lexer.TOKEN_SEP_COLON:
			p.next()
			name := p.expect(lexer.TOKEN_IDENTIFIER)
			args, lastLine := p.parseArgs()
			exp = &ast.FuncCallExp{Line: name.Line, LastLine: lastLine, PrefixExp: exp, MethodName: name.Str, Args: args}
		case lexer.TOKEN_SEP_LPAREN, lexer.TOKEN_STRING, lexer.TOKEN_SEP_LCURLY:
			line := p.currentLine()
			args, lastLine := p.parseArgs()
			exp = &ast.FuncCallExp{Line: line, LastLine: lastLine, PrefixExp: exp, Args: args}
		default:
			return exp
		}
	}
}

func (p *parser) currentLine() int {
	p.fill(1)
	return p.pending[0].Line
}

func (p *parser) parsePrimaryExp() ast.Exp {
	switch p.peek() {
	case lexer.TOKEN_IDENTIFIER:
		tok := p.next()
		return &ast.NameExp{Line: tok.Line, Name: tok.Str}
	case lexer.TOKEN_SEP_LPAREN:
		p.next()
		e := p.parseExp()
		p.expect(lexer.TOKEN_SEP_RPAREN)
		return &ast.ParensExp{Exp: e}
	default:
		p.errorf("unexpected symbol")
		return nil
	}
}

// args ::= '(' [explist] ')' | tableconstructor | LiteralString
func (p *parser) parseArgs() ([]ast.Exp, int) {
	switch p.peek() {
	case lexer.TOKEN_SEP_LPAREN:
		p.next()
		var args []ast.Exp
		if p.peek() != lexer.TOKEN_SEP_RPAREN {
			args = p.parseExpList()
		}
		last := p.expect(lexer.TOKEN_SEP_RPAREN)
		return args, last.Line
	case lexer.TOKEN_SEP_LCURLY:
		t := p.parseTableConstructorExp()
		return []ast.Exp{t}, p.currentLineSafe()
	case lexer.TOKEN_STRING:
		tok := p.next()
		return []ast.Exp{&ast.StringExp{Line: tok.Line, Str: tok.Str}}, tok.Line
	default:
		p.errorf("function arguments expected")
		return nil, 0
	}
}

func (p *parser) currentLineSafe() int {
	if len(p.pending) > 0 {
		return p.pending[0].Line
	}
	return 0
}
