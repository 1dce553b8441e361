package parser

import (
	"git.lolli.tech/lollipopkit/lua54/compiler/ast"
	"git.lolli.tech/lollipopkit/lua54/compiler/lexer"
)

// function Name {'.' Name} [':' Name] funcbody
func (p *parser) parseFunctionDeclStat() ast.Stat {
	line := p.expect(lexer.TOKEN_KW_FUNCTION).Line
	nameParts := []string{p.expect(lexer.TOKEN_IDENTIFIER).Str}
	isMethod := false
	for p.peek() == lexer.TOKEN_SEP_DOT {
		p.next()
		nameParts = append(nameParts, p.expect(lexer.TOKEN_IDENTIFIER).Str)
	}
	if p.peek() == lexer.TOKEN_SEP_COLON {
		p.next()
		nameParts = append(nameParts, p.expect(lexer.TOKEN_IDENTIFIER).Str)
		isMethod = true
	}
	fn := p.parseFuncBody()
	if isMethod {
		fn.ParList = append([]string{"self"}, fn.ParList...)
	}
	last := nameParts[len(nameParts)-1]
	head := nameParts[:len(nameParts)-1]
	return &ast.FunctionDeclStat{
		Line: line, IsMethod: isMethod, NameParts: head, LastName: last, Fn: fn,
	}
}

func (p *parser) parseFuncBody() *ast.FuncDefExp {
	line := p.expect(lexer.TOKEN_SEP_LPAREN).Line
	parList, isVararg := p.parseParList()
	p.expect(lexer.TOKEN_SEP_RPAREN)
	blk := p.parseBlock()
	last := p.expect(lexer.TOKEN_KW_END).Line
	return &ast.FuncDefExp{Line: line, LastLine: last, ParList: parList, IsVararg: isVararg, Block: blk}
}

func (p *parser) parseParList() ([]string, bool) {
	if p.peek() == lexer.TOKEN_SEP_RPAREN {
		return nil, false
	}
	var names []string
	for {
		if p.peek() == lexer.TOKEN_VARARG {
			p.next()
			return names, true
		}
		names = append(names, p.expect(lexer.TOKEN_IDENTIFIER).Str)
		if !p.optional(lexer.TOKEN_SEP_COMMA) {
			break
		}
	}
	return names, false
}

// assignment or a bare function/method call statement, disambiguated by
// what follows the first prefixexp.
func (p *parser) parseAssignOrCallStat() ast.Stat {
	line := 0
	first := p.parseSuffixedExp()
	if _, ok := first.(*ast.FuncCallExp); ok && p.peek() != lexer.TOKEN_SEP_COMMA && p.peek() != lexer.TOKEN_OP_ASSIGN {
		return &ast.CallStat{Exp: first}
	}
	varExps := []ast.Exp{first}
	for p.optional(lexer.TOKEN_SEP_COMMA) {
		varExps = append(varExps, p.parseSuffixedExp())
	}
	eq := p.expect(lexer.TOKEN_OP_ASSIGN)
	line = eq.Line
	valExps := p.parseExpList()
	return &ast.AssignStat{Line: line, VarExps: varExps, ValExps: valExps}
}
