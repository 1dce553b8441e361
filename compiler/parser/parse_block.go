package parser

import (
	"git.lolli.tech/lollipopkit/lua54/compiler/ast"
	"git.lolli.tech/lollipopkit/lua54/compiler/lexer"
)

func (p *parser) parseBlock() *ast.Block {
	b := &ast.Block{}
	for !blockEnd(p.peek()) {
		if p.peek() == lexer.TOKEN_KW_RETURN {
			b.ReturnLine, b.ReturnExps = p.parseReturnStat()
			break
		}
		if stat := p.parseStat(); stat != nil {
			b.Stats = append(b.Stats, stat)
		}
	}
	return b
}

func (p *parser) parseReturnStat() (int, []ast.Exp) {
	line := p.expect(lexer.TOKEN_KW_RETURN).Line
	var exps []ast.Exp
	if !blockEnd(p.peek()) && p.peek() != lexer.TOKEN_SEP_SEMI {
		exps = p.parseExpList()
	}
	p.optional(lexer.TOKEN_SEP_SEMI)
	return line, exps
}

func (p *parser) parseStat() ast.Stat {
	switch p.peek() {
	case lexer.TOKEN_SEP_SEMI:
		p.next()
		return nil
	case lexer.TOKEN_SEP_LABEL:
		return p.parseLabelStat()
	case lexer.TOKEN_KW_BREAK:
		line := p.next().Line
		return &ast.BreakStat{Line: line}
	case lexer.TOKEN_KW_GOTO:
		return p.parseGotoStat()
	case lexer.TOKEN_KW_DO:
		p.next()
		blk := p.parseBlock()
		p.expect(lexer.TOKEN_KW_END)
		return &ast.DoStat{Block: blk}
	case lexer.TOKEN_KW_WHILE:
		return p.parseWhileStat()
	case lexer.TOKEN_KW_REPEAT:
		return p.parseRepeatStat()
	case lexer.TOKEN_KW_IF:
		return p.parseIfStat()
	case lexer.TOKEN_KW_FOR:
		return p.parseForStat()
	case lexer.TOKEN_KW_FUNCTION:
		return p.parseFunctionDeclStat()
	case lexer.TOKEN_KW_LOCAL:
		return p.parseLocalStat()
	default:
		return p.parseAssignOrCallStat()
	}
}

func (p *parser) parseLabelStat() ast.Stat {
	p.expect(lexer.TOKEN_SEP_LABEL)
	name := p.expect(lexer.TOKEN_IDENTIFIER)
	p.expect(lexer.TOKEN_SEP_LABEL)
	return &ast.LabelStat{Line: name.Line, Name: name.Str}
}

func (p *parser) parseGotoStat() ast.Stat {
	line := p.expect(lexer.TOKEN_KW_GOTO).Line
	name := p.expect(lexer.TOKEN_IDENTIFIER)
	return &ast.GotoStat{Line: line, Label: name.Str}
}

func (p *parser) parseWhileStat() ast.Stat {
	p.expect(lexer.TOKEN_KW_WHILE)
	cond := p.parseExp()
	p.expect(lexer.TOKEN_KW_DO)
	blk := p.parseBlock()
	p.expect(lexer.TOKEN_KW_END)
	return &ast.WhileStat{Cond: cond, Block: blk}
}

func (p *parser) parseRepeatStat() ast.Stat {
	p.expect(lexer.TOKEN_KW_REPEAT)
	blk := p.parseBlock()
	p.expect(lexer.TOKEN_KW_UNTIL)
	cond := p.parseExp()
	return &ast.RepeatStat{Block: blk, Cond: cond}
}

func (p *parser) parseIfStat() ast.Stat {
	stat := &ast.IfStat{}
	p.expect(lexer.TOKEN_KW_IF)
	stat.Conds = append(stat.Conds, p.parseExp())
	p.expect(lexer.TOKEN_KW_THEN)
	stat.Blocks = append(stat.Blocks, p.parseBlock())
	for p.peek() == lexer.TOKEN_KW_ELSEIF {
		p.next()
		stat.Conds = append(stat.Conds, p.parseExp())
		p.expect(lexer.TOKEN_KW_THEN)
		stat.Blocks = append(stat.Blocks, p.parseBlock())
	}
	if p.peek() == lexer.TOKEN_KW_ELSE {
		p.next()
		stat.Blocks = append(stat.Blocks, p.parseBlock())
	}
	p.expect(lexer.TOKEN_KW_END)
	return stat
}

func (p *parser) parseForStat() ast.Stat {
	line := p.expect(lexer.TOKEN_KW_FOR).Line
	name := p.expect(lexer.TOKEN_IDENTIFIER).Str
	if p.peek() == lexer.TOKEN_OP_ASSIGN {
		return p.finishNumericFor(line, name)
	}
	return p.finishGenericFor(line, name)
}

func (p *parser) finishNumericFor(line int, name string) ast.Stat {
	p.expect(lexer.TOKEN_OP_ASSIGN)
	init := p.parseExp()
	p.expect(lexer.TOKEN_SEP_COMMA)
	limit := p.parseExp()
	var step ast.Exp
	if p.optional(lexer.TOKEN_SEP_COMMA) {
		step = p.parseExp()
	}
	p.expect(lexer.TOKEN_KW_DO)
	blk := p.parseBlock()
	p.expect(lexer.TOKEN_KW_END)
	return &ast.NumericForStat{
		Line: line, VarName: name, InitExp: init, LimitExp: limit, StepExp: step, Block: blk,
	}
}

func (p *parser) finishGenericFor(line int, firstName string) ast.Stat {
	names := []string{firstName}
	for p.optional(lexer.TOKEN_SEP_COMMA) {
		names = append(names, p.expect(lexer.TOKEN_IDENTIFIER).Str)
	}
	p.expect(lexer.TOKEN_KW_IN)
	exps := p.parseExpList()
	p.expect(lexer.TOKEN_KW_DO)
	blk := p.parseBlock()
	p.expect(lexer.TOKEN_KW_END)
	return &ast.GenericForStat{Line: line, NameList: names, ExpList: exps, Block: blk}
}

func (p *parser) parseLocalStat() ast.Stat {
	line := p.expect(lexer.TOKEN_KW_LOCAL).Line
	if p.peek() == lexer.TOKEN_KW_FUNCTION {
		p.next()
		name := p.expect(lexer.TOKEN_IDENTIFIER).Str
		fn := p.parseFuncBody()
		return &ast.FunctionDeclStat{Line: line, IsLocal: true, LastName: name, Fn: fn}
	}
	var names []string
	var attribs []string
	names = append(names, p.expect(lexer.TOKEN_IDENTIFIER).Str)
	attribs = append(attribs, p.parseAttrib())
	for p.optional(lexer.TOKEN_SEP_COMMA) {
		names = append(names, p.expect(lexer.TOKEN_IDENTIFIER).Str)
		attribs = append(attribs, p.parseAttrib())
	}
	var exps []ast.Exp
	if p.optional(lexer.TOKEN_OP_ASSIGN) {
		exps = p.parseExpList()
	}
	return &ast.LocalStat{Line: line, Names: names, Attribs: attribs, Exps: exps}
}

func (p *parser) parseAttrib() string {
	if p.peek() != lexer.TOKEN_OP_LT {
		return ""
	}
	p.next()
	name := p.expect(lexer.TOKEN_IDENTIFIER).Str
	if name != "const" && name != "close" {
		p.errorf("unknown attribute '%s'", name)
	}
	p.expect(lexer.TOKEN_OP_GT)
	return name
}
