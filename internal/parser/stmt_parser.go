package parser

import (
	"amulet/internal/ast"
	"amulet/internal/diag"
	"amulet/internal/token"
)

// parseBlock expects the current token to be '{'. A block is always built:
// a missing '}' is reported with a note at the opening brace.
func (p *Parser) parseBlock() ast.StmtID {
	open := p.advance()
	var stmts []ast.StmtID

	// 'fn'/'pub' inside a block means the previous function lost its '}'
	for !p.atOr(token.EOF, token.RBrace, token.KwFn, token.KwPub) {
		start := p.lx.Peek().Span
		stmtID, ok := p.parseStmt()
		if !ok {
			p.skipUntil(start, isStmtStarter)
			if p.at(token.Semicolon) {
				p.advance()
			}
			stmtID = p.arenas.Stmts.NewSimple(ast.StmtError, p.spanSince(start))
		}
		stmts = append(stmts, stmtID)
	}

	end := p.lastSpan
	if p.at(token.RBrace) {
		end = p.advance().Span
	} else {
		p.reportWithNote(diag.SynUnclosedBrace, diag.SevError, p.diagnosticSpan(),
			"expected '}' to close block, got "+describe(p.lx.Peek()),
			[]diag.Note{{Span: open.Span, Msg: "block opened here"}})
	}
	return p.arenas.Stmts.NewBlock(open.Span.Cover(end), stmts)
}

func (p *Parser) parseStmt() (ast.StmtID, bool) {
	switch p.lx.Peek().Kind {
	case token.KwLet, token.KwConst:
		let, ok := p.parseBinding()
		if !ok {
			return ast.NoStmtID, false
		}
		return p.arenas.Stmts.NewLet(let), true
	case token.LBrace:
		return p.parseBlock(), true
	case token.KwReturn:
		return p.parseReturnStmt()
	case token.KwIf:
		return p.parseIfStmt()
	case token.KwWhile:
		return p.parseWhileStmt()
	case token.KwBreak, token.KwContinue:
		tok := p.advance()
		kind := ast.StmtBreak
		if tok.Kind == token.KwContinue {
			kind = ast.StmtContinue
		}
		return p.arenas.Stmts.NewSimple(kind, tok.Span.Cover(p.endStmt())), true
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseReturnStmt() (ast.StmtID, bool) {
	retTok := p.advance()

	exprID := ast.NoExprID
	if !p.atOr(token.Semicolon, token.RBrace, token.EOF) {
		var ok bool
		if exprID, ok = p.parseExpr(); !ok {
			return ast.NoStmtID, false
		}
	}
	span := retTok.Span.Cover(p.endStmt())
	return p.arenas.Stmts.NewReturn(span, exprID), true
}

// parseIfStmt разбирает `if cond { } [else if ... | else { }]`.
func (p *Parser) parseIfStmt() (ast.StmtID, bool) {
	ifTok := p.advance()
	cond, ok := p.parseExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	if !p.at(token.LBrace) {
		p.err(diag.SynExpectBlock, "expected '{' after if condition, got "+describe(p.lx.Peek()))
		return ast.NoStmtID, false
	}
	then := p.parseBlock()
	span := ifTok.Span.Cover(p.arenas.Stmts.Get(then).Span)

	els := ast.NoStmtID
	if p.at(token.KwElse) {
		p.advance()
		switch {
		case p.at(token.KwIf):
			if els, ok = p.parseIfStmt(); !ok {
				return ast.NoStmtID, false
			}
		case p.at(token.LBrace):
			els = p.parseBlock()
		default:
			p.err(diag.SynExpectBlock, "expected '{' or 'if' after 'else', got "+describe(p.lx.Peek()))
			return ast.NoStmtID, false
		}
		span = span.Cover(p.arenas.Stmts.Get(els).Span)
	}
	return p.arenas.Stmts.NewIf(span, cond, then, els), true
}

func (p *Parser) parseWhileStmt() (ast.StmtID, bool) {
	whileTok := p.advance()
	cond, ok := p.parseExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	if !p.at(token.LBrace) {
		p.err(diag.SynExpectBlock, "expected '{' after while condition, got "+describe(p.lx.Peek()))
		return ast.NoStmtID, false
	}
	body := p.parseBlock()
	span := whileTok.Span.Cover(p.arenas.Stmts.Get(body).Span)
	return p.arenas.Stmts.NewWhile(span, cond, body), true
}

// parseExprStmt разбирает `expr;` и присваивание `target = expr;`.
func (p *Parser) parseExprStmt() (ast.StmtID, bool) {
	expr, ok := p.parseExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	exprSpan := p.arenas.Exprs.Get(expr).Span

	if !p.at(token.Assign) {
		return p.arenas.Stmts.NewExpr(exprSpan.Cover(p.endStmt()), expr), true
	}

	p.advance() // '='
	value, ok := p.parseExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	target := expr
	if p.arenas.Exprs.Get(expr).Kind != ast.ExprIdent {
		p.report(diag.SynBadAssignTarget, diag.SevError, exprSpan, "only a variable can be assigned to")
		target = p.arenas.Exprs.NewError(exprSpan)
	}
	span := exprSpan.Cover(p.endStmt())
	return p.arenas.Stmts.NewAssign(span, target, value), true
}
