package parser

import (
	"amulet/internal/ast"
	"amulet/internal/diag"
	"amulet/internal/source"
	"amulet/internal/token"
)

func (p *Parser) parseLetItem() (ast.ItemID, bool) {
	let, ok := p.parseBinding()
	if !ok {
		return ast.NoItemID, false
	}
	return p.arenas.Items.NewLet(let), true
}

// parseBinding разбирает `let [mut] name [: type] = expr;` и `const name [: type] = expr;`.
func (p *Parser) parseBinding() (ast.LetItem, bool) {
	kw := p.advance()
	let := ast.LetItem{IsConst: kw.Kind == token.KwConst}

	if p.at(token.KwMut) {
		mutTok := p.advance()
		if let.IsConst {
			p.report(diag.SynUnexpectedToken, diag.SevError, mutTok.Span, "'const' bindings cannot be 'mut'")
			return let, false
		}
		let.IsMut = true
	}

	name, nameTok, ok := p.parseIdent()
	if !ok {
		return let, false
	}
	let.Name = name
	let.NameSpan = nameTok.Span

	if p.at(token.Colon) {
		p.advance()
		if let.Type, ok = p.parseType(); !ok {
			return let, false
		}
	}

	if _, ok = p.expect(token.Assign, diag.SynExpectAssign, "expected '=' after binding name"); !ok {
		return let, false
	}
	if let.Value, ok = p.parseExpr(); !ok {
		return let, false
	}
	let.Span = kw.Span.Cover(p.endStmt())
	return let, true
}

// endStmt consumes the terminating ';'. A missing one is reported right
// after the previous token and the rest of the statement is skipped; the
// statement itself is kept. Returns the span of the last consumed token
// belonging to the statement.
func (p *Parser) endStmt() source.Span {
	if p.at(token.Semicolon) {
		return p.advance().Span
	}
	last := p.lastSpan
	p.report(diag.SynExpectSemicolon, diag.SevError, last.ZeroideToEnd(), "expected ';', got "+describe(p.lx.Peek()))
	p.skipUntil(last, isStmtStarter)
	if p.at(token.Semicolon) {
		p.advance()
	}
	return last
}
