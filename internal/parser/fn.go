package parser

import (
	"amulet/internal/ast"
	"amulet/internal/diag"
	"amulet/internal/token"
)

// parseFnItem разбирает `[pub] fn name(params) [-> type] { ... }`.
func (p *Parser) parseFnItem() (ast.ItemID, bool) {
	start := p.lx.Peek().Span
	isPub := false
	if p.at(token.KwPub) {
		p.advance()
		isPub = true
		if !p.at(token.KwFn) {
			p.err(diag.SynUnexpectedToken, "expected 'fn' after 'pub', got "+describe(p.lx.Peek()))
			return ast.NoItemID, false
		}
	}
	p.advance() // fn

	name, nameTok, ok := p.parseIdent()
	if !ok {
		return ast.NoItemID, false
	}
	if _, ok = p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after function name"); !ok {
		return ast.NoItemID, false
	}
	params, ok := p.parseFnParams()
	if !ok {
		return ast.NoItemID, false
	}

	ret := ast.NoTypeID
	if p.at(token.Arrow) {
		p.advance()
		if ret, ok = p.parseType(); !ok {
			return ast.NoItemID, false
		}
	}

	if !p.at(token.LBrace) {
		p.err(diag.SynExpectBlock, "expected '{' to start function body, got "+describe(p.lx.Peek()))
		return ast.NoItemID, false
	}
	body := p.parseBlock()
	span := start.Cover(p.arenas.Stmts.Get(body).Span)
	return p.arenas.Items.NewFn(name, nameTok.Span, params, ret, body, isPub, span), true
}

// parseFnParams разбирает список после '(' включая ')'; висячая запятая разрешена.
func (p *Parser) parseFnParams() ([]ast.FnParamID, bool) {
	var params []ast.FnParamID
	for !p.at(token.RParen) {
		name, nameTok, ok := p.parseIdent()
		if !ok {
			return nil, false
		}
		if _, ok = p.expectAfter(token.Colon, diag.SynExpectColon, "expected ':' after parameter name"); !ok {
			return nil, false
		}
		typ, ok := p.parseType()
		if !ok {
			return nil, false
		}
		span := nameTok.Span.Cover(p.arenas.Types.Get(typ).Span)
		params = append(params, p.arenas.Items.NewFnParam(name, typ, span))
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after parameters"); !ok {
		return nil, false
	}
	return params, true
}
