package parser

import (
	"amulet/internal/ast"
	"amulet/internal/diag"
	"amulet/internal/source"
	"amulet/internal/token"
)

// parseExpr - главная точка входа для парсинга выражений
func (p *Parser) parseExpr() (ast.ExprID, bool) {
	return p.parseBinaryExpr(0)
}

// parseBinaryExpr — precedence climbing; minPrec — минимальный приоритет уровня.
func (p *Parser) parseBinaryExpr(minPrec int) (ast.ExprID, bool) {
	left, ok := p.parseUnaryExpr()
	if !ok {
		return ast.NoExprID, false
	}

	for {
		tok := p.lx.Peek()
		prec := binaryPrec(tok.Kind)
		if prec < 0 || prec < minPrec {
			break
		}
		p.advance()

		// все операторы левоассоциативные
		right, ok := p.parseBinaryExpr(prec + 1)
		if !ok {
			return ast.NoExprID, false
		}

		span := p.arenas.Exprs.Get(left).Span.Cover(p.arenas.Exprs.Get(right).Span)
		left = p.arenas.Exprs.NewBinary(span, binaryOps[tok.Kind], left, right)
	}

	return left, true
}

// parseUnaryExpr обрабатывает префиксы '-' и '!'.
func (p *Parser) parseUnaryExpr() (ast.ExprID, bool) {
	type prefixOp struct {
		op   ast.ExprUnaryOp
		span source.Span
	}

	var prefixes []prefixOp
	for {
		op, ok := unaryOp(p.lx.Peek().Kind)
		if !ok {
			break
		}
		prefixes = append(prefixes, prefixOp{op: op, span: p.advance().Span})
	}

	expr, ok := p.parsePostfixExpr()
	if !ok {
		return ast.NoExprID, false
	}

	// Применяем префиксы справа налево
	for i := len(prefixes) - 1; i >= 0; i-- {
		span := prefixes[i].span.Cover(p.arenas.Exprs.Get(expr).Span)
		expr = p.arenas.Exprs.NewUnary(span, prefixes[i].op, expr)
	}
	return expr, true
}

// parsePostfixExpr: primary и цепочка вызовов f(a)(b).
func (p *Parser) parsePostfixExpr() (ast.ExprID, bool) {
	expr, ok := p.parsePrimaryExpr()
	if !ok {
		return ast.NoExprID, false
	}

	for p.at(token.LParen) {
		open := p.advance()
		var args []ast.ExprID
		for !p.atOr(token.RParen, token.EOF) {
			arg, ok := p.parseExpr()
			if !ok {
				return ast.NoExprID, false
			}
			args = append(args, arg)
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
		closeTok, ok := p.expectClosingParen(open)
		if !ok {
			return ast.NoExprID, false
		}
		span := p.arenas.Exprs.Get(expr).Span.Cover(closeTok.Span)
		expr = p.arenas.Exprs.NewCall(span, expr, args)
	}
	return expr, true
}

func (p *Parser) parsePrimaryExpr() (ast.ExprID, bool) {
	tok := p.lx.Peek()
	exprs := p.arenas.Exprs
	switch tok.Kind {
	case token.IntLit:
		p.advance()
		return exprs.NewLiteral(tok.Span, ast.ExprLitInt, p.arenas.StringsInterner.Intern(tok.Text)), true
	case token.FloatLit:
		p.advance()
		return exprs.NewLiteral(tok.Span, ast.ExprLitFloat, p.arenas.StringsInterner.Intern(tok.Text)), true
	case token.StringLit:
		p.advance()
		return exprs.NewLiteral(tok.Span, ast.ExprLitString, p.arenas.StringsInterner.Intern(tok.Text)), true
	case token.KwTrue:
		p.advance()
		return exprs.NewLiteral(tok.Span, ast.ExprLitTrue, source.NoStringID), true
	case token.KwFalse:
		p.advance()
		return exprs.NewLiteral(tok.Span, ast.ExprLitFalse, source.NoStringID), true
	case token.Ident:
		p.advance()
		return exprs.NewIdent(tok.Span, p.intern(tok.Text)), true
	case token.LParen:
		open := p.advance()
		inner, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		closeTok, ok := p.expectClosingParen(open)
		if !ok {
			return ast.NoExprID, false
		}
		return exprs.NewGroup(open.Span.Cover(closeTok.Span), inner), true
	default:
		p.err(diag.SynExpectExpression, "expected expression, got "+describe(tok))
		return ast.NoExprID, false
	}
}

func (p *Parser) expectClosingParen(open token.Token) (token.Token, bool) {
	if p.at(token.RParen) {
		return p.advance(), true
	}
	p.reportWithNote(diag.SynUnclosedParen, diag.SevError, p.diagnosticSpan(),
		"expected ')', got "+describe(p.lx.Peek()),
		[]diag.Note{{Span: open.Span, Msg: "'(' opened here"}})
	return token.Token{}, false
}
