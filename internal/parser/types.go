package parser

import (
	"amulet/internal/ast"
	"amulet/internal/diag"
	"amulet/internal/token"
)

// parseType: в v1 тип — это просто имя; проверка имени — дело sema.
func (p *Parser) parseType() (ast.TypeID, bool) {
	if !p.at(token.Ident) {
		p.err(diag.SynExpectType, "expected type name, got "+describe(p.lx.Peek()))
		return ast.NoTypeID, false
	}
	tok := p.advance()
	return p.arenas.Types.New(p.intern(tok.Text), tok.Span), true
}
