package parser

import (
	"golang.org/x/text/unicode/norm"

	"amulet/internal/diag"
	"amulet/internal/source"
	"amulet/internal/token"
)

// advance — съедает следующий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF {
		p.lastSpan = tok.Span
	}
	return tok
}

// diagnosticSpan — лучший span для диагностики: для EOF — позиция сразу
// после последнего съеденного токена.
func (p *Parser) diagnosticSpan() source.Span {
	peek := p.lx.Peek()
	if peek.Kind == token.EOF && p.lastSpan.End > 0 {
		return p.lastSpan.ZeroideToEnd()
	}
	return peek.Span
}

// expect — ожидаем конкретный токен. Если нет — репортим и возвращаем (invalid,false).
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	p.err(code, msg+", got "+describe(p.lx.Peek()))
	return token.Token{Kind: token.Invalid, Span: p.diagnosticSpan()}, false
}

// expectAfter reports a missing token right after the previous one, which
// is where a missing ';' or ':' belongs.
func (p *Parser) expectAfter(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	sp := p.lastSpan.ZeroideToEnd()
	p.report(code, diag.SevError, sp, msg+", got "+describe(p.lx.Peek()))
	return token.Token{Kind: token.Invalid, Span: sp}, false
}

// репортует ошибку и передает текущий спан
func (p *Parser) err(code diag.Code, msg string) bool {
	return p.report(code, diag.SevError, p.diagnosticSpan(), msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) bool {
	return p.reportWithNote(code, sev, sp, msg, nil)
}

func (p *Parser) reportWithNote(code diag.Code, sev diag.Severity, sp source.Span, msg string, notes []diag.Note) bool {
	if sev == diag.SevError {
		limited := p.opts.Enough()
		p.opts.CurrentErrors++
		if limited {
			return false
		}
		// the lexer already reported this character run
		if peek := p.lx.Peek(); peek.Kind == token.Invalid && peek.Span == sp {
			return false
		}
	}
	if p.opts.Reporter == nil {
		return false
	}
	p.opts.Reporter.Report(code, sev, sp, msg, notes)
	return true
}

// intern stores an identifier in NFC form so that visually identical
// names written with different code point sequences resolve the same.
func (p *Parser) intern(text string) source.StringID {
	if !norm.NFC.IsNormalString(text) {
		text = norm.NFC.String(text)
	}
	return p.arenas.StringsInterner.Intern(text)
}

// parseIdent — ожидает Ident и интернирует его.
func (p *Parser) parseIdent() (source.StringID, token.Token, bool) {
	if p.at(token.Ident) {
		tok := p.advance()
		return p.intern(tok.Text), tok, true
	}
	p.err(diag.SynExpectIdentifier, "expected identifier, got "+describe(p.lx.Peek()))
	return source.NoStringID, token.Token{}, false
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of file"
	case token.Ident:
		return "identifier '" + tok.Text + "'"
	case token.IntLit, token.FloatLit, token.StringLit:
		return tok.Kind.Describe() + " " + tok.Text
	default:
		if tok.Text != "" {
			return "'" + tok.Text + "'"
		}
		return tok.Kind.Describe()
	}
}
