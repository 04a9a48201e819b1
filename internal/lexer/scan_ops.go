package lexer

import (
	"fmt"

	"amulet/internal/diag"
	"amulet/internal/token"
)

// Жадность: сначала 2-символьные, затем 1-символьные.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()

	switch {
	case lx.try2('-', '>'):
		return lx.emit(token.Arrow, start)
	case lx.try2('&', '&'):
		return lx.emit(token.AndAnd, start)
	case lx.try2('|', '|'):
		return lx.emit(token.OrOr, start)
	case lx.try2('=', '='):
		return lx.emit(token.EqEq, start)
	case lx.try2('!', '='):
		return lx.emit(token.BangEq, start)
	case lx.try2('<', '='):
		return lx.emit(token.LtEq, start)
	case lx.try2('>', '='):
		return lx.emit(token.GtEq, start)
	}

	var kind token.Kind
	switch lx.cursor.Peek() {
	case '+':
		kind = token.Plus
	case '-':
		kind = token.Minus
	case '*':
		kind = token.Star
	case '/':
		kind = token.Slash
	case '%':
		kind = token.Percent
	case '!':
		kind = token.Bang
	case '=':
		kind = token.Assign
	case '<':
		kind = token.Lt
	case '>':
		kind = token.Gt
	case '(':
		kind = token.LParen
	case ')':
		kind = token.RParen
	case '{':
		kind = token.LBrace
	case '}':
		kind = token.RBrace
	case ',':
		kind = token.Comma
	case ';':
		kind = token.Semicolon
	case ':':
		kind = token.Colon
	default:
		return lx.scanInvalid()
	}
	lx.cursor.Bump()
	return lx.emit(kind, start)
}

// scanInvalid consumes a run of characters that cannot begin a token and
// reports it once. Scanning resumes at the next code point that can.
func (lx *Lexer) scanInvalid() token.Token {
	start := lx.cursor.Mark()
	lx.bumpRune()
	for !lx.cursor.EOF() && !lx.canStartToken() {
		lx.bumpRune()
	}
	tok := lx.emit(token.Invalid, start)
	msg := fmt.Sprintf("unknown character %q", tok.Text)
	if len([]rune(tok.Text)) > 1 {
		msg = fmt.Sprintf("unknown characters %q", tok.Text)
	}
	lx.errLex(diag.LexUnknownChar, tok.Span, msg)
	return tok
}
