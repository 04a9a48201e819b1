package lexer

import (
	"amulet/internal/diag"
	"amulet/internal/source"
	"amulet/internal/token"
)

// "..." с escape \n \t \r \\ \" \0 \u{XXXX}.
// Перевод строки или EOF до закрывающей кавычки — незакрытая строка.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '"'
	malformed := false
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch b {
		case '"':
			lx.cursor.Bump()
			tok := lx.emit(token.StringLit, start)
			tok.Malformed = malformed
			return tok
		case '\\':
			if !lx.scanEscape() {
				malformed = true
			}
			continue
		case '\n':
			return lx.unterminatedString(start)
		}
		lx.bumpRune()
	}
	return lx.unterminatedString(start)
}

func (lx *Lexer) unterminatedString(start Mark) token.Token {
	tok := lx.emit(token.StringLit, start)
	tok.Malformed = true
	lx.errLex(diag.LexUnterminatedString, tok.Span, "unterminated string literal")
	return tok
}

// scanEscape consumes one escape sequence starting at '\'.
// Returns false after reporting an invalid one.
func (lx *Lexer) scanEscape() bool {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '\'
	switch lx.cursor.Peek() {
	case 'n', 't', 'r', '\\', '"', '0':
		lx.cursor.Bump()
		return true
	case 'u':
		lx.cursor.Bump()
		if !lx.cursor.Eat('{') {
			lx.badEscape(lx.cursor.SpanFrom(start), `expected '{' after \u`)
			return false
		}
		digits := 0
		var value rune
		for isHex(lx.cursor.Peek()) {
			value = value*16 + hexValue(lx.cursor.Bump())
			digits++
			if value > 0x10FFFF {
				value = 0x110000
			}
		}
		if !lx.cursor.Eat('}') {
			lx.badEscape(lx.cursor.SpanFrom(start), `unterminated \u{...} escape`)
			return false
		}
		if digits == 0 || digits > 6 || !validScalar(value) {
			lx.badEscape(lx.cursor.SpanFrom(start), "invalid unicode escape "+lx.textFrom(start))
			return false
		}
		return true
	case '\n', 0:
		// '\' в конце строки: сама строка будет незакрытой
		lx.badEscape(lx.cursor.SpanFrom(start), "incomplete escape sequence")
		return false
	default:
		lx.bumpRune()
		lx.badEscape(lx.cursor.SpanFrom(start), "unknown escape sequence "+lx.textFrom(start))
		return false
	}
}

func (lx *Lexer) badEscape(sp source.Span, msg string) {
	lx.errLex(diag.LexBadEscape, sp, msg)
}

func (lx *Lexer) textFrom(m Mark) string {
	return string(lx.file.Content[uint32(m):lx.cursor.Off])
}
