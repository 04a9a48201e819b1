package lexer

import (
	"errors"
	"strconv"

	"amulet/internal/diag"
	"amulet/internal/token"
)

// Поддержка: 123, 1_000, 0x1F, 0b1010, 1.5, 1e9, 2.5e-3.
// Неверные формы — репорт и токен того же вида с Malformed.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit

	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '0' && (b1 == 'x' || b1 == 'X' || b1 == 'b' || b1 == 'B') {
		lx.cursor.Bump()
		lx.cursor.Bump()
		hex := b1 == 'x' || b1 == 'X'
		for {
			b := lx.cursor.Peek()
			if b == '_' || (hex && isHex(b)) || (!hex && isDec(b)) {
				lx.cursor.Bump()
				continue
			}
			break
		}
		return lx.finishNumber(kind, start)
	}

	lx.eatDigits()

	// дробная часть только если за точкой цифра
	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '.' && isDec(b1) {
		kind = token.FloatLit
		lx.cursor.Bump()
		lx.eatDigits()
	}

	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		mark := lx.cursor.Mark()
		lx.cursor.Bump()
		if s := lx.cursor.Peek(); s == '+' || s == '-' {
			lx.cursor.Bump()
		}
		if isDec(lx.cursor.Peek()) {
			kind = token.FloatLit
			lx.eatDigits()
		} else {
			// "1e" без цифр — съедается как суффикс и репортится ниже
			lx.cursor.Reset(mark)
		}
	}

	return lx.finishNumber(kind, start)
}

func (lx *Lexer) eatDigits() {
	for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
		lx.cursor.Bump()
	}
}

// finishNumber swallows an identifier-like suffix ("12abc") into the literal
// and validates the whole lexeme.
func (lx *Lexer) finishNumber(kind token.Kind, start Mark) token.Token {
	for {
		b := lx.cursor.Peek()
		if b < utf8RuneSelf {
			if lx.cursor.EOF() || !isIdentContinueByte(b) {
				break
			}
			lx.cursor.Bump()
			continue
		}
		r, sz := lx.peekRune()
		if sz == 0 || !isIdentContinueRune(r) {
			break
		}
		lx.bumpRune()
	}

	tok := lx.emit(kind, start)
	var err error
	if kind == token.IntLit {
		_, err = ParseIntLit(tok.Text)
	} else {
		_, err = ParseFloatLit(tok.Text)
	}
	if err != nil {
		tok.Malformed = true
		if errors.Is(err, strconv.ErrRange) {
			lx.errLex(diag.LexNumberOverflow, tok.Span, "number literal "+tok.Text+" is out of range")
		} else {
			lx.errLex(diag.LexBadNumber, tok.Span, "malformed number literal "+tok.Text)
		}
	}
	return tok
}
