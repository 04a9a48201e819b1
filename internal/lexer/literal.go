package lexer

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

var errBadLiteral = errors.New("malformed literal")

// ParseIntLit converts the text of an IntLit token to its value.
// Overflow is reported as strconv.ErrRange.
func ParseIntLit(text string) (int64, error) {
	base := 10
	digits := text
	if len(text) > 2 && text[0] == '0' {
		switch text[1] {
		case 'x', 'X':
			base, digits = 16, text[2:]
		case 'b', 'B':
			base, digits = 2, text[2:]
		}
	} else if text == "0x" || text == "0b" || text == "0X" || text == "0B" {
		return 0, errBadLiteral
	}
	if !validSeparators(digits) {
		return 0, errBadLiteral
	}
	v, err := strconv.ParseInt(strings.ReplaceAll(digits, "_", ""), base, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, strconv.ErrRange
		}
		return 0, errBadLiteral
	}
	return v, nil
}

// ParseFloatLit converts the text of a FloatLit token to its value.
func ParseFloatLit(text string) (float64, error) {
	mant, exp, hasExp := strings.Cut(strings.ToLower(text), "e")
	intPart, frac, hasFrac := strings.Cut(mant, ".")
	if !validSeparators(intPart) || (hasFrac && !validSeparators(frac)) {
		return 0, errBadLiteral
	}
	if hasExp && !validSeparators(strings.TrimLeft(exp, "+-")) {
		return 0, errBadLiteral
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, strconv.ErrRange
		}
		return 0, errBadLiteral
	}
	return v, nil
}

// validSeparators: непустая строка, '_' только между цифрами.
func validSeparators(digits string) bool {
	if digits == "" || digits[0] == '_' || digits[len(digits)-1] == '_' {
		return false
	}
	return !strings.Contains(digits, "__")
}

// UnquoteString decodes the text of a well-formed StringLit token.
func UnquoteString(text string) (string, error) {
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
		return "", errBadLiteral
	}
	body := text[1 : len(text)-1]
	if !strings.Contains(body, `\`) {
		return body, nil
	}
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", errBadLiteral
		}
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case '0':
			b.WriteByte(0)
		case 'u':
			end := strings.IndexByte(body[i:], '}')
			if end < 0 || i+1 >= len(body) || body[i+1] != '{' {
				return "", errBadLiteral
			}
			hex := body[i+2 : i+end]
			v, err := strconv.ParseUint(hex, 16, 32)
			if err != nil || len(hex) == 0 || len(hex) > 6 || !validScalar(rune(v)) {
				return "", errBadLiteral
			}
			b.WriteRune(rune(v))
			i += end
		default:
			return "", errBadLiteral
		}
	}
	return b.String(), nil
}

func validScalar(r rune) bool {
	return utf8.ValidRune(r)
}

func hexValue(b byte) rune {
	switch {
	case b >= '0' && b <= '9':
		return rune(b - '0')
	case b >= 'a' && b <= 'f':
		return rune(b-'a') + 10
	default:
		return rune(b-'A') + 10
	}
}
